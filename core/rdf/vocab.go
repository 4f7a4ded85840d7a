package rdf

// Namespace IRIs.
const (
	BELV    = "http://www.openbel.org/vocabulary/"
	DCTerms = "http://purl.org/dc/terms/"
	RDFNS   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS  = "http://www.w3.org/2000/01/rdf-schema#"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"

	// UUIDSchemeBase prefixes every minted UUID concept scheme.
	UUIDSchemeBase = "http://www.openbel.org/bel/uuid/"
)

const (
	RDFType       = RDFNS + "type"
	RDFLangString = RDFNS + "langString"

	RDFSClass      = RDFSNS + "Class"
	RDFSResource   = RDFSNS + "Resource"
	RDFSSubClassOf = RDFSNS + "subClassOf"

	SKOSPrefLabel     = SKOS + "prefLabel"
	SKOSInScheme      = SKOS + "inScheme"
	SKOSExactMatch    = SKOS + "exactMatch"
	SKOSConceptScheme = SKOS + "ConceptScheme"

	DCTermsIdentifier = DCTerms + "identifier"

	XSDString = XSD + "string"
)

// BEL vocabulary classes.
const (
	BELVNamespaceConceptScheme  = BELV + "NamespaceConceptScheme"
	BELVAnnotationConceptScheme = BELV + "AnnotationConceptScheme"
	BELVUUIDConceptScheme       = BELV + "UUIDConceptScheme"
	BELVUUIDConcept             = BELV + "UUIDConcept"

	BELVAbundanceConcept           = BELV + "AbundanceConcept"
	BELVBiologicalProcessConcept   = BELV + "BiologicalProcessConcept"
	BELVComplexConcept             = BELV + "ComplexConcept"
	BELVProteinModificationConcept = BELV + "ProteinModificationConcept"
	BELVGeneConcept                = BELV + "GeneConcept"
	BELVMicroRNAConcept            = BELV + "MicroRNAConcept"
	BELVPathologyConcept           = BELV + "PathologyConcept"
	BELVProteinConcept             = BELV + "ProteinConcept"
	BELVRNAConcept                 = BELV + "RNAConcept"
	BELVMolecularActivityConcept   = BELV + "MolecularActivityConcept"
)

// Prefixes maps the prefixed-name prefixes understood by query parsing and
// rendering to their namespaces.
var Prefixes = map[string]string{
	"belv":    BELV,
	"dcterms": DCTerms,
	"rdf":     RDFNS,
	"rdfs":    RDFSNS,
	"skos":    SKOS,
	"xsd":     XSD,
}

// PrefixOrder is the order in which prefix declarations are rendered.
var PrefixOrder = []string{"belv", "dcterms", "rdf", "rdfs", "skos", "xsd"}
