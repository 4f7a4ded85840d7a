package query

import "github.com/openbel/reggie/core/rdf"

// Variable names used by the query library.
const (
	VarSubject    = "subject"
	VarScheme     = "scheme"
	VarLabel      = "label"
	VarPredicate  = "predicate"
	VarObject     = "object"
	VarEquivalent = "equivalent"
)

// SubjectsOfType selects every ?subject with rdf:type typeIRI.
func SubjectsOfType(typeIRI string) Select {
	return Select{
		Vars:  []string{VarSubject},
		Where: []Pattern{{Var(VarSubject), IRI(rdf.RDFType), IRI(typeIRI)}},
	}
}

// NamespaceSchemes selects every namespace concept scheme.
func NamespaceSchemes() Select {
	return SubjectsOfType(rdf.BELVNamespaceConceptScheme)
}

// AnnotationSchemes selects every annotation concept scheme.
func AnnotationSchemes() Select {
	return SubjectsOfType(rdf.BELVAnnotationConceptScheme)
}

// ValuesInScheme selects every ?subject in the given concept scheme.
func ValuesInScheme(scheme rdf.Term) Select {
	return Select{
		Vars:  []string{VarSubject},
		Where: []Pattern{{Var(VarSubject), IRI(rdf.SKOSInScheme), Node(scheme)}},
	}
}

// NamespaceValues selects every (?subject, ?scheme) where ?scheme is a
// namespace concept scheme.
func NamespaceValues() Select {
	return Select{
		Vars: []string{VarSubject, VarScheme},
		Where: []Pattern{
			{Var(VarScheme), IRI(rdf.RDFType), IRI(rdf.BELVNamespaceConceptScheme)},
			{Var(VarSubject), IRI(rdf.SKOSInScheme), Var(VarScheme)},
		},
	}
}

// PreferredLabel selects the skos:prefLabel of concept.
func PreferredLabel(concept rdf.Term) Select {
	return Select{
		Vars:  []string{VarLabel},
		Where: []Pattern{{Node(concept), IRI(rdf.SKOSPrefLabel), Var(VarLabel)}},
	}
}

// SchemeLabels selects every (?scheme, ?label) for schemes of typeIRI.
func SchemeLabels(typeIRI string) Select {
	return Select{
		Vars: []string{VarScheme, VarLabel},
		Where: []Pattern{
			{Var(VarScheme), IRI(rdf.RDFType), IRI(typeIRI)},
			{Var(VarScheme), IRI(rdf.SKOSPrefLabel), Var(VarLabel)},
		},
	}
}

// ConceptPairs selects every (?predicate, ?object) of concept.
func ConceptPairs(concept rdf.Term) Select {
	return Select{
		Vars:  []string{VarPredicate, VarObject},
		Where: []Pattern{{Node(concept), Var(VarPredicate), Var(VarObject)}},
	}
}

// EquivalentConcepts selects every skos:exactMatch of concept.
func EquivalentConcepts(concept rdf.Term) Select {
	return Select{
		Vars:  []string{VarEquivalent},
		Where: []Pattern{{Node(concept), IRI(rdf.SKOSExactMatch), Var(VarEquivalent)}},
	}
}

// AllTriples selects every triple in the store.
func AllTriples() Select {
	return Select{
		Vars:  []string{VarSubject, VarPredicate, VarObject},
		Where: []Pattern{{Var(VarSubject), Var(VarPredicate), Var(VarObject)}},
	}
}
