package emit

import (
	"fmt"

	"github.com/openbel/reggie/core/concept"
)

// Mode selects the discriminator of a resource: the preferred label or the
// identifier.
type Mode int

const (
	ByName Mode = iota
	ByIdentifier
)

func (m Mode) String() string {
	if m == ByIdentifier {
		return "ids"
	}
	return "name"
}

// Rule says which concept fields make up a resource line and which suffix
// the resource file carries.
type Rule struct {
	Discriminator concept.Field
	Secondary     concept.Field
	Suffix        string
}

// Resource file suffixes.
const (
	SuffixNamespace   = ".belns"
	SuffixAnnotation  = ".belanno"
	SuffixEquivalence = ".beleq"
)

// RuleFor returns the emission rule of variant v in mode m. Annotations use
// the same rule in both modes.
func RuleFor(v concept.Variant, m Mode) Rule {
	switch v {
	case concept.Namespace:
		if m == ByIdentifier {
			return Rule{concept.Identifier, concept.Encoding, SuffixNamespace}
		}
		return Rule{concept.PreferredLabel, concept.Encoding, SuffixNamespace}
	case concept.Annotation:
		return Rule{concept.PreferredLabel, concept.Identifier, SuffixAnnotation}
	case concept.Equivalence:
		if m == ByIdentifier {
			return Rule{concept.Identifier, concept.UUID, SuffixEquivalence}
		}
		return Rule{concept.PreferredLabel, concept.UUID, SuffixEquivalence}
	}
	panic(fmt.Sprintf("emit: no rule for %v", v))
}

// Line renders c under r. The second result is false when c lacks either
// field.
func (r Rule) Line(c concept.Concept) (string, bool) {
	disc, ok := c.Get(r.Discriminator)
	if !ok {
		return "", false
	}
	sec, ok := c.Get(r.Secondary)
	if !ok {
		return "", false
	}
	return disc + "|" + sec + "\n", true
}

// FileName returns the resource file name for slug under variant v in mode m.
func FileName(slug string, v concept.Variant, m Mode) string {
	name := slug
	if m == ByIdentifier {
		name += "-ids"
	}
	return name + RuleFor(v, m).Suffix
}

// TemplateName returns the header template file name for slug under variant
// v in mode m, for example "chebi-ids-belns.tmpl".
func TemplateName(slug string, v concept.Variant, m Mode) string {
	stem := slug
	if m == ByIdentifier {
		stem += "-ids"
	}
	return stem + "-" + RuleFor(v, m).Suffix[1:] + ".tmpl"
}
