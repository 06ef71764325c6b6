package entities

// Category classifies a relationship edge. The set is closed; the Graph Index
// and every traversal treats family_line as directed and the rest as symmetric.
type Category string

const (
	CategoryFamilyLine     Category = "family_line"
	CategoryPartner        Category = "partner"
	CategorySibling        Category = "sibling"
	CategoryExtendedFamily Category = "extended_family"
)

// Generation difference values for family_line edges
const (
	GenerationParent = -1 // from-person is parent of to-person
	GenerationChild  = 1  // from-person is child of to-person
)

// Subtype constants used by the inference engine
const (
	SubtypeHalf        = "half"
	SubtypeAunt        = "aunt"
	SubtypeUncle       = "uncle"
	SubtypeGrandparent = "grandparent"
)

// CategoryRule describes the validation rules for one relationship category
type CategoryRule struct {
	Description                  string
	RequiresGenerationDifference bool
	Bidirectional                bool
	ValidSubtypes                []string
	GenerationValues             map[int]string
}

// categoryRules is the closed category/subtype rule set. It is static lookup
// data loaded once; callers get copies and must not mutate it.
var categoryRules = map[Category]CategoryRule{
	CategoryFamilyLine: {
		Description:                  "Parent-child relationships",
		RequiresGenerationDifference: true,
		Bidirectional:                false,
		ValidSubtypes:                []string{"biological", "adoptive", "step", "foster"},
		GenerationValues: map[int]string{
			GenerationParent: "from_person is parent of to_person",
			GenerationChild:  "from_person is child of to_person",
		},
	},
	CategoryPartner: {
		Description:   "Romantic partnerships and marriages",
		Bidirectional: true,
		ValidSubtypes: []string{"married", "engaged", "dating", "divorced", "separated", "widowed"},
	},
	CategorySibling: {
		Description:   "Sibling relationships",
		Bidirectional: true,
		ValidSubtypes: []string{"biological", "half", "step", "adoptive"},
	},
	CategoryExtendedFamily: {
		Description:   "Extended family relationships",
		Bidirectional: false, // direction matters for some extended family
		ValidSubtypes: []string{"aunt", "uncle", "cousin", "grandparent", "grandchild", "in_law"},
	},
}

// AllCategories returns the closed category set in stable order
func AllCategories() []Category {
	return []Category{CategoryFamilyLine, CategoryPartner, CategorySibling, CategoryExtendedFamily}
}

// CategoryRules returns a copy of the rule table, keyed by category
func CategoryRules() map[Category]CategoryRule {
	rules := make(map[Category]CategoryRule, len(categoryRules))
	for cat, rule := range categoryRules {
		subtypes := make([]string, len(rule.ValidSubtypes))
		copy(subtypes, rule.ValidSubtypes)
		gens := make(map[int]string, len(rule.GenerationValues))
		for k, v := range rule.GenerationValues {
			gens[k] = v
		}
		rule.ValidSubtypes = subtypes
		rule.GenerationValues = gens
		rules[cat] = rule
	}
	return rules
}

// IsValidCategory reports whether the category belongs to the closed set
func IsValidCategory(c Category) bool {
	_, ok := categoryRules[c]
	return ok
}

// IsValidSubtype reports whether the subtype is legal for the category.
// An empty subtype is always legal.
func IsValidSubtype(c Category, subtype string) bool {
	if subtype == "" {
		return true
	}
	rule, ok := categoryRules[c]
	if !ok {
		return false
	}
	for _, s := range rule.ValidSubtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// IsValidGenerationDifference reports whether the value is legal for family_line edges
func IsValidGenerationDifference(d int) bool {
	return d == GenerationParent || d == GenerationChild
}
