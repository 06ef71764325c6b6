package services

import (
	"sort"

	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
)

// Confidence grades an inferred suggestion
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Suggestion is an advisory relationship the engine believes is missing.
// Suggestions are never written automatically; clients may turn them into
// real relationships through the normal create path.
type Suggestion struct {
	Category   entities.Category
	Subtype    string
	PersonA    valueobjects.PersonID
	PersonB    valueobjects.PersonID
	Confidence Confidence
	Reason     string
}

// InferenceEngine derives missing relationships from lineage structure.
// It is a pure function over a TreeGraph snapshot; callers take the snapshot
// under the tree's read lock.
type InferenceEngine struct{}

// NewInferenceEngine creates a new inference engine
func NewInferenceEngine() *InferenceEngine {
	return &InferenceEngine{}
}

func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Infer runs all rules over the snapshot. A suggestion is suppressed once any
// explicit edge of the same category already connects the pair, so accepted
// suggestions disappear from subsequent runs. Output order is deterministic:
// sorted by normalized pair, then category.
func (e *InferenceEngine) Infer(g *aggregates.TreeGraph) []Suggestion {
	var out []Suggestion
	seen := make(map[string]bool)

	add := func(s Suggestion) {
		// normalize the unordered pair so both traversal directions
		// produce the same suggestion exactly once
		if s.PersonB.Less(s.PersonA) {
			s.PersonA, s.PersonB = s.PersonB, s.PersonA
		}
		key := s.PersonA.String() + "|" + s.PersonB.String() + "|" + string(s.Category)
		if seen[key] {
			return
		}
		seen[key] = true
		if g.HasEdgeForPair(s.PersonA, s.PersonB, s.Category) {
			return
		}
		out = append(out, s)
	}

	for _, p := range g.People() {
		e.inferSiblings(g, p.ID(), add)
		e.inferAuntsUncles(g, p.ID(), add)
		e.inferGrandparents(g, p.ID(), add)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return confidenceRank(out[i].Confidence) > confidenceRank(out[j].Confidence)
		}
		if !out[i].PersonA.Equals(out[j].PersonA) {
			return out[i].PersonA.Less(out[j].PersonA)
		}
		if !out[i].PersonB.Equals(out[j].PersonB) {
			return out[i].PersonB.Less(out[j].PersonB)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// inferSiblings: two children of the same parent are siblings. Sharing both
// parents gives high confidence; one shared parent suggests a half sibling
// at medium confidence.
func (e *InferenceEngine) inferSiblings(g *aggregates.TreeGraph, id valueobjects.PersonID, add func(Suggestion)) {
	candidates := make(map[valueobjects.PersonID]bool)
	for _, parent := range g.ParentsOf(id) {
		for _, child := range g.ChildrenOf(parent) {
			if !child.Equals(id) {
				candidates[child] = true
			}
		}
	}

	myParents := len(g.ParentsOf(id))
	for other := range candidates {
		shared := len(g.SharedParents(id, other))
		otherParents := len(g.ParentsOf(other))

		if shared >= 2 || (shared == 1 && myParents == 1 && otherParents == 1) {
			add(Suggestion{
				Category:   entities.CategorySibling,
				PersonA:    id,
				PersonB:    other,
				Confidence: ConfidenceHigh,
				Reason:     "share all recorded parents",
			})
		} else if shared == 1 {
			add(Suggestion{
				Category:   entities.CategorySibling,
				Subtype:    entities.SubtypeHalf,
				PersonA:    id,
				PersonB:    other,
				Confidence: ConfidenceMedium,
				Reason:     "share exactly one recorded parent",
			})
		}
	}
}

// inferAuntsUncles: a parent's sibling is an aunt or uncle of the person.
// Only explicit sibling edges of the parent count; stacking one inference on
// another would compound uncertainty. The subtype is left open because the
// engine cannot tell aunt from uncle; the reason text says which side the
// relative is on.
func (e *InferenceEngine) inferAuntsUncles(g *aggregates.TreeGraph, id valueobjects.PersonID, add func(Suggestion)) {
	for _, parent := range g.ParentsOf(id) {
		for _, r := range g.EdgesOfCategory(parent, entities.CategorySibling) {
			auntUncle, ok := r.Other(parent)
			if !ok || auntUncle.Equals(id) {
				continue
			}
			add(Suggestion{
				Category:   entities.CategoryExtendedFamily,
				PersonA:    id,
				PersonB:    auntUncle,
				Confidence: ConfidenceMedium,
				Reason:     "sibling of a recorded parent",
			})
		}
	}
}

// inferGrandparents: a parent of a parent is a grandparent unless an
// extended_family edge between the pair already records it.
func (e *InferenceEngine) inferGrandparents(g *aggregates.TreeGraph, id valueobjects.PersonID, add func(Suggestion)) {
	for _, parent := range g.ParentsOf(id) {
		for _, grandparent := range g.ParentsOf(parent) {
			if grandparent.Equals(id) {
				continue
			}
			add(Suggestion{
				Category:   entities.CategoryExtendedFamily,
				Subtype:    entities.SubtypeGrandparent,
				PersonA:    id,
				PersonB:    grandparent,
				Confidence: ConfidenceHigh,
				Reason:     "parent of a recorded parent",
			})
		}
	}
}
