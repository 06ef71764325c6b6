package entities

import (
	"fmt"
	"strings"
	"time"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// Relationship is an edge between two people in the same family tree.
// family_line edges are directional and carry a generation difference;
// every other category is stored as a single directed record but treated
// as symmetric by all read paths.
type Relationship struct {
	id           valueobjects.RelationshipID
	treeID       valueobjects.TreeID
	fromPersonID valueobjects.PersonID
	toPersonID   valueobjects.PersonID
	category     Category
	subtype      string
	// generationDiff is nil for every category except family_line
	generationDiff *int
	startDate      *time.Time
	endDate        *time.Time
	isActive       bool
	notes          string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewRelationship creates a relationship with schema-level validation.
// Graph-level rules (existence, duplicates, cycles) are the validator's job.
//
// A generation difference supplied for a non-family_line category is silently
// dropped rather than rejected. This tolerates sloppy clients; the strict
// alternative is enforced by the validator when configured.
func NewRelationship(
	treeID valueobjects.TreeID,
	from, to valueobjects.PersonID,
	category Category,
	subtype string,
	generationDiff *int,
	startDate, endDate *time.Time,
	notes string,
) (*Relationship, error) {
	if treeID.IsZero() {
		return nil, pkgerrors.NewValidationError("family tree id cannot be empty")
	}
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.NewValidationError("both people are required for a relationship")
	}
	if from.Equals(to) {
		return nil, pkgerrors.NewValidationError("a person cannot have a relationship with themselves")
	}
	if !IsValidCategory(category) {
		return nil, pkgerrors.NewInvalidCategoryError(string(category))
	}
	if !IsValidSubtype(category, subtype) {
		return nil, pkgerrors.NewInvalidSubtypeError(string(category), subtype)
	}

	if category == CategoryFamilyLine {
		if generationDiff == nil {
			return nil, pkgerrors.NewMissingGenerationDifferenceError()
		}
		if !IsValidGenerationDifference(*generationDiff) {
			return nil, pkgerrors.NewMissingGenerationDifferenceError()
		}
		d := *generationDiff
		generationDiff = &d
	} else {
		generationDiff = nil
	}

	now := time.Now()
	return &Relationship{
		id:             valueobjects.NewRelationshipID(),
		treeID:         treeID,
		fromPersonID:   from,
		toPersonID:     to,
		category:       category,
		subtype:        subtype,
		generationDiff: generationDiff,
		startDate:      startDate,
		endDate:        endDate,
		isActive:       true,
		notes:          notes,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructRelationship reconstructs a relationship from repository data
func ReconstructRelationship(
	id valueobjects.RelationshipID,
	treeID valueobjects.TreeID,
	from, to valueobjects.PersonID,
	category Category,
	subtype string,
	generationDiff *int,
	startDate, endDate *time.Time,
	isActive bool,
	notes string,
	createdAt, updatedAt time.Time,
) (*Relationship, error) {
	if id.IsZero() || treeID.IsZero() || from.IsZero() || to.IsZero() {
		return nil, pkgerrors.NewValidationError("required fields missing for relationship reconstruction")
	}
	if !IsValidCategory(category) {
		return nil, pkgerrors.NewInvalidCategoryError(string(category))
	}

	return &Relationship{
		id:             id,
		treeID:         treeID,
		fromPersonID:   from,
		toPersonID:     to,
		category:       category,
		subtype:        subtype,
		generationDiff: generationDiff,
		startDate:      startDate,
		endDate:        endDate,
		isActive:       isActive,
		notes:          notes,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

// ID returns the relationship's unique identifier
func (r *Relationship) ID() valueobjects.RelationshipID {
	return r.id
}

// TreeID returns the owning family tree's identifier
func (r *Relationship) TreeID() valueobjects.TreeID {
	return r.treeID
}

// FromPersonID returns the stored from-endpoint
func (r *Relationship) FromPersonID() valueobjects.PersonID {
	return r.fromPersonID
}

// ToPersonID returns the stored to-endpoint
func (r *Relationship) ToPersonID() valueobjects.PersonID {
	return r.toPersonID
}

// Category returns the relationship category
func (r *Relationship) Category() Category {
	return r.category
}

// Subtype returns the relationship subtype, may be empty
func (r *Relationship) Subtype() string {
	return r.subtype
}

// GenerationDifference returns the generation difference for family_line edges, nil otherwise
func (r *Relationship) GenerationDifference() *int {
	if r.generationDiff == nil {
		return nil
	}
	d := *r.generationDiff
	return &d
}

// StartDate returns the start date, nil when unset
func (r *Relationship) StartDate() *time.Time {
	return r.startDate
}

// EndDate returns the end date, nil when unset
func (r *Relationship) EndDate() *time.Time {
	return r.endDate
}

// IsActive reports whether the relationship is currently active
func (r *Relationship) IsActive() bool {
	return r.isActive
}

// Notes returns the free text notes
func (r *Relationship) Notes() string {
	return r.notes
}

// CreatedAt returns when the relationship was created; used as the
// deterministic tie-break key in path search.
func (r *Relationship) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns when the relationship was last updated
func (r *Relationship) UpdatedAt() time.Time {
	return r.updatedAt
}

// Involves reports whether the person is one of the two endpoints
func (r *Relationship) Involves(personID valueobjects.PersonID) bool {
	return r.fromPersonID.Equals(personID) || r.toPersonID.Equals(personID)
}

// Other returns the opposite endpoint. The second return is false when the
// person is not an endpoint at all.
func (r *Relationship) Other(personID valueobjects.PersonID) (valueobjects.PersonID, bool) {
	switch {
	case r.fromPersonID.Equals(personID):
		return r.toPersonID, true
	case r.toPersonID.Equals(personID):
		return r.fromPersonID, true
	default:
		return valueobjects.PersonID{}, false
	}
}

// ConnectsPair reports whether the edge connects the unordered pair
func (r *Relationship) ConnectsPair(a, b valueobjects.PersonID) bool {
	return (r.fromPersonID.Equals(a) && r.toPersonID.Equals(b)) ||
		(r.fromPersonID.Equals(b) && r.toPersonID.Equals(a))
}

// ParentID returns the parent endpoint of a family_line edge.
// The second return is false for other categories.
func (r *Relationship) ParentID() (valueobjects.PersonID, bool) {
	if r.category != CategoryFamilyLine || r.generationDiff == nil {
		return valueobjects.PersonID{}, false
	}
	if *r.generationDiff == GenerationParent {
		return r.fromPersonID, true
	}
	return r.toPersonID, true
}

// ChildID returns the child endpoint of a family_line edge.
// The second return is false for other categories.
func (r *Relationship) ChildID() (valueobjects.PersonID, bool) {
	if r.category != CategoryFamilyLine || r.generationDiff == nil {
		return valueobjects.PersonID{}, false
	}
	if *r.generationDiff == GenerationParent {
		return r.toPersonID, true
	}
	return r.fromPersonID, true
}

// Update applies an in-place mutation of the mutable fields.
// Category and endpoints are fixed for the lifetime of the edge.
func (r *Relationship) Update(
	subtype *string,
	generationDiff *int,
	startDate, endDate *time.Time,
	isActive *bool,
	notes *string,
) error {
	if subtype != nil {
		if !IsValidSubtype(r.category, *subtype) {
			return pkgerrors.NewInvalidSubtypeError(string(r.category), *subtype)
		}
		r.subtype = *subtype
	}
	if generationDiff != nil {
		if r.category != CategoryFamilyLine {
			// same leniency as creation: drop rather than reject
			generationDiff = nil
		} else if !IsValidGenerationDifference(*generationDiff) {
			return pkgerrors.NewMissingGenerationDifferenceError()
		} else {
			d := *generationDiff
			r.generationDiff = &d
		}
	}
	if startDate != nil {
		r.startDate = startDate
	}
	if endDate != nil {
		r.endDate = endDate
	}
	if isActive != nil {
		r.isActive = *isActive
	}
	if notes != nil {
		r.notes = *notes
	}
	r.updatedAt = time.Now()
	return nil
}

// DescribeFrom renders a human-readable description of the edge from the
// given person's perspective, e.g. "Parent (biological)" or "Partner (married)".
func (r *Relationship) DescribeFrom(personID valueobjects.PersonID) string {
	isFrom := r.fromPersonID.Equals(personID)

	switch r.category {
	case CategoryFamilyLine:
		subtype := r.subtype
		if subtype == "" {
			subtype = "biological"
		}
		if r.generationDiff == nil {
			return "Family Line"
		}
		// The stored direction is relative to the from-person; flip for the to-person.
		diff := *r.generationDiff
		if !isFrom {
			diff = -diff
		}
		if diff == GenerationParent {
			return fmt.Sprintf("Parent (%s)", subtype)
		}
		return fmt.Sprintf("Child (%s)", subtype)

	case CategoryPartner:
		if r.subtype != "" {
			return fmt.Sprintf("Partner (%s)", r.subtype)
		}
		return "Partner"

	case CategorySibling:
		if r.subtype != "" {
			return fmt.Sprintf("Sibling (%s)", r.subtype)
		}
		return "Sibling"

	case CategoryExtendedFamily:
		if r.subtype != "" {
			return fmt.Sprintf("Extended Family (%s)", r.subtype)
		}
		return "Extended Family"
	}

	return strings.ReplaceAll(string(r.category), "_", " ")
}
