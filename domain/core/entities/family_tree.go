package entities

import (
	"time"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// FamilyTree is the namespace owning a disjoint set of people and
// relationships. Every graph operation is confined to one tree.
type FamilyTree struct {
	id          valueobjects.TreeID
	ownerID     string
	name        string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewFamilyTree creates a new family tree
func NewFamilyTree(ownerID, name, description string) (*FamilyTree, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("owner id cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("family tree name cannot be empty")
	}

	now := time.Now()
	return &FamilyTree{
		id:          valueobjects.NewTreeID(),
		ownerID:     ownerID,
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructFamilyTree reconstructs a family tree from repository data
func ReconstructFamilyTree(
	id valueobjects.TreeID,
	ownerID, name, description string,
	createdAt, updatedAt time.Time,
) (*FamilyTree, error) {
	if id.IsZero() || ownerID == "" || name == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for family tree reconstruction")
	}

	return &FamilyTree{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the tree's unique identifier
func (t *FamilyTree) ID() valueobjects.TreeID {
	return t.id
}

// OwnerID returns the owning user's id
func (t *FamilyTree) OwnerID() string {
	return t.ownerID
}

// Name returns the tree's name
func (t *FamilyTree) Name() string {
	return t.name
}

// Description returns the tree's description
func (t *FamilyTree) Description() string {
	return t.description
}

// CreatedAt returns when the tree was created
func (t *FamilyTree) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the tree was last updated
func (t *FamilyTree) UpdatedAt() time.Time {
	return t.updatedAt
}

// Rename updates the tree's name and description
func (t *FamilyTree) Rename(name, description string) error {
	if name == "" {
		return pkgerrors.NewValidationError("family tree name cannot be empty")
	}
	t.name = name
	t.description = description
	t.updatedAt = time.Now()
	return nil
}

// IsOwnedBy reports whether the given user owns the tree
func (t *FamilyTree) IsOwnedBy(userID string) bool {
	return t.ownerID == userID
}
