package ports

import (
	"context"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
)

// TreeRepository defines the interface for family tree persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type TreeRepository interface {
	// Save persists a family tree (create or update)
	Save(ctx context.Context, tree *entities.FamilyTree) error

	// GetByID retrieves a family tree by its ID
	GetByID(ctx context.Context, id valueobjects.TreeID) (*entities.FamilyTree, error)

	// GetByOwnerID retrieves all family trees owned by a user
	GetByOwnerID(ctx context.Context, ownerID string) ([]*entities.FamilyTree, error)

	// Delete removes a family tree and all its people and relationships
	Delete(ctx context.Context, id valueobjects.TreeID) error
}

// PersonRepository defines the interface for person persistence
type PersonRepository interface {
	// Save persists a person (create or update)
	Save(ctx context.Context, person *entities.Person) error

	// GetByID retrieves a person by its ID
	GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error)

	// GetByTreeID retrieves all people in a family tree
	GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Person, error)

	// CountByTreeID returns the number of people in a family tree
	CountByTreeID(ctx context.Context, treeID valueobjects.TreeID) (int, error)

	// Delete removes a person together with every incident relationship
	Delete(ctx context.Context, id valueobjects.PersonID) error
}

// RelationshipRepository defines the interface for relationship persistence
type RelationshipRepository interface {
	// Save persists a relationship (create or update)
	Save(ctx context.Context, rel *entities.Relationship) error

	// GetByID retrieves a relationship by its ID
	GetByID(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error)

	// GetByTreeID retrieves all relationships in a family tree
	GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Relationship, error)

	// GetByPersonID retrieves all relationships involving a person
	GetByPersonID(ctx context.Context, personID valueobjects.PersonID) ([]*entities.Relationship, error)

	// CountByTreeID returns the number of relationships in a family tree
	CountByTreeID(ctx context.Context, treeID valueobjects.TreeID) (int, error)

	// Delete removes a relationship
	Delete(ctx context.Context, id valueobjects.RelationshipID) error

	// DeleteByPersonID removes all relationships involving a person
	DeleteByPersonID(ctx context.Context, personID valueobjects.PersonID) error
}

// Repositories aggregates all repository interfaces for convenient injection
type Repositories struct {
	Trees         TreeRepository
	People        PersonRepository
	Relationships RelationshipRepository
}
