package memory

import (
	"context"
	"sort"

	"lineage-backend/application/ports"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// RelationshipRepository is the in-memory ports.RelationshipRepository implementation
type RelationshipRepository struct {
	store *Store
}

// NewRelationshipRepository creates a relationship repository backed by the store
func NewRelationshipRepository(store *Store) *RelationshipRepository {
	return &RelationshipRepository{store: store}
}

var _ ports.RelationshipRepository = (*RelationshipRepository)(nil)

// Save persists a relationship
func (r *RelationshipRepository) Save(ctx context.Context, rel *entities.Relationship) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.relationships[rel.ID()] = rel
	r.store.indexRelationship(rel)
	return nil
}

// GetByID retrieves a relationship by its ID
func (r *RelationshipRepository) GetByID(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rel, ok := r.store.relationships[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}
	return rel, nil
}

// GetByTreeID retrieves all relationships in a family tree
func (r *RelationshipRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Relationship, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.relsByTree[treeID]
	rels := make([]*entities.Relationship, 0, len(ids))
	for id := range ids {
		if rel, ok := r.store.relationships[id]; ok {
			rels = append(rels, rel)
		}
	}
	sortRelationships(rels)
	return rels, nil
}

// GetByPersonID retrieves all relationships involving a person
func (r *RelationshipRepository) GetByPersonID(ctx context.Context, personID valueobjects.PersonID) ([]*entities.Relationship, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.relsByPerson[personID]
	rels := make([]*entities.Relationship, 0, len(ids))
	for id := range ids {
		if rel, ok := r.store.relationships[id]; ok {
			rels = append(rels, rel)
		}
	}
	sortRelationships(rels)
	return rels, nil
}

// CountByTreeID returns the number of relationships in a family tree
func (r *RelationshipRepository) CountByTreeID(ctx context.Context, treeID valueobjects.TreeID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.relsByTree[treeID]), nil
}

// Delete removes a relationship
func (r *RelationshipRepository) Delete(ctx context.Context, id valueobjects.RelationshipID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.relationships[id]; !ok {
		return pkgerrors.NewNotFoundError("relationship")
	}
	r.store.deleteRelationshipLocked(id)
	return nil
}

// DeleteByPersonID removes all relationships involving a person
func (r *RelationshipRepository) DeleteByPersonID(ctx context.Context, personID valueobjects.PersonID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id := range r.store.relsByPerson[personID] {
		r.store.deleteRelationshipLocked(id)
	}
	delete(r.store.relsByPerson, personID)
	return nil
}

func sortRelationships(rels []*entities.Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		if !rels[i].CreatedAt().Equal(rels[j].CreatedAt()) {
			return rels[i].CreatedAt().Before(rels[j].CreatedAt())
		}
		return rels[i].ID().String() < rels[j].ID().String()
	})
}
