package memory

import (
	"context"
	"sort"

	"lineage-backend/application/ports"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// TreeRepository is the in-memory ports.TreeRepository implementation
type TreeRepository struct {
	store *Store
}

// NewTreeRepository creates a tree repository backed by the store
func NewTreeRepository(store *Store) *TreeRepository {
	return &TreeRepository{store: store}
}

var _ ports.TreeRepository = (*TreeRepository)(nil)

// Save persists a family tree
func (r *TreeRepository) Save(ctx context.Context, tree *entities.FamilyTree) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.trees[tree.ID()] = tree
	return nil
}

// GetByID retrieves a family tree by its ID
func (r *TreeRepository) GetByID(ctx context.Context, id valueobjects.TreeID) (*entities.FamilyTree, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tree, ok := r.store.trees[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("family tree")
	}
	return tree, nil
}

// GetByOwnerID retrieves all family trees owned by a user
func (r *TreeRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]*entities.FamilyTree, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var trees []*entities.FamilyTree
	for _, t := range r.store.trees {
		if t.IsOwnedBy(ownerID) {
			trees = append(trees, t)
		}
	}
	sort.Slice(trees, func(i, j int) bool {
		if !trees[i].CreatedAt().Equal(trees[j].CreatedAt()) {
			return trees[i].CreatedAt().Before(trees[j].CreatedAt())
		}
		return trees[i].ID().String() < trees[j].ID().String()
	})
	return trees, nil
}

// Delete removes a family tree and cascades to all its people and relationships
func (r *TreeRepository) Delete(ctx context.Context, id valueobjects.TreeID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.trees[id]; !ok {
		return pkgerrors.NewNotFoundError("family tree")
	}

	for relID := range r.store.relsByTree[id] {
		r.store.deleteRelationshipLocked(relID)
	}
	delete(r.store.relsByTree, id)

	for personID := range r.store.peopleByTree[id] {
		r.store.deletePersonLocked(personID)
	}
	delete(r.store.peopleByTree, id)

	delete(r.store.trees, id)
	return nil
}
