package memory

import (
	"context"

	"lineage-backend/application/ports"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// PersonRepository is the in-memory ports.PersonRepository implementation
type PersonRepository struct {
	store *Store
}

// NewPersonRepository creates a person repository backed by the store
func NewPersonRepository(store *Store) *PersonRepository {
	return &PersonRepository{store: store}
}

var _ ports.PersonRepository = (*PersonRepository)(nil)

// Save persists a person
func (r *PersonRepository) Save(ctx context.Context, person *entities.Person) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.people[person.ID()] = person
	r.store.indexPerson(person)
	return nil
}

// GetByID retrieves a person by its ID
func (r *PersonRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	person, ok := r.store.people[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("person")
	}
	return person, nil
}

// GetByTreeID retrieves all people in a family tree
func (r *PersonRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Person, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.peopleByTree[treeID]
	people := make([]*entities.Person, 0, len(ids))
	for id := range ids {
		if p, ok := r.store.people[id]; ok {
			people = append(people, p)
		}
	}
	return people, nil
}

// CountByTreeID returns the number of people in a family tree
func (r *PersonRepository) CountByTreeID(ctx context.Context, treeID valueobjects.TreeID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.peopleByTree[treeID]), nil
}

// Delete removes a person and every incident relationship
func (r *PersonRepository) Delete(ctx context.Context, id valueobjects.PersonID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.people[id]; !ok {
		return pkgerrors.NewNotFoundError("person")
	}
	r.store.deletePersonLocked(id)
	return nil
}
