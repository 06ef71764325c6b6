// Package memory provides mutex-guarded in-process repositories.
// It is the default driver for development and tests; the dynamodb package
// provides the durable production driver behind the same ports.
package memory

import (
	"sync"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
)

// Store is the shared backing state for the three repositories. One Store
// instance backs one process; all three repositories share its mutex so a
// cascade delete observes a consistent view.
type Store struct {
	mu            sync.RWMutex
	trees         map[valueobjects.TreeID]*entities.FamilyTree
	people        map[valueobjects.PersonID]*entities.Person
	relationships map[valueobjects.RelationshipID]*entities.Relationship

	// secondary indexes
	peopleByTree map[valueobjects.TreeID]map[valueobjects.PersonID]struct{}
	relsByTree   map[valueobjects.TreeID]map[valueobjects.RelationshipID]struct{}
	relsByPerson map[valueobjects.PersonID]map[valueobjects.RelationshipID]struct{}
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		trees:         make(map[valueobjects.TreeID]*entities.FamilyTree),
		people:        make(map[valueobjects.PersonID]*entities.Person),
		relationships: make(map[valueobjects.RelationshipID]*entities.Relationship),
		peopleByTree:  make(map[valueobjects.TreeID]map[valueobjects.PersonID]struct{}),
		relsByTree:    make(map[valueobjects.TreeID]map[valueobjects.RelationshipID]struct{}),
		relsByPerson:  make(map[valueobjects.PersonID]map[valueobjects.RelationshipID]struct{}),
	}
}

func (s *Store) indexPerson(p *entities.Person) {
	byTree, ok := s.peopleByTree[p.TreeID()]
	if !ok {
		byTree = make(map[valueobjects.PersonID]struct{})
		s.peopleByTree[p.TreeID()] = byTree
	}
	byTree[p.ID()] = struct{}{}
}

func (s *Store) indexRelationship(r *entities.Relationship) {
	byTree, ok := s.relsByTree[r.TreeID()]
	if !ok {
		byTree = make(map[valueobjects.RelationshipID]struct{})
		s.relsByTree[r.TreeID()] = byTree
	}
	byTree[r.ID()] = struct{}{}

	for _, pid := range []valueobjects.PersonID{r.FromPersonID(), r.ToPersonID()} {
		byPerson, ok := s.relsByPerson[pid]
		if !ok {
			byPerson = make(map[valueobjects.RelationshipID]struct{})
			s.relsByPerson[pid] = byPerson
		}
		byPerson[r.ID()] = struct{}{}
	}
}

func (s *Store) unindexRelationship(r *entities.Relationship) {
	if byTree, ok := s.relsByTree[r.TreeID()]; ok {
		delete(byTree, r.ID())
	}
	for _, pid := range []valueobjects.PersonID{r.FromPersonID(), r.ToPersonID()} {
		if byPerson, ok := s.relsByPerson[pid]; ok {
			delete(byPerson, r.ID())
		}
	}
}

// deleteRelationshipLocked removes an edge; caller holds the write lock
func (s *Store) deleteRelationshipLocked(id valueobjects.RelationshipID) {
	r, ok := s.relationships[id]
	if !ok {
		return
	}
	delete(s.relationships, id)
	s.unindexRelationship(r)
}

// deletePersonLocked removes a person and cascades; caller holds the write lock
func (s *Store) deletePersonLocked(id valueobjects.PersonID) {
	p, ok := s.people[id]
	if !ok {
		return
	}
	for relID := range s.relsByPerson[id] {
		s.deleteRelationshipLocked(relID)
	}
	delete(s.relsByPerson, id)
	delete(s.people, id)
	if byTree, ok := s.peopleByTree[p.TreeID()]; ok {
		delete(byTree, id)
	}
}
