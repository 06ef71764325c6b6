package services

import (
	"context"

	"go.uber.org/zap"

	"lineage-backend/domain/config"
	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// TraversalService answers read-side graph questions: ancestors, descendants,
// siblings and shortest relationship paths. All operations work on an
// immutable TreeGraph snapshot taken under the tree's read lock.
type TraversalService struct {
	loader *GraphLoader
	locks  *TreeLockManager
	cfg    config.DomainConfig
	logger *zap.Logger
}

// NewTraversalService creates a new traversal service
func NewTraversalService(
	loader *GraphLoader,
	locks *TreeLockManager,
	cfg config.DomainConfig,
	logger *zap.Logger,
) *TraversalService {
	return &TraversalService{
		loader: loader,
		locks:  locks,
		cfg:    cfg,
		logger: logger,
	}
}

// GenerationResult carries the outcome of an ancestor or descendant walk
type GenerationResult struct {
	People []*entities.Person
	// Truncated is true when the depth cap cut the walk short
	Truncated bool
}

// PathStep is one hop of a relationship path, described from the perspective
// of the person entering the hop.
type PathStep struct {
	Relationship *entities.Relationship
	From         *entities.Person
	To           *entities.Person
	Description  string
}

// PathQueryResult carries the outcome of a shortest path search
type PathQueryResult struct {
	Steps []PathStep
	Found bool
	// Truncated is true when the search gave up at the depth cap; a miss is
	// then "not found within N hops", not "no path exists".
	Truncated bool
}

// Ancestors returns the people reachable by walking strictly parentward from
// the person, up to maxGenerations levels. Zero generations yields an empty
// result; a negative value means unbounded and is clamped to the config cap.
func (s *TraversalService) Ancestors(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
	maxGenerations int,
) (*GenerationResult, error) {
	g, err := s.snapshot(ctx, treeID, personID)
	if err != nil {
		return nil, err
	}
	res := g.AncestorsWithin(personID, s.cfg.ClampGenerations(maxGenerations))
	return &GenerationResult{People: res.People, Truncated: res.CapReached}, nil
}

// Descendants is the symmetric walk childward
func (s *TraversalService) Descendants(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
	maxGenerations int,
) (*GenerationResult, error) {
	g, err := s.snapshot(ctx, treeID, personID)
	if err != nil {
		return nil, err
	}
	res := g.DescendantsWithin(personID, s.cfg.ClampGenerations(maxGenerations))
	return &GenerationResult{People: res.People, Truncated: res.CapReached}, nil
}

// Siblings returns people sharing at least one parent with the person,
// united with explicit sibling edges, deduplicated.
func (s *TraversalService) Siblings(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) ([]*entities.Person, error) {
	g, err := s.snapshot(ctx, treeID, personID)
	if err != nil {
		return nil, err
	}
	return g.SiblingsOf(personID), nil
}

// RelationshipPath finds the shortest relationship chain between two people,
// over all categories, described hop by hop from the walker's perspective.
func (s *TraversalService) RelationshipPath(
	ctx context.Context,
	treeID valueobjects.TreeID,
	fromID, toID valueobjects.PersonID,
	maxDepth int,
) (*PathQueryResult, error) {
	s.locks.RLock(treeID)
	defer s.locks.RUnlock(treeID)

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !g.HasPerson(fromID) || !g.HasPerson(toID) {
		return nil, pkgerrors.NewNotFoundError("person")
	}

	res := g.ShortestPath(fromID, toID, s.cfg.ClampPathDepth(maxDepth))
	if !res.Found {
		return &PathQueryResult{Truncated: res.CapReached}, nil
	}

	steps := make([]PathStep, 0, len(res.Edges))
	at := fromID
	for _, r := range res.Edges {
		next, _ := r.Other(at)
		from, _ := g.Person(at)
		to, _ := g.Person(next)
		steps = append(steps, PathStep{
			Relationship: r,
			From:         from,
			To:           to,
			Description:  r.DescribeFrom(next),
		})
		at = next
	}

	return &PathQueryResult{Steps: steps, Found: true}, nil
}

// Relatives returns every edge incident to the person together with its
// perspective-aware description.
func (s *TraversalService) Relatives(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) ([]PathStep, error) {
	g, err := s.snapshot(ctx, treeID, personID)
	if err != nil {
		return nil, err
	}

	edges := g.EdgesOf(personID)
	steps := make([]PathStep, 0, len(edges))
	self, _ := g.Person(personID)
	for _, r := range edges {
		otherID, _ := r.Other(personID)
		other, _ := g.Person(otherID)
		steps = append(steps, PathStep{
			Relationship: r,
			From:         self,
			To:           other,
			Description:  r.DescribeFrom(personID),
		})
	}
	return steps, nil
}

// Partners returns the people linked by partner edges
func (s *TraversalService) Partners(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) ([]PathStep, error) {
	return s.categoryNeighbors(ctx, treeID, personID, entities.CategoryPartner)
}

// FamilyLine returns the person's parents and children with perspective-aware
// descriptions.
func (s *TraversalService) FamilyLine(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) ([]PathStep, error) {
	return s.categoryNeighbors(ctx, treeID, personID, entities.CategoryFamilyLine)
}

func (s *TraversalService) categoryNeighbors(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
	category entities.Category,
) ([]PathStep, error) {
	g, err := s.snapshot(ctx, treeID, personID)
	if err != nil {
		return nil, err
	}

	edges := g.EdgesOfCategory(personID, category)
	self, _ := g.Person(personID)
	steps := make([]PathStep, 0, len(edges))
	for _, r := range edges {
		otherID, _ := r.Other(personID)
		other, _ := g.Person(otherID)
		steps = append(steps, PathStep{
			Relationship: r,
			From:         self,
			To:           other,
			Description:  r.DescribeFrom(personID),
		})
	}
	return steps, nil
}

func (s *TraversalService) snapshot(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) (*aggregates.TreeGraph, error) {
	s.locks.RLock(treeID)
	defer s.locks.RUnlock(treeID)

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if !g.HasPerson(personID) {
		return nil, pkgerrors.NewNotFoundError("person")
	}
	return g, nil
}
