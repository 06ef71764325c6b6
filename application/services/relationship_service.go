package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lineage-backend/application/ports"
	"lineage-backend/domain/config"
	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// RelationshipService orchestrates relationship lifecycle operations.
// Every write takes the tree's write lock, rebuilds the graph snapshot and
// runs the validator before touching the store, so concurrent writers on one
// tree cannot admit edges that are only individually valid.
type RelationshipService struct {
	treeRepo   ports.TreeRepository
	personRepo ports.PersonRepository
	relRepo    ports.RelationshipRepository
	loader     *GraphLoader
	validator  *RelationshipValidator
	locks      *TreeLockManager
	cfg        config.DomainConfig
	logger     *zap.Logger
}

// NewRelationshipService creates a new relationship service
func NewRelationshipService(
	treeRepo ports.TreeRepository,
	personRepo ports.PersonRepository,
	relRepo ports.RelationshipRepository,
	loader *GraphLoader,
	validator *RelationshipValidator,
	locks *TreeLockManager,
	cfg config.DomainConfig,
	logger *zap.Logger,
) *RelationshipService {
	return &RelationshipService{
		treeRepo:   treeRepo,
		personRepo: personRepo,
		relRepo:    relRepo,
		loader:     loader,
		validator:  validator,
		locks:      locks,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateRelationshipInput carries the fields for creating a relationship
type CreateRelationshipInput struct {
	FromPersonID         valueobjects.PersonID
	ToPersonID           valueobjects.PersonID
	Category             entities.Category
	Subtype              string
	GenerationDifference *int
	StartDate            *time.Time
	EndDate              *time.Time
	Notes                string
}

// UpdateRelationshipInput carries a partial relationship update
type UpdateRelationshipInput struct {
	Subtype              *string
	GenerationDifference *int
	StartDate            *time.Time
	EndDate              *time.Time
	IsActive             *bool
	Notes                *string
}

// CreateRelationship validates and persists a new relationship
func (s *RelationshipService) CreateRelationship(
	ctx context.Context,
	treeID valueobjects.TreeID,
	input CreateRelationshipInput,
) (*entities.Relationship, error) {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	count, err := s.relRepo.CountByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to count relationships")
	}
	if count >= s.cfg.MaxRelationshipsPerTree {
		return nil, pkgerrors.NewValidationError("family tree has reached its maximum number of relationships")
	}

	rel, err := entities.NewRelationship(
		treeID,
		input.FromPersonID, input.ToPersonID,
		input.Category, input.Subtype,
		input.GenerationDifference,
		input.StartDate, input.EndDate,
		input.Notes,
	)
	if err != nil {
		return nil, err
	}

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, g, Candidate{Relationship: rel}); err != nil {
		return nil, err
	}

	if err := s.relRepo.Save(ctx, rel); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save relationship")
	}

	s.logger.Info("relationship created",
		zap.String("relationshipID", rel.ID().String()),
		zap.String("treeID", treeID.String()),
		zap.String("category", string(rel.Category())),
	)
	return rel, nil
}

// ValidateCandidate runs the full validation sequence without persisting.
// The verdict is identical to what a create with the same fields would give.
func (s *RelationshipService) ValidateCandidate(
	ctx context.Context,
	treeID valueobjects.TreeID,
	input CreateRelationshipInput,
) error {
	s.locks.RLock(treeID)
	defer s.locks.RUnlock(treeID)

	rel, err := entities.NewRelationship(
		treeID,
		input.FromPersonID, input.ToPersonID,
		input.Category, input.Subtype,
		input.GenerationDifference,
		input.StartDate, input.EndDate,
		input.Notes,
	)
	if err != nil {
		return err
	}

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return err
	}
	return s.validator.Validate(ctx, g, Candidate{Relationship: rel})
}

// GetRelationship retrieves a relationship, verifying tree membership
func (s *RelationshipService) GetRelationship(
	ctx context.Context,
	treeID valueobjects.TreeID,
	relID valueobjects.RelationshipID,
) (*entities.Relationship, error) {
	rel, err := s.relRepo.GetByID(ctx, relID)
	if err != nil {
		return nil, err
	}
	if !rel.TreeID().Equals(treeID) {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}
	return rel, nil
}

// ListByTree returns all relationships in a tree
func (s *RelationshipService) ListByTree(
	ctx context.Context,
	treeID valueobjects.TreeID,
) ([]*entities.Relationship, error) {
	if _, err := s.treeRepo.GetByID(ctx, treeID); err != nil {
		return nil, err
	}
	rels, err := s.relRepo.GetByTreeID(ctx, treeID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list relationships")
	}
	return rels, nil
}

// ListByPerson returns all relationships involving a person
func (s *RelationshipService) ListByPerson(
	ctx context.Context,
	treeID valueobjects.TreeID,
	personID valueobjects.PersonID,
) ([]*entities.Relationship, error) {
	person, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		return nil, err
	}
	if !person.TreeID().Equals(treeID) {
		return nil, pkgerrors.NewNotFoundError("person")
	}
	rels, err := s.relRepo.GetByPersonID(ctx, personID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list relationships")
	}
	return rels, nil
}

// UpdateRelationship merges the update into the stored record and re-runs the
// full validation over the merged result before saving.
func (s *RelationshipService) UpdateRelationship(
	ctx context.Context,
	treeID valueobjects.TreeID,
	relID valueobjects.RelationshipID,
	input UpdateRelationshipInput,
) (*entities.Relationship, error) {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	rel, err := s.GetRelationship(ctx, treeID, relID)
	if err != nil {
		return nil, err
	}

	if err := rel.Update(
		input.Subtype,
		input.GenerationDifference,
		input.StartDate, input.EndDate,
		input.IsActive,
		input.Notes,
	); err != nil {
		return nil, err
	}

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, g, Candidate{Relationship: rel, IsUpdate: true}); err != nil {
		return nil, err
	}

	if err := s.relRepo.Save(ctx, rel); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save relationship")
	}
	return rel, nil
}

// DeleteRelationship removes a relationship
func (s *RelationshipService) DeleteRelationship(
	ctx context.Context,
	treeID valueobjects.TreeID,
	relID valueobjects.RelationshipID,
) error {
	s.locks.Lock(treeID)
	defer s.locks.Unlock(treeID)

	if _, err := s.GetRelationship(ctx, treeID, relID); err != nil {
		return err
	}
	if err := s.relRepo.Delete(ctx, relID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete relationship")
	}

	s.logger.Info("relationship deleted",
		zap.String("relationshipID", relID.String()),
		zap.String("treeID", treeID.String()),
	)
	return nil
}

// CategoryMetadata describes one relationship category for clients
type CategoryMetadata struct {
	Category                     string         `json:"category"`
	Description                  string         `json:"description"`
	RequiresGenerationDifference bool           `json:"requires_generation_difference"`
	Bidirectional                bool           `json:"bidirectional"`
	ValidSubtypes                []string       `json:"valid_subtypes"`
	GenerationValues             map[int]string `json:"generation_values,omitempty"`
}

// Categories returns the closed category rule set in stable order
func (s *RelationshipService) Categories() []CategoryMetadata {
	rules := entities.CategoryRules()
	out := make([]CategoryMetadata, 0, len(rules))
	for _, cat := range entities.AllCategories() {
		rule := rules[cat]
		out = append(out, CategoryMetadata{
			Category:                     string(cat),
			Description:                  rule.Description,
			RequiresGenerationDifference: rule.RequiresGenerationDifference,
			Bidirectional:                rule.Bidirectional,
			ValidSubtypes:                rule.ValidSubtypes,
			GenerationValues:             rule.GenerationValues,
		})
	}
	return out
}

// TreeStatistics summarizes a tree's graph
type TreeStatistics struct {
	TreeID             string         `json:"tree_id"`
	PeopleCount        int            `json:"people_count"`
	RelationshipCount  int            `json:"relationship_count"`
	ByCategory         map[string]int `json:"by_category"`
	BySubtype          map[string]int `json:"by_subtype"`
	ActiveCount        int            `json:"active_count"`
	InactiveCount      int            `json:"inactive_count"`
	GenerationSpan     int            `json:"generation_span"`
	GenerationSpanOpen bool           `json:"generation_span_capped"`
}

// Statistics computes summary counts for one tree. GenerationSpan is the
// longest parentward chain found within the traversal depth cap.
func (s *RelationshipService) Statistics(
	ctx context.Context,
	treeID valueobjects.TreeID,
) (*TreeStatistics, error) {
	s.locks.RLock(treeID)
	defer s.locks.RUnlock(treeID)

	g, err := s.loader.Load(ctx, treeID)
	if err != nil {
		return nil, err
	}

	stats := &TreeStatistics{
		TreeID:            treeID.String(),
		PeopleCount:       g.PersonCount(),
		RelationshipCount: g.RelationshipCount(),
		ByCategory:        make(map[string]int),
		BySubtype:         make(map[string]int),
	}

	for _, r := range g.Relationships() {
		stats.ByCategory[string(r.Category())]++
		if r.Subtype() != "" {
			stats.BySubtype[r.Subtype()]++
		}
		if r.IsActive() {
			stats.ActiveCount++
		} else {
			stats.InactiveCount++
		}
	}

	stats.GenerationSpan, stats.GenerationSpanOpen = s.generationSpan(g)
	return stats, nil
}

// generationSpan walks parentward from every person and reports the deepest
// level reached. The second return is true when any walk hit the depth cap.
func (s *RelationshipService) generationSpan(g *aggregates.TreeGraph) (int, bool) {
	span := 0
	capped := false
	for _, p := range g.People() {
		depth, hitCap := s.lineageDepth(g, p.ID())
		if depth > span {
			span = depth
		}
		capped = capped || hitCap
	}
	return span, capped
}

func (s *RelationshipService) lineageDepth(g *aggregates.TreeGraph, start valueobjects.PersonID) (int, bool) {
	visited := map[valueobjects.PersonID]bool{start: true}
	frontier := []valueobjects.PersonID{start}
	depth := 0

	for d := 0; d < s.cfg.MaxTraversalDepth && len(frontier) > 0; d++ {
		var next []valueobjects.PersonID
		for _, id := range frontier {
			for _, parent := range g.ParentsOf(id) {
				if !visited[parent] {
					visited[parent] = true
					next = append(next, parent)
				}
			}
		}
		if len(next) > 0 {
			depth = d + 1
		}
		frontier = next
	}
	return depth, len(frontier) > 0
}
