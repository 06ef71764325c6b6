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

// RelationshipValidator enforces the graph-level rules a candidate edge must
// satisfy before it is written. Schema-level checks (category, subtype,
// generation difference shape) already ran at entity construction; the
// validator re-checks them so that a validate-only call over a raw candidate
// gives the same verdict as a create.
//
// Check order is fixed and the first failure wins:
//  1. both endpoints exist
//  2. both endpoints belong to the same tree as the edge
//  3. no self-relationship
//  4. category, subtype, generation difference shape
//  5. no duplicate edge on the unordered pair and category
//  6. family_line edge introduces no lineage cycle
//  7. partner exclusivity, when configured
type RelationshipValidator struct {
	cfg    config.DomainConfig
	logger *zap.Logger
}

// NewRelationshipValidator creates a new relationship validator
func NewRelationshipValidator(cfg config.DomainConfig, logger *zap.Logger) *RelationshipValidator {
	return &RelationshipValidator{cfg: cfg, logger: logger}
}

// Candidate is a relationship proposal being validated. Existing is non-zero
// when the proposal updates an edge already in the graph, so the duplicate
// check can skip the edge itself.
type Candidate struct {
	Relationship *entities.Relationship
	IsUpdate     bool
}

// Validate runs the full check sequence against the given graph snapshot.
// Returns nil when the edge is admissible.
func (v *RelationshipValidator) Validate(ctx context.Context, g *aggregates.TreeGraph, c Candidate) error {
	r := c.Relationship

	if !g.HasPerson(r.FromPersonID()) || !g.HasPerson(r.ToPersonID()) {
		return pkgerrors.NewNotFoundError("person")
	}

	from, _ := g.Person(r.FromPersonID())
	to, _ := g.Person(r.ToPersonID())
	if !from.TreeID().Equals(r.TreeID()) || !to.TreeID().Equals(r.TreeID()) {
		return pkgerrors.NewCrossTreeError()
	}

	if r.FromPersonID().Equals(r.ToPersonID()) {
		return pkgerrors.NewValidationError("a person cannot have a relationship with themselves")
	}

	if !entities.IsValidCategory(r.Category()) {
		return pkgerrors.NewInvalidCategoryError(string(r.Category()))
	}
	if !entities.IsValidSubtype(r.Category(), r.Subtype()) {
		return pkgerrors.NewInvalidSubtypeError(string(r.Category()), r.Subtype())
	}
	if r.Category() == entities.CategoryFamilyLine {
		d := r.GenerationDifference()
		if d == nil || !entities.IsValidGenerationDifference(*d) {
			return pkgerrors.NewMissingGenerationDifferenceError()
		}
	} else if v.cfg.StrictGenerationDifference && r.GenerationDifference() != nil {
		return pkgerrors.NewValidationError("generation difference is only valid for family_line relationships")
	}

	if err := v.checkDuplicate(g, c); err != nil {
		return err
	}

	if r.Category() == entities.CategoryFamilyLine {
		if err := v.checkCycle(ctx, g, r); err != nil {
			return err
		}
	}

	if v.cfg.EnforcePartnerExclusivity && r.Category() == entities.CategoryPartner {
		if err := v.checkPartnerExclusivity(g, r); err != nil {
			return err
		}
	}

	return nil
}

func (v *RelationshipValidator) checkDuplicate(g *aggregates.TreeGraph, c Candidate) error {
	r := c.Relationship
	for _, existing := range g.EdgesOf(r.FromPersonID()) {
		if c.IsUpdate && existing.ID().Equals(r.ID()) {
			continue
		}
		if existing.Category() == r.Category() && existing.ConnectsPair(r.FromPersonID(), r.ToPersonID()) {
			return pkgerrors.NewDuplicateRelationshipError(string(r.Category()))
		}
	}
	return nil
}

// checkCycle rejects a family_line edge whose child endpoint is already an
// ancestor of the parent endpoint. The walk is bounded by MaxTraversalDepth;
// an inconclusive walk (bound hit with frontier open) is reported as a
// timeout rather than quietly admitted, since admitting it could corrupt
// the lineage partial order.
func (v *RelationshipValidator) checkCycle(ctx context.Context, g *aggregates.TreeGraph, r *entities.Relationship) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.NewValidationTimeoutError("cycle check")
	}

	parent, ok := r.ParentID()
	if !ok {
		return pkgerrors.NewMissingGenerationDifferenceError()
	}
	child, _ := r.ChildID()

	isAncestor, conclusive := g.IsAncestorOf(child, parent, v.cfg.MaxTraversalDepth)
	if isAncestor || parent.Equals(child) {
		return pkgerrors.NewCyclicLineageError()
	}
	if !conclusive {
		v.logger.Warn("cycle check hit traversal depth bound",
			zap.String("treeID", r.TreeID().String()),
			zap.Int("maxDepth", v.cfg.MaxTraversalDepth),
		)
		return pkgerrors.NewValidationTimeoutError("cycle check")
	}
	return nil
}

func (v *RelationshipValidator) checkPartnerExclusivity(g *aggregates.TreeGraph, r *entities.Relationship) error {
	for _, pid := range []valueobjects.PersonID{r.FromPersonID(), r.ToPersonID()} {
		for _, existing := range g.EdgesOfCategory(pid, entities.CategoryPartner) {
			if existing.ID().Equals(r.ID()) {
				continue
			}
			if existing.IsActive() && isActivePartnership(existing) {
				return pkgerrors.NewConflictError("person already has an active partnership")
			}
		}
	}
	return nil
}

func isActivePartnership(r *entities.Relationship) bool {
	switch r.Subtype() {
	case "divorced", "separated", "widowed":
		return false
	}
	return r.EndDate() == nil
}
