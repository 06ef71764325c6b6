package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lineage-backend/domain/config"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

func newValidator(cfg config.DomainConfig) *RelationshipValidator {
	return NewRelationshipValidator(cfg, zap.NewNop())
}

func candidateRel(t *testing.T, treeID valueobjects.TreeID, from, to valueobjects.PersonID, category entities.Category, genDiff *int) *entities.Relationship {
	t.Helper()
	r, err := entities.NewRelationship(treeID, from, to, category, "", genDiff, nil, nil, "")
	require.NoError(t, err)
	return r
}

func TestValidator_RejectsUnknownEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPerson(t, "Alice")
	g := env.snapshot(t)

	v := newValidator(env.cfg)
	r := candidateRel(t, env.tree.ID(), alice.ID(), valueobjects.NewPersonID(), entities.CategoryPartner, nil)

	err := v.Validate(context.Background(), g, Candidate{Relationship: r})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestValidator_RejectsCrossTreeEdge(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPerson(t, "Alice")
	bob := env.addPerson(t, "Bob")
	g := env.snapshot(t)

	v := newValidator(env.cfg)
	// the candidate claims a different tree than its endpoints
	otherTree := valueobjects.NewTreeID()
	r := candidateRel(t, otherTree, alice.ID(), bob.ID(), entities.CategoryPartner, nil)

	err := v.Validate(context.Background(), g, Candidate{Relationship: r})
	assert.True(t, pkgerrors.IsCrossTree(err))
}

func TestValidator_RejectsSelfRelationship(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPerson(t, "Alice")
	g := env.snapshot(t)

	// the entity constructor blocks self edges, so forge one the way a
	// corrupted store record would look
	now := time.Now()
	r, err := entities.ReconstructRelationship(
		valueobjects.NewRelationshipID(), env.tree.ID(),
		alice.ID(), alice.ID(),
		entities.CategoryPartner, "", nil, nil, nil, true, "", now, now,
	)
	require.NoError(t, err)

	v := newValidator(env.cfg)
	err = v.Validate(context.Background(), g, Candidate{Relationship: r})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestValidator_RejectsDuplicateEitherDirection(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPerson(t, "Alice")
	bob := env.addPerson(t, "Bob")
	env.addLink(t, alice, bob, entities.CategoryPartner, "married")
	g := env.snapshot(t)

	v := newValidator(env.cfg)

	same := candidateRel(t, env.tree.ID(), alice.ID(), bob.ID(), entities.CategoryPartner, nil)
	err := v.Validate(context.Background(), g, Candidate{Relationship: same})
	assert.True(t, pkgerrors.IsDuplicateRelationship(err))

	reversed := candidateRel(t, env.tree.ID(), bob.ID(), alice.ID(), entities.CategoryPartner, nil)
	err = v.Validate(context.Background(), g, Candidate{Relationship: reversed})
	assert.True(t, pkgerrors.IsDuplicateRelationship(err))

	// a different category between the same pair is fine
	diff := entities.GenerationParent
	other := candidateRel(t, env.tree.ID(), alice.ID(), bob.ID(), entities.CategoryFamilyLine, &diff)
	assert.NoError(t, v.Validate(context.Background(), g, Candidate{Relationship: other}))
}

func TestValidator_UpdateSkipsItselfInDuplicateCheck(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPerson(t, "Alice")
	bob := env.addPerson(t, "Bob")
	existing := env.addLink(t, alice, bob, entities.CategoryPartner, "married")
	g := env.snapshot(t)

	v := newValidator(env.cfg)
	err := v.Validate(context.Background(), g, Candidate{Relationship: existing, IsUpdate: true})
	assert.NoError(t, err)
}

func TestValidator_RejectsLineageCycle(t *testing.T) {
	env := newTestEnv(t)
	grandma := env.addPerson(t, "Grandma")
	mom := env.addPerson(t, "Mom")
	kid := env.addPerson(t, "Kid")
	env.addParentOf(t, grandma, mom)
	env.addParentOf(t, mom, kid)
	g := env.snapshot(t)

	v := newValidator(env.cfg)

	// kid as parent of grandma would make grandma her own ancestor
	diff := entities.GenerationParent
	cyclic := candidateRel(t, env.tree.ID(), kid.ID(), grandma.ID(), entities.CategoryFamilyLine, &diff)
	err := v.Validate(context.Background(), g, Candidate{Relationship: cyclic})
	assert.True(t, pkgerrors.IsCyclicLineage(err))

	// a second parent for kid is fine
	newParent := env.addPerson(t, "Dad")
	g = env.snapshot(t)
	ok := candidateRel(t, env.tree.ID(), newParent.ID(), kid.ID(), entities.CategoryFamilyLine, &diff)
	assert.NoError(t, v.Validate(context.Background(), g, Candidate{Relationship: ok}))
}

func TestValidator_InconclusiveCycleCheckFailsClosed(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.MaxTraversalDepth = 2
	env := newTestEnvWithConfig(t, cfg)

	// chain longer than the traversal bound
	chain := []*entities.Person{
		env.addPerson(t, "P1"),
		env.addPerson(t, "P2"),
		env.addPerson(t, "P3"),
		env.addPerson(t, "P4"),
		env.addPerson(t, "P5"),
	}
	for i := 0; i < len(chain)-1; i++ {
		env.addParentOf(t, chain[i], chain[i+1])
	}
	g := env.snapshot(t)

	v := newValidator(cfg)
	diff := entities.GenerationParent
	r := candidateRel(t, env.tree.ID(), chain[4].ID(), chain[0].ID(), entities.CategoryFamilyLine, &diff)

	err := v.Validate(context.Background(), g, Candidate{Relationship: r})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidationTimeout))
}

func TestValidator_PartnerExclusivity(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.EnforcePartnerExclusivity = true
	env := newTestEnvWithConfig(t, cfg)

	alice := env.addPerson(t, "Alice")
	bob := env.addPerson(t, "Bob")
	carol := env.addPerson(t, "Carol")
	env.addLink(t, alice, bob, entities.CategoryPartner, "married")
	g := env.snapshot(t)

	v := newValidator(cfg)
	r := candidateRel(t, env.tree.ID(), alice.ID(), carol.ID(), entities.CategoryPartner, nil)
	err := v.Validate(context.Background(), g, Candidate{Relationship: r})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestValidator_PartnerExclusivityIgnoresEndedPartnerships(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.EnforcePartnerExclusivity = true
	env := newTestEnvWithConfig(t, cfg)

	alice := env.addPerson(t, "Alice")
	bob := env.addPerson(t, "Bob")
	carol := env.addPerson(t, "Carol")
	env.addLink(t, alice, bob, entities.CategoryPartner, "divorced")
	g := env.snapshot(t)

	v := newValidator(cfg)
	r := candidateRel(t, env.tree.ID(), alice.ID(), carol.ID(), entities.CategoryPartner, nil)
	assert.NoError(t, v.Validate(context.Background(), g, Candidate{Relationship: r}))
}

func TestValidator_StrictGenerationDifference(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.StrictGenerationDifference = true
	env := newTestEnvWithConfig(t, cfg)

	alice := env.addPerson(t, "Alice")
	bob := env.addPerson(t, "Bob")
	g := env.snapshot(t)

	// the entity constructor drops the stray value, so forge a record that
	// kept one to exercise the strict check
	diff := entities.GenerationParent
	now := time.Now()
	r, err := entities.ReconstructRelationship(
		valueobjects.NewRelationshipID(), env.tree.ID(),
		alice.ID(), bob.ID(),
		entities.CategorySibling, "", &diff, nil, nil, true, "", now, now,
	)
	require.NoError(t, err)

	v := newValidator(cfg)
	err = v.Validate(context.Background(), g, Candidate{Relationship: r})
	assert.True(t, pkgerrors.IsValidation(err))
}
