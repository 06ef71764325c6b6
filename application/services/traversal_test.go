package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineage-backend/domain/config"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

func TestTraversal_AncestorsAndDescendants(t *testing.T) {
	env := newTestEnv(t)
	grandma := env.addPerson(t, "Grandma")
	mom := env.addPerson(t, "Mom")
	kid := env.addPerson(t, "Kid")
	env.addParentOf(t, grandma, mom)
	env.addParentOf(t, mom, kid)
	ctx := context.Background()

	ancestors, err := env.traversal.Ancestors(ctx, env.tree.ID(), kid.ID(), -1)
	require.NoError(t, err)
	got := personIDs(ancestors.People)
	assert.Len(t, got, 2)
	assert.True(t, got[mom.ID().String()])
	assert.True(t, got[grandma.ID().String()])
	assert.False(t, ancestors.Truncated)

	descendants, err := env.traversal.Descendants(ctx, env.tree.ID(), grandma.ID(), -1)
	require.NoError(t, err)
	assert.Len(t, descendants.People, 2)

	none, err := env.traversal.Ancestors(ctx, env.tree.ID(), kid.ID(), 0)
	require.NoError(t, err)
	assert.Empty(t, none.People)
}

func TestTraversal_AncestorsClampedToDepthCap(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.MaxTraversalDepth = 2
	env := newTestEnvWithConfig(t, cfg)

	chain := make([]*entities.Person, 5)
	for i := range chain {
		chain[i] = env.addPerson(t, "P")
	}
	for i := 0; i < len(chain)-1; i++ {
		env.addParentOf(t, chain[i], chain[i+1])
	}

	// requesting more than the cap, or unbounded, clamps to the cap
	result, err := env.traversal.Ancestors(context.Background(), env.tree.ID(), chain[4].ID(), 100)
	require.NoError(t, err)
	assert.Len(t, result.People, 2)
	assert.True(t, result.Truncated)
}

func TestTraversal_UnknownPersonIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.addPerson(t, "Alice")

	_, err := env.traversal.Ancestors(context.Background(), env.tree.ID(), valueobjects.NewPersonID(), -1)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTraversal_UnknownTreeIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addPerson(t, "Alice")

	_, err := env.traversal.Ancestors(context.Background(), valueobjects.NewTreeID(), alice.ID(), -1)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestTraversal_Siblings(t *testing.T) {
	env := newTestEnv(t)
	mom := env.addPerson(t, "Mom")
	a := env.addPerson(t, "A")
	b := env.addPerson(t, "B")
	step := env.addPerson(t, "Step")
	env.addParentOf(t, mom, a)
	env.addParentOf(t, mom, b)
	env.addLink(t, a, step, entities.CategorySibling, "step")

	siblings, err := env.traversal.Siblings(context.Background(), env.tree.ID(), a.ID())
	require.NoError(t, err)
	got := personIDs(siblings)
	assert.Len(t, got, 2)
	assert.True(t, got[b.ID().String()])
	assert.True(t, got[step.ID().String()])
}

func TestTraversal_RelationshipPath(t *testing.T) {
	env := newTestEnv(t)
	grandma := env.addPerson(t, "Grandma")
	mom := env.addPerson(t, "Mom")
	kid := env.addPerson(t, "Kid")
	env.addParentOf(t, grandma, mom)
	env.addParentOf(t, mom, kid)
	ctx := context.Background()

	res, err := env.traversal.RelationshipPath(ctx, env.tree.ID(), kid.ID(), grandma.ID(), 0)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Len(t, res.Steps, 2)

	// each hop is described from the perspective of the person stepped onto
	assert.True(t, res.Steps[0].From.ID().Equals(kid.ID()))
	assert.True(t, res.Steps[0].To.ID().Equals(mom.ID()))
	assert.Equal(t, "Parent (biological)", res.Steps[0].Description)
	assert.True(t, res.Steps[1].To.ID().Equals(grandma.ID()))
	assert.Equal(t, "Parent (biological)", res.Steps[1].Description)

	// walking the other way flips every description
	back, err := env.traversal.RelationshipPath(ctx, env.tree.ID(), grandma.ID(), kid.ID(), 0)
	require.NoError(t, err)
	require.True(t, back.Found)
	require.Len(t, back.Steps, 2)
	assert.Equal(t, "Child (biological)", back.Steps[0].Description)
}

func TestTraversal_PathCrossesCategories(t *testing.T) {
	env := newTestEnv(t)
	kid := env.addPerson(t, "Kid")
	mom := env.addPerson(t, "Mom")
	stepdad := env.addPerson(t, "Stepdad")
	env.addParentOf(t, mom, kid)
	env.addLink(t, mom, stepdad, entities.CategoryPartner, "married")

	res, err := env.traversal.RelationshipPath(context.Background(), env.tree.ID(), kid.ID(), stepdad.ID(), 0)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, entities.CategoryFamilyLine, res.Steps[0].Relationship.Category())
	assert.Equal(t, entities.CategoryPartner, res.Steps[1].Relationship.Category())
}

func TestTraversal_PathTruncatedAtDepthCap(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.MaxPathDepth = 1
	env := newTestEnvWithConfig(t, cfg)

	a := env.addPerson(t, "A")
	b := env.addPerson(t, "B")
	c := env.addPerson(t, "C")
	env.addParentOf(t, a, b)
	env.addParentOf(t, b, c)

	res, err := env.traversal.RelationshipPath(context.Background(), env.tree.ID(), a.ID(), c.ID(), 0)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.True(t, res.Truncated)
}

func TestTraversal_PathNoRouteIsFinal(t *testing.T) {
	env := newTestEnv(t)
	a := env.addPerson(t, "A")
	b := env.addPerson(t, "B")

	res, err := env.traversal.RelationshipPath(context.Background(), env.tree.ID(), a.ID(), b.ID(), 0)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.False(t, res.Truncated)
}

func TestTraversal_RelativesAndCategoryViews(t *testing.T) {
	env := newTestEnv(t)
	mom := env.addPerson(t, "Mom")
	kid := env.addPerson(t, "Kid")
	partner := env.addPerson(t, "Partner")
	env.addParentOf(t, mom, kid)
	env.addLink(t, mom, partner, entities.CategoryPartner, "married")
	ctx := context.Background()

	relatives, err := env.traversal.Relatives(ctx, env.tree.ID(), mom.ID())
	require.NoError(t, err)
	assert.Len(t, relatives, 2)
	for _, step := range relatives {
		assert.True(t, step.From.ID().Equals(mom.ID()))
	}

	partners, err := env.traversal.Partners(ctx, env.tree.ID(), mom.ID())
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.True(t, partners[0].To.ID().Equals(partner.ID()))
	assert.Equal(t, "Partner (married)", partners[0].Description)

	line, err := env.traversal.FamilyLine(ctx, env.tree.ID(), mom.ID())
	require.NoError(t, err)
	require.Len(t, line, 1)
	assert.True(t, line[0].To.ID().Equals(kid.ID()))
	assert.Equal(t, "Parent (biological)", line[0].Description)
}
