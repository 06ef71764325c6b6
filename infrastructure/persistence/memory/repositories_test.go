package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

type repos struct {
	trees  *TreeRepository
	people *PersonRepository
	rels   *RelationshipRepository
}

func newRepos() repos {
	store := NewStore()
	return repos{
		trees:  NewTreeRepository(store),
		people: NewPersonRepository(store),
		rels:   NewRelationshipRepository(store),
	}
}

func seedTree(t *testing.T, r repos) *entities.FamilyTree {
	t.Helper()
	tree, err := entities.NewFamilyTree("user-1", "Test Tree", "")
	require.NoError(t, err)
	require.NoError(t, r.trees.Save(context.Background(), tree))
	return tree
}

func seedPerson(t *testing.T, r repos, treeID valueobjects.TreeID, first string) *entities.Person {
	t.Helper()
	name, err := valueobjects.NewPersonName(first, "Test", "")
	require.NoError(t, err)
	p, err := entities.NewPerson(treeID, name, valueobjects.LifeDates{}, "", "", "")
	require.NoError(t, err)
	require.NoError(t, r.people.Save(context.Background(), p))
	return p
}

func seedPartnership(t *testing.T, r repos, treeID valueobjects.TreeID, a, b *entities.Person) *entities.Relationship {
	t.Helper()
	rel, err := entities.NewRelationship(treeID, a.ID(), b.ID(), entities.CategoryPartner, "married", nil, nil, nil, "")
	require.NoError(t, err)
	require.NoError(t, r.rels.Save(context.Background(), rel))
	return rel
}

func TestTreeRepository_SaveGetDelete(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	tree := seedTree(t, r)

	got, err := r.trees.GetByID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Equal(t, tree.Name(), got.Name())

	_, err = r.trees.GetByID(ctx, valueobjects.NewTreeID())
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, r.trees.Delete(ctx, tree.ID()))
	_, err = r.trees.GetByID(ctx, tree.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(r.trees.Delete(ctx, tree.ID())))
}

func TestTreeRepository_GetByOwnerID(t *testing.T) {
	r := newRepos()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tree, err := entities.NewFamilyTree("alice", "Tree", "")
		require.NoError(t, err)
		require.NoError(t, r.trees.Save(ctx, tree))
	}
	other, err := entities.NewFamilyTree("bob", "Other", "")
	require.NoError(t, err)
	require.NoError(t, r.trees.Save(ctx, other))

	trees, err := r.trees.GetByOwnerID(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, trees, 3)

	// stable ordering across calls
	again, err := r.trees.GetByOwnerID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, trees, again)
}

func TestTreeRepository_DeleteCascades(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	tree := seedTree(t, r)
	a := seedPerson(t, r, tree.ID(), "A")
	b := seedPerson(t, r, tree.ID(), "B")
	seedPartnership(t, r, tree.ID(), a, b)

	// a second tree must be untouched by the cascade
	otherTree := seedTree(t, r)
	c := seedPerson(t, r, otherTree.ID(), "C")

	require.NoError(t, r.trees.Delete(ctx, tree.ID()))

	_, err := r.people.GetByID(ctx, a.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	rels, err := r.rels.GetByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Empty(t, rels)

	_, err = r.people.GetByID(ctx, c.ID())
	assert.NoError(t, err)
}

func TestPersonRepository_DeleteCascadesRelationships(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	tree := seedTree(t, r)
	a := seedPerson(t, r, tree.ID(), "A")
	b := seedPerson(t, r, tree.ID(), "B")
	seedPartnership(t, r, tree.ID(), a, b)

	require.NoError(t, r.people.Delete(ctx, a.ID()))

	_, err := r.people.GetByID(ctx, a.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	// the edge is gone from both endpoints' views
	rels, err := r.rels.GetByPersonID(ctx, b.ID())
	require.NoError(t, err)
	assert.Empty(t, rels)

	count, err := r.rels.CountByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPersonRepository_CountAndListByTree(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	tree := seedTree(t, r)
	seedPerson(t, r, tree.ID(), "A")
	seedPerson(t, r, tree.ID(), "B")

	count, err := r.people.CountByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	people, err := r.people.GetByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Len(t, people, 2)

	people, err = r.people.GetByTreeID(ctx, valueobjects.NewTreeID())
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestRelationshipRepository_DeleteByPersonID(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	tree := seedTree(t, r)
	a := seedPerson(t, r, tree.ID(), "A")
	b := seedPerson(t, r, tree.ID(), "B")
	c := seedPerson(t, r, tree.ID(), "C")
	seedPartnership(t, r, tree.ID(), a, b)
	keep := seedPartnership(t, r, tree.ID(), b, c)

	require.NoError(t, r.rels.DeleteByPersonID(ctx, a.ID()))

	rels, err := r.rels.GetByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.True(t, rels[0].ID().Equals(keep.ID()))
}

func TestRelationshipRepository_StableOrdering(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	tree := seedTree(t, r)
	people := make([]*entities.Person, 5)
	for i := range people {
		people[i] = seedPerson(t, r, tree.ID(), "P")
	}
	for i := 1; i < len(people); i++ {
		seedPartnership(t, r, tree.ID(), people[0], people[i])
	}

	first, err := r.rels.GetByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	second, err := r.rels.GetByTreeID(ctx, tree.ID())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	byPerson, err := r.rels.GetByPersonID(ctx, people[0].ID())
	require.NoError(t, err)
	assert.Len(t, byPerson, 4)
}
