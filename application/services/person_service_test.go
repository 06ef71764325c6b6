package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineage-backend/domain/config"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

func TestPersonService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	birth := time.Date(1950, 3, 14, 0, 0, 0, 0, time.UTC)
	person, err := env.people.CreatePerson(ctx, env.tree.ID(), CreatePersonInput{
		FirstName:  "Margaret",
		LastName:   "Hale",
		BirthDate:  &birth,
		BirthPlace: "Milton",
	})
	require.NoError(t, err)

	got, err := env.people.GetPerson(ctx, env.tree.ID(), person.ID())
	require.NoError(t, err)
	assert.Equal(t, "Margaret Hale", got.Name().Full())
	assert.Equal(t, "Milton", got.BirthPlace())

	// not visible through another tree
	_, err = env.people.GetPerson(ctx, valueobjects.NewTreeID(), person.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPersonService_CreateRequiresTree(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.people.CreatePerson(context.Background(), valueobjects.NewTreeID(), CreatePersonInput{
		FirstName: "Nobody",
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPersonService_PeopleLimit(t *testing.T) {
	cfg := *config.DefaultDomainConfig()
	cfg.MaxPeoplePerTree = 1
	env := newTestEnvWithConfig(t, cfg)
	env.addPerson(t, "First")

	_, err := env.people.CreatePerson(context.Background(), env.tree.ID(), CreatePersonInput{
		FirstName: "Second",
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestPersonService_ListPeopleOrderingAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, n := range []struct{ first, last string }{
		{"Zoe", "Adams"}, {"Ann", "Baker"}, {"Ben", "Baker"}, {"Cal", "Cole"},
	} {
		_, err := env.people.CreatePerson(ctx, env.tree.ID(), CreatePersonInput{
			FirstName: n.first, LastName: n.last,
		})
		require.NoError(t, err)
	}

	page, err := env.people.ListPeople(ctx, env.tree.ID(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.People, 3)
	assert.Equal(t, "Zoe Adams", page.People[0].Name().Full())
	assert.Equal(t, "Ann Baker", page.People[1].Name().Full())
	assert.Equal(t, "Ben Baker", page.People[2].Name().Full())

	rest, err := env.people.ListPeople(ctx, env.tree.ID(), 3, 3)
	require.NoError(t, err)
	require.Len(t, rest.People, 1)
	assert.Equal(t, "Cal Cole", rest.People[0].Name().Full())

	beyond, err := env.people.ListPeople(ctx, env.tree.ID(), 100, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond.People)
	assert.Equal(t, 4, beyond.Total)
}

func TestPersonService_SearchPeople(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.people.CreatePerson(ctx, env.tree.ID(), CreatePersonInput{
		FirstName: "Margaret", LastName: "Hale", MaidenName: "Beresford",
	})
	require.NoError(t, err)
	_, err = env.people.CreatePerson(ctx, env.tree.ID(), CreatePersonInput{
		FirstName: "John", LastName: "Thornton",
	})
	require.NoError(t, err)

	matched, err := env.people.SearchPeople(ctx, env.tree.ID(), "hale")
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = env.people.SearchPeople(ctx, env.tree.ID(), "beresford")
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = env.people.SearchPeople(ctx, env.tree.ID(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestPersonService_UpdatePartial(t *testing.T) {
	env := newTestEnv(t)
	person := env.addPerson(t, "Alice")
	ctx := context.Background()

	last := "Updated"
	bio := "wrote letters"
	got, err := env.people.UpdatePerson(ctx, env.tree.ID(), person.ID(), UpdatePersonInput{
		LastName: &last,
		Bio:      &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name().First())
	assert.Equal(t, "Updated", got.Name().Last())
	assert.Equal(t, "wrote letters", got.Bio())
}

func TestPersonService_DeleteCascadesRelationships(t *testing.T) {
	env := newTestEnv(t)
	mom := env.addPerson(t, "Mom")
	kid := env.addPerson(t, "Kid")
	partner := env.addPerson(t, "Partner")
	env.addParentOf(t, mom, kid)
	env.addLink(t, mom, partner, entities.CategoryPartner, "married")
	ctx := context.Background()

	require.NoError(t, env.people.DeletePerson(ctx, env.tree.ID(), mom.ID()))

	_, err := env.people.GetPerson(ctx, env.tree.ID(), mom.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	// no relationship referencing the deleted person survives anywhere
	rels, err := env.relationships.ListByTree(ctx, env.tree.ID())
	require.NoError(t, err)
	assert.Empty(t, rels)

	kidRels, err := env.relationships.ListByPerson(ctx, env.tree.ID(), kid.ID())
	require.NoError(t, err)
	assert.Empty(t, kidRels)

	// and the graph index rebuilt from the store agrees
	g := env.snapshot(t)
	assert.False(t, g.HasPerson(mom.ID()))
	assert.Empty(t, g.ParentsOf(kid.ID()))
}

func TestPersonService_AgeAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	birth := time.Date(1950, 6, 15, 0, 0, 0, 0, time.UTC)
	death := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	person, err := env.people.CreatePerson(ctx, env.tree.ID(), CreatePersonInput{
		FirstName: "Edith",
		BirthDate: &birth,
		DeathDate: &death,
	})
	require.NoError(t, err)

	age, known, err := env.people.AgeAt(ctx, env.tree.ID(), person.ID(), time.Date(1990, 6, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 39, age)

	// age is capped at death
	age, known, err = env.people.AgeAt(ctx, env.tree.ID(), person.ID(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 49, age)

	unknown := env.addPerson(t, "NoDates")
	_, known, err = env.people.AgeAt(ctx, env.tree.ID(), unknown.ID(), time.Now())
	require.NoError(t, err)
	assert.False(t, known)
}
