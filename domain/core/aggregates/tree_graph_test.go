package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
)

// fixture is a small in-memory family used across the graph tests
type fixture struct {
	treeID valueobjects.TreeID
	people map[string]*entities.Person
	rels   []*entities.Relationship
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		treeID: valueobjects.NewTreeID(),
		people: make(map[string]*entities.Person),
	}
}

func (f *fixture) person(t *testing.T, name string) *entities.Person {
	t.Helper()
	pn, err := valueobjects.NewPersonName(name, "Test", "")
	require.NoError(t, err)
	p, err := entities.NewPerson(f.treeID, pn, valueobjects.LifeDates{}, "", "", "")
	require.NoError(t, err)
	f.people[name] = p
	return p
}

func (f *fixture) parentOf(t *testing.T, parent, child *entities.Person) *entities.Relationship {
	t.Helper()
	diff := entities.GenerationParent
	r, err := entities.NewRelationship(
		f.treeID, parent.ID(), child.ID(),
		entities.CategoryFamilyLine, "biological", &diff, nil, nil, "",
	)
	require.NoError(t, err)
	f.rels = append(f.rels, r)
	return r
}

func (f *fixture) link(t *testing.T, a, b *entities.Person, category entities.Category, subtype string) *entities.Relationship {
	t.Helper()
	r, err := entities.NewRelationship(f.treeID, a.ID(), b.ID(), category, subtype, nil, nil, nil, "")
	require.NoError(t, err)
	f.rels = append(f.rels, r)
	return r
}

func (f *fixture) graph() *TreeGraph {
	people := make([]*entities.Person, 0, len(f.people))
	for _, p := range f.people {
		people = append(people, p)
	}
	return BuildTreeGraph(f.treeID, people, f.rels)
}

func ids(people []*entities.Person) map[string]bool {
	out := make(map[string]bool, len(people))
	for _, p := range people {
		out[p.ID().String()] = true
	}
	return out
}

func TestBuildTreeGraph_IndexesConsistentSubset(t *testing.T) {
	f := newFixture(t)
	alice := f.person(t, "Alice")
	bob := f.person(t, "Bob")
	f.link(t, alice, bob, entities.CategoryPartner, "married")

	// an edge into a person the index never saw must be skipped
	stranger := valueobjects.NewPersonID()
	orphan, err := entities.NewRelationship(f.treeID, alice.ID(), stranger, entities.CategorySibling, "", nil, nil, nil, "")
	require.NoError(t, err)
	f.rels = append(f.rels, orphan)

	g := f.graph()
	assert.Equal(t, 2, g.PersonCount())
	assert.Equal(t, 1, g.RelationshipCount())
	assert.NoError(t, g.Validate())
}

func TestTreeGraph_ParentChildAdjacency(t *testing.T) {
	f := newFixture(t)
	grandma := f.person(t, "Grandma")
	mom := f.person(t, "Mom")
	kid := f.person(t, "Kid")
	f.parentOf(t, grandma, mom)
	f.parentOf(t, mom, kid)

	g := f.graph()

	parents := g.ParentsOf(kid.ID())
	require.Len(t, parents, 1)
	assert.True(t, parents[0].Equals(mom.ID()))

	children := g.ChildrenOf(mom.ID())
	require.Len(t, children, 1)
	assert.True(t, children[0].Equals(kid.ID()))

	assert.Empty(t, g.ParentsOf(grandma.ID()))
	assert.Empty(t, g.ChildrenOf(kid.ID()))
}

func TestTreeGraph_AncestorsWithin(t *testing.T) {
	f := newFixture(t)
	grandma := f.person(t, "Grandma")
	grandpa := f.person(t, "Grandpa")
	mom := f.person(t, "Mom")
	kid := f.person(t, "Kid")
	f.parentOf(t, grandma, mom)
	f.parentOf(t, grandpa, mom)
	f.parentOf(t, mom, kid)

	g := f.graph()

	one := g.AncestorsWithin(kid.ID(), 1)
	assert.Len(t, one.People, 1)
	assert.True(t, one.CapReached)

	all := g.AncestorsWithin(kid.ID(), 5)
	got := ids(all.People)
	assert.Len(t, got, 3)
	assert.True(t, got[mom.ID().String()])
	assert.True(t, got[grandma.ID().String()])
	assert.True(t, got[grandpa.ID().String()])
	assert.False(t, all.CapReached)
}

func TestTreeGraph_AncestorsWithinZeroGenerations(t *testing.T) {
	f := newFixture(t)
	mom := f.person(t, "Mom")
	kid := f.person(t, "Kid")
	f.parentOf(t, mom, kid)

	g := f.graph()
	result := g.AncestorsWithin(kid.ID(), 0)
	assert.Empty(t, result.People)
}

func TestTreeGraph_DescendantsDeduplicatesDiamond(t *testing.T) {
	// two lineage paths converge on the same grandchild
	f := newFixture(t)
	root := f.person(t, "Root")
	left := f.person(t, "Left")
	right := f.person(t, "Right")
	grandkid := f.person(t, "Grandkid")
	f.parentOf(t, root, left)
	f.parentOf(t, root, right)
	f.parentOf(t, left, grandkid)
	f.parentOf(t, right, grandkid)

	g := f.graph()
	result := g.DescendantsWithin(root.ID(), 10)
	assert.Len(t, result.People, 3)
}

func TestTreeGraph_IsAncestorOf(t *testing.T) {
	f := newFixture(t)
	grandma := f.person(t, "Grandma")
	mom := f.person(t, "Mom")
	kid := f.person(t, "Kid")
	f.parentOf(t, grandma, mom)
	f.parentOf(t, mom, kid)

	g := f.graph()

	found, conclusive := g.IsAncestorOf(grandma.ID(), kid.ID(), 20)
	assert.True(t, found)
	assert.True(t, conclusive)

	found, conclusive = g.IsAncestorOf(kid.ID(), grandma.ID(), 20)
	assert.False(t, found)
	assert.True(t, conclusive)

	// bound of 1 cannot see past the direct parent
	found, conclusive = g.IsAncestorOf(grandma.ID(), kid.ID(), 1)
	assert.False(t, found)
	assert.False(t, conclusive)
}

func TestTreeGraph_SiblingsOf(t *testing.T) {
	f := newFixture(t)
	mom := f.person(t, "Mom")
	a := f.person(t, "A")
	b := f.person(t, "B")
	c := f.person(t, "C")
	f.parentOf(t, mom, a)
	f.parentOf(t, mom, b)
	// explicit edge only, no shared parent
	f.link(t, a, c, entities.CategorySibling, "step")

	g := f.graph()
	siblings := ids(g.SiblingsOf(a.ID()))
	assert.Len(t, siblings, 2)
	assert.True(t, siblings[b.ID().String()])
	assert.True(t, siblings[c.ID().String()])
}

func TestTreeGraph_SharedParents(t *testing.T) {
	f := newFixture(t)
	mom := f.person(t, "Mom")
	dad := f.person(t, "Dad")
	a := f.person(t, "A")
	b := f.person(t, "B")
	half := f.person(t, "Half")
	f.parentOf(t, mom, a)
	f.parentOf(t, dad, a)
	f.parentOf(t, mom, b)
	f.parentOf(t, dad, b)
	f.parentOf(t, mom, half)

	g := f.graph()
	assert.Len(t, g.SharedParents(a.ID(), b.ID()), 2)
	assert.Len(t, g.SharedParents(a.ID(), half.ID()), 1)
	assert.Empty(t, g.SharedParents(mom.ID(), dad.ID()))
}

func TestTreeGraph_ShortestPath(t *testing.T) {
	f := newFixture(t)
	a := f.person(t, "A")
	b := f.person(t, "B")
	c := f.person(t, "C")
	first := f.parentOf(t, a, b)
	second := f.link(t, b, c, entities.CategoryPartner, "married")

	g := f.graph()

	path := g.ShortestPath(a.ID(), c.ID(), 20)
	require.True(t, path.Found)
	require.Len(t, path.Edges, 2)
	assert.True(t, path.Edges[0].ID().Equals(first.ID()))
	assert.True(t, path.Edges[1].ID().Equals(second.ID()))

	// undirected view: same edges in reverse order
	back := g.ShortestPath(c.ID(), a.ID(), 20)
	require.True(t, back.Found)
	require.Len(t, back.Edges, 2)
	assert.True(t, back.Edges[0].ID().Equals(second.ID()))
	assert.True(t, back.Edges[1].ID().Equals(first.ID()))
}

func TestTreeGraph_ShortestPathSymmetricUnderTies(t *testing.T) {
	// a diamond with two equally short routes between the endpoints; the
	// pick must not depend on which endpoint the search starts from
	f := newFixture(t)
	a := f.person(t, "A")
	x := f.person(t, "X")
	y := f.person(t, "Y")
	b := f.person(t, "B")
	f.parentOf(t, a, x)
	f.link(t, x, b, entities.CategoryPartner, "married")
	f.link(t, a, y, entities.CategoryPartner, "married")
	f.parentOf(t, y, b)

	g := f.graph()

	forward := g.ShortestPath(a.ID(), b.ID(), 20)
	backward := g.ShortestPath(b.ID(), a.ID(), 20)
	require.True(t, forward.Found)
	require.True(t, backward.Found)
	require.Len(t, forward.Edges, 2)
	require.Len(t, backward.Edges, 2)

	for i := range forward.Edges {
		mirrored := backward.Edges[len(backward.Edges)-1-i]
		assert.True(t, forward.Edges[i].ID().Equals(mirrored.ID()),
			"edge %d differs between directions", i)
	}
}

func TestTreeGraph_ShortestPathSelfAndMisses(t *testing.T) {
	f := newFixture(t)
	a := f.person(t, "A")
	b := f.person(t, "B")
	c := f.person(t, "C")
	d := f.person(t, "D")
	f.parentOf(t, a, b)
	f.parentOf(t, b, c)
	_ = d // disconnected

	g := f.graph()

	self := g.ShortestPath(a.ID(), a.ID(), 20)
	assert.True(t, self.Found)
	assert.Empty(t, self.Edges)

	miss := g.ShortestPath(a.ID(), d.ID(), 20)
	assert.False(t, miss.Found)
	assert.False(t, miss.CapReached)

	// depth bound of 1 stops with the frontier still open
	capped := g.ShortestPath(a.ID(), c.ID(), 1)
	assert.False(t, capped.Found)
	assert.True(t, capped.CapReached)
}

func TestTreeGraph_HasEdgeForPairIgnoresDirection(t *testing.T) {
	f := newFixture(t)
	a := f.person(t, "A")
	b := f.person(t, "B")
	f.link(t, a, b, entities.CategoryPartner, "married")

	g := f.graph()
	assert.True(t, g.HasEdgeForPair(a.ID(), b.ID(), entities.CategoryPartner))
	assert.True(t, g.HasEdgeForPair(b.ID(), a.ID(), entities.CategoryPartner))
	assert.False(t, g.HasEdgeForPair(a.ID(), b.ID(), entities.CategorySibling))
}

func TestTreeGraph_ApplyAddRemoveUpdate(t *testing.T) {
	f := newFixture(t)
	a := f.person(t, "A")
	b := f.person(t, "B")

	g := f.graph()
	assert.Equal(t, 0, g.RelationshipCount())

	diff := entities.GenerationParent
	r, err := entities.NewRelationship(f.treeID, a.ID(), b.ID(), entities.CategoryFamilyLine, "", &diff, nil, nil, "")
	require.NoError(t, err)

	require.NoError(t, g.Apply(Change{Op: ChangeAdd, Relationship: r}))
	assert.Equal(t, 1, g.RelationshipCount())
	assert.Len(t, g.ParentsOf(b.ID()), 1)

	inactive := false
	require.NoError(t, r.Update(nil, nil, nil, nil, &inactive, nil))
	require.NoError(t, g.Apply(Change{Op: ChangeUpdate, Relationship: r}))
	// inactive family_line edges drop out of the lineage views
	assert.Empty(t, g.ParentsOf(b.ID()))
	assert.Equal(t, 1, g.RelationshipCount())

	require.NoError(t, g.Apply(Change{Op: ChangeRemove, Relationship: r}))
	assert.Equal(t, 0, g.RelationshipCount())
	assert.Empty(t, g.EdgesOf(a.ID()))

	assert.Error(t, g.Apply(Change{Op: ChangeAdd}))
}

func TestTreeGraph_RemovePersonCascades(t *testing.T) {
	f := newFixture(t)
	mom := f.person(t, "Mom")
	kid := f.person(t, "Kid")
	partner := f.person(t, "Partner")
	f.parentOf(t, mom, kid)
	f.link(t, mom, partner, entities.CategoryPartner, "married")

	g := f.graph()
	require.Equal(t, 2, g.RelationshipCount())

	g.RemovePerson(mom.ID())

	assert.False(t, g.HasPerson(mom.ID()))
	assert.Equal(t, 0, g.RelationshipCount())
	assert.Empty(t, g.ParentsOf(kid.ID()))
	assert.Empty(t, g.EdgesOf(partner.ID()))
	assert.NoError(t, g.Validate())
}

func TestTreeGraph_EdgesOfDeterministicOrder(t *testing.T) {
	f := newFixture(t)
	a := f.person(t, "A")
	b := f.person(t, "B")
	c := f.person(t, "C")
	partner := f.link(t, a, b, entities.CategoryPartner, "married")
	famline := f.parentOf(t, a, c)

	g := f.graph()

	edges := g.EdgesOf(a.ID())
	require.Len(t, edges, 2)
	// family_line sorts ahead of other categories regardless of creation order
	assert.True(t, edges[0].ID().Equals(famline.ID()))
	assert.True(t, edges[1].ID().Equals(partner.ID()))

	byCategory := g.EdgesOfCategory(a.ID(), entities.CategoryPartner)
	require.Len(t, byCategory, 1)
	assert.True(t, byCategory[0].ID().Equals(partner.ID()))
}
