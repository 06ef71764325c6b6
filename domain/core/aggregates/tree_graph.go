package aggregates

import (
	"errors"
	"sort"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
)

// TreeGraph is the per-tree graph index: an adjacency view over one family
// tree's people and relationships. It keeps a directed family_line adjacency
// (parent to child plus its inverse) and an undirected adjacency covering
// every category, so read-side algorithms never have to normalize edge
// direction themselves.
//
// A TreeGraph is a point-in-time snapshot. Builders hand out one instance per
// request; mutations go through Apply under the per-tree write serialization.
type TreeGraph struct {
	treeID        valueobjects.TreeID
	people        map[valueobjects.PersonID]*entities.Person
	relationships map[valueobjects.RelationshipID]*entities.Relationship

	// family_line views, keyed by person
	parentEdges map[valueobjects.PersonID][]*entities.Relationship // edges to the person's parents
	childEdges  map[valueobjects.PersonID][]*entities.Relationship // edges to the person's children

	// combined undirected view of all categories, used by path search
	allEdges map[valueobjects.PersonID][]*entities.Relationship
}

// ChangeOp describes an incremental index mutation
type ChangeOp int

const (
	ChangeAdd ChangeOp = iota
	ChangeRemove
	ChangeUpdate
)

// Change is one incremental mutation applied to the index
type Change struct {
	Op           ChangeOp
	Relationship *entities.Relationship
}

// BuildTreeGraph constructs the index from stored records. Relationships whose
// endpoints are missing from the people set or belong to another tree are
// skipped; the entity store is the source of truth and the index only mirrors
// the consistent subset.
func BuildTreeGraph(
	treeID valueobjects.TreeID,
	people []*entities.Person,
	relationships []*entities.Relationship,
) *TreeGraph {
	g := &TreeGraph{
		treeID:        treeID,
		people:        make(map[valueobjects.PersonID]*entities.Person, len(people)),
		relationships: make(map[valueobjects.RelationshipID]*entities.Relationship, len(relationships)),
		parentEdges:   make(map[valueobjects.PersonID][]*entities.Relationship),
		childEdges:    make(map[valueobjects.PersonID][]*entities.Relationship),
		allEdges:      make(map[valueobjects.PersonID][]*entities.Relationship),
	}

	for _, p := range people {
		if p.TreeID().Equals(treeID) {
			g.people[p.ID()] = p
		}
	}

	for _, r := range relationships {
		g.addEdge(r)
	}

	return g
}

// TreeID returns the tree this index covers
func (g *TreeGraph) TreeID() valueobjects.TreeID {
	return g.treeID
}

// HasPerson reports whether the person is part of the index
func (g *TreeGraph) HasPerson(id valueobjects.PersonID) bool {
	_, ok := g.people[id]
	return ok
}

// Person returns a person by id
func (g *TreeGraph) Person(id valueobjects.PersonID) (*entities.Person, bool) {
	p, ok := g.people[id]
	return p, ok
}

// People returns all indexed people
func (g *TreeGraph) People() []*entities.Person {
	people := make([]*entities.Person, 0, len(g.people))
	for _, p := range g.people {
		people = append(people, p)
	}
	return people
}

// Relationships returns all indexed relationships
func (g *TreeGraph) Relationships() []*entities.Relationship {
	rels := make([]*entities.Relationship, 0, len(g.relationships))
	for _, r := range g.relationships {
		rels = append(rels, r)
	}
	return rels
}

// Relationship returns an edge by id
func (g *TreeGraph) Relationship(id valueobjects.RelationshipID) (*entities.Relationship, bool) {
	r, ok := g.relationships[id]
	return r, ok
}

// PersonCount returns the number of indexed people
func (g *TreeGraph) PersonCount() int {
	return len(g.people)
}

// RelationshipCount returns the number of indexed edges
func (g *TreeGraph) RelationshipCount() int {
	return len(g.relationships)
}

// Apply incrementally patches the index with one relationship change.
// O(degree) per call; amortized O(1) for genealogy-shaped graphs.
func (g *TreeGraph) Apply(change Change) error {
	if change.Relationship == nil {
		return errors.New("change requires a relationship")
	}

	switch change.Op {
	case ChangeAdd:
		g.addEdge(change.Relationship)
	case ChangeRemove:
		g.removeEdge(change.Relationship.ID())
	case ChangeUpdate:
		g.removeEdge(change.Relationship.ID())
		g.addEdge(change.Relationship)
	default:
		return errors.New("unknown change op")
	}
	return nil
}

// AddPerson registers a newly created person with no edges
func (g *TreeGraph) AddPerson(p *entities.Person) {
	if p.TreeID().Equals(g.treeID) {
		g.people[p.ID()] = p
	}
}

// RemovePerson removes a person and every incident edge, mirroring the
// cascade delete the entity store performs.
func (g *TreeGraph) RemovePerson(id valueobjects.PersonID) {
	for _, r := range g.allEdges[id] {
		g.removeEdge(r.ID())
	}
	delete(g.people, id)
	delete(g.parentEdges, id)
	delete(g.childEdges, id)
	delete(g.allEdges, id)
}

// ParentsOf returns the person's parents via active family_line edges
func (g *TreeGraph) ParentsOf(id valueobjects.PersonID) []valueobjects.PersonID {
	return endpoints(g.parentEdges[id], id)
}

// ChildrenOf returns the person's children via active family_line edges
func (g *TreeGraph) ChildrenOf(id valueobjects.PersonID) []valueobjects.PersonID {
	return endpoints(g.childEdges[id], id)
}

// ParentEdgesOf returns the family_line edges linking the person to its parents
func (g *TreeGraph) ParentEdgesOf(id valueobjects.PersonID) []*entities.Relationship {
	return g.parentEdges[id]
}

// ChildEdgesOf returns the family_line edges linking the person to its children
func (g *TreeGraph) ChildEdgesOf(id valueobjects.PersonID) []*entities.Relationship {
	return g.childEdges[id]
}

// EdgesOf returns every edge incident to the person, in deterministic order:
// family_line first, then by creation time, then by id.
func (g *TreeGraph) EdgesOf(id valueobjects.PersonID) []*entities.Relationship {
	return g.allEdges[id]
}

// EdgesOfCategory returns the person's edges of a single category
func (g *TreeGraph) EdgesOfCategory(id valueobjects.PersonID, category entities.Category) []*entities.Relationship {
	var out []*entities.Relationship
	for _, r := range g.allEdges[id] {
		if r.Category() == category {
			out = append(out, r)
		}
	}
	return out
}

// HasEdgeForPair reports whether an edge of the category already connects the
// unordered pair, regardless of stored direction.
func (g *TreeGraph) HasEdgeForPair(a, b valueobjects.PersonID, category entities.Category) bool {
	for _, r := range g.allEdges[a] {
		if r.Category() == category && r.ConnectsPair(a, b) {
			return true
		}
	}
	return false
}

// WalkResult is the outcome of a bounded generation walk
type WalkResult struct {
	// People reachable within the bound, deduplicated, excluding the start
	People []*entities.Person
	// CapReached is true when the frontier was still non-empty at the bound
	CapReached bool
}

// AncestorsWithin walks strictly along parent edges, breadth first, up to
// maxGenerations levels. A person reachable via several lineage paths appears
// once. maxGenerations of zero yields an empty result.
func (g *TreeGraph) AncestorsWithin(start valueobjects.PersonID, maxGenerations int) WalkResult {
	return g.generationWalk(start, maxGenerations, g.ParentsOf)
}

// DescendantsWithin is the symmetric walk along child edges
func (g *TreeGraph) DescendantsWithin(start valueobjects.PersonID, maxGenerations int) WalkResult {
	return g.generationWalk(start, maxGenerations, g.ChildrenOf)
}

// IsAncestorOf reports whether candidate is an ancestor of person within the
// depth bound. The second return is false when the walk hit the bound with
// the frontier still open, meaning the answer is not conclusive.
func (g *TreeGraph) IsAncestorOf(candidate, person valueobjects.PersonID, maxDepth int) (bool, bool) {
	visited := map[valueobjects.PersonID]bool{person: true}
	frontier := []valueobjects.PersonID{person}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []valueobjects.PersonID
		for _, id := range frontier {
			for _, parent := range g.ParentsOf(id) {
				if parent.Equals(candidate) {
					return true, true
				}
				if !visited[parent] {
					visited[parent] = true
					next = append(next, parent)
				}
			}
		}
		frontier = next
	}

	return false, len(frontier) == 0
}

// SiblingsOf derives siblings: people sharing at least one parent, united with
// the endpoints of explicit sibling edges, deduplicated, excluding the person.
func (g *TreeGraph) SiblingsOf(id valueobjects.PersonID) []*entities.Person {
	seen := make(map[valueobjects.PersonID]bool)

	for _, parent := range g.ParentsOf(id) {
		for _, child := range g.ChildrenOf(parent) {
			if !child.Equals(id) {
				seen[child] = true
			}
		}
	}

	for _, r := range g.EdgesOfCategory(id, entities.CategorySibling) {
		if other, ok := r.Other(id); ok {
			seen[other] = true
		}
	}

	siblings := make([]*entities.Person, 0, len(seen))
	for sid := range seen {
		if p, ok := g.people[sid]; ok {
			siblings = append(siblings, p)
		}
	}
	sortPeople(siblings)
	return siblings
}

// SharedParents returns the parents two people have in common
func (g *TreeGraph) SharedParents(a, b valueobjects.PersonID) []valueobjects.PersonID {
	parentsOfA := make(map[valueobjects.PersonID]bool)
	for _, p := range g.ParentsOf(a) {
		parentsOfA[p] = true
	}

	var shared []valueobjects.PersonID
	for _, p := range g.ParentsOf(b) {
		if parentsOfA[p] {
			shared = append(shared, p)
		}
	}
	sortIDs(shared)
	return shared
}

// PathResult is the outcome of a shortest relationship path search
type PathResult struct {
	// Edges is the ordered relationship sequence from start to goal; empty when not found
	Edges []*entities.Relationship
	Found bool
	// CapReached is true when the search stopped at the depth bound with
	// unexplored frontier remaining; a miss is then inconclusive, not final.
	CapReached bool
}

// ShortestPath runs an unweighted breadth-first search over the combined
// undirected view of all categories. Ties between equally short paths resolve
// deterministically because adjacency lists are kept sorted: family_line
// edges first, then earliest created, then id. The search always runs from
// the smaller endpoint id, so the same pair yields the same path in either
// direction even when several shortest paths exist.
func (g *TreeGraph) ShortestPath(start, goal valueobjects.PersonID, maxDepth int) PathResult {
	if start.Equals(goal) {
		return PathResult{Found: true}
	}

	if goal.Less(start) {
		res := g.searchPath(goal, start, maxDepth)
		reverseEdges(res.Edges)
		return res
	}
	return g.searchPath(start, goal, maxDepth)
}

type pathStep struct {
	prev valueobjects.PersonID
	via  *entities.Relationship
}

func (g *TreeGraph) searchPath(start, goal valueobjects.PersonID, maxDepth int) PathResult {
	visited := map[valueobjects.PersonID]bool{start: true}
	cameFrom := make(map[valueobjects.PersonID]pathStep)
	frontier := []valueobjects.PersonID{start}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []valueobjects.PersonID
		for _, id := range frontier {
			for _, r := range g.allEdges[id] {
				other, ok := r.Other(id)
				if !ok || visited[other] {
					continue
				}
				visited[other] = true
				cameFrom[other] = pathStep{prev: id, via: r}

				if other.Equals(goal) {
					return PathResult{Edges: g.reconstructPath(start, goal, cameFrom), Found: true}
				}
				next = append(next, other)
			}
		}
		frontier = next
	}

	return PathResult{CapReached: len(frontier) > 0}
}

// Validate checks index invariants against the indexed records
func (g *TreeGraph) Validate() error {
	for _, r := range g.relationships {
		if _, ok := g.people[r.FromPersonID()]; !ok {
			return errors.New("edge references person missing from index")
		}
		if _, ok := g.people[r.ToPersonID()]; !ok {
			return errors.New("edge references person missing from index")
		}
		if !r.TreeID().Equals(g.treeID) {
			return errors.New("edge belongs to another tree")
		}
	}
	return nil
}

// internal helpers

func (g *TreeGraph) reconstructPath(
	start, goal valueobjects.PersonID,
	cameFrom map[valueobjects.PersonID]pathStep,
) []*entities.Relationship {
	var path []*entities.Relationship
	for at := goal; !at.Equals(start); {
		s := cameFrom[at]
		path = append([]*entities.Relationship{s.via}, path...)
		at = s.prev
	}
	return path
}

func reverseEdges(edges []*entities.Relationship) {
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
}

func (g *TreeGraph) generationWalk(
	start valueobjects.PersonID,
	maxGenerations int,
	neighbors func(valueobjects.PersonID) []valueobjects.PersonID,
) WalkResult {
	visited := map[valueobjects.PersonID]bool{start: true}
	frontier := []valueobjects.PersonID{start}
	var collected []*entities.Person

	for depth := 0; depth < maxGenerations && len(frontier) > 0; depth++ {
		var next []valueobjects.PersonID
		for _, id := range frontier {
			for _, n := range neighbors(id) {
				if visited[n] {
					continue
				}
				visited[n] = true
				next = append(next, n)
				if p, ok := g.people[n]; ok {
					collected = append(collected, p)
				}
			}
		}
		frontier = next
	}

	capReached := false
	if len(frontier) > 0 {
		// frontier still open at the bound; check whether anything lies beyond
		for _, id := range frontier {
			for _, n := range neighbors(id) {
				if !visited[n] {
					capReached = true
					break
				}
			}
			if capReached {
				break
			}
		}
	}

	sortPeople(collected)
	return WalkResult{People: collected, CapReached: capReached}
}

func (g *TreeGraph) addEdge(r *entities.Relationship) {
	if r == nil || !r.TreeID().Equals(g.treeID) {
		return
	}
	if _, ok := g.people[r.FromPersonID()]; !ok {
		return
	}
	if _, ok := g.people[r.ToPersonID()]; !ok {
		return
	}
	if _, dup := g.relationships[r.ID()]; dup {
		return
	}

	g.relationships[r.ID()] = r

	if r.Category() == entities.CategoryFamilyLine && r.IsActive() {
		if parent, ok := r.ParentID(); ok {
			child, _ := r.ChildID()
			g.parentEdges[child] = insertSorted(g.parentEdges[child], r)
			g.childEdges[parent] = insertSorted(g.childEdges[parent], r)
		}
	}

	g.allEdges[r.FromPersonID()] = insertSorted(g.allEdges[r.FromPersonID()], r)
	g.allEdges[r.ToPersonID()] = insertSorted(g.allEdges[r.ToPersonID()], r)
}

func (g *TreeGraph) removeEdge(id valueobjects.RelationshipID) {
	r, ok := g.relationships[id]
	if !ok {
		return
	}
	delete(g.relationships, id)

	if r.Category() == entities.CategoryFamilyLine {
		if parent, pok := r.ParentID(); pok {
			child, _ := r.ChildID()
			g.parentEdges[child] = removeRel(g.parentEdges[child], id)
			g.childEdges[parent] = removeRel(g.childEdges[parent], id)
		}
	}

	g.allEdges[r.FromPersonID()] = removeRel(g.allEdges[r.FromPersonID()], id)
	g.allEdges[r.ToPersonID()] = removeRel(g.allEdges[r.ToPersonID()], id)
}

// edgeLess orders adjacency lists: family_line before other categories, then
// earliest created, then id. Keeping lists sorted makes every BFS expansion,
// and therefore every tie-break, reproducible.
func edgeLess(a, b *entities.Relationship) bool {
	aFam := a.Category() == entities.CategoryFamilyLine
	bFam := b.Category() == entities.CategoryFamilyLine
	if aFam != bFam {
		return aFam
	}
	if !a.CreatedAt().Equal(b.CreatedAt()) {
		return a.CreatedAt().Before(b.CreatedAt())
	}
	return a.ID().String() < b.ID().String()
}

func insertSorted(edges []*entities.Relationship, r *entities.Relationship) []*entities.Relationship {
	i := sort.Search(len(edges), func(i int) bool { return !edgeLess(edges[i], r) })
	edges = append(edges, nil)
	copy(edges[i+1:], edges[i:])
	edges[i] = r
	return edges
}

func removeRel(edges []*entities.Relationship, id valueobjects.RelationshipID) []*entities.Relationship {
	for i, r := range edges {
		if r.ID().Equals(id) {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

func endpoints(edges []*entities.Relationship, self valueobjects.PersonID) []valueobjects.PersonID {
	ids := make([]valueobjects.PersonID, 0, len(edges))
	for _, r := range edges {
		if other, ok := r.Other(self); ok {
			ids = append(ids, other)
		}
	}
	return ids
}

func sortPeople(people []*entities.Person) {
	sort.Slice(people, func(i, j int) bool {
		return people[i].ID().Less(people[j].ID())
	})
}

func sortIDs(ids []valueobjects.PersonID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
