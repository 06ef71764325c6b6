package services

import (
	"sort"
	"time"

	"lineage-backend/domain/core/aggregates"
	"lineage-backend/domain/core/entities"
)

// ExportNode is one person in the visualization export
type ExportNode struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	DeathDate  *time.Time `json:"death_date,omitempty"`
	BirthPlace string     `json:"birth_place,omitempty"`
	DeathPlace string     `json:"death_place,omitempty"`
}

// ExportEdge is one relationship in the visualization export. StyleKey is a
// stable token renderers map to a visual style; the same category and
// direction always yields the same key.
type ExportEdge struct {
	ID                   string `json:"id"`
	Source               string `json:"source"`
	Target               string `json:"target"`
	Category             string `json:"category"`
	Subtype              string `json:"subtype,omitempty"`
	GenerationDifference *int   `json:"generation_difference,omitempty"`
	Label                string `json:"label"`
	StyleKey             string `json:"style_key"`
	IsActive             bool   `json:"is_active"`
}

// GraphExport is the full renderable snapshot of one tree. Layout positions
// are the renderer's job and are deliberately absent.
type GraphExport struct {
	TreeID     string                  `json:"tree_id"`
	Nodes      []ExportNode            `json:"nodes"`
	Edges      []ExportEdge            `json:"edges"`
	ByCategory map[string][]ExportEdge `json:"edges_by_category"`
}

// ExportService renders a TreeGraph snapshot into a transport-neutral
// node/edge form. Linear in graph size.
type ExportService struct{}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{}
}

// Export renders the snapshot. Nodes and edges come out in deterministic
// order so repeated exports of an unchanged tree are byte-identical.
func (s *ExportService) Export(g *aggregates.TreeGraph) *GraphExport {
	people := g.People()
	sort.Slice(people, func(i, j int) bool {
		return people[i].ID().Less(people[j].ID())
	})

	nodes := make([]ExportNode, 0, len(people))
	for _, p := range people {
		nodes = append(nodes, ExportNode{
			ID:         p.ID().String(),
			Label:      p.Name().Full(),
			BirthDate:  p.Dates().Birth(),
			DeathDate:  p.Dates().Death(),
			BirthPlace: p.BirthPlace(),
			DeathPlace: p.DeathPlace(),
		})
	}

	rels := g.Relationships()
	sort.Slice(rels, func(i, j int) bool {
		return rels[i].ID().String() < rels[j].ID().String()
	})

	edges := make([]ExportEdge, 0, len(rels))
	byCategory := make(map[string][]ExportEdge)
	for _, r := range rels {
		e := ExportEdge{
			ID:                   r.ID().String(),
			Source:               r.FromPersonID().String(),
			Target:               r.ToPersonID().String(),
			Category:             string(r.Category()),
			Subtype:              r.Subtype(),
			GenerationDifference: r.GenerationDifference(),
			Label:                r.DescribeFrom(r.FromPersonID()),
			StyleKey:             styleKey(r),
			IsActive:             r.IsActive(),
		}
		edges = append(edges, e)
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	return &GraphExport{
		TreeID:     g.TreeID().String(),
		Nodes:      nodes,
		Edges:      edges,
		ByCategory: byCategory,
	}
}

func styleKey(r *entities.Relationship) string {
	switch r.Category() {
	case entities.CategoryFamilyLine:
		if parent, ok := r.ParentID(); ok {
			if parent.Equals(r.FromPersonID()) {
				return "family-line-parent"
			}
			return "family-line-child"
		}
		return "family-line"
	case entities.CategoryPartner:
		return "partner"
	case entities.CategorySibling:
		return "sibling"
	case entities.CategoryExtendedFamily:
		return "extended-family"
	}
	return "other"
}
