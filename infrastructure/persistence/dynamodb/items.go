package dynamodb

import (
	"fmt"
	"time"

	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

const (
	entityTypeTree         = "TREE"
	entityTypePerson       = "PERSON"
	entityTypeRelationship = "RELATIONSHIP"

	skMetadata = "METADATA"
)

func treePK(id valueobjects.TreeID) string        { return fmt.Sprintf("TREE#%s", id.String()) }
func personSK(id valueobjects.PersonID) string    { return fmt.Sprintf("PERSON#%s", id.String()) }
func relSK(id valueobjects.RelationshipID) string { return fmt.Sprintf("REL#%s", id.String()) }
func ownerGSI1PK(ownerID string) string           { return fmt.Sprintf("OWNER#%s", ownerID) }

// treeItem is the DynamoDB item structure for a family tree
type treeItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	TreeID      string `dynamodbav:"TreeID"`
	OwnerID     string `dynamodbav:"OwnerID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

// personItem is the DynamoDB item structure for a person
type personItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	PersonID   string `dynamodbav:"PersonID"`
	TreeID     string `dynamodbav:"TreeID"`
	FirstName  string `dynamodbav:"FirstName"`
	LastName   string `dynamodbav:"LastName"`
	MaidenName string `dynamodbav:"MaidenName,omitempty"`
	BirthDate  string `dynamodbav:"BirthDate,omitempty"`
	DeathDate  string `dynamodbav:"DeathDate,omitempty"`
	BirthPlace string `dynamodbav:"BirthPlace,omitempty"`
	DeathPlace string `dynamodbav:"DeathPlace,omitempty"`
	Bio        string `dynamodbav:"Bio,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// relationshipItem is the DynamoDB item structure for a relationship
type relationshipItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	GSI1PK         string `dynamodbav:"GSI1PK"`
	GSI1SK         string `dynamodbav:"GSI1SK"`
	EntityType     string `dynamodbav:"EntityType"`
	RelationshipID string `dynamodbav:"RelationshipID"`
	TreeID         string `dynamodbav:"TreeID"`
	FromPersonID   string `dynamodbav:"FromPersonID"`
	ToPersonID     string `dynamodbav:"ToPersonID"`
	Category       string `dynamodbav:"Category"`
	Subtype        string `dynamodbav:"Subtype,omitempty"`
	GenerationDiff *int   `dynamodbav:"GenerationDiff,omitempty"`
	StartDate      string `dynamodbav:"StartDate,omitempty"`
	EndDate        string `dynamodbav:"EndDate,omitempty"`
	IsActive       bool   `dynamodbav:"IsActive"`
	Notes          string `dynamodbav:"Notes,omitempty"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
	UpdatedAt      string `dynamodbav:"UpdatedAt"`
}

func newTreeItem(t *entities.FamilyTree) treeItem {
	return treeItem{
		PK:          treePK(t.ID()),
		SK:          skMetadata,
		GSI1PK:      ownerGSI1PK(t.OwnerID()),
		GSI1SK:      treePK(t.ID()),
		EntityType:  entityTypeTree,
		TreeID:      t.ID().String(),
		OwnerID:     t.OwnerID(),
		Name:        t.Name(),
		Description: t.Description(),
		CreatedAt:   t.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func newPersonItem(p *entities.Person) personItem {
	return personItem{
		PK:         treePK(p.TreeID()),
		SK:         personSK(p.ID()),
		GSI1PK:     personSK(p.ID()),
		GSI1SK:     skMetadata,
		EntityType: entityTypePerson,
		PersonID:   p.ID().String(),
		TreeID:     p.TreeID().String(),
		FirstName:  p.Name().First(),
		LastName:   p.Name().Last(),
		MaidenName: p.Name().Maiden(),
		BirthDate:  formatDate(p.Dates().Birth()),
		DeathDate:  formatDate(p.Dates().Death()),
		BirthPlace: p.BirthPlace(),
		DeathPlace: p.DeathPlace(),
		Bio:        p.Bio(),
		CreatedAt:  p.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  p.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func newRelationshipItem(r *entities.Relationship) relationshipItem {
	return relationshipItem{
		PK:             treePK(r.TreeID()),
		SK:             relSK(r.ID()),
		GSI1PK:         relSK(r.ID()),
		GSI1SK:         skMetadata,
		EntityType:     entityTypeRelationship,
		RelationshipID: r.ID().String(),
		TreeID:         r.TreeID().String(),
		FromPersonID:   r.FromPersonID().String(),
		ToPersonID:     r.ToPersonID().String(),
		Category:       string(r.Category()),
		Subtype:        r.Subtype(),
		GenerationDiff: r.GenerationDifference(),
		StartDate:      formatDate(r.StartDate()),
		EndDate:        formatDate(r.EndDate()),
		IsActive:       r.IsActive(),
		Notes:          r.Notes(),
		CreatedAt:      r.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:      r.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func (i treeItem) toEntity() (*entities.FamilyTree, error) {
	id, err := valueobjects.NewTreeIDFromString(i.TreeID)
	if err != nil {
		return nil, err
	}
	createdAt, updatedAt, err := parseTimestamps(i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructFamilyTree(id, i.OwnerID, i.Name, i.Description, createdAt, updatedAt)
}

func (i personItem) toEntity() (*entities.Person, error) {
	id, err := valueobjects.NewPersonIDFromString(i.PersonID)
	if err != nil {
		return nil, err
	}
	treeID, err := valueobjects.NewTreeIDFromString(i.TreeID)
	if err != nil {
		return nil, err
	}
	name, err := valueobjects.NewPersonName(i.FirstName, i.LastName, i.MaidenName)
	if err != nil {
		return nil, err
	}
	birth, err := parseDate(i.BirthDate)
	if err != nil {
		return nil, err
	}
	death, err := parseDate(i.DeathDate)
	if err != nil {
		return nil, err
	}
	dates, err := valueobjects.NewLifeDates(birth, death)
	if err != nil {
		return nil, err
	}
	createdAt, updatedAt, err := parseTimestamps(i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructPerson(id, treeID, name, dates, i.BirthPlace, i.DeathPlace, i.Bio, createdAt, updatedAt)
}

func (i relationshipItem) toEntity() (*entities.Relationship, error) {
	id, err := valueobjects.NewRelationshipIDFromString(i.RelationshipID)
	if err != nil {
		return nil, err
	}
	treeID, err := valueobjects.NewTreeIDFromString(i.TreeID)
	if err != nil {
		return nil, err
	}
	from, err := valueobjects.NewPersonIDFromString(i.FromPersonID)
	if err != nil {
		return nil, err
	}
	to, err := valueobjects.NewPersonIDFromString(i.ToPersonID)
	if err != nil {
		return nil, err
	}
	startDate, err := parseDate(i.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(i.EndDate)
	if err != nil {
		return nil, err
	}
	createdAt, updatedAt, err := parseTimestamps(i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entities.ReconstructRelationship(
		id, treeID, from, to,
		entities.Category(i.Category), i.Subtype,
		i.GenerationDiff,
		startDate, endDate,
		i.IsActive, i.Notes,
		createdAt, updatedAt,
	)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "malformed stored date %q", s)
	}
	return &t, nil
}

func parseTimestamps(created, updated string) (time.Time, time.Time, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.Wrap(err, "malformed CreatedAt")
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.Wrap(err, "malformed UpdatedAt")
	}
	return createdAt, updatedAt, nil
}
