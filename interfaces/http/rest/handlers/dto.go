package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lineage-backend/application/services"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	"lineage-backend/pkg/common"
	pkgerrors "lineage-backend/pkg/errors"
	"lineage-backend/pkg/utils"
)

// PersonResponse is the wire form of a person
type PersonResponse struct {
	ID         string `json:"id"`
	TreeID     string `json:"tree_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MaidenName string `json:"maiden_name,omitempty"`
	FullName   string `json:"full_name"`
	BirthDate  string `json:"birth_date,omitempty"`
	DeathDate  string `json:"death_date,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
	DeathPlace string `json:"death_place,omitempty"`
	Bio        string `json:"bio,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toPersonResponse(p *entities.Person) PersonResponse {
	return PersonResponse{
		ID:         p.ID().String(),
		TreeID:     p.TreeID().String(),
		FirstName:  p.Name().First(),
		LastName:   p.Name().Last(),
		MaidenName: p.Name().Maiden(),
		FullName:   p.Name().Full(),
		BirthDate:  utils.FormatDate(p.Dates().Birth()),
		DeathDate:  utils.FormatDate(p.Dates().Death()),
		BirthPlace: p.BirthPlace(),
		DeathPlace: p.DeathPlace(),
		Bio:        p.Bio(),
		CreatedAt:  p.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt().Format(time.RFC3339),
	}
}

func toPersonResponses(people []*entities.Person) []PersonResponse {
	out := make([]PersonResponse, 0, len(people))
	for _, p := range people {
		out = append(out, toPersonResponse(p))
	}
	return out
}

// RelationshipResponse is the wire form of a relationship
type RelationshipResponse struct {
	ID                   string `json:"id"`
	TreeID               string `json:"tree_id"`
	FromPersonID         string `json:"from_person_id"`
	ToPersonID           string `json:"to_person_id"`
	Category             string `json:"category"`
	Subtype              string `json:"subtype,omitempty"`
	GenerationDifference *int   `json:"generation_difference,omitempty"`
	StartDate            string `json:"start_date,omitempty"`
	EndDate              string `json:"end_date,omitempty"`
	IsActive             bool   `json:"is_active"`
	Notes                string `json:"notes,omitempty"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func toRelationshipResponse(r *entities.Relationship) RelationshipResponse {
	return RelationshipResponse{
		ID:                   r.ID().String(),
		TreeID:               r.TreeID().String(),
		FromPersonID:         r.FromPersonID().String(),
		ToPersonID:           r.ToPersonID().String(),
		Category:             string(r.Category()),
		Subtype:              r.Subtype(),
		GenerationDifference: r.GenerationDifference(),
		StartDate:            utils.FormatDate(r.StartDate()),
		EndDate:              utils.FormatDate(r.EndDate()),
		IsActive:             r.IsActive(),
		Notes:                r.Notes(),
		CreatedAt:            r.CreatedAt().Format(time.RFC3339),
		UpdatedAt:            r.UpdatedAt().Format(time.RFC3339),
	}
}

func toRelationshipResponses(rels []*entities.Relationship) []RelationshipResponse {
	out := make([]RelationshipResponse, 0, len(rels))
	for _, r := range rels {
		out = append(out, toRelationshipResponse(r))
	}
	return out
}

// RelativeResponse is a relationship described from one person's perspective
type RelativeResponse struct {
	Relationship RelationshipResponse `json:"relationship"`
	Person       PersonResponse       `json:"person"`
	Description  string               `json:"description"`
}

func toRelativeResponses(steps []services.PathStep) []RelativeResponse {
	out := make([]RelativeResponse, 0, len(steps))
	for _, s := range steps {
		resp := RelativeResponse{
			Relationship: toRelationshipResponse(s.Relationship),
			Description:  s.Description,
		}
		if s.To != nil {
			resp.Person = toPersonResponse(s.To)
		}
		out = append(out, resp)
	}
	return out
}

// TreeResponse is the wire form of a family tree
type TreeResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toTreeResponse(t *entities.FamilyTree) TreeResponse {
	return TreeResponse{
		ID:          t.ID().String(),
		OwnerID:     t.OwnerID(),
		Name:        t.Name(),
		Description: t.Description(),
		CreatedAt:   t.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt().Format(time.RFC3339),
	}
}

// url parameter extraction helpers

func treeIDParam(r *http.Request) (valueobjects.TreeID, error) {
	id, err := valueobjects.NewTreeIDFromString(chi.URLParam(r, "treeID"))
	if err != nil {
		return valueobjects.TreeID{}, pkgerrors.NewValidationError("invalid tree id")
	}
	return id, nil
}

func personIDParam(r *http.Request, name string) (valueobjects.PersonID, error) {
	id, err := valueobjects.NewPersonIDFromString(chi.URLParam(r, name))
	if err != nil {
		return valueobjects.PersonID{}, pkgerrors.NewValidationError("invalid person id")
	}
	return id, nil
}

func relationshipIDParam(r *http.Request) (valueobjects.RelationshipID, error) {
	id, err := valueobjects.NewRelationshipIDFromString(chi.URLParam(r, "relationshipID"))
	if err != nil {
		return valueobjects.RelationshipID{}, pkgerrors.NewValidationError("invalid relationship id")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func userIDFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := common.GetUserID(r.Context())
	if !ok || userID == "" {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return "", false
	}
	return userID, true
}
