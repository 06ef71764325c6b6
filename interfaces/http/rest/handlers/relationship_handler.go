package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"lineage-backend/application/services"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	"lineage-backend/pkg/common"
	"lineage-backend/pkg/utils"
)

// RelationshipHandler handles relationship HTTP requests
type RelationshipHandler struct {
	relationships *services.RelationshipService
	traversal     *services.TraversalService
	logger        *zap.Logger
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(
	relationships *services.RelationshipService,
	traversal *services.TraversalService,
	logger *zap.Logger,
) *RelationshipHandler {
	return &RelationshipHandler{
		relationships: relationships,
		traversal:     traversal,
		logger:        logger,
	}
}

// CreateRelationshipRequest represents the request body for creating a relationship
type CreateRelationshipRequest struct {
	FromPersonID         string `json:"from_person_id" validate:"required,uuid"`
	ToPersonID           string `json:"to_person_id" validate:"required,uuid"`
	Category             string `json:"category" validate:"required,oneof=family_line partner sibling extended_family"`
	Subtype              string `json:"subtype,omitempty"`
	GenerationDifference *int   `json:"generation_difference,omitempty"`
	StartDate            string `json:"start_date,omitempty"`
	EndDate              string `json:"end_date,omitempty"`
	Notes                string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateRelationshipRequest represents the request body for a partial relationship update
type UpdateRelationshipRequest struct {
	Subtype              *string `json:"subtype,omitempty"`
	GenerationDifference *int    `json:"generation_difference,omitempty"`
	StartDate            *string `json:"start_date,omitempty"`
	EndDate              *string `json:"end_date,omitempty"`
	IsActive             *bool   `json:"is_active,omitempty"`
	Notes                *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (req *CreateRelationshipRequest) toInput() (services.CreateRelationshipInput, error) {
	from, err := valueobjects.NewPersonIDFromString(req.FromPersonID)
	if err != nil {
		return services.CreateRelationshipInput{}, err
	}
	to, err := valueobjects.NewPersonIDFromString(req.ToPersonID)
	if err != nil {
		return services.CreateRelationshipInput{}, err
	}
	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return services.CreateRelationshipInput{}, err
	}
	endDate, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return services.CreateRelationshipInput{}, err
	}
	return services.CreateRelationshipInput{
		FromPersonID:         from,
		ToPersonID:           to,
		Category:             entities.Category(req.Category),
		Subtype:              req.Subtype,
		GenerationDifference: req.GenerationDifference,
		StartDate:            startDate,
		EndDate:              endDate,
		Notes:                req.Notes,
	}, nil
}

// CreateRelationship handles POST /trees/{treeID}/relationships
func (h *RelationshipHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	rel, err := h.relationships.CreateRelationship(r.Context(), treeID, input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toRelationshipResponse(rel))
}

// ValidateRelationship handles POST /trees/{treeID}/relationships/validate.
// Same checks as create, nothing persisted.
func (h *RelationshipHandler) ValidateRelationship(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := h.relationships.ValidateCandidate(r.Context(), treeID, input); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// GetRelationship handles GET /trees/{treeID}/relationships/{relationshipID}
func (h *RelationshipHandler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	relID, err := relationshipIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	rel, err := h.relationships.GetRelationship(r.Context(), treeID, relID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toRelationshipResponse(rel))
}

// ListRelationships handles GET /trees/{treeID}/relationships
func (h *RelationshipHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	rels, err := h.relationships.ListByTree(r.Context(), treeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toRelationshipResponses(rels))
}

// UpdateRelationship handles PUT /trees/{treeID}/relationships/{relationshipID}
func (h *RelationshipHandler) UpdateRelationship(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	relID, err := relationshipIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	input := services.UpdateRelationshipInput{
		Subtype:              req.Subtype,
		GenerationDifference: req.GenerationDifference,
		IsActive:             req.IsActive,
		Notes:                req.Notes,
	}
	if req.StartDate != nil {
		startDate, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "start_date must be YYYY-MM-DD")
			return
		}
		input.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "end_date must be YYYY-MM-DD")
			return
		}
		input.EndDate = endDate
	}

	rel, err := h.relationships.UpdateRelationship(r.Context(), treeID, relID, input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toRelationshipResponse(rel))
}

// DeleteRelationship handles DELETE /trees/{treeID}/relationships/{relationshipID}
func (h *RelationshipHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	relID, err := relationshipIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.relationships.DeleteRelationship(r.Context(), treeID, relID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "relationship deleted"})
}

// ListCategories handles GET /categories
func (h *RelationshipHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.relationships.Categories())
}

// PathResponse is the wire form of a relationship path query
type PathResponse struct {
	Steps     []RelativeResponse `json:"steps"`
	Found     bool               `json:"found"`
	Truncated bool               `json:"truncated"`
}

// FindPath handles GET /trees/{treeID}/path?from=&to=&max_depth=
func (h *RelationshipHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	from, err := valueobjects.NewPersonIDFromString(r.URL.Query().Get("from"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "from must be a valid person id")
		return
	}
	to, err := valueobjects.NewPersonIDFromString(r.URL.Query().Get("to"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "to must be a valid person id")
		return
	}

	res, err := h.traversal.RelationshipPath(r.Context(), treeID, from, to, queryInt(r, "max_depth", -1))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, PathResponse{
		Steps:     toRelativeResponses(res.Steps),
		Found:     res.Found,
		Truncated: res.Truncated,
	})
}
