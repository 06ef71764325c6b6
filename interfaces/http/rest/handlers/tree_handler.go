package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"lineage-backend/application/services"
	"lineage-backend/pkg/common"
	"lineage-backend/pkg/utils"
)

// TreeHandler handles family tree HTTP requests
type TreeHandler struct {
	trees         *services.TreeService
	relationships *services.RelationshipService
	logger        *zap.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(
	trees *services.TreeService,
	relationships *services.RelationshipService,
	logger *zap.Logger,
) *TreeHandler {
	return &TreeHandler{
		trees:         trees,
		relationships: relationships,
		logger:        logger,
	}
}

// CreateTreeRequest represents the request body for creating a family tree
type CreateTreeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateTreeRequest represents the request body for updating a family tree
type UpdateTreeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// CreateTree handles POST /trees
func (h *TreeHandler) CreateTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var req CreateTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	tree, err := h.trees.CreateTree(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toTreeResponse(tree))
}

// GetTree handles GET /trees/{treeID}
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	tree, err := h.trees.GetTree(r.Context(), userID, treeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toTreeResponse(tree))
}

// ListTrees handles GET /trees
func (h *TreeHandler) ListTrees(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	trees, err := h.trees.ListTrees(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make([]TreeResponse, 0, len(trees))
	for _, t := range trees {
		out = append(out, toTreeResponse(t))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// UpdateTree handles PUT /trees/{treeID}
func (h *TreeHandler) UpdateTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req UpdateTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	tree, err := h.trees.UpdateTree(r.Context(), userID, treeID, req.Name, req.Description)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toTreeResponse(tree))
}

// DeleteTree handles DELETE /trees/{treeID}
func (h *TreeHandler) DeleteTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.trees.DeleteTree(r.Context(), userID, treeID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "family tree deleted"})
}

// ExportGraph handles GET /trees/{treeID}/graph
func (h *TreeHandler) ExportGraph(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if _, err := h.trees.GetTree(r.Context(), userID, treeID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	export, err := h.trees.Export(r.Context(), treeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, export)
}

// SuggestionResponse is the wire form of an inferred relationship
type SuggestionResponse struct {
	Category   string `json:"category"`
	Subtype    string `json:"subtype,omitempty"`
	PersonA    string `json:"person_a"`
	PersonB    string `json:"person_b"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// InferRelationships handles GET /trees/{treeID}/suggestions
func (h *TreeHandler) InferRelationships(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if _, err := h.trees.GetTree(r.Context(), userID, treeID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	suggestions, err := h.trees.Suggestions(r.Context(), treeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, SuggestionResponse{
			Category:   string(s.Category),
			Subtype:    s.Subtype,
			PersonA:    s.PersonA.String(),
			PersonB:    s.PersonB.String(),
			Confidence: string(s.Confidence),
			Reason:     s.Reason,
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Statistics handles GET /trees/{treeID}/statistics
func (h *TreeHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	if _, err := h.trees.GetTree(r.Context(), userID, treeID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	stats, err := h.relationships.Statistics(r.Context(), treeID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stats)
}
