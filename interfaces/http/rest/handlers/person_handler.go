package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lineage-backend/application/services"
	"lineage-backend/domain/core/valueobjects"
	"lineage-backend/pkg/common"
	"lineage-backend/pkg/utils"
)

// PersonHandler handles person HTTP requests
type PersonHandler struct {
	people    *services.PersonService
	traversal *services.TraversalService
	logger    *zap.Logger
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(
	people *services.PersonService,
	traversal *services.TraversalService,
	logger *zap.Logger,
) *PersonHandler {
	return &PersonHandler{
		people:    people,
		traversal: traversal,
		logger:    logger,
	}
}

// CreatePersonRequest represents the request body for creating a person
type CreatePersonRequest struct {
	FirstName  string `json:"first_name" validate:"required,min=1,max=100"`
	LastName   string `json:"last_name" validate:"required,min=1,max=100"`
	MaidenName string `json:"maiden_name,omitempty" validate:"omitempty,max=100"`
	BirthDate  string `json:"birth_date,omitempty"`
	DeathDate  string `json:"death_date,omitempty"`
	BirthPlace string `json:"birth_place,omitempty" validate:"omitempty,max=200"`
	DeathPlace string `json:"death_place,omitempty" validate:"omitempty,max=200"`
	Bio        string `json:"bio,omitempty" validate:"omitempty,max=5000"`
}

// UpdatePersonRequest represents the request body for a partial person update
type UpdatePersonRequest struct {
	FirstName  *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	MaidenName *string `json:"maiden_name,omitempty" validate:"omitempty,max=100"`
	BirthDate  *string `json:"birth_date,omitempty"`
	DeathDate  *string `json:"death_date,omitempty"`
	BirthPlace *string `json:"birth_place,omitempty" validate:"omitempty,max=200"`
	DeathPlace *string `json:"death_place,omitempty" validate:"omitempty,max=200"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=5000"`
}

// CreatePerson handles POST /trees/{treeID}/people
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	birth, err := utils.ParseDate(req.BirthDate)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "birth_date must be YYYY-MM-DD")
		return
	}
	death, err := utils.ParseDate(req.DeathDate)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "death_date must be YYYY-MM-DD")
		return
	}

	person, err := h.people.CreatePerson(r.Context(), treeID, services.CreatePersonInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MaidenName: req.MaidenName,
		BirthDate:  birth,
		DeathDate:  death,
		BirthPlace: req.BirthPlace,
		DeathPlace: req.DeathPlace,
		Bio:        req.Bio,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, toPersonResponse(person))
}

// GetPerson handles GET /trees/{treeID}/people/{personID}
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	person, err := h.people.GetPerson(r.Context(), treeID, personID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPersonResponse(person))
}

// ListPeople handles GET /trees/{treeID}/people with offset/limit paging and
// optional ?q= name search.
func (h *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if term := r.URL.Query().Get("q"); term != "" {
		people, err := h.people.SearchPeople(r.Context(), treeID, term)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, toPersonResponses(people))
		return
	}

	page, err := h.people.ListPeople(r.Context(), treeID,
		queryInt(r, "offset", 0),
		queryInt(r, "limit", 0),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondPage(w, http.StatusOK, toPersonResponses(page.People), common.PaginationInfo{
		Offset:  page.Offset,
		Limit:   page.Limit,
		Total:   page.Total,
		HasNext: page.Offset+len(page.People) < page.Total,
	})
}

// UpdatePerson handles PUT /trees/{treeID}/people/{personID}
func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	input := services.UpdatePersonInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MaidenName: req.MaidenName,
		BirthPlace: req.BirthPlace,
		DeathPlace: req.DeathPlace,
		Bio:        req.Bio,
	}
	if req.BirthDate != nil {
		birth, err := utils.ParseDate(*req.BirthDate)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "birth_date must be YYYY-MM-DD")
			return
		}
		input.BirthDate = birth
	}
	if req.DeathDate != nil {
		death, err := utils.ParseDate(*req.DeathDate)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "death_date must be YYYY-MM-DD")
			return
		}
		input.DeathDate = death
	}

	person, err := h.people.UpdatePerson(r.Context(), treeID, personID, input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPersonResponse(person))
}

// DeletePerson handles DELETE /trees/{treeID}/people/{personID}
func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	if err := h.people.DeletePerson(r.Context(), treeID, personID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "person and their relationships deleted"})
}

// GenerationResponse is the wire form of an ancestor/descendant walk
type GenerationResponse struct {
	People    []PersonResponse `json:"people"`
	Truncated bool             `json:"truncated"`
}

// Ancestors handles GET /trees/{treeID}/people/{personID}/ancestors?generations=N
func (h *PersonHandler) Ancestors(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	res, err := h.traversal.Ancestors(r.Context(), treeID, personID, queryInt(r, "generations", -1))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, GenerationResponse{
		People:    toPersonResponses(res.People),
		Truncated: res.Truncated,
	})
}

// Descendants handles GET /trees/{treeID}/people/{personID}/descendants?generations=N
func (h *PersonHandler) Descendants(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	res, err := h.traversal.Descendants(r.Context(), treeID, personID, queryInt(r, "generations", -1))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, GenerationResponse{
		People:    toPersonResponses(res.People),
		Truncated: res.Truncated,
	})
}

// Siblings handles GET /trees/{treeID}/people/{personID}/siblings
func (h *PersonHandler) Siblings(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	siblings, err := h.traversal.Siblings(r.Context(), treeID, personID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toPersonResponses(siblings))
}

// Partners handles GET /trees/{treeID}/people/{personID}/partners
func (h *PersonHandler) Partners(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	steps, err := h.traversal.Partners(r.Context(), treeID, personID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toRelativeResponses(steps))
}

// FamilyLine handles GET /trees/{treeID}/people/{personID}/family-line
func (h *PersonHandler) FamilyLine(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	steps, err := h.traversal.FamilyLine(r.Context(), treeID, personID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toRelativeResponses(steps))
}

// Relatives handles GET /trees/{treeID}/people/{personID}/relationships
func (h *PersonHandler) Relatives(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	steps, err := h.traversal.Relatives(r.Context(), treeID, personID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toRelativeResponses(steps))
}

// AgeResponse is the wire form of an age query
type AgeResponse struct {
	Age   *int   `json:"age"`
	AsOf  string `json:"as_of"`
	Known bool   `json:"known"`
}

// Age handles GET /trees/{treeID}/people/{personID}/age?as_of=YYYY-MM-DD
func (h *PersonHandler) Age(w http.ResponseWriter, r *http.Request) {
	treeID, personID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = *parsed
	}

	age, known, err := h.people.AgeAt(r.Context(), treeID, personID, asOf)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	resp := AgeResponse{AsOf: asOf.Format("2006-01-02"), Known: known}
	if known {
		resp.Age = &age
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

func (h *PersonHandler) pathIDs(w http.ResponseWriter, r *http.Request) (valueobjects.TreeID, valueobjects.PersonID, bool) {
	treeID, err := treeIDParam(r)
	if err != nil {
		common.RespondAppError(w, err)
		return valueobjects.TreeID{}, valueobjects.PersonID{}, false
	}
	personID, err := personIDParam(r, "personID")
	if err != nil {
		common.RespondAppError(w, err)
		return valueobjects.TreeID{}, valueobjects.PersonID{}, false
	}
	return treeID, personID, true
}
