package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lineage-backend/application/services"
	domaincfg "lineage-backend/domain/config"
	"lineage-backend/infrastructure/config"
	"lineage-backend/infrastructure/persistence/memory"
	"lineage-backend/pkg/auth"
	"lineage-backend/pkg/common"
	"lineage-backend/pkg/observability"
)

type apiClient struct {
	handler http.Handler
	token   string
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()

	logger := zap.NewNop()
	cfg := &config.Config{
		Environment:       "test",
		PersistenceDriver: config.DriverMemory,
		JWTSecret:         "test-secret",
		Domain:            *domaincfg.DefaultDomainConfig(),
	}

	store := memory.NewStore()
	treeRepo := memory.NewTreeRepository(store)
	personRepo := memory.NewPersonRepository(store)
	relRepo := memory.NewRelationshipRepository(store)

	loader := services.NewGraphLoader(treeRepo, personRepo, relRepo)
	locks := services.NewTreeLockManager()
	relValidator := services.NewRelationshipValidator(cfg.Domain, logger)

	trees := services.NewTreeService(treeRepo, loader, services.NewExportService(), services.NewInferenceEngine(), locks, logger)
	people := services.NewPersonService(treeRepo, personRepo, relRepo, locks, cfg.Domain, logger)
	relationships := services.NewRelationshipService(treeRepo, personRepo, relRepo, loader, relValidator, locks, cfg.Domain, logger)
	traversal := services.NewTraversalService(loader, locks, cfg.Domain, logger)

	jwtValidator := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
	token, err := jwtValidator.Issue("user-1", time.Hour)
	require.NoError(t, err)

	router := NewRouter(cfg, trees, people, relationships, traversal, jwtValidator, observability.NoopMetrics(logger), logger)
	return &apiClient{handler: router.Setup(), token: token}
}

func (c *apiClient) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope common.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "expected success envelope, got %s", rec.Body.String())

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *common.ErrorInfo {
	t.Helper()

	var envelope common.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	return envelope.Error
}

func TestRouter_HealthEndpointsAreOpen(t *testing.T) {
	c := newAPIClient(t)
	c.token = ""

	assert.Equal(t, http.StatusOK, c.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(t, http.MethodGet, "/ready", nil).Code)
}

func TestRouter_APIRequiresBearerToken(t *testing.T) {
	c := newAPIClient(t)
	c.token = ""

	rec := c.do(t, http.MethodGet, "/api/v1/trees/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_TreePersonRelationshipFlow(t *testing.T) {
	c := newAPIClient(t)

	// create a tree
	var tree struct {
		ID string `json:"id"`
	}
	rec := c.do(t, http.MethodPost, "/api/v1/trees/", map[string]string{"name": "Hale Family"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &tree)

	// add two people
	var mom, kid struct {
		ID string `json:"id"`
	}
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/people/", map[string]string{
		"first_name": "Maria", "last_name": "Hale", "birth_date": "1930-05-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &mom)

	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/people/", map[string]string{
		"first_name": "Margaret", "last_name": "Hale", "birth_date": "1955-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &kid)

	// link them
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/relationships/", map[string]interface{}{
		"from_person_id":        mom.ID,
		"to_person_id":          kid.ID,
		"category":              "family_line",
		"subtype":               "biological",
		"generation_difference": -1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// the child's ancestors now include the parent
	var ancestors struct {
		People []struct {
			ID string `json:"id"`
		} `json:"people"`
		Truncated bool `json:"truncated"`
	}
	rec = c.do(t, http.MethodGet, "/api/v1/trees/"+tree.ID+"/people/"+kid.ID+"/ancestors", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &ancestors)
	require.Len(t, ancestors.People, 1)
	assert.Equal(t, mom.ID, ancestors.People[0].ID)

	// graph export sees both nodes and the edge
	var export struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	rec = c.do(t, http.MethodGet, "/api/v1/trees/"+tree.ID+"/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &export)
	assert.Len(t, export.Nodes, 2)
	assert.Len(t, export.Edges, 1)
}

func TestRouter_DuplicateRelationshipConflict(t *testing.T) {
	c := newAPIClient(t)

	var tree struct {
		ID string `json:"id"`
	}
	rec := c.do(t, http.MethodPost, "/api/v1/trees/", map[string]string{"name": "Tree"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &tree)

	var a, b struct {
		ID string `json:"id"`
	}
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/people/", map[string]string{"first_name": "A", "last_name": "X"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &a)
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/people/", map[string]string{"first_name": "B", "last_name": "X"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &b)

	body := map[string]interface{}{
		"from_person_id": a.ID,
		"to_person_id":   b.ID,
		"category":       "partner",
		"subtype":        "married",
	}
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/relationships/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/relationships/", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_RELATIONSHIP", decodeError(t, rec).Code)

	// validate-only gives the same verdict without the side effect
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/relationships/validate", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_MissingGenerationDifferenceIsUnprocessable(t *testing.T) {
	c := newAPIClient(t)

	var tree struct {
		ID string `json:"id"`
	}
	rec := c.do(t, http.MethodPost, "/api/v1/trees/", map[string]string{"name": "Tree"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &tree)

	var a, b struct {
		ID string `json:"id"`
	}
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/people/", map[string]string{"first_name": "A", "last_name": "X"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &a)
	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/people/", map[string]string{"first_name": "B", "last_name": "X"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &b)

	rec = c.do(t, http.MethodPost, "/api/v1/trees/"+tree.ID+"/relationships/", map[string]interface{}{
		"from_person_id": a.ID,
		"to_person_id":   b.ID,
		"category":       "family_line",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MISSING_GENERATION_DIFFERENCE", decodeError(t, rec).Code)
}

func TestRouter_OtherUsersTreeIsInvisible(t *testing.T) {
	c := newAPIClient(t)

	var tree struct {
		ID string `json:"id"`
	}
	rec := c.do(t, http.MethodPost, "/api/v1/trees/", map[string]string{"name": "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &tree)

	// a token for a different user sees 404, not 403
	other := newAPIClient(t)
	other.handler = c.handler
	intruderValidator := auth.NewJWTValidator("test-secret", "")
	token, err := intruderValidator.Issue("user-2", time.Hour)
	require.NoError(t, err)
	other.token = token

	rec = other.do(t, http.MethodGet, "/api/v1/trees/"+tree.ID+"/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CategoriesEndpoint(t *testing.T) {
	c := newAPIClient(t)

	var cats []struct {
		Category      string   `json:"category"`
		ValidSubtypes []string `json:"valid_subtypes"`
	}
	rec := c.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cats)
	require.Len(t, cats, 4)
	assert.Equal(t, "family_line", cats[0].Category)
}
