package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"lineage-backend/application/services"
	"lineage-backend/infrastructure/config"
	"lineage-backend/interfaces/http/rest/handlers"
	"lineage-backend/interfaces/http/rest/middleware"
	"lineage-backend/pkg/auth"
	"lineage-backend/pkg/common"
	"lineage-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg           *config.Config
	trees         *services.TreeService
	people        *services.PersonService
	relationships *services.RelationshipService
	traversal     *services.TraversalService
	validator     *auth.JWTValidator
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	trees *services.TreeService,
	people *services.PersonService,
	relationships *services.RelationshipService,
	traversal *services.TraversalService,
	validator *auth.JWTValidator,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		trees:         trees,
		people:        people,
		relationships: relationships,
		traversal:     traversal,
		validator:     validator,
		metrics:       metrics,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Instrument(rt.metrics))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	treeHandler := handlers.NewTreeHandler(rt.trees, rt.relationships, rt.logger)
	personHandler := handlers.NewPersonHandler(rt.people, rt.traversal, rt.logger)
	relHandler := handlers.NewRelationshipHandler(rt.relationships, rt.traversal, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		// Category metadata is tree-independent
		r.Get("/categories", relHandler.ListCategories)

		r.Route("/trees", func(r chi.Router) {
			r.Post("/", treeHandler.CreateTree)
			r.Get("/", treeHandler.ListTrees)

			r.Route("/{treeID}", func(r chi.Router) {
				r.Get("/", treeHandler.GetTree)
				r.Put("/", treeHandler.UpdateTree)
				r.Delete("/", treeHandler.DeleteTree)
				r.Get("/graph", treeHandler.ExportGraph)
				r.Get("/suggestions", treeHandler.InferRelationships)
				r.Get("/statistics", treeHandler.Statistics)
				r.Get("/path", relHandler.FindPath)

				r.Route("/people", func(r chi.Router) {
					r.Post("/", personHandler.CreatePerson)
					r.Get("/", personHandler.ListPeople)

					r.Route("/{personID}", func(r chi.Router) {
						r.Get("/", personHandler.GetPerson)
						r.Put("/", personHandler.UpdatePerson)
						r.Delete("/", personHandler.DeletePerson)
						r.Get("/relationships", personHandler.Relatives)
						r.Get("/ancestors", personHandler.Ancestors)
						r.Get("/descendants", personHandler.Descendants)
						r.Get("/siblings", personHandler.Siblings)
						r.Get("/partners", personHandler.Partners)
						r.Get("/family-line", personHandler.FamilyLine)
						r.Get("/age", personHandler.Age)
					})
				})

				r.Route("/relationships", func(r chi.Router) {
					r.Post("/", relHandler.CreateRelationship)
					r.Get("/", relHandler.ListRelationships)
					r.Post("/validate", relHandler.ValidateRelationship)

					r.Route("/{relationshipID}", func(r chi.Router) {
						r.Get("/", relHandler.GetRelationship)
						r.Put("/", relHandler.UpdateRelationship)
						r.Delete("/", relHandler.DeleteRelationship)
					})
				})
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
