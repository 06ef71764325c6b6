package di

import (
	"go.uber.org/zap"

	"lineage-backend/application/ports"
	"lineage-backend/application/services"
	"lineage-backend/infrastructure/config"
	"lineage-backend/pkg/auth"
	"lineage-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config              *config.Config
	Logger              *zap.Logger
	Repositories        ports.Repositories
	TreeService         *services.TreeService
	PersonService       *services.PersonService
	RelationshipService *services.RelationshipService
	TraversalService    *services.TraversalService
	JWTValidator        *auth.JWTValidator
	Metrics             *observability.Metrics
}

// Close releases container resources
func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
