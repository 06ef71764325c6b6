package di

import (
	"context"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"lineage-backend/application/ports"
	"lineage-backend/application/services"
	domaincfg "lineage-backend/domain/config"
	"lineage-backend/infrastructure/config"
	dynamostore "lineage-backend/infrastructure/persistence/dynamodb"
	memorystore "lineage-backend/infrastructure/persistence/memory"
	"lineage-backend/pkg/auth"
	"lineage-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig exposes the domain limits from loaded configuration
func ProvideDomainConfig(cfg *config.Config) domaincfg.DomainConfig {
	return cfg.Domain
}

// ProvideRepositories selects the persistence driver from configuration
func ProvideRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.Repositories, error) {
	switch cfg.PersistenceDriver {
	case config.DriverDynamoDB:
		client, err := dynamostore.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return ports.Repositories{}, err
		}
		return provideDynamoRepositories(client, cfg, logger), nil
	default:
		return provideMemoryRepositories(), nil
	}
}

func provideMemoryRepositories() ports.Repositories {
	store := memorystore.NewStore()
	return ports.Repositories{
		Trees:         memorystore.NewTreeRepository(store),
		People:        memorystore.NewPersonRepository(store),
		Relationships: memorystore.NewRelationshipRepository(store),
	}
}

func provideDynamoRepositories(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.Repositories {
	relRepo := dynamostore.NewRelationshipRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
	return ports.Repositories{
		Trees:         dynamostore.NewTreeRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger),
		People:        dynamostore.NewPersonRepository(client, cfg.DynamoDBTable, cfg.IndexName, relRepo, logger),
		Relationships: relRepo,
	}
}

// ProvideTreeLockManager creates the per-tree write serialization
func ProvideTreeLockManager() *services.TreeLockManager {
	return services.NewTreeLockManager()
}

// ProvideGraphLoader creates the graph snapshot loader
func ProvideGraphLoader(repos ports.Repositories) *services.GraphLoader {
	return services.NewGraphLoader(repos.Trees, repos.People, repos.Relationships)
}

// ProvideValidator creates the relationship validator
func ProvideValidator(domain domaincfg.DomainConfig, logger *zap.Logger) *services.RelationshipValidator {
	return services.NewRelationshipValidator(domain, logger)
}

// ProvideInferenceEngine creates the inference engine
func ProvideInferenceEngine() *services.InferenceEngine {
	return services.NewInferenceEngine()
}

// ProvideExportService creates the graph exporter
func ProvideExportService() *services.ExportService {
	return services.NewExportService()
}

// ProvideTreeService creates the tree service
func ProvideTreeService(
	repos ports.Repositories,
	loader *services.GraphLoader,
	exporter *services.ExportService,
	inference *services.InferenceEngine,
	locks *services.TreeLockManager,
	logger *zap.Logger,
) *services.TreeService {
	return services.NewTreeService(repos.Trees, loader, exporter, inference, locks, logger)
}

// ProvidePersonService creates the person service
func ProvidePersonService(
	repos ports.Repositories,
	locks *services.TreeLockManager,
	domain domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.PersonService {
	return services.NewPersonService(repos.Trees, repos.People, repos.Relationships, locks, domain, logger)
}

// ProvideRelationshipService creates the relationship service
func ProvideRelationshipService(
	repos ports.Repositories,
	loader *services.GraphLoader,
	validator *services.RelationshipValidator,
	locks *services.TreeLockManager,
	domain domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.RelationshipService {
	return services.NewRelationshipService(
		repos.Trees, repos.People, repos.Relationships,
		loader, validator, locks, domain, logger,
	)
}

// ProvideTraversalService creates the traversal service
func ProvideTraversalService(
	loader *services.GraphLoader,
	locks *services.TreeLockManager,
	domain domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.TraversalService {
	return services.NewTraversalService(loader, locks, domain, logger)
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config) *auth.JWTValidator {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(secret, cfg.JWTIssuer)
}

// ProvideMetrics creates the metrics publisher
func ProvideMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Metrics, error) {
	return observability.NewMetrics(ctx, cfg.AWSRegion, cfg.EnableMetrics, logger)
}
