package config

import (
	"fmt"
	"os"
	"strconv"

	domaincfg "lineage-backend/domain/config"
)

// Persistence driver names accepted by PERSISTENCE_DRIVER
const (
	DriverMemory   = "memory"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Persistence
	PersistenceDriver string
	AWSRegion         string
	DynamoDBTable     string
	IndexName         string // GSI1 - direct person/relationship lookups by id

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool

	// Domain limits and policies
	Domain domaincfg.DomainConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		PersistenceDriver: getEnv("PERSISTENCE_DRIVER", DriverMemory),
		AWSRegion:         getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:     getEnv("DYNAMODB_TABLE", "lineage"),
		IndexName:         getEnv("INDEX_NAME", "DirectLookupIndex"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "lineage-backend"),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		Domain: domaincfg.DomainConfig{
			MaxPeoplePerTree:           getEnvInt("MAX_PEOPLE_PER_TREE", domaincfg.DefaultMaxPeoplePerTree),
			MaxRelationshipsPerTree:    getEnvInt("MAX_RELATIONSHIPS_PER_TREE", domaincfg.DefaultMaxRelationshipsPerTree),
			MaxTraversalDepth:          getEnvInt("MAX_TRAVERSAL_DEPTH", domaincfg.DefaultMaxTraversalDepth),
			MaxPathDepth:               getEnvInt("MAX_PATH_DEPTH", domaincfg.DefaultMaxPathDepth),
			StrictGenerationDifference: getEnvBool("STRICT_GENERATION_DIFFERENCE", false),
			EnforcePartnerExclusivity:  getEnvBool("ENFORCE_PARTNER_EXCLUSIVITY", false),
			DefaultPageSize:            getEnvInt("DEFAULT_PAGE_SIZE", domaincfg.DefaultPageSize),
			MaxPageSize:                getEnvInt("MAX_PAGE_SIZE", domaincfg.DefaultMaxPageSize),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.PersistenceDriver {
	case DriverMemory, DriverDynamoDB:
	default:
		return fmt.Errorf("unknown PERSISTENCE_DRIVER %q", c.PersistenceDriver)
	}

	if c.PersistenceDriver == DriverDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required with the dynamodb driver")
	}

	if c.Environment == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
