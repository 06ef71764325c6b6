package config

// Default limits applied when the environment does not override them
const (
	DefaultMaxPeoplePerTree        = 10000
	DefaultMaxRelationshipsPerTree = 50000
	DefaultMaxTraversalDepth       = 20
	DefaultMaxPathDepth            = 20
	DefaultPageSize                = 50
	DefaultMaxPageSize             = 500
)

// DomainConfig holds configurable business rules and traversal limits.
// It is loaded once at process start and treated as immutable afterwards.
type DomainConfig struct {
	// Tree constraints
	MaxPeoplePerTree        int
	MaxRelationshipsPerTree int

	// Traversal limits
	MaxTraversalDepth int // safety cap for ancestor/descendant walks
	MaxPathDepth      int // safety cap for relationship path search

	// Validation settings
	// StrictGenerationDifference rejects a generation difference supplied for a
	// non-family_line category instead of silently dropping it.
	StrictGenerationDifference bool
	// EnforcePartnerExclusivity rejects a new partner edge when either person
	// already has an active one.
	EnforcePartnerExclusivity bool

	// Query limits
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxPeoplePerTree:        DefaultMaxPeoplePerTree,
		MaxRelationshipsPerTree: DefaultMaxRelationshipsPerTree,

		MaxTraversalDepth: DefaultMaxTraversalDepth,
		MaxPathDepth:      DefaultMaxPathDepth,

		StrictGenerationDifference: false,
		EnforcePartnerExclusivity:  false,

		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
	}
}

// ClampGenerations clamps a requested generation bound to the safety cap.
// A negative request means "unbounded", which also clamps to the cap.
func (c *DomainConfig) ClampGenerations(requested int) int {
	if requested < 0 || requested > c.MaxTraversalDepth {
		return c.MaxTraversalDepth
	}
	return requested
}

// ClampPathDepth clamps a requested path search depth to the safety cap.
func (c *DomainConfig) ClampPathDepth(requested int) int {
	if requested <= 0 || requested > c.MaxPathDepth {
		return c.MaxPathDepth
	}
	return requested
}
