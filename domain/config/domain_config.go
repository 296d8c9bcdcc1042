package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Plant constraints
	MaxPlantsPerUser   int
	MaxParentsPerPlant int
	MaxNameLength      int
	MinNameLength      int
	MaxSpeciesLength   int
	MaxLocationLength  int
	MaxSourceLength    int
	MaxNotesLength     int

	// Lineage constraints
	MaxLineageNodes int
	LineageCacheTTL time.Duration

	// Session constraints
	SessionTimeout time.Duration

	// Validation settings
	AllowSelfParent       bool
	AllowFutureSourceDate bool

	// Feature flags
	EnableLineageCache bool
	EnableImageCleanup bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxPlantsPerUser:   5000,
		MaxParentsPerPlant: 20,
		MaxNameLength:      200,
		MinNameLength:      1,
		MaxSpeciesLength:   200,
		MaxLocationLength:  200,
		MaxSourceLength:    200,
		MaxNotesLength:     10000,

		MaxLineageNodes: 20000,
		LineageCacheTTL: 30 * time.Second,

		SessionTimeout: 30 * 24 * time.Hour,

		AllowSelfParent:       false,
		AllowFutureSourceDate: false,

		EnableLineageCache: true,
		EnableImageCleanup: true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxPlantsPerUser = 2000
	config.MaxNotesLength = 5000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxPlantsPerUser = 100000
	config.AllowFutureSourceDate = true
	config.LineageCacheTTL = 0
	config.EnableLineageCache = false

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinNameLength < 0 || c.MaxNameLength < c.MinNameLength {
		return errInvalidConfig("name length bounds are inconsistent")
	}
	if c.MaxParentsPerPlant < 1 {
		return errInvalidConfig("plants must allow at least one parent")
	}
	if c.LineageCacheTTL < 0 {
		return errInvalidConfig("lineage cache ttl cannot be negative")
	}
	return nil
}

type errInvalidConfig string

func (e errInvalidConfig) Error() string {
	return "invalid domain config: " + string(e)
}
