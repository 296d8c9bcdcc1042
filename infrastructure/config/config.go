package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ServiceName     string        `yaml:"service_name"`
	Version         string        `yaml:"version"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region"`
	TableName        string `yaml:"table_name"`
	SKPKIndexName    string `yaml:"sk_pk_index_name"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	EventBusName     string `yaml:"event_bus_name"`
	EventSource      string `yaml:"event_source"`
	ImageBucket      string `yaml:"image_bucket"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"lambda_function_name"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret         string `yaml:"jwt_secret"`
	JWTIssuer         string `yaml:"jwt_issuer"`
	JWTAudience       string `yaml:"jwt_audience"`
	SessionCookieName string `yaml:"session_cookie_name"`

	// Rate limiting, in requests per minute
	IPRateLimit           int  `yaml:"ip_rate_limit"`
	UserRateLimit         int  `yaml:"user_rate_limit"`
	DistributedRateLimits bool `yaml:"distributed_rate_limits"`

	// HTTP
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerTimeout     time.Duration `yaml:"breaker_timeout"`

	// Observability
	MetricsNamespace string `yaml:"metrics_namespace"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
	EnableEvents  bool `yaml:"enable_events"`
}

// defaults returns the configuration used when neither a file nor the
// environment set a value
func defaults() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		ServiceName:        "plant-backend",
		Version:            "dev",
		ShutdownTimeout:    15 * time.Second,
		AWSRegion:          "us-west-2",
		TableName:          "plants",
		SKPKIndexName:      "SK-PK-index",
		EventBusName:       "plant-events",
		EventSource:        "plant-backend",
		ImageBucket:        "plant-images",
		SessionCookieName:  "session_token",
		JWTIssuer:          "plant-backend",
		LogLevel:           "info",
		IPRateLimit:        300,
		UserRateLimit:      120,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
		MetricsNamespace:   "PlantBackend",
		EnableCORS:         true,
		EnableEvents:       true,
	}
}

// LoadConfig loads configuration from an optional YAML file named by
// CONFIG_FILE, then from environment variables. The environment wins.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.Version = getEnv("VERSION", c.Version)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.TableName = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.TableName))
	c.SKPKIndexName = getEnv("SK_PK_INDEX_NAME", c.SKPKIndexName)
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)
	c.EventSource = getEnv("EVENT_SOURCE", c.EventSource)
	c.ImageBucket = getEnv("IMAGE_BUCKET", c.ImageBucket)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda)
	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", c.LambdaFunctionName)
	if c.LambdaFunctionName != "" {
		c.IsLambda = true
	}

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTAudience = getEnv("JWT_AUDIENCE", c.JWTAudience)
	c.SessionCookieName = getEnv("SESSION_COOKIE_NAME", c.SessionCookieName)

	c.IPRateLimit = getEnvInt("IP_RATE_LIMIT", c.IPRateLimit)
	c.UserRateLimit = getEnvInt("USER_RATE_LIMIT", c.UserRateLimit)
	c.DistributedRateLimits = getEnvBool("DISTRIBUTED_RATE_LIMITS", c.DistributedRateLimits)

	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.BreakerMaxFailures = uint32(getEnvInt("BREAKER_MAX_FAILURES", int(c.BreakerMaxFailures)))
	c.BreakerTimeout = getEnvDuration("BREAKER_TIMEOUT", c.BreakerTimeout)

	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.SKPKIndexName == "" {
		return fmt.Errorf("SK_PK_INDEX_NAME is required")
	}
	if c.IPRateLimit <= 0 || c.UserRateLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.EnableEvents && c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
		if c.ImageBucket == "" {
			return fmt.Errorf("IMAGE_BUCKET is required")
		}
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("wildcard CORS origin is not allowed in production")
			}
		}
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

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration parses values such as "30s"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
