package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Resource sources
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Default arbitration values
const (
	DefaultConfidenceThreshold = 0.70
	DefaultPatternConfidence   = 0.8
	DefaultFuzzyThreshold      = 0.4
)

// Fuzzy search algorithms
const (
	FuzzyEditDistance = "edit_distance"
	FuzzySubsequence  = "subsequence"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Resources  ResourcesConfig
	Classifier ClassifierConfig
	Logging    LoggingConfig

	// Warnings lists environment values that were ignored in favour of defaults.
	// Load runs before any logger exists, so callers log them once they have one.
	Warnings []string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the parts below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// ResourcesConfig holds where the static classifier artifacts come from
type ResourcesConfig struct {
	Source           string // file or postgres
	VocabularyPath   string
	ModelPath        string
	DatasetPath      string
	FuzzyDatasetPath string
	LoadTimeout      time.Duration
}

// ClassifierConfig holds the arbitration thresholds
type ClassifierConfig struct {
	ConfidenceThreshold float64
	PatternConfidence   float64
	FuzzyThreshold      float64
	FuzzyAlgorithm      string
}

// DefaultClassifierConfig returns the thresholds used when nothing is configured
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		PatternConfidence:   DefaultPatternConfidence,
		FuzzyThreshold:      DefaultFuzzyThreshold,
		FuzzyAlgorithm:      FuzzyEditDistance,
	}
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	env := &envReader{}
	defaults := DefaultClassifierConfig()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               env.getInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "intent_engine"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     env.getInt("PG_MAX_CONNECTIONS", 5),
			MaxIdleConnections: env.getInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:           env.getInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Request-ID"),
		},
		Resources: ResourcesConfig{
			Source:           getEnv("RESOURCE_SOURCE", SourceFile),
			VocabularyPath:   getEnv("VOCABULARY_PATH", "data/vocabulary.json"),
			ModelPath:        getEnv("MODEL_PATH", "data/model.json"),
			DatasetPath:      getEnv("DATASET_PATH", "data/dataset.json"),
			FuzzyDatasetPath: getEnv("FUZZY_DATASET_PATH", "data/fuzzy_dataset.json"),
			LoadTimeout:      time.Duration(env.getInt("RESOURCE_LOAD_TIMEOUT", 30)) * time.Second,
		},
		Classifier: ClassifierConfig{
			ConfidenceThreshold: env.getFloat("CLASSIFIER_CONFIDENCE_THRESHOLD", defaults.ConfidenceThreshold),
			PatternConfidence:   env.getFloat("CLASSIFIER_PATTERN_CONFIDENCE", defaults.PatternConfidence),
			FuzzyThreshold:      env.getFloat("FUZZY_THRESHOLD", defaults.FuzzyThreshold),
			FuzzyAlgorithm:      getEnv("FUZZY_ALGORITHM", defaults.FuzzyAlgorithm),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.Warnings = env.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	switch c.Resources.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("invalid RESOURCE_SOURCE %q: must be %q or %q", c.Resources.Source, SourceFile, SourcePostgres)
	}

	switch c.Classifier.FuzzyAlgorithm {
	case FuzzyEditDistance, FuzzySubsequence:
	default:
		return fmt.Errorf("invalid FUZZY_ALGORITHM %q: must be %q or %q", c.Classifier.FuzzyAlgorithm, FuzzyEditDistance, FuzzySubsequence)
	}

	unitRange := map[string]float64{
		"CLASSIFIER_CONFIDENCE_THRESHOLD": c.Classifier.ConfidenceThreshold,
		"CLASSIFIER_PATTERN_CONFIDENCE":   c.Classifier.PatternConfidence,
		"FUZZY_THRESHOLD":                 c.Classifier.FuzzyThreshold,
	}
	for key, value := range unitRange {
		if value < 0 || value > 1 {
			return fmt.Errorf("invalid %s %v: must be within [0, 1]", key, value)
		}
	}

	if c.Resources.LoadTimeout <= 0 {
		return fmt.Errorf("invalid RESOURCE_LOAD_TIMEOUT: must be positive")
	}

	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envReader parses typed variables and records the ones it had to ignore
type envReader struct {
	warnings []string
}

func (r *envReader) getInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("Invalid integer value for %s, using default %d", key, defaultValue))
		return defaultValue
	}
	return value
}

func (r *envReader) getFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("Invalid float value for %s, using default %v", key, defaultValue))
		return defaultValue
	}
	return value
}
