package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	OpenAI      OpenAIConfig
	OTEL        OTELConfig
	Matching    MatchingConfig
	Corpus      CorpusConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	MCPEnabled     bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           int
	Password       string
	DB             int
	EmbeddingTTL   time.Duration
	EmbeddingCache bool
}

// OpenAIConfig holds the embedding endpoint configuration
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	EmbeddingModel    string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// MatchingConfig holds the options recognized by the search pipeline
type MatchingConfig struct {
	Strategy               string
	SemanticThreshold      float64
	DefaultFacilityLimit   int
	DefaultProviderLimit   int
	MaxResultLimit         int
	SkipRankingOnEmergency bool
	HoursTimezone          string
	SynonymsFile           string
}

// CorpusConfig selects where the snapshot is loaded from
type CorpusConfig struct {
	// Source is "file" or "postgres".
	Source          string
	FacilitiesPath  string
	ProvidersPath   string
	PostalCodesPath string
	RefreshInterval time.Duration
	// UpdateEvents subscribes the server to corpus update events on Redis
	// and makes the seeder publish them.
	UpdateEvents bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MCPEnabled:     getEnvAsBool("MCP_ENABLED", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "carefinder"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnvAsInt("REDIS_PORT", 6379),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			EmbeddingTTL:   getEnvAsDuration("EMBEDDING_CACHE_TTL", 7*24*time.Hour),
			EmbeddingCache: getEnvAsBool("EMBEDDING_CACHE_ENABLED", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", ""),
			EmbeddingModel:    getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			RequestsPerSecond: getEnvAsFloat("OPENAI_REQUESTS_PER_SECOND", 5),
			Timeout:           getEnvAsDuration("OPENAI_TIMEOUT", 10*time.Second),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "carefinder"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Matching: MatchingConfig{
			Strategy:               strings.ToLower(getEnv("MATCH_STRATEGY", "keyword")),
			SemanticThreshold:      getEnvAsFloat("SEMANTIC_THRESHOLD", 0.5),
			DefaultFacilityLimit:   getEnvAsInt("DEFAULT_FACILITY_LIMIT", 7),
			DefaultProviderLimit:   getEnvAsInt("DEFAULT_PROVIDER_LIMIT", 5),
			MaxResultLimit:         getEnvAsInt("MAX_RESULT_LIMIT", 20),
			SkipRankingOnEmergency: getEnvAsBool("SKIP_RANKING_ON_EMERGENCY", true),
			HoursTimezone:          getEnv("HOURS_TIMEZONE", "America/Los_Angeles"),
			SynonymsFile:           getEnv("SYNONYMS_FILE", ""),
		},
		Corpus: CorpusConfig{
			Source:          strings.ToLower(getEnv("CORPUS_SOURCE", "file")),
			FacilitiesPath:  getEnv("CORPUS_FACILITIES_PATH", "data/locations.json"),
			ProvidersPath:   getEnv("CORPUS_PROVIDERS_PATH", "data/providers.json"),
			PostalCodesPath: getEnv("CORPUS_POSTAL_CODES_PATH", "data/postal_codes.json"),
			RefreshInterval: getEnvAsDuration("CORPUS_REFRESH_INTERVAL", 0),
			UpdateEvents:    getEnvAsBool("CORPUS_UPDATE_EVENTS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Matching.Strategy {
	case "keyword", "semantic", "hybrid":
	default:
		return fmt.Errorf("MATCH_STRATEGY must be keyword, semantic or hybrid, got %q", c.Matching.Strategy)
	}
	if c.Matching.SemanticThreshold < -1 || c.Matching.SemanticThreshold > 1 {
		return fmt.Errorf("SEMANTIC_THRESHOLD must be within [-1, 1], got %v", c.Matching.SemanticThreshold)
	}
	if c.Matching.MaxResultLimit <= 0 {
		return fmt.Errorf("MAX_RESULT_LIMIT must be positive, got %d", c.Matching.MaxResultLimit)
	}
	if _, err := time.LoadLocation(c.Matching.HoursTimezone); err != nil {
		return fmt.Errorf("HOURS_TIMEZONE: %w", err)
	}
	switch c.Corpus.Source {
	case "file", "postgres":
	default:
		return fmt.Errorf("CORPUS_SOURCE must be file or postgres, got %q", c.Corpus.Source)
	}
	if c.Matching.Strategy != "keyword" && c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for %s matching", c.Matching.Strategy)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
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
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
