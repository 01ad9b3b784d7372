package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Vector   VectorConfig   `mapstructure:"vector"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Matching MatchingConfig `mapstructure:"matching"`
	Reviews  ReviewsConfig  `mapstructure:"reviews"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey                string        `mapstructure:"api_key"`
	BaseURL               string        `mapstructure:"base_url"`
	ChatModel             string        `mapstructure:"chat_model"`
	EmbeddingModel        string        `mapstructure:"embedding_model"`         // reviews corpus
	ProductEmbeddingModel string        `mapstructure:"product_embedding_model"` // products corpus
	Timeout               time.Duration `mapstructure:"timeout"`
	RequestsPerSecond     float64       `mapstructure:"requests_per_second"`
}

// VectorConfig selects and configures the vector search backend
type VectorConfig struct {
	Backend        string `mapstructure:"backend"` // "pinecone" or "pgvector"
	PineconeAPIKey string `mapstructure:"pinecone_api_key"`
	ReviewsHost    string `mapstructure:"reviews_host"`
	ProductsHost   string `mapstructure:"products_host"`
	Namespace      string `mapstructure:"namespace"`
	PostgresURL    string `mapstructure:"postgres_url"`
	ReviewsTable   string `mapstructure:"reviews_table"`
	ProductsTable  string `mapstructure:"products_table"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// CatalogConfig holds the product catalog locations
type CatalogConfig struct {
	Path         string `mapstructure:"path"`
	FallbackPath string `mapstructure:"fallback_path"`
}

// MatchingConfig tunes the mention extractor
type MatchingConfig struct {
	RecommendationWindow int    `mapstructure:"recommendation_window"`
	ComprehensiveWindow  int    `mapstructure:"comprehensive_window"`
	MaxMentions          int    `mapstructure:"max_mentions"`
	MinMentions          int    `mapstructure:"min_mentions"`
	SectionMarker        string `mapstructure:"section_marker"`
	EnableDebugLogging   bool   `mapstructure:"enable_debug_logging"`
}

// ReviewsConfig tunes the review matcher
type ReviewsConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxPerProduct    int           `mapstructure:"max_per_product"`
	PrimaryThreshold float64       `mapstructure:"primary_threshold"`
	RelaxedThreshold float64       `mapstructure:"relaxed_threshold"`
	MinReviewScore   int           `mapstructure:"min_review_score"`
	SearchMultiplier int           `mapstructure:"search_multiplier"`
	IdentityMode     string        `mapstructure:"identity_mode"` // "subset" or "specific"
	Timeout          time.Duration `mapstructure:"timeout"`
	Concurrency      int           `mapstructure:"concurrency"`
}

// ChatConfig tunes the conversation flow
type ChatConfig struct {
	MaxQuestions      int `mapstructure:"max_questions"`
	MaxMessages       int `mapstructure:"max_messages"`
	ProductSearchTopK int `mapstructure:"product_search_top_k"`
}

// EventsConfig holds NATS configuration. An empty URL disables publishing.
type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Token   string `mapstructure:"token"`
	Subject string `mapstructure:"subject"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/hairstory/")

	// HAIRSTORY_REVIEWS_MAX_PER_PRODUCT -> reviews.max_per_product
	v.SetEnvPrefix("HAIRSTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile reads .env without overriding variables already set.
// A missing file is not an error.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"https://hairstory.com", "https://*.hairstory.com"})

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.product_embedding_model", "text-embedding-ada-002")
	v.SetDefault("openai.timeout", "30s")
	v.SetDefault("openai.requests_per_second", 10)

	// Vector defaults
	v.SetDefault("vector.backend", "pinecone")
	v.SetDefault("vector.pinecone_api_key", "")
	v.SetDefault("vector.reviews_host", "")
	v.SetDefault("vector.products_host", "")
	v.SetDefault("vector.namespace", "")
	v.SetDefault("vector.postgres_url", "")
	v.SetDefault("vector.reviews_table", "review_embeddings")
	v.SetDefault("vector.products_table", "product_embeddings")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.max_entries", 10000)

	// Catalog defaults
	v.SetDefault("catalog.path", "data/enhanced_products.json")
	v.SetDefault("catalog.fallback_path", "data/all_products.json")

	// Matching defaults
	v.SetDefault("matching.recommendation_window", 200)
	v.SetDefault("matching.comprehensive_window", 300)
	v.SetDefault("matching.max_mentions", 4)
	v.SetDefault("matching.min_mentions", 2)
	v.SetDefault("matching.section_marker", "what customers are saying")
	v.SetDefault("matching.enable_debug_logging", false)

	// Review defaults
	v.SetDefault("reviews.enabled", true)
	v.SetDefault("reviews.max_per_product", 2)
	v.SetDefault("reviews.primary_threshold", 4.5)
	v.SetDefault("reviews.relaxed_threshold", 4.0)
	v.SetDefault("reviews.min_review_score", 4)
	v.SetDefault("reviews.search_multiplier", 10)
	v.SetDefault("reviews.identity_mode", "subset")
	v.SetDefault("reviews.timeout", "10s")
	v.SetDefault("reviews.concurrency", 4)

	// Chat defaults
	v.SetDefault("chat.max_questions", 10)
	v.SetDefault("chat.max_messages", 20)
	v.SetDefault("chat.product_search_top_k", 5)

	// Events defaults
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.token", "")
	v.SetDefault("events.subject", "hairstory.recommendations")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set HAIRSTORY_OPENAI_API_KEY)")
	}

	switch config.Vector.Backend {
	case "pinecone":
		if config.Reviews.Enabled && (config.Vector.PineconeAPIKey == "" || config.Vector.ReviewsHost == "") {
			return fmt.Errorf("Pinecone API key and reviews host are required when reviews are enabled")
		}
	case "pgvector":
		if config.Vector.PostgresURL == "" {
			return fmt.Errorf("Postgres URL is required when vector backend is 'pgvector'")
		}
	default:
		return fmt.Errorf("vector backend must be 'pinecone' or 'pgvector', got: %s", config.Vector.Backend)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Reviews.IdentityMode != "subset" && config.Reviews.IdentityMode != "specific" {
		return fmt.Errorf("reviews identity mode must be 'subset' or 'specific', got: %s", config.Reviews.IdentityMode)
	}

	if config.Reviews.RelaxedThreshold > config.Reviews.PrimaryThreshold {
		return fmt.Errorf("reviews relaxed threshold %.1f exceeds primary threshold %.1f",
			config.Reviews.RelaxedThreshold, config.Reviews.PrimaryThreshold)
	}

	if config.Matching.MinMentions > config.Matching.MaxMentions {
		return fmt.Errorf("matching min mentions %d exceeds max mentions %d",
			config.Matching.MinMentions, config.Matching.MaxMentions)
	}

	return nil
}
