package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every HAIRSTORY_ variable for the duration of the test.
// Viper ignores empty variables.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "HAIRSTORY_") {
			t.Setenv(key, "")
		}
	}
}

// inTempDir runs the test from an empty directory so no config.yaml or .env is picked up
func inTempDir(t *testing.T) string {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
	return dir
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("HAIRSTORY_OPENAI_API_KEY", "test-key")
	t.Setenv("HAIRSTORY_VECTOR_PINECONE_API_KEY", "pc-key")
	t.Setenv("HAIRSTORY_VECTOR_REVIEWS_HOST", "reviews.svc.pinecone.io")
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when only required env vars set", func(t *testing.T) {
		inTempDir(t)
		clearEnv(t)
		setRequired(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.OpenAI.ChatModel != "gpt-4o-mini" {
			t.Errorf("OpenAI.ChatModel = %s, want gpt-4o-mini", cfg.OpenAI.ChatModel)
		}
		if cfg.OpenAI.EmbeddingModel != "text-embedding-3-small" {
			t.Errorf("OpenAI.EmbeddingModel = %s, want text-embedding-3-small", cfg.OpenAI.EmbeddingModel)
		}
		if cfg.OpenAI.Timeout != 30*time.Second {
			t.Errorf("OpenAI.Timeout = %v, want 30s", cfg.OpenAI.Timeout)
		}
		if cfg.Vector.Backend != "pinecone" {
			t.Errorf("Vector.Backend = %s, want pinecone", cfg.Vector.Backend)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Matching.RecommendationWindow != 200 || cfg.Matching.ComprehensiveWindow != 300 {
			t.Errorf("Matching windows = %d/%d, want 200/300", cfg.Matching.RecommendationWindow, cfg.Matching.ComprehensiveWindow)
		}
		if cfg.Matching.MaxMentions != 4 || cfg.Matching.MinMentions != 2 {
			t.Errorf("Matching mentions = %d/%d, want 4/2", cfg.Matching.MaxMentions, cfg.Matching.MinMentions)
		}
		if !cfg.Reviews.Enabled {
			t.Error("Reviews.Enabled = false, want true")
		}
		if cfg.Reviews.MaxPerProduct != 2 {
			t.Errorf("Reviews.MaxPerProduct = %d, want 2", cfg.Reviews.MaxPerProduct)
		}
		if cfg.Reviews.PrimaryThreshold != 4.5 || cfg.Reviews.RelaxedThreshold != 4.0 {
			t.Errorf("Reviews thresholds = %.1f/%.1f, want 4.5/4.0", cfg.Reviews.PrimaryThreshold, cfg.Reviews.RelaxedThreshold)
		}
		if cfg.Reviews.IdentityMode != "subset" {
			t.Errorf("Reviews.IdentityMode = %s, want subset", cfg.Reviews.IdentityMode)
		}
		if cfg.Reviews.Timeout != 10*time.Second {
			t.Errorf("Reviews.Timeout = %v, want 10s", cfg.Reviews.Timeout)
		}
		if cfg.Chat.MaxQuestions != 10 || cfg.Chat.MaxMessages != 20 {
			t.Errorf("Chat limits = %d/%d, want 10/20", cfg.Chat.MaxQuestions, cfg.Chat.MaxMessages)
		}
		if cfg.Events.NATSURL != "" {
			t.Errorf("Events.NATSURL = %s, want empty", cfg.Events.NATSURL)
		}
		if len(cfg.Server.AllowedOrigins) != 2 {
			t.Errorf("Server.AllowedOrigins = %v, want 2 entries", cfg.Server.AllowedOrigins)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		inTempDir(t)
		clearEnv(t)
		setRequired(t)
		t.Setenv("HAIRSTORY_SERVER_PORT", "9090")
		t.Setenv("HAIRSTORY_SERVER_ENVIRONMENT", "production")
		t.Setenv("HAIRSTORY_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
		t.Setenv("HAIRSTORY_CACHE_TYPE", "redis")
		t.Setenv("HAIRSTORY_CACHE_REDIS_URL", "redis://localhost:6379")
		t.Setenv("HAIRSTORY_CACHE_TTL", "1h")
		t.Setenv("HAIRSTORY_REVIEWS_ENABLED", "false")
		t.Setenv("HAIRSTORY_REVIEWS_MAX_PER_PRODUCT", "3")
		t.Setenv("HAIRSTORY_REVIEWS_IDENTITY_MODE", "specific")
		t.Setenv("HAIRSTORY_MATCHING_ENABLE_DEBUG_LOGGING", "true")
		t.Setenv("HAIRSTORY_EVENTS_NATS_URL", "nats://localhost:4222")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("Server.AllowedOrigins = %v, want [https://a.example https://b.example]", cfg.Server.AllowedOrigins)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Reviews.Enabled {
			t.Error("Reviews.Enabled = true, want false")
		}
		if cfg.Reviews.MaxPerProduct != 3 {
			t.Errorf("Reviews.MaxPerProduct = %d, want 3", cfg.Reviews.MaxPerProduct)
		}
		if cfg.Reviews.IdentityMode != "specific" {
			t.Errorf("Reviews.IdentityMode = %s, want specific", cfg.Reviews.IdentityMode)
		}
		if !cfg.Matching.EnableDebugLogging {
			t.Error("Matching.EnableDebugLogging = false, want true")
		}
		if cfg.Events.NATSURL != "nats://localhost:4222" {
			t.Errorf("Events.NATSURL = %s, want nats://localhost:4222", cfg.Events.NATSURL)
		}
	})

	t.Run("loads values from config file", func(t *testing.T) {
		dir := inTempDir(t)
		clearEnv(t)
		setRequired(t)
		yaml := "matching:\n  recommendation_window: 150\nreviews:\n  concurrency: 8\n"
		if err := os.WriteFile(dir+"/config.yaml", []byte(yaml), 0644); err != nil {
			t.Fatalf("Failed to create config.yaml: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Matching.RecommendationWindow != 150 {
			t.Errorf("Matching.RecommendationWindow = %d, want 150", cfg.Matching.RecommendationWindow)
		}
		if cfg.Reviews.Concurrency != 8 {
			t.Errorf("Reviews.Concurrency = %d, want 8", cfg.Reviews.Concurrency)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		inTempDir(t)
		clearEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing API key")
		}
		if err.Error() != "invalid configuration: OpenAI API key is required (set HAIRSTORY_OPENAI_API_KEY)" {
			t.Errorf("Load() error = %v, want 'OpenAI API key is required'", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OpenAI:   OpenAIConfig{APIKey: "k"},
			Vector:   VectorConfig{Backend: "pinecone", PineconeAPIKey: "pc", ReviewsHost: "h"},
			Cache:    CacheConfig{Type: "memory"},
			Matching: MatchingConfig{MaxMentions: 4, MinMentions: 2},
			Reviews:  ReviewsConfig{Enabled: true, IdentityMode: "subset", PrimaryThreshold: 4.5, RelaxedThreshold: 4.0},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid configuration", func(c *Config) {}, ""},
		{"invalid cache type", func(c *Config) { c.Cache.Type = "invalid" }, "cache type must be"},
		{"redis without URL", func(c *Config) { c.Cache.Type = "redis" }, "Redis URL is required"},
		{"unknown vector backend", func(c *Config) { c.Vector.Backend = "faiss" }, "vector backend must be"},
		{"pinecone without host", func(c *Config) { c.Vector.ReviewsHost = "" }, "reviews host are required"},
		{"pinecone host optional when reviews disabled", func(c *Config) {
			c.Vector.ReviewsHost = ""
			c.Reviews.Enabled = false
		}, ""},
		{"pgvector without URL", func(c *Config) { c.Vector.Backend = "pgvector" }, "Postgres URL is required"},
		{"pgvector with URL", func(c *Config) {
			c.Vector.Backend = "pgvector"
			c.Vector.PostgresURL = "postgres://localhost/hairstory"
		}, ""},
		{"unknown identity mode", func(c *Config) { c.Reviews.IdentityMode = "fuzzy" }, "identity mode must be"},
		{"relaxed above primary", func(c *Config) { c.Reviews.RelaxedThreshold = 5 }, "exceeds primary threshold"},
		{"min mentions above max", func(c *Config) { c.Matching.MinMentions = 5 }, "exceeds max mentions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		inTempDir(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables without overriding the environment", func(t *testing.T) {
		inTempDir(t)
		envContent := `
# Comment line
HAIRSTORY_TEST_VAR_1=value1

HAIRSTORY_TEST_VAR_2=from-file
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Setenv("HAIRSTORY_TEST_VAR_2", "from-env")
		t.Cleanup(func() { os.Unsetenv("HAIRSTORY_TEST_VAR_1") })

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if got := os.Getenv("HAIRSTORY_TEST_VAR_1"); got != "value1" {
			t.Errorf("HAIRSTORY_TEST_VAR_1 = %s, want value1", got)
		}
		if got := os.Getenv("HAIRSTORY_TEST_VAR_2"); got != "from-env" {
			t.Errorf("HAIRSTORY_TEST_VAR_2 = %s, want from-env", got)
		}
	})
}
