package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Providers accepted in LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port string

	// Auth; empty disables bearer checks.
	APIKey string

	// Model backend
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	Temperature   float32
	StreamTimeout time.Duration

	// Generation limits
	MaxConcurrentGenerations int
	GenerationStoreSize      int
	GenerationTTL            time.Duration

	// Request limits
	MaxRequestBytes int64

	// Parsing
	SplitFenceAware bool
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none)
// into the environment. Variables already set are left alone, and missing
// files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("COMPGEN_API_KEY"),

		Provider:      strings.ToLower(envOr("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		Temperature:   envFloat32("LLM_TEMPERATURE", 0.7),
		StreamTimeout: envDuration("STREAM_TIMEOUT", 5*time.Minute),

		MaxConcurrentGenerations: envInt("MAX_CONCURRENT_GENERATIONS", 4),
		GenerationStoreSize:      envInt("GENERATION_STORE_SIZE", 256),
		GenerationTTL:            envDuration("GENERATION_TTL", 1*time.Hour),

		MaxRequestBytes: envInt64("MAX_REQUEST_BYTES", 1<<20), // 1MB

		SplitFenceAware: envBool("SPLIT_FENCE_AWARE", false),
	}

	if cfg.MaxConcurrentGenerations <= 0 {
		cfg.MaxConcurrentGenerations = 4
	}
	if cfg.GenerationStoreSize <= 0 {
		cfg.GenerationStoreSize = 256
	}
	if cfg.GenerationTTL <= 0 {
		cfg.GenerationTTL = 1 * time.Hour
	}
	if cfg.StreamTimeout <= 0 {
		cfg.StreamTimeout = 5 * time.Minute
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 1 << 20
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		cfg.Temperature = 0.7
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderGemini)
	}
	return nil
}

// Model returns the model name of the selected provider.
func (c Config) Model() string {
	if c.Provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
