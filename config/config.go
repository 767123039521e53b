package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ModelPrice is a per-model pricing entry, dollars per token.
type ModelPrice struct {
	InputPricePerToken  float64
	OutputPricePerToken float64
}

// Config is the full set of tunables for the receiving pipeline, loaded
// once at startup and passed by value/pointer to every component —
// nothing reads the environment after Load returns.
type Config struct {
	Addr            string
	Env             string
	GracefulTimeout time.Duration

	DatabaseURL string
	RedisURL    string
	BlobBucket  string

	APIKeyHeader string
	LogLevel     string

	MaxBodyBytes int64

	// Intake gate
	MaxFileSizeMB               int64
	MinImageWidth               int
	MinImageHeight              int
	DQSThreshold                float64
	DQSBlurWeight               float64
	DQSGlareWeight              float64
	DQSContrastWeight           float64
	GlarePixelThreshold         int
	MaxUploadsPerHour           int
	UploadRateLimitWindowSeconds int
	AbuseBurstLimit             int
	AbuseBurstWindowSeconds     int

	// OCR
	OCREnginePriority []string
	OCREnginesEnabled map[string]bool
	OCRFallbackConfidence float64
	OCRMaxDimensionPx     int

	// Extraction / cost control
	MaxLLMCallsPerSession int
	MaxCostPerSession     float64
	LLMCoverageThreshold  float64
	LLMTableConfidenceMin float64
	ModelPricing          map[string]ModelPrice

	// Reconciliation
	FuzzyMatchThreshold float64

	// Temp file sweeper
	TempFileMaxAge time.Duration
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func defaultPricing() map[string]ModelPrice {
	return map[string]ModelPrice{
		"mini":  {InputPricePerToken: 0.00000015, OutputPricePerToken: 0.0000006},
		"large": {InputPricePerToken: 0.0000025, OutputPricePerToken: 0.00001},
	}
}

// Load reads a .env file if present, then the environment, applying the
// defaults from spec §6 for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		Env:             getEnv("ENV", "development"),
		GracefulTimeout: time.Duration(getEnvInt("GRACEFUL_TIMEOUT_SECONDS", 15)) * time.Second,

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		BlobBucket:  getEnv("BLOB_BUCKET", "receiving-uploads"),

		APIKeyHeader: getEnv("API_KEY_HEADER", "Authorization"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		MaxBodyBytes: getEnvInt64("MAX_BODY_BYTES", 32<<20),

		MaxFileSizeMB:               getEnvInt64("MAX_FILE_SIZE_MB", 15),
		MinImageWidth:               getEnvInt("MIN_IMAGE_WIDTH", 800),
		MinImageHeight:              getEnvInt("MIN_IMAGE_HEIGHT", 600),
		DQSThreshold:                getEnvFloat("DQS_THRESHOLD", 70.0),
		DQSBlurWeight:               getEnvFloat("DQS_BLUR_WEIGHT", 0.4),
		DQSGlareWeight:              getEnvFloat("DQS_GLARE_WEIGHT", 0.3),
		DQSContrastWeight:           getEnvFloat("DQS_CONTRAST_WEIGHT", 0.3),
		GlarePixelThreshold:         getEnvInt("GLARE_PIXEL_THRESHOLD", 250),
		MaxUploadsPerHour:           getEnvInt("MAX_UPLOADS_PER_HOUR", 50),
		UploadRateLimitWindowSeconds: getEnvInt("UPLOAD_RATE_LIMIT_WINDOW_SECONDS", 3600),
		AbuseBurstLimit:             getEnvInt("ABUSE_BURST_LIMIT", 10),
		AbuseBurstWindowSeconds:     getEnvInt("ABUSE_BURST_WINDOW_SECONDS", 1),

		OCREnginePriority: getEnvList("OCR_ENGINE_PRIORITY", []string{"accurate", "fast", "cloud"}),
		OCREnginesEnabled: map[string]bool{
			"fast":     getEnvBool("OCR_ENGINE_FAST_ENABLED", true),
			"accurate": getEnvBool("OCR_ENGINE_ACCURATE_ENABLED", true),
			"cloud":    getEnvBool("OCR_ENGINE_CLOUD_ENABLED", false),
			"pdf":      getEnvBool("OCR_ENGINE_PDF_ENABLED", true),
		},
		OCRFallbackConfidence: getEnvFloat("OCR_FALLBACK_CONFIDENCE", 0.6),
		OCRMaxDimensionPx:     getEnvInt("OCR_MAX_DIMENSION_PX", 3000),

		MaxLLMCallsPerSession: getEnvInt("MAX_LLM_CALLS_PER_SESSION", 3),
		MaxCostPerSession:     getEnvFloat("MAX_COST_PER_SESSION", 0.50),
		LLMCoverageThreshold:  getEnvFloat("LLM_COVERAGE_THRESHOLD", 0.8),
		LLMTableConfidenceMin: getEnvFloat("LLM_TABLE_CONFIDENCE_MIN", 0.7),
		ModelPricing:          defaultPricing(),

		FuzzyMatchThreshold: getEnvFloat("FUZZY_MATCH_THRESHOLD", 70.0),

		TempFileMaxAge: time.Duration(getEnvInt("TEMP_FILE_MAX_AGE_HOURS", 24)) * time.Hour,
	}

	return cfg, nil
}

// IsDevelopment reports whether the service should include verbose error
// detail (original error messages) in responses.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsProduction reports whether Env names production ("production" or
// "prod"). Any other non-development value (e.g. "test", "staging") makes
// both IsProduction and IsDevelopment false.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
