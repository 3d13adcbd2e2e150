package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"realty-assistant/internal/retrieval"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL           string
	LLMModelName         string
	LLMAPIKey            string
	LLMRequestsPerSecond float64
	LLMTimeout           time.Duration

	EmbeddingBaseURL   string
	EmbeddingModelName string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int

	DBPath       string
	DocumentsDir string
	APIPort      string

	Retrieval     retrieval.Options
	MaxFileSizeMB int
	MaxPages      int
	HistoryLimit  int

	LogLevel  slog.Level
	LogFormat string
}

// SemanticSearchEnabled reports whether the Qdrant mirror and library search are configured.
func (c *Config) SemanticSearchEnabled() bool {
	return c.QdrantURL != "" && c.EmbeddingBaseURL != ""
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the result.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "claude-3-sonnet"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "document_chunks"),
		DBPath:             getEnv("DB_PATH", "./data/realty-assistant.db"),
		DocumentsDir:       getEnv("DOCUMENTS_DIR", ""),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.LLMRequestsPerSecond, err = getEnvFloat("LLM_REQUESTS_PER_SECOND", 0); err != nil {
		return nil, err
	}
	if cfg.LLMRequestsPerSecond < 0 {
		return nil, fmt.Errorf("LLM_REQUESTS_PER_SECOND must not be negative")
	}

	timeoutSeconds, err := getEnvInt("LLM_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.LLMTimeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.QdrantVectorSize, err = getEnvInt("QDRANT_VECTOR_SIZE", 0); err != nil {
		return nil, err
	}
	// The vector size must match the embedding model output, so it has no safe default.
	if cfg.SemanticSearchEnabled() && cfg.QdrantVectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0 when QDRANT_URL and EMBEDDING_BASE_URL are set")
	}

	defaults := retrieval.DefaultOptions()
	if cfg.Retrieval.ChunkSize, err = getEnvInt("CHUNK_SIZE", defaults.ChunkSize); err != nil {
		return nil, err
	}
	if cfg.Retrieval.Overlap, err = getEnvInt("CHUNK_OVERLAP", defaults.Overlap); err != nil {
		return nil, err
	}
	if cfg.Retrieval.TopK, err = getEnvInt("TOP_K", defaults.TopK); err != nil {
		return nil, err
	}
	if err := cfg.Retrieval.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}

	if cfg.MaxFileSizeMB, err = getEnvInt("MAX_FILE_SIZE_MB", 50); err != nil {
		return nil, err
	}
	if cfg.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE_MB must be greater than 0")
	}
	if cfg.MaxPages, err = getEnvInt("MAX_PAGES", 500); err != nil {
		return nil, err
	}
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("MAX_PAGES must be greater than 0")
	}
	if cfg.HistoryLimit, err = getEnvInt("HISTORY_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be greater than 0")
	}

	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.DocumentsDir != "" {
		info, err := os.Stat(cfg.DocumentsDir)
		if err != nil {
			return nil, fmt.Errorf("DOCUMENTS_DIR is not accessible: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("DOCUMENTS_DIR must be a directory: %s", cfg.DocumentsDir)
		}
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads the first .env file found in the working directory or up to five parents.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return value, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", raw)
	}
}
