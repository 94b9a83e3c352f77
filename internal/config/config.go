// ABOUTME: Centralized configuration for the medrag server and CLI
// ABOUTME: Defaults, then an optional TOML file, then environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read when MEDRAG_CONFIG is unset and the file exists
const DefaultConfigFile = "medrag.toml"

// Embedding providers
const (
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

// DefaultLLMBaseURL is Gemini's OpenAI-compatible endpoint
const DefaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds all configuration for medrag
type Config struct {
	// Server settings
	Addr        string  `toml:"addr"`
	MaxUploadMB int     `toml:"max_upload_mb"`
	ChatRate    float64 `toml:"chat_rate"`
	ChatBurst   int     `toml:"chat_burst"`
	WatchIndex  bool    `toml:"watch_index"`
	LogLevel    string  `toml:"log_level"`

	// Storage locations
	DataDir  string `toml:"data_dir"`
	IndexDir string `toml:"index_dir"`

	// Embedding settings
	EmbeddingProvider    string `toml:"embedding_provider"`
	OpenAIKey            string `toml:"-"`
	OpenAIBaseURL        string `toml:"openai_base_url"`
	EmbeddingModel       string `toml:"embedding_model"`
	EmbeddingDimension   int    `toml:"embedding_dimension"`
	EmbeddingBatchSize   int    `toml:"embedding_batch_size"`
	EmbeddingConcurrency int    `toml:"embedding_concurrency"`

	// Answer generation settings
	LLMKey            string `toml:"-"`
	LLMBaseURL        string `toml:"llm_base_url"`
	LLMModel          string `toml:"llm_model"`
	LLMTimeoutSeconds int    `toml:"llm_timeout_seconds"`

	// Retrieval and chunking settings
	TopK          int `toml:"top_k"`
	ChunkSize     int `toml:"chunk_size"`
	ChunkOverlap  int `toml:"chunk_overlap"`
	SummaryLength int `toml:"summary_length"`
	RecentSources int `toml:"recent_sources"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Addr:                 ":8000",
		MaxUploadMB:          50,
		ChatBurst:            5,
		WatchIndex:           true,
		LogLevel:             "info",
		DataDir:              "data",
		IndexDir:             "index",
		EmbeddingModel:       "text-embedding-3-small",
		EmbeddingBatchSize:   64,
		EmbeddingConcurrency: 4,
		LLMBaseURL:           DefaultLLMBaseURL,
		LLMModel:             "gemini-2.5-flash",
		LLMTimeoutSeconds:    60,
		TopK:                 3,
		ChunkSize:            1000,
		ChunkOverlap:         200,
		SummaryLength:        240,
		RecentSources:        5,
	}
}

// Load reads configuration using MEDRAG_CONFIG (or ./medrag.toml) as the file layer
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("MEDRAG_CONFIG"))
}

// LoadFrom reads configuration with an explicit TOML file path. An empty path
// falls back to DefaultConfigFile when it exists.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.mergeEnv()

	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Addr = getEnv("MEDRAG_ADDR", c.Addr)
	c.MaxUploadMB = getEnvInt("MEDRAG_MAX_UPLOAD_MB", c.MaxUploadMB)
	c.ChatRate = getEnvFloat("MEDRAG_CHAT_RATE", c.ChatRate)
	c.ChatBurst = getEnvInt("MEDRAG_CHAT_BURST", c.ChatBurst)
	c.WatchIndex = getEnvBool("MEDRAG_WATCH_INDEX", c.WatchIndex)
	c.LogLevel = getEnv("MEDRAG_LOG_LEVEL", c.LogLevel)

	c.DataDir = getEnv("MEDRAG_DATA_DIR", c.DataDir)
	c.IndexDir = getEnv("MEDRAG_INDEX_DIR", c.IndexDir)

	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.EmbeddingProvider = getEnv("MEDRAG_EMBEDDING_PROVIDER", c.EmbeddingProvider)
	if c.EmbeddingProvider == "" {
		c.EmbeddingProvider = ProviderHash
		if c.OpenAIKey != "" {
			c.EmbeddingProvider = ProviderOpenAI
		}
	}
	c.EmbeddingModel = getEnv("MEDRAG_EMBEDDING_MODEL", c.EmbeddingModel)
	c.EmbeddingDimension = getEnvInt("MEDRAG_EMBEDDING_DIMENSION", c.EmbeddingDimension)
	c.EmbeddingBatchSize = getEnvInt("MEDRAG_EMBEDDING_BATCH_SIZE", c.EmbeddingBatchSize)
	c.EmbeddingConcurrency = getEnvInt("MEDRAG_EMBEDDING_CONCURRENCY", c.EmbeddingConcurrency)

	c.LLMKey = getEnv("GEMINI_API_KEY", os.Getenv("LLM_API_KEY"))
	c.LLMBaseURL = getEnv("MEDRAG_LLM_BASE_URL", c.LLMBaseURL)
	c.LLMModel = getEnv("MEDRAG_LLM_MODEL", c.LLMModel)
	c.LLMTimeoutSeconds = getEnvInt("MEDRAG_LLM_TIMEOUT_SECONDS", c.LLMTimeoutSeconds)

	c.TopK = getEnvInt("MEDRAG_TOP_K", c.TopK)
	c.ChunkSize = getEnvInt("MEDRAG_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getEnvInt("MEDRAG_CHUNK_OVERLAP", c.ChunkOverlap)
	c.SummaryLength = getEnvInt("MEDRAG_SUMMARY_LENGTH", c.SummaryLength)
	c.RecentSources = getEnvInt("MEDRAG_RECENT_SOURCES", c.RecentSources)
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("MEDRAG_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("MEDRAG_CHUNK_OVERLAP must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("MEDRAG_TOP_K must be positive, got %d", c.TopK)
	}
	if c.EmbeddingProvider != ProviderOpenAI && c.EmbeddingProvider != ProviderHash {
		return fmt.Errorf("MEDRAG_EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderHash, c.EmbeddingProvider)
	}
	if c.EmbeddingDimension < 0 {
		return fmt.Errorf("MEDRAG_EMBEDDING_DIMENSION must be >= 0, got %d", c.EmbeddingDimension)
	}
	if c.ChatRate < 0 {
		return fmt.Errorf("MEDRAG_CHAT_RATE must be >= 0, got %f", c.ChatRate)
	}
	return nil
}

// LLMTimeout returns the per-call timeout for answer generation
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// UploadDir is where uploaded documents are written
func (c *Config) UploadDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// JobsDBPath is the SQLite file holding ingestion job records
func (c *Config) JobsDBPath() string {
	return filepath.Join(c.DataDir, "jobs.db")
}

// IndexPath is the persisted vector index
func (c *Config) IndexPath() string {
	return filepath.Join(c.IndexDir, "medrag.index")
}

// MetadataPath is the JSON array of chunk records parallel to the index
func (c *Config) MetadataPath() string {
	return filepath.Join(c.IndexDir, "medrag_metadata.json")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
