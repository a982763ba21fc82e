package config

import (
	"os"
	"strconv"
)

// Config collects the environment configuration for the service. Every field
// has a working default except GeminiAPIKey: when that is empty the service
// runs in fallback mode instead of failing startup.
type Config struct {
	Port           string
	GeminiAPIKey   string
	DataDir        string
	UploadDir      string
	OllamaURL      string
	EmbeddingModel string
	FrontendURL    string
	ChunkSize      int
	ChunkOverlap   int

	// Optional S3-compatible archival of uploaded source files. Archival is
	// disabled when any of these is empty.
	R2AccountID       string
	R2Bucket          string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2PublicURL       string
}

// Load reads configuration from the environment. godotenv is expected to have
// been loaded by the caller.
func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8000"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		DataDir:        getenv("DATA_DIR", "data/chromem"),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		OllamaURL:      getenv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel: getenv("EMBEDDING_MODEL", "nomic-embed-text"),
		FrontendURL:    getenv("FRONTEND_URL", "*"),
		ChunkSize:      getenvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:   getenvInt("CHUNK_OVERLAP", 100),

		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}
}

// ArchiveConfigured reports whether all archival settings are present.
func (c *Config) ArchiveConfigured() bool {
	return c.R2AccountID != "" && c.R2Bucket != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2PublicURL != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
