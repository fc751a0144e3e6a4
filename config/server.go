package config

import (
	"os"
	"strconv"
	"sync"
)

var (
	serverOnce   sync.Once
	serverConfig *ServerConfig
)

// ServerConfig carries the HTTP server and pipeline-wide settings.
type ServerConfig struct {
	Port           string
	AdminToken     string
	StorageBackend string // "s3" or "minio"
	OCREngine      string // "textract", "tesseract" or "" to disable
	PlansPath      string // optional YAML plan overrides
	AccountStore   string // "redis" or "memory"
	MaxUploadBytes int64
}

func GetServerConfig() *ServerConfig {
	serverOnce.Do(func() {
		loadEnv()

		serverConfig = &ServerConfig{
			Port:           envOr("SERVER_PORT", "8080"),
			AdminToken:     os.Getenv("ADMIN_TOKEN"),
			StorageBackend: envOr("STORAGE_BACKEND", "minio"),
			OCREngine:      os.Getenv("OCR_ENGINE"),
			PlansPath:      os.Getenv("PLANS_PATH"),
			AccountStore:   envOr("ACCOUNT_STORE", "memory"),
			MaxUploadBytes: envOrInt64("MAX_UPLOAD_BYTES", 50<<20),
		}
	})
	return serverConfig
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
