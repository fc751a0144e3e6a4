package config

import (
	"os"
	"strconv"
	"sync"
)

var (
	extractOnce   sync.Once
	extractConfig *ExtractConfig
)

// ExtractConfig drives the optional LLM structured-extraction stage. An
// empty endpoint disables it.
type ExtractConfig struct {
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float64
}

func GetExtractConfig() *ExtractConfig {
	extractOnce.Do(func() {
		loadEnv()

		maxTokens := 2048
		if v := os.Getenv("EXTRACT_MAX_TOKENS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				maxTokens = n
			}
		}
		temperature := 0.1
		if v := os.Getenv("EXTRACT_TEMPERATURE"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				temperature = f
			}
		}

		extractConfig = &ExtractConfig{
			Endpoint:    os.Getenv("EXTRACT_ENDPOINT"),
			Model:       envOr("EXTRACT_MODEL", "llama3.2"),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		}
	})
	return extractConfig
}
