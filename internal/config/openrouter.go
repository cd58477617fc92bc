package config

import (
	"os"
	"sync"
)

type OpenRouterConfig struct {
	APIKey string
	URL    string
	Model  string
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = &OpenRouterConfig{
			APIKey: os.Getenv("OPENROUTER_API_KEY"),
			URL:    getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
			Model:  getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		}
	})
	return openRouterConfig
}
