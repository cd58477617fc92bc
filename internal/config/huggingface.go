package config

import (
	"os"
	"sync"
)

// HuggingFaceConfig points at a text-generation inference endpoint. When URL ends
// with a slash the model id is appended to it per request.
type HuggingFaceConfig struct {
	Token string
	URL   string
}

var (
	huggingFaceConfig *HuggingFaceConfig
	huggingFaceOnce   sync.Once
)

func LoadHuggingFaceConfig() *HuggingFaceConfig {
	huggingFaceOnce.Do(func() {
		huggingFaceConfig = &HuggingFaceConfig{
			Token: os.Getenv("HF_API_TOKEN"),
			URL:   getEnv("HF_INFERENCE_URL", "https://api-inference.huggingface.co/models/"),
		}
	})
	return huggingFaceConfig
}
