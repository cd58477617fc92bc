package config

import (
	"sync"
	"time"
)

type FetchConfig struct {
	ProxyURL string
	// Timeout bounds every outbound call (proxy fetch and text generation). Zero disables it.
	Timeout time.Duration
}

var (
	fetchConfig *FetchConfig
	fetchOnce   sync.Once
)

func LoadFetchConfig() *FetchConfig {
	fetchOnce.Do(func() {
		fetchConfig = &FetchConfig{
			ProxyURL: getEnv("CORS_PROXY_URL", "https://api.allorigins.win/get"),
			Timeout:  getEnvDuration("HTTP_TIMEOUT", 90*time.Second),
		}
	})
	return fetchConfig
}
