package config

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCoverLetterPrompt is used when no template is configured for a session.
const DefaultCoverLetterPrompt = `Create a concise and professional cover letter (max 250 words) based on the following CV and job description. Output ONLY the cover letter text.

CV Summary:
{cv}

Job Summary:
{job}

.`

type SamplingParams struct {
	MaxNewTokens      int     `yaml:"max_new_tokens"`
	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
	DoSample          bool    `yaml:"do_sample"`
}

type GenerationConfig struct {
	Provider          string `yaml:"provider"`
	CoverLetterModel  string `yaml:"cover_letter_model"`
	ChatModel         string `yaml:"chat_model"`
	CoverLetterPrompt string `yaml:"cover_letter_prompt"`

	// TruncateChars is the per-input character budget applied before a prompt is built.
	TruncateChars int `yaml:"truncate_chars"`
	TitleChars    int `yaml:"title_chars"`

	CoverLetter SamplingParams `yaml:"cover_letter"`
	Edit        SamplingParams `yaml:"edit"`
	Title       SamplingParams `yaml:"title"`
	Chat        SamplingParams `yaml:"chat"`

	AutoGenerate bool          `yaml:"auto_generate"`
	StatusDelay  time.Duration `yaml:"status_delay"`
}

var (
	generationConfig *GenerationConfig
	generationOnce   sync.Once
)

func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Provider:          "huggingface",
		CoverLetterModel:  "mistralai/Mistral-7B-Instruct-v0.2",
		ChatModel:         "mistralai/Mistral-7B-Instruct-v0.3",
		CoverLetterPrompt: DefaultCoverLetterPrompt,
		TruncateChars:     4000,
		TitleChars:        1000,
		CoverLetter: SamplingParams{
			MaxNewTokens:      500,
			Temperature:       0.7,
			TopP:              0.9,
			RepetitionPenalty: 1.2,
		},
		Edit: SamplingParams{
			MaxNewTokens: 800,
			Temperature:  0.7,
		},
		Title: SamplingParams{
			MaxNewTokens: 20,
			Temperature:  0.1,
			TopP:         0.1,
		},
		Chat: SamplingParams{
			MaxNewTokens: 100,
			Temperature:  0.7,
			TopP:         0.95,
			DoSample:     true,
		},
		StatusDelay: 2 * time.Second,
	}
}

// ParseGenerationConfig overlays a YAML document on the defaults. Keys missing
// from the document keep their default values.
func ParseGenerationConfig(data []byte) (*GenerationConfig, error) {
	cfg := DefaultGenerationConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse generation config: %w", err)
	}
	if cfg.TruncateChars <= 0 {
		return nil, fmt.Errorf("truncate_chars must be positive, got %d", cfg.TruncateChars)
	}
	if cfg.TitleChars <= 0 {
		return nil, fmt.Errorf("title_chars must be positive, got %d", cfg.TitleChars)
	}
	return cfg, nil
}

func LoadGenerationConfig() *GenerationConfig {
	generationOnce.Do(func() {
		cfg := DefaultGenerationConfig()
		if path := os.Getenv("GENERATION_CONFIG"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("Warning: could not read %s: %v", path, err)
			} else if parsed, err := ParseGenerationConfig(data); err != nil {
				log.Fatalf("Error parsing %s: %v", path, err)
			} else {
				cfg = parsed
			}
		}

		cfg.Provider = getEnv("LLM_PROVIDER", cfg.Provider)
		cfg.CoverLetterModel = getEnv("COVER_LETTER_MODEL", cfg.CoverLetterModel)
		cfg.ChatModel = getEnv("CHAT_MODEL", cfg.ChatModel)
		cfg.CoverLetterPrompt = getEnv("COVER_LETTER_PROMPT", cfg.CoverLetterPrompt)
		cfg.AutoGenerate = getEnvBool("AUTO_GENERATE", cfg.AutoGenerate)
		cfg.StatusDelay = getEnvDuration("STATUS_DELAY", cfg.StatusDelay)
		generationConfig = cfg
	})
	return generationConfig
}
