package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
)

// TextGenerator runs one text-generation call. Implementations make a single
// attempt and wrap every failure in common.ErrGenerationFailed.
type TextGenerator interface {
	Generate(ctx context.Context, req dto.TextGenerationRequest) (string, error)
}

const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderOpenRouter  = "openrouter"
)

// NewTextGenerator builds the provider named by the generation config.
func NewTextGenerator(ctx context.Context, provider string, log logging.Logger) (TextGenerator, error) {
	timeout := config.LoadFetchConfig().Timeout
	switch provider {
	case "", ProviderHuggingFace:
		return NewHuggingFaceService(config.LoadHuggingFaceConfig(), timeout, log), nil
	case ProviderGemini:
		return NewGeminiService(ctx, config.LoadGeminiConfig(), timeout, log)
	case ProviderOpenRouter:
		return NewOpenRouterService(config.LoadOpenRouterConfig(), timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

// NewGenerationRequest builds the inference body. The full prompt is never
// echoed back.
func NewGenerationRequest(model, prompt string, p config.SamplingParams) dto.TextGenerationRequest {
	returnFullText := false
	return dto.TextGenerationRequest{
		Model:  model,
		Inputs: prompt,
		Parameters: dto.GenerationParameters{
			MaxNewTokens:      p.MaxNewTokens,
			Temperature:       p.Temperature,
			TopP:              p.TopP,
			RepetitionPenalty: p.RepetitionPenalty,
			ReturnFullText:    &returnFullText,
			DoSample:          p.DoSample,
		},
	}
}
