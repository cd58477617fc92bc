package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"google.golang.org/genai"
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

const (
	maxEmbeddingChars = 10000

	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// GeminiService generates with the configured Gemini model; the request's model
// id is ignored. Calls are single-attempt. Generation and embeddings each have
// their own circuit breaker, so a failing embedding model does not block
// letters.
type GeminiService struct {
	Client         *genai.Client
	Model          string
	EmbeddingModel string
	RequestTimeout time.Duration
	generate       *circuitBreaker
	embed          *circuitBreaker
	log            logging.Logger
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, timeout time.Duration, log logging.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{
		Client:         client,
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		RequestTimeout: timeout,
		generate:       newCircuitBreaker(breakerThreshold, breakerCooldown),
		embed:          newCircuitBreaker(breakerThreshold, breakerCooldown),
		log:            log.With("component", "gemini"),
	}, nil
}

func (s *GeminiService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.RequestTimeout)
}

func (s *GeminiService) Generate(ctx context.Context, req dto.TextGenerationRequest) (string, error) {
	if strings.TrimSpace(req.Inputs) == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", common.ErrGenerationFailed)
	}
	if err := s.generate.allow(); err != nil {
		return "", err
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.Client.Models.GenerateContent(timeoutCtx, s.Model, genai.Text(req.Inputs), contentConfig(req.Parameters))
	if err != nil {
		s.generate.failure()
		s.log.Error(ctx, "generate content failed", "model", s.Model, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrGenerationFailed, err)
	}
	if err := validateGenerateResponse(result); err != nil {
		s.generate.failure()
		return "", fmt.Errorf("%w: invalid response: %w", common.ErrGenerationFailed, err)
	}

	s.generate.success()
	return result.Text(), nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if head := embeddingInput(trimmedText); head != trimmedText {
		s.log.Warn(ctx, "embedding input truncated", "chars", utf8.RuneCountInString(trimmedText))
		trimmedText = head
	}
	if err := s.embed.allow(); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
	result, err := s.Client.Models.EmbedContent(timeoutCtx, s.EmbeddingModel, content, nil)
	if err != nil {
		s.embed.failure()
		return nil, fmt.Errorf("generate embedding failed: %w", err)
	}

	embeddings, err := validateEmbeddingResponse(result)
	if err != nil {
		s.embed.failure()
		return nil, fmt.Errorf("invalid embedding response: %w", err)
	}
	s.embed.success()
	return embeddings, nil
}

// embeddingInput cuts text to the embedding model's input limit on a rune
// boundary.
func embeddingInput(text string) string {
	return util.Head(text, maxEmbeddingChars)
}

// contentConfig maps inference parameters onto Gemini's. Gemini has no
// repetition penalty; it is approximated with a frequency penalty.
func contentConfig(p dto.GenerationParameters) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if p.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(p.Temperature))
	}
	if p.TopP > 0 {
		cfg.TopP = genai.Ptr(float32(p.TopP))
	}
	if p.MaxNewTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxNewTokens)
	}
	if p.RepetitionPenalty > 1 {
		cfg.FrequencyPenalty = genai.Ptr(float32(p.RepetitionPenalty - 1))
	}
	return cfg
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}
