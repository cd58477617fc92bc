package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestContentConfig(t *testing.T) {
	req := NewGenerationRequest("m", "p", config.DefaultGenerationConfig().CoverLetter)
	cfg := contentConfig(req.Parameters)

	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
	require.NotNil(t, cfg.TopP)
	assert.InDelta(t, 0.9, *cfg.TopP, 1e-6)
	assert.EqualValues(t, 500, cfg.MaxOutputTokens)
	require.NotNil(t, cfg.FrequencyPenalty)
	assert.InDelta(t, 0.2, *cfg.FrequencyPenalty, 1e-6)

	empty := contentConfig(dto.GenerationParameters{})
	assert.Nil(t, empty.Temperature)
	assert.Nil(t, empty.TopP)
	assert.Nil(t, empty.FrequencyPenalty)
}

func TestValidateGenerateResponse(t *testing.T) {
	assert.Error(t, validateGenerateResponse(nil))
	assert.Error(t, validateGenerateResponse(&genai.GenerateContentResponse{}))
	assert.Error(t, validateGenerateResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))
	assert.NoError(t, validateGenerateResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("hi", genai.RoleModel)}},
	}))
}

func TestValidateEmbeddingResponse(t *testing.T) {
	_, err := validateEmbeddingResponse(&genai.EmbedContentResponse{})
	assert.Error(t, err)

	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, float32(math.NaN())}}},
	})
	assert.Error(t, err)

	got, err := validateEmbeddingResponse(&genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, got)
}

func TestCircuitBreaker_CoolsDown(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	b := newCircuitBreaker(2, 30*time.Second)
	b.now = func() time.Time { return now }

	assert.NoError(t, b.allow())
	b.failure()
	assert.NoError(t, b.allow())
	b.failure()
	assert.ErrorIs(t, b.allow(), common.ErrGenerationFailed)

	now = now.Add(29 * time.Second)
	assert.Error(t, b.allow())

	// one trial after the cooldown, the next caller is still refused
	now = now.Add(time.Second)
	assert.NoError(t, b.allow())
	assert.Error(t, b.allow())

	// a failed trial keeps it open for another cooldown
	b.failure()
	now = now.Add(10 * time.Second)
	assert.Error(t, b.allow())
	now = now.Add(20 * time.Second)
	require.NoError(t, b.allow())
	b.success()
	assert.NoError(t, b.allow())
	assert.NoError(t, b.allow())
}

func TestGeminiService_SeparateBreakers(t *testing.T) {
	svc := &GeminiService{
		generate: newCircuitBreaker(1, time.Hour),
		embed:    newCircuitBreaker(1, time.Hour),
		log:      logging.Discard(),
	}
	svc.embed.failure()

	assert.ErrorIs(t, svc.embed.allow(), common.ErrGenerationFailed)
	assert.NoError(t, svc.generate.allow(), "embedding failures must not block generation")

	_, err := svc.GenerateEmbedding(context.Background(), "backend role")
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
}

func TestEmbeddingInput(t *testing.T) {
	assert.Equal(t, "short", embeddingInput("short"))

	long := strings.Repeat("é", maxEmbeddingChars+5)
	got := embeddingInput(long)
	assert.True(t, utf8.ValidString(got), "multi-byte runes must not be split")
	assert.Equal(t, maxEmbeddingChars, utf8.RuneCountInString(got))
}
