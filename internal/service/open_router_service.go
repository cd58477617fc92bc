package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// OpenRouterService sends the prompt as a single user message to an
// OpenAI-compatible chat completions endpoint. The configured model always wins
// over the request's model id.
type OpenRouterService struct {
	client *resty.Client
	apiKey string
	url    string
	model  string
	log    logging.Logger
}

func NewOpenRouterService(cfg *config.OpenRouterConfig, timeout time.Duration, log logging.Logger) *OpenRouterService {
	return &OpenRouterService{
		client: resty.New().SetTimeout(timeout),
		apiKey: cfg.APIKey,
		url:    cfg.URL,
		model:  cfg.Model,
		log:    log.With("component", "openrouter"),
	}
}

func (s *OpenRouterService) Generate(ctx context.Context, req dto.TextGenerationRequest) (string, error) {
	if strings.TrimSpace(req.Inputs) == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", common.ErrGenerationFailed)
	}

	body := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Inputs},
		},
	}
	p := req.Parameters
	if p.MaxNewTokens > 0 {
		body["max_tokens"] = p.MaxNewTokens
	}
	if p.Temperature > 0 {
		body["temperature"] = p.Temperature
	}
	if p.TopP > 0 {
		body["top_p"] = p.TopP
	}
	if p.RepetitionPenalty > 0 {
		body["repetition_penalty"] = p.RepetitionPenalty
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(s.url)
	if err != nil {
		s.log.Error(ctx, "chat completion request failed", "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrGenerationFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: openrouter returned %d: %s",
			common.ErrGenerationFailed, resp.StatusCode(), util.Head(resp.String(), 200))
	}

	text := gjson.Get(resp.String(), "choices.0.message.content")
	if !text.Exists() {
		return "", fmt.Errorf("%w: no response from LLM", common.ErrGenerationFailed)
	}
	return text.String(), nil
}
