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

type HuggingFaceService struct {
	client *resty.Client
	url    string
	token  string
	log    logging.Logger
}

func NewHuggingFaceService(cfg *config.HuggingFaceConfig, timeout time.Duration, log logging.Logger) *HuggingFaceService {
	return &HuggingFaceService{
		client: resty.New().SetTimeout(timeout),
		url:    cfg.URL,
		token:  cfg.Token,
		log:    log.With("component", "huggingface"),
	}
}

func (s *HuggingFaceService) endpoint(model string) string {
	if strings.HasSuffix(s.url, "/") {
		return s.url + model
	}
	return s.url
}

func (s *HuggingFaceService) Generate(ctx context.Context, req dto.TextGenerationRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("%w: model name cannot be empty", common.ErrGenerationFailed)
	}
	if strings.TrimSpace(req.Inputs) == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", common.ErrGenerationFailed)
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(s.endpoint(req.Model))
	if err != nil {
		s.log.Error(ctx, "text generation request failed", "model", req.Model, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrGenerationFailed, err)
	}
	if resp.IsError() {
		s.log.Error(ctx, "text generation rejected", "model", req.Model, "status", resp.StatusCode())
		return "", fmt.Errorf("%w: inference endpoint returned %d: %s",
			common.ErrGenerationFailed, resp.StatusCode(), util.Head(resp.String(), 200))
	}

	body := resp.String()
	text := gjson.Get(body, "generated_text")
	if !text.Exists() {
		text = gjson.Get(body, "0.generated_text")
	}
	if !text.Exists() {
		return "", fmt.Errorf("%w: response has no generated_text", common.ErrGenerationFailed)
	}

	s.log.Debug(ctx, "text generated", "model", req.Model, "chars", len(text.String()), "took", time.Since(start))
	return text.String(), nil
}
