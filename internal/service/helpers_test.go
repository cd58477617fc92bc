package service

import (
	"context"
	"sync"

	"github.com/fadilmartias/cover-letter-generator/internal/dto"
)

// fakeGenerator records requests and answers from a fixed script.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []dto.TextGenerationRequest
	reply    string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, req dto.TextGenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeGenerator) last() dto.TextGenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
