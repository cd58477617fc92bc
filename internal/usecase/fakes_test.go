package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/google/uuid"
)

type fakeApplicationStore struct {
	mu         sync.Mutex
	apps       map[uuid.UUID]*model.Application
	embeddings map[uuid.UUID][]float32
	err        error
	calls      int
	since      time.Time
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{
		apps:       map[uuid.UUID]*model.Application{},
		embeddings: map[uuid.UUID][]float32{},
	}
}

func (f *fakeApplicationStore) touch() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeApplicationStore) owned(userID, id uuid.UUID) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok || app.UserID != userID {
		return nil, common.ErrNotFound
	}
	return app, nil
}

func (f *fakeApplicationStore) Upsert(_ context.Context, app *model.Application) error {
	if err := f.touch(); err != nil {
		return err
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.apps[app.ID]
	if ok && existing.UserID != app.UserID {
		return common.ErrNotFound
	}
	switch {
	case app.Status != "":
	case ok:
		app.Status = existing.Status
	default:
		app.Status = model.StatusWishlist
	}
	stored := *app
	f.apps[app.ID] = &stored
	return nil
}

func (f *fakeApplicationStore) UpdateStatus(_ context.Context, userID, id uuid.UUID, status model.ApplicationStatus) error {
	if err := f.touch(); err != nil {
		return err
	}
	app, err := f.owned(userID, id)
	if err != nil {
		return err
	}
	app.Status = status
	return nil
}

func (f *fakeApplicationStore) UpdateTitle(_ context.Context, userID, id uuid.UUID, title string) error {
	if err := f.touch(); err != nil {
		return err
	}
	app, err := f.owned(userID, id)
	if err != nil {
		return err
	}
	app.JobTitle = title
	return nil
}

func (f *fakeApplicationStore) UpdateCoverLetter(_ context.Context, userID, id uuid.UUID, letter string) error {
	if err := f.touch(); err != nil {
		return err
	}
	app, err := f.owned(userID, id)
	if err != nil {
		return err
	}
	app.CoverLetter = letter
	return nil
}

func (f *fakeApplicationStore) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Application, error) {
	if err := f.touch(); err != nil {
		return nil, err
	}
	app, err := f.owned(userID, id)
	if err != nil {
		return nil, err
	}
	out := *app
	return &out, nil
}

func (f *fakeApplicationStore) List(_ context.Context, userID uuid.UUID, page, pageSize int) ([]model.Application, int64, error) {
	if err := f.touch(); err != nil {
		return nil, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Application
	for _, a := range f.apps {
		if a.UserID == userID {
			all = append(all, *a)
		}
	}
	from := (page - 1) * pageSize
	if from > len(all) {
		from = len(all)
	}
	to := min(from+pageSize, len(all))
	return all[from:to], int64(len(all)), nil
}

func (f *fakeApplicationStore) CountSince(_ context.Context, userID uuid.UUID, since time.Time) (int64, int64, error) {
	if err := f.touch(); err != nil {
		return 0, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	var total, recent int64
	for _, a := range f.apps {
		if a.UserID != userID {
			continue
		}
		total++
		if !a.CreatedAt.Before(since) {
			recent++
		}
	}
	return total, recent, nil
}

func (f *fakeApplicationStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	if err := f.touch(); err != nil {
		return err
	}
	if _, err := f.owned(userID, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.apps, id)
	delete(f.embeddings, id)
	return nil
}

func (f *fakeApplicationStore) UpsertEmbedding(_ context.Context, _, applicationID uuid.UUID, embedding []float32) error {
	if err := f.touch(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeddings[applicationID] = embedding
	return nil
}

func (f *fakeApplicationStore) Related(_ context.Context, userID, applicationID uuid.UUID, topK int) ([]model.Application, error) {
	if err := f.touch(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Application{}
	for id, a := range f.apps {
		if a.UserID == userID && id != applicationID && len(out) < topK {
			if _, ok := f.embeddings[id]; ok {
				out = append(out, *a)
			}
		}
	}
	return out, nil
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

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
	return f.reply, f.err
}

func (f *fakeGenerator) last() dto.TextGenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeGenerator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
