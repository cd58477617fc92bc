package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/response"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/google/uuid"
)

// RecentWindow is how far back the dashboard counts an application as recent.
const RecentWindow = 20 * 24 * time.Hour

const defaultRelatedLimit = 5

type ApplicationStore interface {
	Upsert(ctx context.Context, app *model.Application) error
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.ApplicationStatus) error
	UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) error
	UpdateCoverLetter(ctx context.Context, userID, id uuid.UUID, letter string) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Application, error)
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Application, int64, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UpsertEmbedding(ctx context.Context, userID, applicationID uuid.UUID, embedding []float32) error
	Related(ctx context.Context, userID, applicationID uuid.UUID, topK int) ([]model.Application, error)
}

// ApplicationUsecase owns the applications of signed-in users. Every method
// checks the session before the store is touched.
type ApplicationUsecase struct {
	repo     ApplicationStore
	embedder service.Embedder
	log      logging.Logger
	now      func() time.Time
}

// NewApplicationUsecase builds the usecase. embedder may be nil, which turns
// off related-application search.
func NewApplicationUsecase(repo ApplicationStore, embedder service.Embedder, log logging.Logger) *ApplicationUsecase {
	return &ApplicationUsecase{
		repo:     repo,
		embedder: embedder,
		log:      log.With("component", "applications"),
		now:      time.Now,
	}
}

// Save creates or updates an application keyed by its id.
func (uc *ApplicationUsecase) Save(ctx context.Context, sess *auth.Session, in dto.SaveApplicationRequest) (*model.Application, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, err
	}

	// An empty status keeps whatever the stored row already has.
	status := model.ApplicationStatus(in.Status)
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, in.Status)
		}
	}

	app := &model.Application{
		JobDescription: in.JobDescription,
		CvContent:      in.CvContent,
		CoverLetter:    in.CoverLetter,
		JobURL:         in.JobURL,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		Status:         status,
		UserID:         userID,
	}
	if in.ID != nil {
		app.ID = *in.ID
	}
	if err := uc.repo.Upsert(ctx, app); err != nil {
		return nil, persistErr("save application", err)
	}

	uc.log.Info(ctx, "application saved", "id", app.ID, "user", userID)
	uc.embed(ctx, userID, app)
	return app, nil
}

// embed refreshes the job description vector. Failures are only logged.
func (uc *ApplicationUsecase) embed(ctx context.Context, userID uuid.UUID, app *model.Application) {
	if uc.embedder == nil || strings.TrimSpace(app.JobDescription) == "" {
		return
	}
	vec, err := uc.embedder.GenerateEmbedding(ctx, app.JobDescription)
	if err != nil {
		uc.log.Warn(ctx, "application embedding skipped", "id", app.ID, "error", err)
		return
	}
	if err := uc.repo.UpsertEmbedding(ctx, userID, app.ID, vec); err != nil {
		uc.log.Warn(ctx, "application embedding not stored", "id", app.ID, "error", err)
	}
}

func (uc *ApplicationUsecase) UpdateStatus(ctx context.Context, sess *auth.Session, id uuid.UUID, status string) error {
	userID, err := sess.Require()
	if err != nil {
		return err
	}
	s := model.ApplicationStatus(status)
	if !s.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}
	if err := uc.repo.UpdateStatus(ctx, userID, id, s); err != nil {
		return persistErr("update status", err)
	}
	return nil
}

func (uc *ApplicationUsecase) UpdateTitle(ctx context.Context, sess *auth.Session, id uuid.UUID, title string) error {
	userID, err := sess.Require()
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: job title is empty", common.ErrNotReady)
	}
	if err := uc.repo.UpdateTitle(ctx, userID, id, title); err != nil {
		return persistErr("update title", err)
	}
	return nil
}

func (uc *ApplicationUsecase) UpdateCoverLetter(ctx context.Context, sess *auth.Session, id uuid.UUID, letter string) error {
	userID, err := sess.Require()
	if err != nil {
		return err
	}
	if err := uc.repo.UpdateCoverLetter(ctx, userID, id, letter); err != nil {
		return persistErr("update cover letter", err)
	}
	return nil
}

func (uc *ApplicationUsecase) Get(ctx context.Context, sess *auth.Session, id uuid.UUID) (*model.Application, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, err
	}
	app, err := uc.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, persistErr("get application", err)
	}
	return app, nil
}

func (uc *ApplicationUsecase) List(ctx context.Context, sess *auth.Session, page, pageSize int) ([]model.Application, *response.Pagination, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, nil, err
	}
	page, pageSize = response.NormalizePage(page, pageSize)
	apps, total, err := uc.repo.List(ctx, userID, page, pageSize)
	if err != nil {
		return nil, nil, persistErr("list applications", err)
	}
	return apps, response.NewPagination(page, pageSize, total, len(apps)), nil
}

func (uc *ApplicationUsecase) Stats(ctx context.Context, sess *auth.Session) (*dto.ApplicationStatsDTO, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, err
	}
	total, recent, err := uc.repo.CountSince(ctx, userID, uc.now().Add(-RecentWindow))
	if err != nil {
		return nil, persistErr("application stats", err)
	}
	return &dto.ApplicationStatsDTO{Total: total, Recent: recent}, nil
}

func (uc *ApplicationUsecase) Delete(ctx context.Context, sess *auth.Session, id uuid.UUID) error {
	userID, err := sess.Require()
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, userID, id); err != nil {
		return persistErr("delete application", err)
	}
	return nil
}

// Related lists the user's applications with the most similar job
// descriptions. Without an embedder the list is empty.
func (uc *ApplicationUsecase) Related(ctx context.Context, sess *auth.Session, id uuid.UUID, limit int) ([]model.Application, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, err
	}
	if uc.embedder == nil {
		return []model.Application{}, nil
	}
	if limit <= 0 || limit > response.MaxPageSize {
		limit = defaultRelatedLimit
	}
	apps, err := uc.repo.Related(ctx, userID, id, limit)
	if err != nil {
		return nil, persistErr("related applications", err)
	}
	return apps, nil
}
