package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationUsecase_RequiresSession(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, &fakeEmbedder{vec: []float32{1}}, logging.Discard())
	ctx := context.Background()
	id := uuid.New()

	for _, sess := range []*auth.Session{nil, {}} {
		_, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{JobDescription: "JD"})
		assert.ErrorIs(t, err, common.ErrAuthRequired)
		assert.ErrorIs(t, uc.UpdateStatus(ctx, sess, id, "Applied"), common.ErrAuthRequired)
		assert.ErrorIs(t, uc.UpdateTitle(ctx, sess, id, "Title"), common.ErrAuthRequired)
		assert.ErrorIs(t, uc.UpdateCoverLetter(ctx, sess, id, "Body"), common.ErrAuthRequired)
		assert.ErrorIs(t, uc.Delete(ctx, sess, id), common.ErrAuthRequired)
		_, err = uc.Get(ctx, sess, id)
		assert.ErrorIs(t, err, common.ErrAuthRequired)
		_, _, err = uc.List(ctx, sess, 1, 10)
		assert.ErrorIs(t, err, common.ErrAuthRequired)
		_, err = uc.Stats(ctx, sess)
		assert.ErrorIs(t, err, common.ErrAuthRequired)
		_, err = uc.Related(ctx, sess, id, 3)
		assert.ErrorIs(t, err, common.ErrAuthRequired)
	}
	assert.Zero(t, store.calls, "store must not be touched without a session")
}

func TestApplicationUsecase_SaveAndUpdate(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, &fakeEmbedder{vec: []float32{0.1, 0.2}}, logging.Discard())
	ctx := context.Background()
	sess := &auth.Session{UserID: uuid.New()}

	app, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{
		JobDescription: "Backend role",
		CvContent:      "Resume",
		CoverLetter:    "Letter",
		JobURL:         "https://jobs.acme.io/1",
		JobTitle:       "  Go Engineer ",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.Equal(t, model.StatusWishlist, app.Status)
	assert.Equal(t, "Go Engineer", app.JobTitle)
	assert.Equal(t, sess.UserID, app.UserID)
	assert.Equal(t, []float32{0.1, 0.2}, store.embeddings[app.ID])

	require.NoError(t, uc.UpdateStatus(ctx, sess, app.ID, "Interview"))
	require.NoError(t, uc.UpdateTitle(ctx, sess, app.ID, "Staff Engineer"))
	require.NoError(t, uc.UpdateCoverLetter(ctx, sess, app.ID, "New letter"))

	got, err := uc.Get(ctx, sess, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterview, got.Status)
	assert.Equal(t, "Staff Engineer", got.JobTitle)
	assert.Equal(t, "New letter", got.CoverLetter)

	resaved, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{ID: &app.ID, JobDescription: "Backend role", Status: "Offer"})
	require.NoError(t, err)
	assert.Equal(t, app.ID, resaved.ID)
	assert.Len(t, store.apps, 1)
}

func TestApplicationUsecase_ResaveKeepsStatus(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, nil, logging.Discard())
	ctx := context.Background()
	sess := &auth.Session{UserID: uuid.New()}

	app, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{JobDescription: "JD", CoverLetter: "v1"})
	require.NoError(t, err)
	require.NoError(t, uc.UpdateStatus(ctx, sess, app.ID, "Applied"))

	resaved, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{ID: &app.ID, JobDescription: "JD", CoverLetter: "v2"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, resaved.Status)

	got, err := uc.Get(ctx, sess, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, got.Status)
	assert.Equal(t, "v2", got.CoverLetter)
}

func TestApplicationUsecase_Validation(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, nil, logging.Discard())
	ctx := context.Background()
	sess := &auth.Session{UserID: uuid.New()}

	_, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{Status: "Ghosted"})
	assert.ErrorIs(t, err, common.ErrInvalidStatus)
	assert.ErrorIs(t, uc.UpdateStatus(ctx, sess, uuid.New(), "applied"), common.ErrInvalidStatus)
	assert.ErrorIs(t, uc.UpdateTitle(ctx, sess, uuid.New(), "   "), common.ErrNotReady)
	assert.Zero(t, store.calls)
}

func TestApplicationUsecase_OtherUsersRecords(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, nil, logging.Discard())
	ctx := context.Background()
	owner := &auth.Session{UserID: uuid.New()}
	stranger := &auth.Session{UserID: uuid.New()}

	app, err := uc.Save(ctx, owner, dto.SaveApplicationRequest{JobDescription: "JD"})
	require.NoError(t, err)

	_, err = uc.Get(ctx, stranger, app.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, uc.UpdateStatus(ctx, stranger, app.ID, "Rejected"), common.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, stranger, app.ID), common.ErrNotFound)
	_, err = uc.Save(ctx, stranger, dto.SaveApplicationRequest{ID: &app.ID, JobDescription: "hijack"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, uc.Delete(ctx, owner, app.ID))
}

func TestApplicationUsecase_StoreFailure(t *testing.T) {
	store := newFakeApplicationStore()
	store.err = errors.New("connection refused")
	uc := NewApplicationUsecase(store, nil, logging.Discard())
	sess := &auth.Session{UserID: uuid.New()}

	_, err := uc.Save(context.Background(), sess, dto.SaveApplicationRequest{JobDescription: "JD"})
	assert.ErrorIs(t, err, common.ErrPersistenceFailed)
	assert.ErrorIs(t, uc.UpdateStatus(context.Background(), sess, uuid.New(), "Applied"), common.ErrPersistenceFailed)
}

func TestApplicationUsecase_EmbeddingIsBestEffort(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, &fakeEmbedder{err: errors.New("quota")}, logging.Discard())
	sess := &auth.Session{UserID: uuid.New()}

	app, err := uc.Save(context.Background(), sess, dto.SaveApplicationRequest{JobDescription: "JD"})
	require.NoError(t, err)
	assert.Empty(t, store.embeddings)
	assert.Contains(t, store.apps, app.ID)
}

func TestApplicationUsecase_ListAndStats(t *testing.T) {
	store := newFakeApplicationStore()
	uc := NewApplicationUsecase(store, nil, logging.Discard())
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }
	ctx := context.Background()
	sess := &auth.Session{UserID: uuid.New()}

	for _, created := range []time.Time{now.AddDate(0, 0, -1), now.AddDate(0, 0, -19), now.AddDate(0, 0, -30)} {
		id := uuid.New()
		store.apps[id] = &model.Application{ID: id, UserID: sess.UserID, CreatedAt: created}
	}

	stats, err := uc.Stats(ctx, sess)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Recent)
	assert.Equal(t, now.Add(-20*24*time.Hour), store.since)

	apps, page, err := uc.List(ctx, sess, 0, 2)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
	assert.Equal(t, 1, page.Page)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.True(t, page.HasMore)
}

func TestApplicationUsecase_Related(t *testing.T) {
	store := newFakeApplicationStore()
	ctx := context.Background()
	sess := &auth.Session{UserID: uuid.New()}

	withoutEmbedder := NewApplicationUsecase(store, nil, logging.Discard())
	apps, err := withoutEmbedder.Related(ctx, sess, uuid.New(), 3)
	require.NoError(t, err)
	assert.Empty(t, apps)

	uc := NewApplicationUsecase(store, &fakeEmbedder{vec: []float32{1, 0}}, logging.Discard())
	first, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{JobDescription: "Go backend"})
	require.NoError(t, err)
	second, err := uc.Save(ctx, sess, dto.SaveApplicationRequest{JobDescription: "Go platform"})
	require.NoError(t, err)

	apps, err = uc.Related(ctx, sess, first.ID, 0)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, second.ID, apps[0].ID)
}
