package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/google/uuid"
)

type ProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	SaveResume(ctx context.Context, p *model.Profile) error
	ClearResume(ctx context.Context, id uuid.UUID) error
}

// ProfileUsecase keeps one stored résumé per user: its extracted text in the
// profile row and the original file in object storage.
type ProfileUsecase struct {
	repo      ProfileStore
	extractor service.ResumeExtractor
	storage   service.ObjectStorage
	log       logging.Logger
	now       func() time.Time
}

// NewProfileUsecase builds the usecase. Without storage only the extracted
// text is kept.
func NewProfileUsecase(repo ProfileStore, extractor service.ResumeExtractor, storage service.ObjectStorage, log logging.Logger) *ProfileUsecase {
	return &ProfileUsecase{
		repo:      repo,
		extractor: extractor,
		storage:   storage,
		log:       log.With("component", "profile"),
		now:       time.Now,
	}
}

func (uc *ProfileUsecase) GetResume(ctx context.Context, sess *auth.Session) (*model.Profile, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, err
	}
	p, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, persistErr("get profile", err)
	}
	if !p.HasResume() {
		return nil, common.ErrNotFound
	}
	return p, nil
}

// UploadResume stores a new résumé and replaces the previous file, if any.
func (uc *ProfileUsecase) UploadResume(ctx context.Context, sess *auth.Session, upload service.ResumeUpload) (*model.Profile, error) {
	userID, err := sess.Require()
	if err != nil {
		return nil, err
	}

	doc, err := uc.extractor.Extract(ctx, upload)
	if err != nil {
		return nil, err
	}

	previous, err := uc.repo.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, persistErr("get profile", err)
	}

	now := uc.now()
	profile := &model.Profile{
		ID:             userID,
		ResumeContent:  &doc.ExtractedText,
		ResumeFileName: &upload.FileName,
		UploadDate:     &now,
		FileSize:       &doc.SizeBytes,
	}

	var key string
	if uc.storage != nil {
		key = util.ObjectKey(now, "cv", upload.FileName)
		fileURL, err := uc.storage.Upload(ctx, key, doc.RawBytes, doc.MimeType)
		if err != nil {
			return nil, fmt.Errorf("%w: upload resume file: %w", common.ErrPersistenceFailed, err)
		}
		profile.ResumeFileURL = &fileURL
	}

	if err := uc.repo.SaveResume(ctx, profile); err != nil {
		if key != "" {
			uc.removeObject(ctx, key)
		}
		return nil, persistErr("save profile", err)
	}

	if previous.HasResume() {
		if oldKey := objectKey(previous.ResumeFileURL); oldKey != "" && oldKey != key {
			uc.removeObject(ctx, oldKey)
		}
	}
	uc.log.Info(ctx, "resume stored", "user", userID, "file", upload.FileName, "bytes", doc.SizeBytes)
	return profile, nil
}

// DeleteResume removes the stored file and clears the résumé fields.
func (uc *ProfileUsecase) DeleteResume(ctx context.Context, sess *auth.Session) error {
	userID, err := sess.Require()
	if err != nil {
		return err
	}
	p, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return persistErr("get profile", err)
	}
	if !p.HasResume() {
		return common.ErrNotFound
	}

	if key := objectKey(p.ResumeFileURL); key != "" && uc.storage != nil {
		if err := uc.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("%w: delete resume file: %w", common.ErrPersistenceFailed, err)
		}
	}
	if err := uc.repo.ClearResume(ctx, userID); err != nil {
		return persistErr("clear profile", err)
	}
	return nil
}

func (uc *ProfileUsecase) removeObject(ctx context.Context, key string) {
	if uc.storage == nil {
		return
	}
	if err := uc.storage.Delete(ctx, key); err != nil {
		uc.log.Warn(ctx, "stale resume file not removed", "key", key, "error", err)
	}
}

// objectKey is the last path segment of a stored file URL.
func objectKey(fileURL *string) string {
	if fileURL == nil || *fileURL == "" {
		return ""
	}
	u, err := url.Parse(*fileURL)
	if err != nil {
		return ""
	}
	key := path.Base(u.Path)
	if key == "/" || key == "." {
		return ""
	}
	return key
}
