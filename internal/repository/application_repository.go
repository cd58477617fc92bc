package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db}
}

var applicationContentColumns = []string{"job_description", "cv_content", "cover_letter", "job_url", "job_title"}

// Upsert inserts app or, when a row with the same id already belongs to the
// same user, overwrites its content. A conflicting row owned by someone else is
// left untouched and reported as ErrNotFound.
//
// An empty Status keeps the stored status of an existing row (new rows start as
// Wishlist). The stored row is read back into app.
func (r *ApplicationRepository) Upsert(ctx context.Context, app *model.Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	columns := applicationContentColumns
	if app.Status == "" {
		app.Status = model.StatusWishlist
	} else {
		columns = append(slices.Clone(columns), "status")
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: `"applications"."user_id" = excluded.user_id`},
		}},
	}, clause.Returning{}).Create(app)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status model.ApplicationStatus) error {
	return r.updateColumn(ctx, userID, id, "status", status)
}

func (r *ApplicationRepository) UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) error {
	return r.updateColumn(ctx, userID, id, "job_title", title)
}

func (r *ApplicationRepository) UpdateCoverLetter(ctx context.Context, userID, id uuid.UUID, letter string) error {
	return r.updateColumn(ctx, userID, id, "cover_letter", letter)
}

func (r *ApplicationRepository) updateColumn(ctx context.Context, userID, id uuid.UUID, column string, value any) error {
	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).First(&app, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns one page of the user's applications, newest first, and the
// total number of rows.
func (r *ApplicationRepository) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Application, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&model.Application{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	apps := []model.Application{}
	if total == 0 {
		return apps, 0, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&apps).Error
	return apps, total, err
}

// CountSince counts all applications of a user and those created at or after since.
func (r *ApplicationRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (total int64, recent int64, err error) {
	err = r.db.WithContext(ctx).Raw(`
        SELECT COUNT(*) AS total,
               COUNT(*) FILTER (WHERE created_at >= ?) AS recent
        FROM applications
        WHERE user_id = ?
    `, since, userID).Row().Scan(&total, &recent)
	return total, recent, err
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Application{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return tx.Where("application_id = ?", id).Delete(&model.ApplicationEmbedding{}).Error
	})
}

func (r *ApplicationRepository) UpsertEmbedding(ctx context.Context, userID, applicationID uuid.UUID, embedding []float32) error {
	row := &model.ApplicationEmbedding{
		ApplicationID: applicationID,
		UserID:        userID,
		Embedding:     pgvector.NewVector(embedding),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "updated_at"}),
	}).Create(row).Error
}

// Related returns the user's applications whose job descriptions sit closest to
// the one of applicationID, nearest first.
func (r *ApplicationRepository) Related(ctx context.Context, userID, applicationID uuid.UUID, topK int) ([]model.Application, error) {
	apps := []model.Application{}

	// query pgvector <-> operator (Euclidean distance)
	err := r.db.WithContext(ctx).Raw(`
        SELECT a.*
        FROM applications a
        JOIN application_embeddings e ON e.application_id = a.id
        WHERE a.user_id = ? AND a.id <> ?
        ORDER BY e.embedding <-> (SELECT embedding FROM application_embeddings WHERE application_id = ?)
        LIMIT ?
    `, userID, applicationID, applicationID, topK).Scan(&apps).Error

	return apps, err
}
