package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediavault/mediavault/pkg/models"
	"github.com/mediavault/mediavault/pkg/repository"
)

// GormRepository implements the deletion repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// GetMediaFile retrieves a media file by ID.
func (r *GormRepository) GetMediaFile(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	return repository.FindByID[models.MediaFile](ctx, r.db, id)
}

// UpdateMediaFile updates a media file record.
func (r *GormRepository) UpdateMediaFile(ctx context.Context, file *models.MediaFile) error {
	return repository.Update(ctx, r.db, file)
}

// CreatePendingDeletion creates a pending deletion row. The unique index on
// file_id turns a second open row into a Conflict.
func (r *GormRepository) CreatePendingDeletion(ctx context.Context, pending *models.PendingDeletion) error {
	return repository.Create(ctx, r.db, pending)
}

// GetPendingDeletion retrieves a pending deletion by ID.
func (r *GormRepository) GetPendingDeletion(ctx context.Context, id uuid.UUID) (*models.PendingDeletion, error) {
	return repository.FindByID[models.PendingDeletion](ctx, r.db, id)
}

// GetOpenPendingByFileID retrieves the open pending deletion for a file, or
// NotFound when the file has none.
func (r *GormRepository) GetOpenPendingByFileID(ctx context.Context, fileID uuid.UUID) (*models.PendingDeletion, error) {
	return repository.FindOneBy[models.PendingDeletion](ctx, r.db, "file_id = ?", fileID)
}

// UpdatePendingDeletion updates a pending deletion row.
func (r *GormRepository) UpdatePendingDeletion(ctx context.Context, pending *models.PendingDeletion) error {
	return repository.Update(ctx, r.db, pending)
}

// DeletePendingDeletion removes a pending deletion row.
func (r *GormRepository) DeletePendingDeletion(ctx context.Context, id uuid.UUID) error {
	return repository.Delete[models.PendingDeletion](ctx, r.db, id)
}

// ListPendingDeletions lists pending deletions matching the filter, newest
// staged first.
func (r *GormRepository) ListPendingDeletions(ctx context.Context, filter PendingFilter) ([]*models.PendingDeletion, error) {
	var pending []*models.PendingDeletion
	query := r.db.WithContext(ctx)

	if filter.LanguageConcern != nil {
		query = query.Where("language_concern = ?", *filter.LanguageConcern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("staged_at DESC").Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

// ListExpired returns unapproved deletions staged before the cutoff.
func (r *GormRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]*models.PendingDeletion, error) {
	var pending []*models.PendingDeletion
	err := r.db.WithContext(ctx).
		Where("status = ? AND staged_at < ?", models.DeletionStatusStaged, cutoff).
		Order("staged_at").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// AppendOperationLog records one physical operation attempt.
func (r *GormRepository) AppendOperationLog(ctx context.Context, entry *models.OperationLog) error {
	return repository.Create(ctx, r.db, entry)
}
