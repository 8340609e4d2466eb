package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediavault/mediavault/pkg/models"
	"github.com/mediavault/mediavault/pkg/repository"
)

// GormRepository implements the inventory repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CreateMediaFile creates a new media file record.
func (r *GormRepository) CreateMediaFile(ctx context.Context, file *models.MediaFile) error {
	return repository.Create(ctx, r.db, file)
}

// GetMediaFile retrieves a media file by ID.
func (r *GormRepository) GetMediaFile(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	return repository.FindByID[models.MediaFile](ctx, r.db, id)
}

// GetMediaFileByPath retrieves a media file by its absolute path.
func (r *GormRepository) GetMediaFileByPath(ctx context.Context, path string) (*models.MediaFile, error) {
	return repository.FindOneBy[models.MediaFile](ctx, r.db, "path = ?", path)
}

// UpdateMediaFile updates a media file record.
func (r *GormRepository) UpdateMediaFile(ctx context.Context, file *models.MediaFile) error {
	return repository.Update(ctx, r.db, file)
}

// ListMediaFiles lists media files matching the filter.
func (r *GormRepository) ListMediaFiles(ctx context.Context, filter MediaFilter) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	query := applyMediaFilter(r.db.WithContext(ctx), filter)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Order("path").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// CountMediaFiles counts media files matching the filter.
func (r *GormRepository) CountMediaFiles(ctx context.Context, filter MediaFilter) (int64, error) {
	var count int64
	query := applyMediaFilter(r.db.WithContext(ctx).Model(&models.MediaFile{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkMissingBefore flags non-deleted files not seen since the cutoff.
func (r *GormRepository) MarkMissingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MediaFile{}).
		Where("last_seen_at < ? AND is_deleted = ? AND is_missing = ?", cutoff, false, false).
		Update("is_missing", true)
	return result.RowsAffected, result.Error
}

// CreateIngestHistory records the start of an ingest run.
func (r *GormRepository) CreateIngestHistory(ctx context.Context, history *models.IngestHistory) error {
	return repository.Create(ctx, r.db, history)
}

// UpdateIngestHistory updates an ingest run record.
func (r *GormRepository) UpdateIngestHistory(ctx context.Context, history *models.IngestHistory) error {
	return repository.Update(ctx, r.db, history)
}

// ListIngestHistory lists recent ingest runs, newest first.
func (r *GormRepository) ListIngestHistory(ctx context.Context, limit int) ([]*models.IngestHistory, error) {
	var history []*models.IngestHistory
	query := r.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func applyMediaFilter(query *gorm.DB, filter MediaFilter) *gorm.DB {
	if filter.IsDuplicate != nil {
		query = query.Where("is_duplicate = ?", *filter.IsDuplicate)
	}
	if filter.IsDeleted != nil {
		query = query.Where("is_deleted = ?", *filter.IsDeleted)
	}
	if filter.IsMissing != nil {
		query = query.Where("is_missing = ?", *filter.IsMissing)
	}
	if filter.MediaType != nil {
		query = query.Where("media_type = ?", *filter.MediaType)
	}
	if filter.MinQualityScore != nil {
		query = query.Where("quality_score >= ?", *filter.MinQualityScore)
	}
	return query
}
