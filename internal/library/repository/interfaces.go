package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediavault/mediavault/pkg/models"
)

// MediaFilter narrows media file listings. Nil fields are not applied.
type MediaFilter struct {
	IsDuplicate     *bool
	IsDeleted       *bool
	IsMissing       *bool
	MediaType       *models.MediaType
	MinQualityScore *int
	Limit           int
	Offset          int
}

// Repository defines the persistence surface of the inventory.
type Repository interface {
	// Media file operations
	CreateMediaFile(ctx context.Context, file *models.MediaFile) error
	GetMediaFile(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	GetMediaFileByPath(ctx context.Context, path string) (*models.MediaFile, error)
	UpdateMediaFile(ctx context.Context, file *models.MediaFile) error
	ListMediaFiles(ctx context.Context, filter MediaFilter) ([]*models.MediaFile, error)
	CountMediaFiles(ctx context.Context, filter MediaFilter) (int64, error)

	// MarkMissingBefore flags every non-deleted file whose LastSeenAt
	// precedes the cutoff, returning how many rows changed.
	MarkMissingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ingest history operations
	CreateIngestHistory(ctx context.Context, history *models.IngestHistory) error
	UpdateIngestHistory(ctx context.Context, history *models.IngestHistory) error
	ListIngestHistory(ctx context.Context, limit int) ([]*models.IngestHistory, error)
}
