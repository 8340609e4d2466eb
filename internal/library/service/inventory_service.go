package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	dedupdomain "github.com/mediavault/mediavault/internal/dedup/domain"
	"github.com/mediavault/mediavault/internal/library/domain"
	"github.com/mediavault/mediavault/internal/library/repository"
	"github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/events"
	"github.com/mediavault/mediavault/pkg/interfaces"
	"github.com/mediavault/mediavault/pkg/models"
)

const mediaCacheTTL = 5 * time.Minute

// InventoryService maintains the media file inventory from external feed
// snapshots and exposes the query surface over it.
type InventoryService struct {
	repo     repository.Repository
	eventBus interfaces.EventBus
	cache    interfaces.Cache
	logger   interfaces.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(
	repo repository.Repository,
	eventBus interfaces.EventBus,
	cache interfaces.Cache,
	logger interfaces.Logger,
) *InventoryService {
	return &InventoryService{
		repo:     repo,
		eventBus: eventBus,
		cache:    cache,
		logger:   logger,
	}
}

// IngestSnapshot upserts one full inventory snapshot: new entries are
// created with a computed quality score, changed entries are updated, and
// files absent from the snapshot are flagged missing. Every run is recorded
// in the ingest history.
func (s *InventoryService) IngestSnapshot(ctx context.Context, entries []domain.FileEntry) (*models.IngestHistory, error) {
	start := time.Now().UTC()
	history := &models.IngestHistory{
		ID:        uuid.New(),
		StartedAt: start,
		Status:    "running",
	}
	if err := s.repo.CreateIngestHistory(ctx, history); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Path == "" {
			continue
		}
		history.FilesSeen++

		existing, err := s.repo.GetMediaFileByPath(ctx, entry.Path)
		switch {
		case errors.IsNotFound(err):
			if err := s.createFromEntry(ctx, entry, start); err != nil {
				return s.failIngest(ctx, history, err)
			}
			history.FilesNew++

		case err != nil:
			return s.failIngest(ctx, history, err)

		case entry.Changed(existing):
			entry.Apply(existing, start)
			existing.QualityScore = dedupdomain.QualityScore(existing)
			if err := s.repo.UpdateMediaFile(ctx, existing); err != nil {
				return s.failIngest(ctx, history, err)
			}
			s.cache.Delete(ctx, mediaCacheKey(existing.ID))
			history.FilesUpdated++

		default:
			existing.LastSeenAt = start
			existing.IsMissing = false
			if err := s.repo.UpdateMediaFile(ctx, existing); err != nil {
				return s.failIngest(ctx, history, err)
			}
		}
	}

	missing, err := s.repo.MarkMissingBefore(ctx, start)
	if err != nil {
		return s.failIngest(ctx, history, err)
	}

	completed := time.Now().UTC()
	history.CompletedAt = &completed
	history.Status = "completed"
	if err := s.repo.UpdateIngestHistory(ctx, history); err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeIngestCompleted, history.ID.String(), map[string]interface{}{
		"files_seen":    history.FilesSeen,
		"files_new":     history.FilesNew,
		"files_updated": history.FilesUpdated,
		"files_missing": missing,
	}))

	s.logger.Info("Inventory snapshot ingested",
		interfaces.Int("seen", history.FilesSeen),
		interfaces.Int("new", history.FilesNew),
		interfaces.Int("updated", history.FilesUpdated),
		interfaces.Int64("missing", missing))

	return history, nil
}

func (s *InventoryService) createFromEntry(ctx context.Context, entry domain.FileEntry, now time.Time) error {
	file := &models.MediaFile{
		ID:           uuid.New(),
		MediaType:    models.MediaTypeOther,
		DiscoveredAt: now,
	}
	entry.Apply(file, now)
	file.QualityScore = dedupdomain.QualityScore(file)
	return s.repo.CreateMediaFile(ctx, file)
}

func (s *InventoryService) failIngest(ctx context.Context, history *models.IngestHistory, cause error) (*models.IngestHistory, error) {
	completed := time.Now().UTC()
	history.CompletedAt = &completed
	history.Status = "failed"
	history.ErrorMessage = cause.Error()
	if err := s.repo.UpdateIngestHistory(ctx, history); err != nil {
		s.logger.Error("Failed to record ingest failure", interfaces.Error(err))
	}
	return nil, cause
}

// GetMediaFile retrieves a media file by ID, serving repeated reads from
// the cache.
func (s *InventoryService) GetMediaFile(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	cacheKey := mediaCacheKey(id)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		if file, ok := cached.(*models.MediaFile); ok {
			return file, nil
		}
	}

	file, err := s.repo.GetMediaFile(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKey, file, mediaCacheTTL)
	return file, nil
}

// GetMediaFileByPath retrieves a media file by its absolute path.
func (s *InventoryService) GetMediaFileByPath(ctx context.Context, path string) (*models.MediaFile, error) {
	return s.repo.GetMediaFileByPath(ctx, path)
}

// ListMediaFiles lists media files matching the filter.
func (s *InventoryService) ListMediaFiles(ctx context.Context, filter repository.MediaFilter) ([]*models.MediaFile, error) {
	return s.repo.ListMediaFiles(ctx, filter)
}

// CountMediaFiles counts media files matching the filter.
func (s *InventoryService) CountMediaFiles(ctx context.Context, filter repository.MediaFilter) (int64, error) {
	return s.repo.CountMediaFiles(ctx, filter)
}

// ListIngestHistory lists recent ingest runs, newest first.
func (s *InventoryService) ListIngestHistory(ctx context.Context, limit int) ([]*models.IngestHistory, error) {
	return s.repo.ListIngestHistory(ctx, limit)
}

func mediaCacheKey(id uuid.UUID) string {
	return "media:" + id.String()
}
