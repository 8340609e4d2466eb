package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mediavault/mediavault/internal/deletion/domain"
	"github.com/mediavault/mediavault/internal/deletion/repository"
	"github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/events"
	"github.com/mediavault/mediavault/pkg/interfaces"
	"github.com/mediavault/mediavault/pkg/models"
)

// Options tune the staged-deletion lifecycle.
type Options struct {
	// StagingRoots are candidate roots for the staging area, tried in order.
	StagingRoots []string

	// StagingSubdirs are the recognized per-media-type directory names.
	StagingSubdirs []string

	// Retention is how long an unapproved staged deletion is kept before the
	// expiry sweep removes it permanently.
	Retention time.Duration
}

// StageRequest asks for one file to be staged for deletion.
type StageRequest struct {
	FileID uuid.UUID
	Reason string

	// Links back to the originating duplicate group, when any.
	GroupID    *uuid.UUID
	KeptFileID *uuid.UUID
	ScoreDelta *int

	LanguageConcern       bool
	LanguageConcernReason string
}

// DeletionService drives the staged-deletion state machine: stage, approve
// or restore, and retention-expiry cleanup. Every physical attempt, success
// or failure, is recorded in the operation log.
type DeletionService struct {
	repo     repository.Repository
	resolver interfaces.PathResolver
	mover    interfaces.Mover
	eventBus interfaces.EventBus
	logger   interfaces.Logger
	opts     Options
}

// NewDeletionService creates a new deletion service.
func NewDeletionService(
	repo repository.Repository,
	resolver interfaces.PathResolver,
	mover interfaces.Mover,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
	opts Options,
) *DeletionService {
	return &DeletionService{
		repo:     repo,
		resolver: resolver,
		mover:    mover,
		eventBus: eventBus,
		logger:   logger,
		opts:     opts,
	}
}

// Stage moves a file into the staging area and records the pending deletion.
// When the source cannot be located on disk the stage still succeeds
// logically, with a null staged path and a "source missing" note. A move
// failure rolls the file's deleted flag back and surfaces the error.
func (s *DeletionService) Stage(ctx context.Context, req StageRequest) (*models.PendingDeletion, error) {
	file, err := s.repo.GetMediaFile(ctx, req.FileID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetOpenPendingByFileID(ctx, req.FileID); err == nil && existing != nil {
		return nil, errors.Conflict("file already has a pending deletion")
	} else if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	file.IsDeleted = true
	file.DeletedAt = &now
	if err := s.repo.UpdateMediaFile(ctx, file); err != nil {
		return nil, err
	}

	pending := &models.PendingDeletion{
		ID:                    uuid.New(),
		FileID:                file.ID,
		OriginalPath:          file.Path,
		Size:                  file.Size,
		Reason:                req.Reason,
		GroupID:               req.GroupID,
		KeptFileID:            req.KeptFileID,
		ScoreDelta:            req.ScoreDelta,
		LanguageConcern:       req.LanguageConcern,
		LanguageConcernReason: req.LanguageConcernReason,
		Status:                models.DeletionStatusStaged,
		StagedAt:              now,
	}

	resolved, found := s.resolver.Resolve(file.Path)
	if found {
		stagedPath, err := s.moveToStaging(ctx, file, resolved, now)
		if err != nil {
			s.rollbackDeletedFlag(ctx, file)
			return nil, err
		}
		pending.StagedPath = &stagedPath
	} else {
		pending.Note = "source missing"
		s.logOperation(ctx, file.ID, models.OperationMoveToStaging, file.Path, nil, file.Size, false, "source file missing")
		s.logger.Warn("Source file not found; staging logically only",
			interfaces.String("path", file.Path))
	}

	if err := s.repo.CreatePendingDeletion(ctx, pending); err != nil {
		// Undo the physical move and the deleted flag before surfacing.
		if pending.StagedPath != nil {
			if moveErr := s.mover.Move(*pending.StagedPath, resolved); moveErr != nil {
				s.logger.Error("Failed to undo staging move",
					interfaces.String("staged", *pending.StagedPath),
					interfaces.Error(moveErr))
			}
		}
		s.rollbackDeletedFlag(ctx, file)
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeDeletionStaged, pending.ID.String(), map[string]interface{}{
		"file_id":          file.ID.String(),
		"reason":           req.Reason,
		"language_concern": req.LanguageConcern,
	}))

	s.logger.Info("File staged for deletion",
		interfaces.String("file_id", file.ID.String()),
		interfaces.String("path", file.Path),
		interfaces.Bool("source_found", found))

	return pending, nil
}

// moveToStaging resolves the staging destination and performs the physical
// move, logging the attempt either way.
func (s *DeletionService) moveToStaging(ctx context.Context, file *models.MediaFile, resolved string, now time.Time) (string, error) {
	dir, err := s.prepareStagingDir(file.MediaType, now)
	if err != nil {
		s.logOperation(ctx, file.ID, models.OperationMoveToStaging, resolved, nil, file.Size, false, err.Error())
		return "", err
	}

	dst := domain.UniquePath(dir, file.Filename, s.mover.Exists)
	if err := s.mover.Move(resolved, dst); err != nil {
		s.logOperation(ctx, file.ID, models.OperationMoveToStaging, resolved, &dst, file.Size, false, err.Error())
		return "", errors.Wrap(errors.ErrorTypeInternal, "failed to move file to staging", err)
	}

	s.logOperation(ctx, file.ID, models.OperationMoveToStaging, resolved, &dst, file.Size, true, "")
	return dst, nil
}

func (s *DeletionService) prepareStagingDir(mediaType models.MediaType, now time.Time) (string, error) {
	for _, root := range s.opts.StagingRoots {
		dir := domain.StagingDir(root, mediaType, s.opts.StagingSubdirs, now)
		if err := s.mover.MkdirAll(dir); err != nil {
			s.logger.Warn("Unable to use staging directory",
				interfaces.String("dir", dir),
				interfaces.Error(err))
			continue
		}
		return dir, nil
	}
	return "", errors.Unavailable("no staging directory could be prepared")
}

func (s *DeletionService) rollbackDeletedFlag(ctx context.Context, file *models.MediaFile) {
	file.IsDeleted = false
	file.DeletedAt = nil
	if err := s.repo.UpdateMediaFile(ctx, file); err != nil {
		s.logger.Error("Failed to roll back deleted flag",
			interfaces.String("file_id", file.ID.String()),
			interfaces.Error(err))
	}
}

// Approve permanently removes the staged file and finalizes the deletion.
// A missing staged file is not an error; an explicit removal failure keeps
// the row and surfaces the error.
func (s *DeletionService) Approve(ctx context.Context, pendingID uuid.UUID) (*models.PendingDeletion, error) {
	pending, err := s.repo.GetPendingDeletion(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status == models.DeletionStatusApproved {
		return nil, errors.Conflict("deletion already approved")
	}

	now := time.Now().UTC()
	if pending.StagedPath != nil && s.mover.Exists(*pending.StagedPath) {
		if err := s.mover.Remove(*pending.StagedPath); err != nil {
			s.logOperation(ctx, pending.FileID, models.OperationPermanentDelete, *pending.StagedPath, nil, pending.Size, false, err.Error())
			return nil, errors.Wrap(errors.ErrorTypeInternal, "failed to remove staged file", err)
		}
		pending.PurgedAt = &now
		s.logOperation(ctx, pending.FileID, models.OperationPermanentDelete, *pending.StagedPath, nil, pending.Size, true, "")
	} else {
		s.logOperation(ctx, pending.FileID, models.OperationPermanentDelete, pending.OriginalPath, nil, pending.Size, true, "no staged file present")
	}

	pending.Status = models.DeletionStatusApproved
	pending.ApprovedAt = &now
	if err := s.repo.UpdatePendingDeletion(ctx, pending); err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeDeletionApproved, pending.ID.String(), map[string]interface{}{
		"file_id": pending.FileID.String(),
	}))

	s.logger.Info("Deletion approved",
		interfaces.String("pending_id", pending.ID.String()),
		interfaces.String("file_id", pending.FileID.String()))

	return pending, nil
}

// Restore moves the staged file back to its original location, clears the
// file's deleted flag and removes the pending deletion. A move failure
// leaves the pending deletion intact.
func (s *DeletionService) Restore(ctx context.Context, pendingID uuid.UUID) error {
	pending, err := s.repo.GetPendingDeletion(ctx, pendingID)
	if err != nil {
		return err
	}
	if pending.Status == models.DeletionStatusApproved {
		return errors.Conflict("deletion already finalized")
	}

	if pending.StagedPath != nil {
		if s.mover.Exists(*pending.StagedPath) {
			if err := s.mover.MkdirAll(filepath.Dir(pending.OriginalPath)); err != nil {
				s.logOperation(ctx, pending.FileID, models.OperationRestore, *pending.StagedPath, &pending.OriginalPath, pending.Size, false, err.Error())
				return errors.Wrap(errors.ErrorTypeInternal, "failed to recreate original directory", err)
			}
			if err := s.mover.Move(*pending.StagedPath, pending.OriginalPath); err != nil {
				s.logOperation(ctx, pending.FileID, models.OperationRestore, *pending.StagedPath, &pending.OriginalPath, pending.Size, false, err.Error())
				return errors.Wrap(errors.ErrorTypeInternal, "failed to restore file", err)
			}
			s.logOperation(ctx, pending.FileID, models.OperationRestore, *pending.StagedPath, &pending.OriginalPath, pending.Size, true, "")
		} else {
			s.logOperation(ctx, pending.FileID, models.OperationRestore, *pending.StagedPath, &pending.OriginalPath, pending.Size, false, "staged file missing")
			s.logger.Warn("Staged file missing; restoring record only",
				interfaces.String("staged", *pending.StagedPath))
		}
	} else {
		s.logOperation(ctx, pending.FileID, models.OperationRestore, pending.OriginalPath, &pending.OriginalPath, pending.Size, true, "no staged file present")
	}

	file, err := s.repo.GetMediaFile(ctx, pending.FileID)
	if err == nil {
		file.IsDeleted = false
		file.DeletedAt = nil
		if err := s.repo.UpdateMediaFile(ctx, file); err != nil {
			return err
		}
	} else if !errors.IsNotFound(err) {
		return err
	}

	if err := s.repo.DeletePendingDeletion(ctx, pending.ID); err != nil {
		return err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeDeletionRestored, pending.ID.String(), map[string]interface{}{
		"file_id": pending.FileID.String(),
	}))

	s.logger.Info("File restored from staging",
		interfaces.String("pending_id", pending.ID.String()),
		interfaces.String("file_id", pending.FileID.String()))

	return nil
}

// CleanupExpired permanently removes unapproved staged deletions older than
// the retention window, returning how many were cleaned. Per-row failures
// are logged and skipped.
func (s *DeletionService) CleanupExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.opts.Retention)
	expired, err := s.repo.ListExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, pending := range expired {
		if pending.StagedPath != nil && s.mover.Exists(*pending.StagedPath) {
			if err := s.mover.Remove(*pending.StagedPath); err != nil {
				s.logOperation(ctx, pending.FileID, models.OperationExpireCleanup, *pending.StagedPath, nil, pending.Size, false, err.Error())
				s.logger.Warn("Failed to remove expired staged file",
					interfaces.String("staged", *pending.StagedPath),
					interfaces.Error(err))
				continue
			}
		}

		if err := s.repo.DeletePendingDeletion(ctx, pending.ID); err != nil {
			s.logger.Warn("Failed to delete expired pending deletion",
				interfaces.String("pending_id", pending.ID.String()),
				interfaces.Error(err))
			continue
		}

		s.logOperation(ctx, pending.FileID, models.OperationExpireCleanup, pending.OriginalPath, pending.StagedPath, pending.Size, true, "")
		cleaned++
	}

	if cleaned > 0 {
		s.eventBus.PublishAsync(ctx, events.NewEvent(events.TypeCleanupCompleted, map[string]interface{}{
			"cleaned": cleaned,
		}))
	}

	s.logger.Info("Expiry sweep finished",
		interfaces.Int("expired", len(expired)),
		interfaces.Int("cleaned", cleaned))

	return cleaned, nil
}

// GetPendingDeletion retrieves a pending deletion by ID.
func (s *DeletionService) GetPendingDeletion(ctx context.Context, id uuid.UUID) (*models.PendingDeletion, error) {
	return s.repo.GetPendingDeletion(ctx, id)
}

// ListPendingDeletions lists pending deletions matching the filter, newest
// staged first.
func (s *DeletionService) ListPendingDeletions(ctx context.Context, filter repository.PendingFilter) ([]*models.PendingDeletion, error) {
	return s.repo.ListPendingDeletions(ctx, filter)
}

func (s *DeletionService) logOperation(ctx context.Context, fileID uuid.UUID, op models.OperationType, src string, dst *string, size int64, success bool, errMsg string) {
	entry := &models.OperationLog{
		ID:              uuid.New(),
		FileID:          fileID,
		Operation:       op,
		SourcePath:      src,
		DestinationPath: dst,
		Size:            size,
		Success:         success,
		ErrorMessage:    errMsg,
		PerformedAt:     time.Now().UTC(),
	}
	if err := s.repo.AppendOperationLog(ctx, entry); err != nil {
		s.logger.Error("Failed to append operation log", interfaces.Error(err))
	}
}
