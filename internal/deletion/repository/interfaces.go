package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediavault/mediavault/pkg/models"
)

// PendingFilter narrows pending-deletion listings. Nil fields are not
// applied.
type PendingFilter struct {
	LanguageConcern *bool
	Status          *models.DeletionStatus
	Limit           int
	Offset          int
}

// Repository defines the persistence surface of the deletion lifecycle.
type Repository interface {
	// Media file access for lifecycle flag updates.
	GetMediaFile(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	UpdateMediaFile(ctx context.Context, file *models.MediaFile) error

	// Pending deletion operations.
	CreatePendingDeletion(ctx context.Context, pending *models.PendingDeletion) error
	GetPendingDeletion(ctx context.Context, id uuid.UUID) (*models.PendingDeletion, error)
	GetOpenPendingByFileID(ctx context.Context, fileID uuid.UUID) (*models.PendingDeletion, error)
	UpdatePendingDeletion(ctx context.Context, pending *models.PendingDeletion) error
	DeletePendingDeletion(ctx context.Context, id uuid.UUID) error
	ListPendingDeletions(ctx context.Context, filter PendingFilter) ([]*models.PendingDeletion, error)

	// ListExpired returns unapproved deletions staged before the cutoff.
	ListExpired(ctx context.Context, cutoff time.Time) ([]*models.PendingDeletion, error)

	// AppendOperationLog records one physical operation attempt. The log is
	// append-only.
	AppendOperationLog(ctx context.Context, entry *models.OperationLog) error
}
