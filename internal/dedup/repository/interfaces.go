package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediavault/mediavault/pkg/models"
)

// GroupFilter narrows group listings. Nil fields are not applied.
type GroupFilter struct {
	Reviewed          *bool
	RecommendedAction *models.GroupAction
	DuplicateType     *models.DuplicateType
	Limit             int
	Offset            int
}

// Repository defines the persistence surface of duplicate detection.
type Repository interface {
	// Candidate queries over the inventory.
	ListFilesWithSharedHash(ctx context.Context) ([]*models.MediaFile, error)
	ListFuzzyCandidates(ctx context.Context) ([]*models.MediaFile, error)

	// Group operations.
	GetGroupByHash(ctx context.Context, hash string) (*models.DuplicateGroup, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*models.DuplicateGroup, error)
	ListGroups(ctx context.Context, filter GroupFilter) ([]*models.DuplicateGroup, error)
	UpdateGroup(ctx context.Context, group *models.DuplicateGroup) error
	UpdateMember(ctx context.Context, member *models.DuplicateMember) error

	// CreateGroupWithMembers writes the group, its members, and the member
	// files' duplicate flags and scores in one transaction.
	CreateGroupWithMembers(ctx context.Context, group *models.DuplicateGroup, files []*models.MediaFile) error

	// Decisions.
	CreateGroupDecision(ctx context.Context, decision *models.GroupDecision) error
}
