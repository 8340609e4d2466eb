package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/models"
	"github.com/mediavault/mediavault/pkg/repository"
)

// GormRepository implements the dedup repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ListFilesWithSharedHash returns non-deleted files whose content hash is
// shared by at least one other non-deleted file, ordered by hash then path.
func (r *GormRepository) ListFilesWithSharedHash(ctx context.Context) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	shared := r.db.WithContext(ctx).
		Model(&models.MediaFile{}).
		Select("content_hash").
		Where("content_hash IS NOT NULL AND is_deleted = ?", false).
		Group("content_hash").
		Having("COUNT(*) >= 2")

	err := r.db.WithContext(ctx).
		Where("content_hash IN (?) AND is_deleted = ?", shared, false).
		Order("content_hash, path").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListFuzzyCandidates returns non-deleted files with a parsed title,
// ordered by path for deterministic clustering input order.
func (r *GormRepository) ListFuzzyCandidates(ctx context.Context) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	err := r.db.WithContext(ctx).
		Where("parsed_title <> '' AND is_deleted = ?", false).
		Order("path").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// GetGroupByHash retrieves a group by its content-derived hash, with members.
func (r *GormRepository) GetGroupByHash(ctx context.Context, hash string) (*models.DuplicateGroup, error) {
	var group models.DuplicateGroup
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("rank") }).
		Where("group_hash = ?", hash).
		First(&group).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetGroup retrieves a group by ID with its ranked members.
func (r *GormRepository) GetGroup(ctx context.Context, id uuid.UUID) (*models.DuplicateGroup, error) {
	return repository.FindByID[models.DuplicateGroup](ctx, r.db, id, "Members")
}

// ListGroups lists groups matching the filter, newest first.
func (r *GormRepository) ListGroups(ctx context.Context, filter GroupFilter) ([]*models.DuplicateGroup, error) {
	var groups []*models.DuplicateGroup
	query := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("rank") })

	if filter.Reviewed != nil {
		query = query.Where("reviewed = ?", *filter.Reviewed)
	}
	if filter.RecommendedAction != nil {
		query = query.Where("recommended_action = ?", *filter.RecommendedAction)
	}
	if filter.DuplicateType != nil {
		query = query.Where("duplicate_type = ?", *filter.DuplicateType)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("detected_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateGroup updates a group record.
func (r *GormRepository) UpdateGroup(ctx context.Context, group *models.DuplicateGroup) error {
	return repository.Update(ctx, r.db, group)
}

// UpdateMember updates a member record.
func (r *GormRepository) UpdateMember(ctx context.Context, member *models.DuplicateMember) error {
	return repository.Update(ctx, r.db, member)
}

// CreateGroupWithMembers commits the group, its members, and the member
// files' duplicate flags and resolved scores atomically.
func (r *GormRepository) CreateGroupWithMembers(ctx context.Context, group *models.DuplicateGroup, files []*models.MediaFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			if errors.IsDuplicateError(err) {
				return errors.Conflict("duplicate group already exists")
			}
			return err
		}
		for _, file := range files {
			err := tx.Model(&models.MediaFile{}).
				Where("id = ?", file.ID).
				Updates(map[string]interface{}{
					"is_duplicate":  true,
					"quality_score": file.QualityScore,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateGroupDecision records a manual decision against a group.
func (r *GormRepository) CreateGroupDecision(ctx context.Context, decision *models.GroupDecision) error {
	return repository.Create(ctx, r.db, decision)
}
