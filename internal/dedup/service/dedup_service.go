package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediavault/mediavault/internal/dedup/domain"
	"github.com/mediavault/mediavault/internal/dedup/repository"
	"github.com/mediavault/mediavault/pkg/errors"
	"github.com/mediavault/mediavault/pkg/events"
	"github.com/mediavault/mediavault/pkg/interfaces"
	"github.com/mediavault/mediavault/pkg/models"
)

// Options tune duplicate detection and the retention policy.
type Options struct {
	// FuzzyThreshold is the minimum filename similarity ratio [0,100] for
	// two files to join the same fuzzy cluster.
	FuzzyThreshold float64
	Thresholds     domain.RetentionThresholds
	Language       domain.LanguagePolicy
}

// DedupService detects duplicate media files and manages the resulting
// groups through review.
type DedupService struct {
	repo     repository.Repository
	eventBus interfaces.EventBus
	logger   interfaces.Logger
	opts     Options
}

// NewDedupService creates a new dedup service.
func NewDedupService(
	repo repository.Repository,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
	opts Options,
) *DedupService {
	return &DedupService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		opts:     opts,
	}
}

// DetectDuplicates runs both detection strategies, exact first, and returns
// every group that exists after the run, including groups that already
// existed. Detection is idempotent.
func (s *DedupService) DetectDuplicates(ctx context.Context) ([]*models.DuplicateGroup, error) {
	exact, err := s.FindExactDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	fuzzy, err := s.FindFuzzyDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	return append(exact, fuzzy...), nil
}

// FindExactDuplicates groups non-deleted files sharing a content hash.
func (s *DedupService) FindExactDuplicates(ctx context.Context) ([]*models.DuplicateGroup, error) {
	files, err := s.repo.ListFilesWithSharedHash(ctx)
	if err != nil {
		return nil, err
	}

	byHash := make(map[string][]*models.MediaFile)
	var order []string
	for _, file := range files {
		if file.ContentHash == nil {
			continue
		}
		if _, seen := byHash[*file.ContentHash]; !seen {
			order = append(order, *file.ContentHash)
		}
		byHash[*file.ContentHash] = append(byHash[*file.ContentHash], file)
	}

	var groups []*models.DuplicateGroup
	for _, hash := range order {
		set := byHash[hash]
		if len(set) < 2 {
			continue
		}
		group, err := s.materializeGroup(ctx, set, models.DuplicateTypeExact, 100)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	s.logger.Info("Exact duplicate detection finished",
		interfaces.Int("groups", len(groups)))
	return groups, nil
}

// FindFuzzyDuplicates partitions non-deleted files by grouping key and
// clusters each partition by filename similarity.
func (s *DedupService) FindFuzzyDuplicates(ctx context.Context) ([]*models.DuplicateGroup, error) {
	files, err := s.repo.ListFuzzyCandidates(ctx)
	if err != nil {
		return nil, err
	}

	partitions := make(map[string][]*models.MediaFile)
	var order []string
	for _, file := range files {
		key := domain.KeyFor(file).String()
		if _, seen := partitions[key]; !seen {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], file)
	}

	var groups []*models.DuplicateGroup
	for _, key := range order {
		partition := partitions[key]
		if len(partition) < 2 {
			continue
		}
		for _, cluster := range domain.Cluster(partition, s.opts.FuzzyThreshold) {
			confidence := domain.ClusterConfidence(cluster)
			group, err := s.materializeGroup(ctx, cluster, models.DuplicateTypeFuzzy, confidence)
			if err != nil {
				return nil, err
			}
			groups = append(groups, group)
		}
	}

	s.logger.Info("Fuzzy duplicate detection finished",
		interfaces.Int("groups", len(groups)))
	return groups, nil
}

// materializeGroup persists one detected member set. When a group with the
// same member-derived hash already exists it is returned unchanged.
func (s *DedupService) materializeGroup(ctx context.Context, files []*models.MediaFile, dtype models.DuplicateType, confidence float64) (*models.DuplicateGroup, error) {
	ids := make([]uuid.UUID, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	hash := domain.GroupHash(ids)

	existing, err := s.repo.GetGroupByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	ranked := domain.RankFiles(files)
	verdict := domain.EvaluateRetention(ranked, s.opts.Thresholds, s.opts.Language)

	first := files[0]
	group := &models.DuplicateGroup{
		ID:                uuid.New(),
		GroupHash:         hash,
		DuplicateType:     dtype,
		Confidence:        confidence,
		Title:             first.ParsedTitle,
		Year:              first.ParsedYear,
		Season:            first.ParsedSeason,
		Episode:           first.ParsedEpisode,
		MediaType:         first.MediaType,
		MemberCount:       len(ranked),
		RecommendedAction: verdict.Action,
		ActionReason:      verdict.Reason,
		DetectedAt:        time.Now().UTC(),
	}

	for i, file := range ranked {
		group.Members = append(group.Members, models.DuplicateMember{
			ID:           uuid.New(),
			GroupID:      group.ID,
			FileID:       file.ID,
			Rank:         i + 1,
			Action:       verdict.Members[i].Action,
			Reason:       verdict.Members[i].Reason,
			QualityScore: file.QualityScore,
		})
	}

	if err := s.repo.CreateGroupWithMembers(ctx, group, ranked); err != nil {
		// A concurrent run materialized the same member set first.
		if errors.IsConflict(err) {
			if existing, lookupErr := s.repo.GetGroupByHash(ctx, hash); lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeGroupDetected, group.ID.String(), map[string]interface{}{
		"duplicate_type":     string(dtype),
		"member_count":       len(ranked),
		"recommended_action": string(verdict.Action),
		"confidence":         confidence,
	}))

	s.logger.Info("Duplicate group detected",
		interfaces.String("group_id", group.ID.String()),
		interfaces.String("type", string(dtype)),
		interfaces.Int("members", len(ranked)),
		interfaces.String("action", string(verdict.Action)))

	return group, nil
}

// SelectKeeper marks one member as the keeper and every other member for
// deletion, records the decision, and closes the group for review.
func (s *DedupService) SelectKeeper(ctx context.Context, groupID, fileID uuid.UUID) (*models.DuplicateGroup, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var keeper *models.DuplicateMember
	for i := range group.Members {
		if group.Members[i].FileID == fileID {
			keeper = &group.Members[i]
			break
		}
	}
	if keeper == nil {
		return nil, errors.BadRequest("file is not a member of this group")
	}

	for i := range group.Members {
		member := &group.Members[i]
		if member.FileID == fileID {
			member.Action = models.MemberActionKeep
			member.Reason = "selected as keeper"
		} else {
			member.Action = models.MemberActionDelete
			member.Reason = "keeper selected elsewhere"
		}
		if err := s.repo.UpdateMember(ctx, member); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	group.Reviewed = true
	group.ReviewedAt = &now
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	decision := &models.GroupDecision{
		ID:           uuid.New(),
		GroupID:      group.ID,
		Action:       "keeper_selected",
		KeeperFileID: &fileID,
		DecidedAt:    now,
	}
	if err := s.repo.CreateGroupDecision(ctx, decision); err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeKeeperSelected, group.ID.String(), map[string]interface{}{
		"keeper_file_id": fileID.String(),
	}))

	s.logger.Info("Keeper selected",
		interfaces.String("group_id", group.ID.String()),
		interfaces.String("file_id", fileID.String()))

	return group, nil
}

// DismissGroup marks a group as not-a-duplicate and closes it for review.
func (s *DedupService) DismissGroup(ctx context.Context, groupID uuid.UUID) (*models.DuplicateGroup, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group.RecommendedAction = models.GroupActionDismissed
	group.ActionReason = "dismissed by reviewer"
	group.Reviewed = true
	group.ReviewedAt = &now
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	decision := &models.GroupDecision{
		ID:        uuid.New(),
		GroupID:   group.ID,
		Action:    "dismissed",
		DecidedAt: now,
	}
	if err := s.repo.CreateGroupDecision(ctx, decision); err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(events.TypeGroupDismissed, group.ID.String(), nil))

	s.logger.Info("Duplicate group dismissed",
		interfaces.String("group_id", group.ID.String()))

	return group, nil
}

// GetGroup retrieves a group with its ranked members.
func (s *DedupService) GetGroup(ctx context.Context, id uuid.UUID) (*models.DuplicateGroup, error) {
	return s.repo.GetGroup(ctx, id)
}

// ListGroups lists groups matching the filter, newest first.
func (s *DedupService) ListGroups(ctx context.Context, filter repository.GroupFilter) ([]*models.DuplicateGroup, error) {
	return s.repo.ListGroups(ctx, filter)
}
