package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/internal/permission"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
)

// Resource kinds used for per-kind lock serialization.
const (
	kindPosts  = "posts"
	kindGroups = "groups"
)

// Event bus topics published by the service.
const (
	TopicCleanupCompleted   = "cleanup:completed"
	TopicIntegrityViolation = "integrity:violation"
)

// Service orchestrates destructive bulk operations and the read-only
// integrity/status operations. Every destructive entry point checks
// authorization through the permission service before touching any store;
// on denial it returns without performing a single write.
type Service interface {
	// ClearAllPosts deletes all post likes, then all posts, as one atomic
	// unit. Likes orphaned before the run are swept as well.
	ClearAllPosts(ctx context.Context, userID string) domain.CleanupResult
	// ClearAllGroups deletes all memberships, then all groups, as one atomic
	// unit. Memberships orphaned before the run are swept as well.
	ClearAllGroups(ctx context.Context, userID string) domain.CleanupResult
	// PerformCompleteCleanup runs the posts cleanup, then the groups cleanup
	// (a failure in one does not block the other), then the integrity scan
	// as a post-condition check.
	PerformCompleteCleanup(ctx context.Context, userID string) domain.CompleteCleanupResult
	// ValidateDataIntegrity is a read-only orphan scan, safe for any caller.
	ValidateDataIntegrity(ctx context.Context) (*domain.IntegrityValidationResult, error)
	// GetCleanupStatus is a point-in-time row-count snapshot, safe for any caller.
	GetCleanupStatus(ctx context.Context) (*domain.CleanupStatus, error)
}

type service struct {
	log            zerolog.Logger
	permissionSvc  permission.Service
	postRepo       domain.PostRepo
	postLikeRepo   domain.PostLikeRepo
	groupRepo      domain.GroupRepo
	membershipRepo domain.GroupMembershipRepo
	statusRepo     domain.CleanupStatusRepo
	locker         Locker
	bus            EventBus.Bus
}

func NewService(
	log logger.Logger,
	permissionSvc permission.Service,
	postRepo domain.PostRepo,
	postLikeRepo domain.PostLikeRepo,
	groupRepo domain.GroupRepo,
	membershipRepo domain.GroupMembershipRepo,
	statusRepo domain.CleanupStatusRepo,
	locker Locker,
	bus EventBus.Bus,
) Service {
	return &service{
		log:            log.With().Str("module", "cleanup").Logger(),
		permissionSvc:  permissionSvc,
		postRepo:       postRepo,
		postLikeRepo:   postLikeRepo,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		statusRepo:     statusRepo,
		locker:         locker,
		bus:            bus,
	}
}

// authorize runs the permission check shared by every destructive entry
// point. A denied result carries the verbatim reason; a store failure during
// the check is reported as a failure, never as a silent guest denial.
func (s *service) authorize(ctx context.Context, userID string) (denied *domain.CleanupResult) {
	decision, err := s.permissionSvc.CanManageGroups(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Authorization check failed")
		return &domain.CleanupResult{
			Success:      false,
			DeletedCount: 0,
			Message:      "Cleanup aborted: could not verify permissions",
			Outcome:      domain.CleanupOutcomeFailed,
		}
	}
	if !decision.Allowed {
		s.log.Warn().Str("user_id", userID).Str("reason", decision.Reason).Msg("Cleanup denied")
		return &domain.CleanupResult{
			Success:      false,
			DeletedCount: 0,
			Message:      "Permission denied: " + decision.Reason,
			Outcome:      domain.CleanupOutcomeDenied,
		}
	}
	return nil
}

func (s *service) ClearAllPosts(ctx context.Context, userID string) domain.CleanupResult {
	if denied := s.authorize(ctx, userID); denied != nil {
		return *denied
	}
	return s.clearPosts(ctx, userID)
}

// clearPosts runs the authorized posts path. Split out so the composite
// cleanup can reuse it after its own single authorization check.
func (s *service) clearPosts(ctx context.Context, userID string) domain.CleanupResult {
	release, err := s.locker.TryLock(ctx, kindPosts)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Posts cleanup rejected: lock held")
		return domain.CleanupResult{
			Success:      false,
			DeletedCount: 0,
			Message:      "Another posts cleanup is already running",
			Outcome:      domain.CleanupOutcomeConflict,
		}
	}
	defer release()

	deleted, err := s.postRepo.DeleteAllWithLikes(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Posts cleanup failed")
		result := domain.CleanupResult{
			Success:      false,
			DeletedCount: deleted,
			Message:      "Failed to delete posts due to a storage error",
			Outcome:      domain.CleanupOutcomeFailed,
		}
		s.publishCompleted(userID, kindPosts, result)
		return result
	}

	s.log.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("Posts cleanup completed")
	result := domain.CleanupResult{
		Success:      true,
		DeletedCount: deleted,
		Message:      fmt.Sprintf("Successfully deleted %d posts", deleted),
		Outcome:      domain.CleanupOutcomeOK,
	}
	s.publishCompleted(userID, kindPosts, result)
	return result
}

func (s *service) ClearAllGroups(ctx context.Context, userID string) domain.CleanupResult {
	if denied := s.authorize(ctx, userID); denied != nil {
		return *denied
	}
	return s.clearGroups(ctx, userID)
}

func (s *service) clearGroups(ctx context.Context, userID string) domain.CleanupResult {
	release, err := s.locker.TryLock(ctx, kindGroups)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Groups cleanup rejected: lock held")
		return domain.CleanupResult{
			Success:      false,
			DeletedCount: 0,
			Message:      "Another groups cleanup is already running",
			Outcome:      domain.CleanupOutcomeConflict,
		}
	}
	defer release()

	deleted, err := s.groupRepo.DeleteAllWithMemberships(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Groups cleanup failed")
		result := domain.CleanupResult{
			Success:      false,
			DeletedCount: deleted,
			Message:      "Failed to delete groups due to a storage error",
			Outcome:      domain.CleanupOutcomeFailed,
		}
		s.publishCompleted(userID, kindGroups, result)
		return result
	}

	s.log.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("Groups cleanup completed")
	result := domain.CleanupResult{
		Success:      true,
		DeletedCount: deleted,
		Message:      fmt.Sprintf("Successfully deleted %d groups", deleted),
		Outcome:      domain.CleanupOutcomeOK,
	}
	s.publishCompleted(userID, kindGroups, result)
	return result
}

func (s *service) PerformCompleteCleanup(ctx context.Context, userID string) domain.CompleteCleanupResult {
	if denied := s.authorize(ctx, userID); denied != nil {
		// every sub-result reflects the same denial
		return domain.CompleteCleanupResult{
			OverallSuccess: false,
			PostsCleanup:   *denied,
			GroupsCleanup:  *denied,
			IntegrityValidation: domain.IntegrityValidationResult{
				IsValid:         false,
				Issues:          []string{denied.Message},
				OrphanedRecords: map[string]int64{},
				Timestamp:       time.Now().UTC(),
			},
		}
	}

	// posts and groups share no foreign key, so a failure in one does not
	// block attempting the other
	postsResult := s.clearPosts(ctx, userID)
	groupsResult := s.clearGroups(ctx, userID)

	validation, err := s.ValidateDataIntegrity(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Post-cleanup integrity validation failed")
		validation = &domain.IntegrityValidationResult{
			IsValid:         false,
			Issues:          []string{"Integrity validation could not be completed due to a storage error"},
			OrphanedRecords: map[string]int64{},
			Timestamp:       time.Now().UTC(),
		}
	}

	return domain.CompleteCleanupResult{
		OverallSuccess:      postsResult.Success && groupsResult.Success && validation.IsValid,
		PostsCleanup:        postsResult,
		GroupsCleanup:       groupsResult,
		IntegrityValidation: *validation,
	}
}

func (s *service) ValidateDataIntegrity(ctx context.Context) (*domain.IntegrityValidationResult, error) {
	result := &domain.IntegrityValidationResult{
		Issues:          []string{},
		OrphanedRecords: map[string]int64{},
		Timestamp:       time.Now().UTC(),
	}

	orphanedLikes, err := s.postLikeRepo.CountOrphaned(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan post likes for orphans")
	}
	result.OrphanedRecords[domain.RecordKindPostLike] = orphanedLikes
	if orphanedLikes > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("Found %d orphaned post likes referencing deleted posts", orphanedLikes))
	}

	orphanedByGroup, err := s.membershipRepo.CountOrphanedByGroup(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan group memberships for orphans")
	}
	result.OrphanedRecords[domain.RecordKindGroupMembership] = orphanedByGroup
	if orphanedByGroup > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("Found %d orphaned group memberships referencing deleted groups", orphanedByGroup))
	}

	orphanedByUser, err := s.membershipRepo.CountOrphanedByUser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan group memberships for missing users")
	}
	result.OrphanedRecords[domain.RecordKindGroupMembershipUser] = orphanedByUser
	if orphanedByUser > 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("Found %d group memberships referencing deleted users", orphanedByUser))
	}

	// an empty store is valid, not an error
	result.IsValid = len(result.Issues) == 0

	if !result.IsValid {
		s.log.Warn().Strs("issues", result.Issues).Msg("Integrity validation found orphaned records")
		if s.bus != nil {
			s.bus.Publish(TopicIntegrityViolation, *result)
		}
	} else {
		s.log.Debug().Msg("Integrity validation passed")
	}

	return result, nil
}

func (s *service) GetCleanupStatus(ctx context.Context) (*domain.CleanupStatus, error) {
	status, err := s.statusRepo.Snapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read cleanup status snapshot")
		return nil, errors.Wrap(err, "failed to read cleanup status")
	}
	return status, nil
}

func (s *service) publishCompleted(userID string, kind string, result domain.CleanupResult) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(TopicCleanupCompleted, CompletedEvent{
		UserID: userID,
		Kind:   kind,
		Result: result,
	})
}

// CompletedEvent is published on TopicCleanupCompleted after every
// destructive pass, successful or not.
type CompletedEvent struct {
	UserID string
	Kind   string
	Result domain.CleanupResult
}
