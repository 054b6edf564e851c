package domain

import (
	"context"
	"time"
)

// CleanupStatusRepo takes point-in-time snapshots of the managed tables.
type CleanupStatusRepo interface {
	// Snapshot counts posts, groups, post likes and group memberships under
	// one read-only transaction so the four counts are mutually consistent
	// as far as the store's isolation allows.
	Snapshot(ctx context.Context) (*CleanupStatus, error)
}

// Record kinds reported by the integrity scan.
const (
	RecordKindPostLike            = "post_likes"
	RecordKindGroupMembership     = "group_memberships"
	RecordKindGroupMembershipUser = "group_membership_users"
)

// CleanupOutcome classifies how a cleanup ended so callers can map it to
// transport semantics (HTTP statuses, exit codes) without inspecting the
// display message.
type CleanupOutcome string

const (
	CleanupOutcomeOK       CleanupOutcome = "ok"
	CleanupOutcomeDenied   CleanupOutcome = "denied"
	CleanupOutcomeConflict CleanupOutcome = "conflict"
	CleanupOutcomeFailed   CleanupOutcome = "failed"
)

// CleanupResult is returned by every destructive operation. It is always
// fully populated: on denial or failure DeletedCount reflects the rows
// actually removed before the operation stopped. Outcome stays off the wire;
// the HTTP status carries it there.
type CleanupResult struct {
	Success      bool           `json:"success"`
	DeletedCount int64          `json:"deleted_count"`
	Message      string         `json:"message"`
	Outcome      CleanupOutcome `json:"-"`
}

// CompleteCleanupResult aggregates the full cleanup pass: both per-kind
// cleanups plus the post-condition integrity scan.
type CompleteCleanupResult struct {
	OverallSuccess      bool                      `json:"overall_success"`
	PostsCleanup        CleanupResult             `json:"posts_cleanup"`
	GroupsCleanup       CleanupResult             `json:"groups_cleanup"`
	IntegrityValidation IntegrityValidationResult `json:"integrity_validation"`
}

// IntegrityValidationResult is the outcome of a read-only orphan scan.
// A violation is a reportable result, not an error.
type IntegrityValidationResult struct {
	IsValid         bool             `json:"is_valid"`
	Issues          []string         `json:"issues"`
	OrphanedRecords map[string]int64 `json:"orphaned_records"`
	Timestamp       time.Time        `json:"timestamp"`
}

// CleanupStatus is a point-in-time snapshot of the managed tables,
// recomputed on every call.
type CleanupStatus struct {
	PostsCount            int64     `json:"posts_count"`
	GroupsCount           int64     `json:"groups_count"`
	PostLikesCount        int64     `json:"post_likes_count"`
	GroupMembershipsCount int64     `json:"group_memberships_count"`
	LastUpdated           time.Time `json:"last_updated"`
}
