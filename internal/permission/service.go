package permission

import (
	"context"
	"time"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
)

// Denial reasons are displayed verbatim by callers. The two sentences are
// semantically distinct (authenticated-but-insufficient vs not authenticated)
// and must not be merged.
const (
	ReasonMemberDenied = "Only administrators can manage groups."
	ReasonGuestDenied  = "Please sign in as an administrator to manage groups."
)

// Decision is the outcome of an authorization check. Reason is empty when
// Allowed is true.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Service is the single authorization gate for every mutating operation.
// No other component derives privilege independently, which keeps the
// policy centrally auditable.
type Service interface {
	// GetUserRole resolves the effective role of a user: the highest-ranked
	// active, unexpired assignment. Unknown users resolve to guest; absence
	// of privilege is the answer, not an error.
	GetUserRole(ctx context.Context, userID string) (domain.Role, error)
	// CanManageGroups decides whether the user may mutate shared resources.
	CanManageGroups(ctx context.Context, userID string) (Decision, error)
}

type service struct {
	log  zerolog.Logger
	repo domain.RoleAssignmentRepo
}

func NewService(log logger.Logger, repo domain.RoleAssignmentRepo) Service {
	return &service{
		log:  log.With().Str("module", "permission").Logger(),
		repo: repo,
	}
}

func (s *service) GetUserRole(ctx context.Context, userID string) (domain.Role, error) {
	if userID == "" {
		return domain.RoleGuest, nil
	}

	assignments, err := s.repo.ListActive(ctx, userID, time.Now())
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load role assignments")
		return domain.RoleGuest, errors.Wrap(err, "failed to resolve user role")
	}

	role := domain.EffectiveRole(assignments)
	s.log.Trace().Str("user_id", userID).Str("role", role.String()).Int("assignments", len(assignments)).Msg("Resolved effective role")
	return role, nil
}

func (s *service) CanManageGroups(ctx context.Context, userID string) (Decision, error) {
	role, err := s.GetUserRole(ctx, userID)
	if err != nil {
		// a store failure must not degrade silently into a guest denial
		return Decision{}, err
	}

	switch role {
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		return Decision{Allowed: true}, nil
	case domain.RoleMember:
		s.log.Debug().Str("user_id", userID).Msg("Group management denied: member role")
		return Decision{Allowed: false, Reason: ReasonMemberDenied}, nil
	default:
		s.log.Debug().Str("user_id", userID).Msg("Group management denied: guest or unknown user")
		return Decision{Allowed: false, Reason: ReasonGuestDenied}, nil
	}
}
