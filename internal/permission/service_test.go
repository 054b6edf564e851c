package permission

import (
	"context"
	"testing"
	"time"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRoleAssignmentRepo serves canned assignments per user id and applies
// the same active/unexpired filter the real repo query does.
type fakeRoleAssignmentRepo struct {
	assignments map[string][]domain.RoleAssignment
	err         error
	calls       int
}

func (f *fakeRoleAssignmentRepo) ListActive(_ context.Context, userID string, now time.Time) ([]domain.RoleAssignment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	var active []domain.RoleAssignment
	for _, a := range f.assignments[userID] {
		if a.IsActive && !a.Expired(now) {
			active = append(active, a)
		}
	}
	return active, nil
}

func TestService_GetUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user resolves to guest without error", func(t *testing.T) {
		repo := &fakeRoleAssignmentRepo{assignments: map[string][]domain.RoleAssignment{}}
		svc := NewService(logger.Mock(), repo)

		role, err := svc.GetUserRole(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleGuest, role)
	})

	t.Run("empty user id resolves to guest without hitting the store", func(t *testing.T) {
		repo := &fakeRoleAssignmentRepo{}
		svc := NewService(logger.Mock(), repo)

		role, err := svc.GetUserRole(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleGuest, role)
		assert.Zero(t, repo.calls)
	})

	t.Run("highest active role wins", func(t *testing.T) {
		repo := &fakeRoleAssignmentRepo{assignments: map[string][]domain.RoleAssignment{
			"u1": {
				{UserID: "u1", Role: domain.RoleMember, IsActive: true},
				{UserID: "u1", Role: domain.RoleAdmin, IsActive: true},
			},
		}}
		svc := NewService(logger.Mock(), repo)

		role, err := svc.GetUserRole(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, role)
	})

	t.Run("inactive and expired assignments do not count", func(t *testing.T) {
		expired := time.Now().Add(-time.Minute)
		repo := &fakeRoleAssignmentRepo{assignments: map[string][]domain.RoleAssignment{
			"u1": {
				{UserID: "u1", Role: domain.RoleSuperAdmin, IsActive: false},
				{UserID: "u1", Role: domain.RoleAdmin, IsActive: true, ExpiresAt: &expired},
				{UserID: "u1", Role: domain.RoleMember, IsActive: true},
			},
		}}
		svc := NewService(logger.Mock(), repo)

		role, err := svc.GetUserRole(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, role)
	})

	t.Run("store failure returns guest and the error", func(t *testing.T) {
		repo := &fakeRoleAssignmentRepo{err: errors.New("connection refused")}
		svc := NewService(logger.Mock(), repo)

		role, err := svc.GetUserRole(ctx, "u1")
		require.Error(t, err)
		assert.Equal(t, domain.RoleGuest, role)
	})
}

func TestService_CanManageGroups(t *testing.T) {
	ctx := context.Background()

	grant := func(role domain.Role) *fakeRoleAssignmentRepo {
		return &fakeRoleAssignmentRepo{assignments: map[string][]domain.RoleAssignment{
			"u1": {{UserID: "u1", Role: role, IsActive: true}},
		}}
	}

	t.Run("admin is allowed", func(t *testing.T) {
		svc := NewService(logger.Mock(), grant(domain.RoleAdmin))

		decision, err := svc.CanManageGroups(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Empty(t, decision.Reason)
	})

	t.Run("super_admin is allowed", func(t *testing.T) {
		svc := NewService(logger.Mock(), grant(domain.RoleSuperAdmin))

		decision, err := svc.CanManageGroups(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("member gets the member denial verbatim", func(t *testing.T) {
		svc := NewService(logger.Mock(), grant(domain.RoleMember))

		decision, err := svc.CanManageGroups(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "Only administrators can manage groups.", decision.Reason)
	})

	t.Run("guest gets the guest denial verbatim", func(t *testing.T) {
		svc := NewService(logger.Mock(), grant(domain.RoleGuest))

		decision, err := svc.CanManageGroups(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "Please sign in as an administrator to manage groups.", decision.Reason)
	})

	t.Run("unknown user is denied like a guest", func(t *testing.T) {
		repo := &fakeRoleAssignmentRepo{assignments: map[string][]domain.RoleAssignment{}}
		svc := NewService(logger.Mock(), repo)

		decision, err := svc.CanManageGroups(ctx, "stranger")
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonGuestDenied, decision.Reason)
	})

	t.Run("store failure surfaces as an error, not a denial", func(t *testing.T) {
		repo := &fakeRoleAssignmentRepo{err: errors.New("connection refused")}
		svc := NewService(logger.Mock(), repo)

		decision, err := svc.CanManageGroups(ctx, "u1")
		require.Error(t, err)
		assert.False(t, decision.Allowed)
		assert.Empty(t, decision.Reason)
	})
}
