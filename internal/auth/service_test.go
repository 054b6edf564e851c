package auth

import (
	"context"
	"testing"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]domain.User
	err   error
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), f.err
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, f.err
}

func (f *fakeUserRepo) Store(_ context.Context, user domain.User) error {
	f.users[user.ID] = user
	return nil
}

func repoWithToken(t *testing.T, userID, secret string) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeUserRepo{users: map[string]domain.User{
		userID: {ID: userID, DisplayName: "Test User", APITokenHash: string(hash)},
	}}
}

func TestService_AuthenticateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves the user", func(t *testing.T) {
		repo := repoWithToken(t, "user-1", "s3cret")
		svc := NewService(logger.Mock(), repo)

		user, err := svc.AuthenticateToken(ctx, "user-1.s3cret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		repo := repoWithToken(t, "user-1", "s3cret")
		svc := NewService(logger.Mock(), repo)

		_, err := svc.AuthenticateToken(ctx, "user-1.wrong")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("unknown user fails with the same error", func(t *testing.T) {
		repo := repoWithToken(t, "user-1", "s3cret")
		svc := NewService(logger.Mock(), repo)

		_, err := svc.AuthenticateToken(ctx, "user-2.s3cret")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("malformed tokens fail", func(t *testing.T) {
		repo := repoWithToken(t, "user-1", "s3cret")
		svc := NewService(logger.Mock(), repo)

		for _, token := range []string{"", "no-separator", ".secret-only", "user-only."} {
			_, err := svc.AuthenticateToken(ctx, token)
			assert.ErrorIs(t, err, ErrAuthenticationFailed, "token %q", token)
		}
	})

	t.Run("store failure fails closed without leaking", func(t *testing.T) {
		repo := &fakeUserRepo{err: errors.New("connection refused")}
		svc := NewService(logger.Mock(), repo)

		_, err := svc.AuthenticateToken(ctx, "user-1.s3cret")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("user without a token hash cannot authenticate", func(t *testing.T) {
		repo := &fakeUserRepo{users: map[string]domain.User{
			"user-1": {ID: "user-1"},
		}}
		svc := NewService(logger.Mock(), repo)

		_, err := svc.AuthenticateToken(ctx, "user-1.anything")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})
}

func TestService_ResolveUser(t *testing.T) {
	ctx := context.Background()

	repo := repoWithToken(t, "user-1", "s3cret")
	svc := NewService(logger.Mock(), repo)

	user, err := svc.ResolveUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	user, err = svc.ResolveUser(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestService_GetUserCount(t *testing.T) {
	ctx := context.Background()

	repo := repoWithToken(t, "user-1", "s3cret")
	svc := NewService(logger.Mock(), repo)

	count, err := svc.GetUserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
