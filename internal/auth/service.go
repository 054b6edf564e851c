package auth

import (
	"context"
	"strings"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Service is the authentication/session boundary. It resolves callers to
// user IDs; privilege is derived elsewhere, from role assignments. Tokens
// are "<user-id>.<secret>" so lookup is a single indexed read followed by a
// bcrypt comparison.
type Service interface {
	GetUserCount(ctx context.Context) (int64, error)
	// AuthenticateToken verifies an API token and returns the user it
	// belongs to, or ErrAuthenticationFailed.
	AuthenticateToken(ctx context.Context, plainToken string) (*domain.User, error)
	// ResolveUser fetches a user by id. Unknown users return nil, nil.
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	log  zerolog.Logger
	repo domain.UserRepo
}

func NewService(log logger.Logger, repo domain.UserRepo) Service {
	return &service{
		log:  log.With().Str("module", "auth").Logger(),
		repo: repo,
	}
}

func (s *service) GetUserCount(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to count users")
		return 0, errors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (s *service) AuthenticateToken(ctx context.Context, plainToken string) (*domain.User, error) {
	userID, secret, found := strings.Cut(plainToken, ".")
	if !found || userID == "" || secret == "" {
		s.log.Debug().Msg("Malformed API token")
		return nil, ErrAuthenticationFailed
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to look up user for token authentication")
		// fail closed without leaking whether the user exists
		return nil, ErrAuthenticationFailed
	}
	if user == nil || user.APITokenHash == "" {
		return nil, ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.APITokenHash), []byte(secret)); err != nil {
		s.log.Warn().Str("user_id", userID).Msg("API token mismatch")
		return nil, ErrAuthenticationFailed
	}

	s.log.Debug().Str("user_id", user.ID).Msg("API token authentication successful")
	return user, nil
}

func (s *service) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve user")
	}
	return user, nil
}
