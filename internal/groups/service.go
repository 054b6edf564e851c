package groups

import (
	"context"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/internal/permission"
	"github.com/emberhollow/hearth/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrGroupExists = errors.New("a group with this name already exists")
)

// PermissionDeniedError carries the verbatim denial reason from the
// permission service. Callers display Reason directly.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Reason
}

// ValidationError marks malformed input to a creation path.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// GroupInput is the caller-supplied shape for creating or updating a group.
type GroupInput struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Description  string `json:"description" validate:"max=2000"`
	ExternalLink string `json:"external_link" validate:"omitempty,url"`
}

// Service implements the record-creation/query boundary for groups.
// It performs single-row validated inserts only; bulk deletion belongs to
// the cleanup service.
type Service interface {
	CreateGroup(ctx context.Context, userID string, input GroupInput) (*domain.Group, error)
	UpdateGroup(ctx context.Context, userID string, groupID string, input GroupInput) (*domain.Group, error)
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	// CreateMissing creates every configured default group that does not
	// exist yet, by name. It is idempotent: a second run creates nothing.
	CreateMissing(ctx context.Context, userID string) ([]domain.Group, error)
}

type service struct {
	log           zerolog.Logger
	repo          domain.GroupRepo
	permissionSvc permission.Service
	validate      *validator.Validate
	defaults      []domain.DefaultGroupConfig
}

func NewService(log logger.Logger, repo domain.GroupRepo, permissionSvc permission.Service, defaults []domain.DefaultGroupConfig) Service {
	return &service{
		log:           log.With().Str("module", "groups").Logger(),
		repo:          repo,
		permissionSvc: permissionSvc,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		defaults:      defaults,
	}
}

// authorize gates every mutating operation through the permission service.
func (s *service) authorize(ctx context.Context, userID string) error {
	decision, err := s.permissionSvc.CanManageGroups(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "failed to verify permissions")
	}
	if !decision.Allowed {
		return &PermissionDeniedError{Reason: decision.Reason}
	}
	return nil
}

func (s *service) CreateGroup(ctx context.Context, userID string, input GroupInput) (*domain.Group, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(input); err != nil {
		s.log.Debug().Err(err).Str("user_id", userID).Msg("Group input failed validation")
		return nil, &ValidationError{Err: err}
	}

	existing, err := s.repo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check for existing group")
	}
	if existing != nil {
		return nil, ErrGroupExists
	}

	group := domain.Group{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Description:  input.Description,
		ExternalLink: input.ExternalLink,
		CreatedBy:    userID,
		IsActive:     true,
	}

	stored, err := s.repo.Store(ctx, group)
	if err != nil {
		s.log.Error().Err(err).Str("name", input.Name).Msg("Failed to create group")
		return nil, errors.Wrap(err, "failed to create group")
	}

	s.log.Info().Str("group_id", stored.ID).Str("name", stored.Name).Str("created_by", userID).Msg("Group created")
	return stored, nil
}

func (s *service) UpdateGroup(ctx context.Context, userID string, groupID string, input GroupInput) (*domain.Group, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Err: err}
	}

	existing, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load group for update")
	}
	if existing == nil {
		return nil, errors.New("group not found: %s", groupID)
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.ExternalLink = input.ExternalLink

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		s.log.Error().Err(err).Str("group_id", groupID).Msg("Failed to update group")
		return nil, errors.Wrap(err, "failed to update group")
	}

	return updated, nil
}

func (s *service) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.repo.List(ctx)
}

func (s *service) CreateMissing(ctx context.Context, userID string) ([]domain.Group, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}

	created := make([]domain.Group, 0, len(s.defaults))
	for _, def := range s.defaults {
		input := GroupInput{
			Name:         def.Name,
			Description:  def.Description,
			ExternalLink: def.ExternalLink,
		}
		if err := s.validate.Struct(input); err != nil {
			s.log.Warn().Err(err).Str("name", def.Name).Msg("Skipping invalid default group")
			continue
		}

		existing, err := s.repo.FindByName(ctx, def.Name)
		if err != nil {
			return created, errors.Wrap(err, "failed to check for existing group")
		}
		if existing != nil {
			continue
		}

		group := domain.Group{
			ID:           uuid.New().String(),
			Name:         def.Name,
			Description:  def.Description,
			ExternalLink: def.ExternalLink,
			CreatedBy:    userID,
			IsActive:     true,
		}

		stored, err := s.repo.Store(ctx, group)
		if err != nil {
			s.log.Error().Err(err).Str("name", def.Name).Msg("Failed to create missing group")
			return created, errors.Wrap(err, "failed to create missing group")
		}

		s.log.Info().Str("group_id", stored.ID).Str("name", stored.Name).Msg("Created missing default group")
		created = append(created, *stored)
	}

	return created, nil
}
