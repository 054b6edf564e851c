package http

import (
	"context"
	"net/http"

	"github.com/emberhollow/hearth/internal/domain"

	"github.com/go-chi/chi/v5"
)

type cleanupService interface {
	ClearAllPosts(ctx context.Context, userID string) domain.CleanupResult
	ClearAllGroups(ctx context.Context, userID string) domain.CleanupResult
	PerformCompleteCleanup(ctx context.Context, userID string) domain.CompleteCleanupResult
	ValidateDataIntegrity(ctx context.Context) (*domain.IntegrityValidationResult, error)
	GetCleanupStatus(ctx context.Context) (*domain.CleanupStatus, error)
}

type cleanupHandler struct {
	encoder encoder
	service cleanupService
}

func newCleanupHandler(encoder encoder, service cleanupService) *cleanupHandler {
	return &cleanupHandler{
		encoder: encoder,
		service: service,
	}
}

func (h cleanupHandler) Routes(r chi.Router) {
	r.Post("/posts", h.clearPosts)
	r.Post("/groups", h.clearGroups)
	r.Post("/complete", h.complete)
	r.Get("/status", h.status)
	r.Get("/integrity", h.integrity)
}

// resultStatus maps a cleanup outcome to an HTTP status. The result body is
// always returned so callers see the deleted count and message either way.
func resultStatus(result domain.CleanupResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Outcome {
	case domain.CleanupOutcomeDenied:
		return http.StatusForbidden
	case domain.CleanupOutcomeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h cleanupHandler) clearPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := userFromContext(ctx)
	if user == nil {
		http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
		return
	}

	result := h.service.ClearAllPosts(ctx, user.ID)
	h.encoder.StatusResponse(ctx, w, result, resultStatus(result))
}

func (h cleanupHandler) clearGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := userFromContext(ctx)
	if user == nil {
		http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
		return
	}

	result := h.service.ClearAllGroups(ctx, user.ID)
	h.encoder.StatusResponse(ctx, w, result, resultStatus(result))
}

func (h cleanupHandler) complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := userFromContext(ctx)
	if user == nil {
		http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
		return
	}

	result := h.service.PerformCompleteCleanup(ctx, user.ID)

	status := http.StatusOK
	if !result.OverallSuccess {
		switch {
		case !result.PostsCleanup.Success:
			status = resultStatus(result.PostsCleanup)
		case !result.GroupsCleanup.Success:
			status = resultStatus(result.GroupsCleanup)
		default:
			// both cleanups succeeded, so the integrity scan must have failed
			status = http.StatusInternalServerError
		}
	}
	h.encoder.StatusResponse(ctx, w, result, status)
}

func (h cleanupHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.service.GetCleanupStatus(ctx)
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, status, http.StatusOK)
}

func (h cleanupHandler) integrity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.ValidateDataIntegrity(ctx)
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}

	// a violation is a reportable result, not an HTTP error
	h.encoder.StatusResponse(ctx, w, result, http.StatusOK)
}
