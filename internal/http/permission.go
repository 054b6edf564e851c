package http

import (
	"context"
	"net/http"

	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/permission"

	"github.com/go-chi/chi/v5"
)

type permissionService interface {
	GetUserRole(ctx context.Context, userID string) (domain.Role, error)
	CanManageGroups(ctx context.Context, userID string) (permission.Decision, error)
}

type permissionHandler struct {
	encoder encoder
	service permissionService
}

func newPermissionHandler(encoder encoder, service permissionService) *permissionHandler {
	return &permissionHandler{
		encoder: encoder,
		service: service,
	}
}

func (h permissionHandler) Routes(r chi.Router) {
	r.Get("/check", h.check)
}

type permissionCheckResponse struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// check reports the caller-supplied user's effective role and whether they
// may manage groups. Unknown users resolve to guest rather than an error.
func (h permissionHandler) check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")

	role, err := h.service.GetUserRole(ctx, userID)
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}

	decision, err := h.service.CanManageGroups(ctx, userID)
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, permissionCheckResponse{
		UserID:  userID,
		Role:    string(role),
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
	}, http.StatusOK)
}
