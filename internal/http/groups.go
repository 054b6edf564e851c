package http

import (
	"encoding/json"
	"net/http"

	"github.com/emberhollow/hearth/internal/groups"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/go-chi/chi/v5"
)

type groupsHandler struct {
	encoder encoder
	service groups.Service
}

func newGroupsHandler(encoder encoder, service groups.Service) *groupsHandler {
	return &groupsHandler{
		encoder: encoder,
		service: service,
	}
}

func (h groupsHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.store)
	r.Post("/missing", h.createMissing)
	r.Get("/{groupID}", h.get)
	r.Put("/{groupID}", h.update)
}

// groupError maps service errors to HTTP statuses.
func (h groupsHandler) groupError(w http.ResponseWriter, err error) {
	var denied *groups.PermissionDeniedError
	var invalid *groups.ValidationError

	switch {
	case errors.As(err, &denied):
		h.encoder.StatusError(w, http.StatusForbidden, err)
	case errors.As(err, &invalid):
		h.encoder.StatusError(w, http.StatusBadRequest, err)
	case errors.Is(err, groups.ErrGroupExists):
		h.encoder.StatusError(w, http.StatusConflict, err)
	default:
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
	}
}

func (h groupsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.service.ListGroups(ctx)
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, list, http.StatusOK)
}

func (h groupsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	group, err := h.service.GetGroup(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}
	if group == nil {
		h.encoder.StatusNotFound(ctx, w)
		return
	}

	h.encoder.StatusResponse(ctx, w, group, http.StatusOK)
}

func (h groupsHandler) store(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := userFromContext(ctx)
	if user == nil {
		http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
		return
	}

	var input groups.GroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.encoder.StatusError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}

	group, err := h.service.CreateGroup(ctx, user.ID, input)
	if err != nil {
		h.groupError(w, err)
		return
	}

	h.encoder.StatusCreatedData(w, group)
}

func (h groupsHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := userFromContext(ctx)
	if user == nil {
		http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
		return
	}

	var input groups.GroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.encoder.StatusError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}

	group, err := h.service.UpdateGroup(ctx, user.ID, chi.URLParam(r, "groupID"), input)
	if err != nil {
		h.groupError(w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, group, http.StatusOK)
}

func (h groupsHandler) createMissing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := userFromContext(ctx)
	if user == nil {
		http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
		return
	}

	created, err := h.service.CreateMissing(ctx, user.ID)
	if err != nil {
		h.groupError(w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, created, http.StatusOK)
}
