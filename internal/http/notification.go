package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/emberhollow/hearth/internal/domain"

	"github.com/go-chi/chi/v5"
)

type notificationService interface {
	List(ctx context.Context) ([]domain.Notification, error)
	FindByID(ctx context.Context, id int) (*domain.Notification, error)
	Store(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	Update(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	Delete(ctx context.Context, id int) error
	Test(ctx context.Context, notification domain.Notification) error
}

type notificationHandler struct {
	encoder encoder
	service notificationService
}

func newNotificationHandler(encoder encoder, service notificationService) *notificationHandler {
	return &notificationHandler{
		encoder: encoder,
		service: service,
	}
}

func (h notificationHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.store)
	r.Post("/test", h.test)
	r.Put("/{notificationID}", h.update)
	r.Delete("/{notificationID}", h.delete)
}

func (h notificationHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.service.List(ctx)
	if err != nil {
		h.encoder.StatusError(w, http.StatusInternalServerError, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, list, http.StatusOK)
}

func (h notificationHandler) store(w http.ResponseWriter, r *http.Request) {
	var (
		ctx  = r.Context()
		data domain.Notification
	)

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.encoder.StatusResponse(ctx, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	stored, err := h.service.Store(ctx, data)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, "Failed to store notification", http.StatusInternalServerError)
		return
	}

	h.encoder.StatusResponse(ctx, w, stored, http.StatusCreated)
}

func (h notificationHandler) update(w http.ResponseWriter, r *http.Request) {
	var (
		ctx  = r.Context()
		data domain.Notification
	)

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.encoder.StatusResponse(ctx, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, _ := strconv.Atoi(chi.URLParam(r, "notificationID"))
	data.ID = id

	updated, err := h.service.Update(ctx, data)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, "Failed to update notification", http.StatusInternalServerError)
		return
	}

	h.encoder.StatusResponse(ctx, w, updated, http.StatusOK)
}

func (h notificationHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, _ := strconv.Atoi(chi.URLParam(r, "notificationID"))

	if err := h.service.Delete(ctx, id); err != nil {
		h.encoder.StatusResponse(ctx, w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}

	h.encoder.StatusResponse(ctx, w, nil, http.StatusNoContent)
}

func (h notificationHandler) test(w http.ResponseWriter, r *http.Request) {
	var (
		ctx  = r.Context()
		data domain.Notification
	)

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.encoder.StatusResponse(ctx, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Test(ctx, data); err != nil {
		h.encoder.StatusResponse(ctx, w, "Failed to test notification: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.encoder.NoContent(w)
}
