package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emberhollow/hearth/internal/auth"
	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

type authService interface {
	GetUserCount(ctx context.Context) (int64, error)
	AuthenticateToken(ctx context.Context, plainToken string) (*domain.User, error)
}

type authHandler struct {
	log     zerolog.Logger
	encoder encoder
	config  *domain.Config
	service authService

	cookieStore *sessions.CookieStore
}

func newAuthHandler(encoder encoder, log zerolog.Logger, config *domain.Config, cookieStore *sessions.CookieStore, service authService) *authHandler {
	return &authHandler{
		log:         log,
		encoder:     encoder,
		config:      config,
		service:     service,
		cookieStore: cookieStore,
	}
}

func (h authHandler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/validate", h.validate)
}

type loginRequest struct {
	Token string `json:"token"`
}

type loginResponse struct {
	User *domain.User `json:"user"`
}

// login exchanges a valid API token for a browser session.
func (h authHandler) login(w http.ResponseWriter, r *http.Request) {
	var (
		ctx  = r.Context()
		data loginRequest
	)

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.log.Warn().Err(err).Msg("Auth: Failed to decode login request body")
		h.encoder.StatusResponse(ctx, w, nil, http.StatusBadRequest)
		return
	}

	if data.Token == "" {
		h.log.Warn().Msg("Auth: Login attempt with empty token")
		h.encoder.StatusResponse(ctx, w, nil, http.StatusBadRequest)
		return
	}

	h.cookieStore.Options.HttpOnly = true
	h.cookieStore.Options.SameSite = http.SameSiteLaxMode
	h.cookieStore.Options.Path = h.config.Server.BaseURL

	fwdProto := r.Header.Get("X-Forwarded-Proto")
	if fwdProto == "https" {
		h.cookieStore.Options.Secure = true
		h.cookieStore.Options.SameSite = http.SameSiteStrictMode
	}

	session, _ := h.cookieStore.Get(r, "user_session")

	authenticatedUser, err := h.service.AuthenticateToken(ctx, data.Token)
	if err != nil {
		h.log.Warn().Err(err).Msgf("Auth: Failed login attempt ip: %s", ReadUserIP(r))

		if errors.Is(err, auth.ErrAuthenticationFailed) {
			h.encoder.StatusResponse(ctx, w, nil, http.StatusUnauthorized)
		} else {
			h.encoder.StatusResponse(ctx, w, nil, http.StatusInternalServerError)
		}
		return
	}

	session.Values["authenticated"] = true
	session.Values["user_id"] = authenticatedUser.ID
	session.Save(r, w)

	h.encoder.StatusResponse(ctx, w, loginResponse{User: authenticatedUser}, http.StatusOK)
}

func (h authHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := h.cookieStore.Get(r, "user_session")

	session.Values["authenticated"] = false
	delete(session.Values, "user_id")
	session.Save(r, w)

	h.encoder.StatusResponse(ctx, w, nil, http.StatusNoContent)
}

func (h authHandler) validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := h.cookieStore.Get(r, "user_session")

	if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
		http.Error(w, "Forbidden", http.StatusUnauthorized)
		return
	}

	h.encoder.StatusResponse(ctx, w, nil, http.StatusNoContent)
}

func ReadUserIP(r *http.Request) string {
	IPAddress := r.Header.Get("X-Real-Ip")
	if IPAddress == "" {
		IPAddress = r.Header.Get("X-Forwarded-For")
	}
	if IPAddress == "" {
		IPAddress = r.RemoteAddr
	}
	return IPAddress
}
