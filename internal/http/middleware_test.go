package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emberhollow/hearth/internal/auth"
	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	user      *domain.User
	err       error
	userCount int64
}

func (f *fakeAuthService) GetUserCount(_ context.Context) (int64, error) {
	return f.userCount, nil
}

func (f *fakeAuthService) AuthenticateToken(_ context.Context, _ string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func newTestServer(authSvc authService) *Server {
	return &Server{
		log:         logger.Mock().With().Str("module", "http").Logger(),
		authService: authSvc,
	}
}

// echoUser writes the authenticated user's id so tests can confirm the
// middleware stored it in the context.
func echoUser(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write([]byte(user.ID))
}

func TestAuthenticateAPIToken_ValidToken(t *testing.T) {
	s := newTestServer(&fakeAuthService{user: &domain.User{ID: "user-1"}})
	handler := s.AuthenticateAPIToken(http.HandlerFunc(echoUser))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer user-1.secret")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", rr.Body.String())
}

func TestAuthenticateAPIToken_MissingHeader(t *testing.T) {
	s := newTestServer(&fakeAuthService{})
	handler := s.AuthenticateAPIToken(http.HandlerFunc(echoUser))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Missing Authorization header")
}

func TestAuthenticateAPIToken_MalformedHeader(t *testing.T) {
	s := newTestServer(&fakeAuthService{})

	for _, header := range []string{"user-1.secret", "Basic dXNlcg==", "Bearer"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		s.AuthenticateAPIToken(http.HandlerFunc(echoUser)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "header %q should be rejected", header)
	}
}

func TestAuthenticateAPIToken_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeAuthService{err: auth.ErrAuthenticationFailed})
	handler := s.AuthenticateAPIToken(http.HandlerFunc(echoUser))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer user-1.wrong")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid API token")
}

func TestAuthenticateAPIToken_StoreFailure(t *testing.T) {
	s := newTestServer(&fakeAuthService{err: errors.New("store unreachable")})
	handler := s.AuthenticateAPIToken(http.HandlerFunc(echoUser))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer user-1.secret")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr only", "10.0.0.1:1234", nil, "10.0.0.1"},
		{"x-forwarded-for wins", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"x-real-ip fallback", "10.0.0.1:1234", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
