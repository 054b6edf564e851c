package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/emberhollow/hearth/internal/auth"
	"github.com/emberhollow/hearth/internal/domain"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key for storing user information in the context.
	UserContextKey ContextKey = "user"

	rateLimitKeyPrefix = "rate_limit:"
)

// userFromContext returns the authenticated user stored by the auth middleware.
func userFromContext(ctx context.Context) *domain.User {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// AuthenticateAPIToken validates a Bearer token from the Authorization
// header and stores the resolved user in the request context.
func (s *Server) AuthenticateAPIToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.log.With().Str("middleware", "AuthenticateAPIToken").Logger()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("Authorization header missing, denying access.")
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Debug().Msg("Authorization header format must be Bearer {token}")
			http.Error(w, "Unauthorized: Invalid Authorization header format", http.StatusUnauthorized)
			return
		}
		plainToken := parts[1]

		authenticatedUser, err := s.authService.AuthenticateToken(r.Context(), plainToken)
		if err != nil {
			logger.Warn().Err(err).Msg("API token authentication failed")

			if errors.Is(err, auth.ErrAuthenticationFailed) {
				http.Error(w, "Unauthorized: Invalid API token", http.StatusUnauthorized)
			} else {
				http.Error(w, "Internal Server Error during authentication", http.StatusInternalServerError)
			}
			return
		}

		logger.Debug().Str("user_id", authenticatedUser.ID).Msg("User authenticated via API token")

		ctx := context.WithValue(r.Context(), UserContextKey, authenticatedUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggerMiddleware provides structured logging and panic recovery for
// HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With().Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				reqID := middleware.GetReqID(r.Context())

				if rec := recover(); rec != nil {
					reqLogger.Error().
						Str("type", "error").
						Timestamp().
						Interface("recover_info", rec).
						Bytes("debug_stack", debug.Stack()).
						Str("request_id", reqID).
						Msg("Unhandled panic recovered by middleware")
					http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// RateLimiter limits requests per client using a sliding window counter
// backed by Valkey. Destructive endpoints are put behind this so one
// misbehaving client cannot hammer the cleanup operations.
func (s *Server) RateLimiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.Config.RateLimit.Enabled || s.valkeyService == nil || s.valkeyService.GetClient() == nil {
			next.ServeHTTP(w, r)
			return
		}

		logger := s.log.With().Str("middleware", "RateLimiter").Logger()

		identifier, identifierType := s.getClientIdentifier(r)

		if s.isExemptFromRateLimit(identifier, identifierType) {
			next.ServeHTTP(w, r)
			return
		}

		requestsPerMinute := s.config.Config.RateLimit.RequestsPerMinute
		windowSeconds := s.config.Config.RateLimit.WindowSeconds

		if requestsPerMinute <= 0 {
			requestsPerMinute = 20
		}
		if windowSeconds <= 0 {
			windowSeconds = 60
		}

		exceeded, currentCount, err := s.checkRateLimit(r.Context(), identifier, identifierType, requestsPerMinute, windowSeconds)
		if err != nil {
			logger.Error().Err(err).
				Str("identifier", identifier).
				Str("type", identifierType).
				Msg("Error checking rate limit")
			// fail open so a Valkey outage does not block legitimate traffic
			next.ServeHTTP(w, r)
			return
		}

		if exceeded {
			logger.Warn().
				Str("identifier", identifier).
				Str("type", identifierType).
				Int("current_count", currentCount).
				Int("limit", requestsPerMinute).
				Msg("Rate limit exceeded")

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", windowSeconds))

			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", requestsPerMinute-currentCount))

		next.ServeHTTP(w, r)
	})
}

// getClientIdentifier prefers the authenticated user ID and falls back to
// the client IP.
func (s *Server) getClientIdentifier(r *http.Request) (string, string) {
	if user := userFromContext(r.Context()); user != nil {
		return user.ID, "user_id"
	}

	return getClientIP(r), "ip_address"
}

// getClientIP extracts the client IP, honoring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			clientIP := strings.TrimSpace(ips[0])
			if clientIP != "" {
				return clientIP
			}
		}
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return strings.TrimSpace(xrip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

func (s *Server) isExemptFromRateLimit(identifier string, identifierType string) bool {
	if identifierType != "ip_address" {
		return false
	}

	exemptIPs := strings.Split(s.config.Config.RateLimit.ExemptInternalIPs, ",")
	for _, exemptIP := range exemptIPs {
		exemptIP = strings.TrimSpace(exemptIP)
		if exemptIP != "" && exemptIP == identifier {
			return true
		}
	}

	return false
}

// checkRateLimit implements a sliding window counter in Valkey.
func (s *Server) checkRateLimit(ctx context.Context, identifier string, identifierType string, limit int, windowSeconds int) (bool, int, error) {
	valkeyClient := s.valkeyService.GetClient()
	if valkeyClient == nil {
		return false, 0, fmt.Errorf("valkey client not available")
	}

	key := fmt.Sprintf("%s%s:%s", rateLimitKeyPrefix, identifierType, identifier)

	now := time.Now().UnixNano()
	cutoff := now - int64(windowSeconds)*int64(time.Second)

	valkeyClient.Do(ctx, valkeyClient.B().Zremrangebyscore().Key(key).Min("-inf").Max(fmt.Sprintf("%d", cutoff)).Build())
	valkeyClient.Do(ctx, valkeyClient.B().Zadd().Key(key).ScoreMember().ScoreMember(float64(now), fmt.Sprintf("%d", now)).Build())
	valkeyClient.Do(ctx, valkeyClient.B().Expire().Key(key).Seconds(int64(windowSeconds)).Build())

	countCmd := valkeyClient.Do(ctx, valkeyClient.B().Zcard().Key(key).Build())
	if countCmd.Error() != nil {
		return false, 0, fmt.Errorf("error counting rate limit entries: %w", countCmd.Error())
	}

	count, err := countCmd.AsInt64()
	if err != nil {
		return false, 0, fmt.Errorf("error parsing rate limit count: %w", err)
	}

	return int(count) > limit, int(count), nil
}
