package http

import (
	"fmt"
	"net"
	"net/http"

	"github.com/emberhollow/hearth/internal/config"
	"github.com/emberhollow/hearth/internal/database"
	"github.com/emberhollow/hearth/internal/groups"
	"github.com/emberhollow/hearth/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	valkeygo "github.com/valkey-io/valkey-go"
)

type valkeyService interface {
	GetClient() valkeygo.Client
	Close()
}

type Server struct {
	log zerolog.Logger
	sse *sse.Server
	db  *database.DB

	config      *config.AppConfig
	cookieStore *sessions.CookieStore

	version string
	commit  string
	date    string

	authService         authService
	permissionService   permissionService
	cleanupService      cleanupService
	groupsService       groups.Service
	notificationService notificationService
	valkeyService       valkeyService
}

func NewServer(
	log logger.Logger,
	config *config.AppConfig,
	sse *sse.Server,
	db *database.DB,
	version string,
	commit string,
	date string,
	authService authService,
	permissionSvc permissionService,
	cleanupSvc cleanupService,
	groupsSvc groups.Service,
	notificationSvc notificationService,
	valkeyService valkeyService,
) Server {
	concreteLog := log.With().Str("module", "http").Logger()

	return Server{
		log:     concreteLog,
		config:  config,
		sse:     sse,
		db:      db,
		version: version,
		commit:  commit,
		date:    date,

		cookieStore: sessions.NewCookieStore([]byte(config.Config.SessionSecret)),

		authService:         authService,
		permissionService:   permissionSvc,
		cleanupService:      cleanupSvc,
		groupsService:       groupsSvc,
		notificationService: notificationSvc,
		valkeyService:       valkeyService,
	}
}

func (s Server) Open() error {
	addr := fmt.Sprintf("%v:%v", s.config.Config.Server.Host, s.config.Config.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	server := http.Server{
		Handler: s.Handler(),
	}

	s.log.Info().Msgf("Starting server. Listening on %s", listener.Addr().String())

	return server.Serve(listener)
}

func (s Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware(&s.log))

	c := cors.New(cors.Options{
		AllowCredentials:   true,
		AllowedMethods:     []string{"HEAD", "OPTIONS", "GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowOriginFunc:    func(origin string) bool { return true },
		OptionsPassthrough: true,
		Debug:              false,
	})

	r.Use(c.Handler)

	encoder := encoder{}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", newAuthHandler(encoder, s.log, s.config.Config, s.cookieStore, s.authService).Routes)
		r.Route("/healthz", newHealthHandler(encoder, s.db).Routes)

		// Authenticated routes group
		authedRouter := r.Group(nil)
		authedRouter.Use(s.AuthenticateAPIToken)

		authedRouter.Route("/permissions", newPermissionHandler(encoder, s.permissionService).Routes)
		authedRouter.Route("/notification", newNotificationHandler(encoder, s.notificationService).Routes)

		// Destructive and creation endpoints sit behind the rate limiter.
		limitedRouter := authedRouter.Group(nil)
		limitedRouter.Use(s.RateLimiter)
		limitedRouter.Route("/cleanup", newCleanupHandler(encoder, s.cleanupService).Routes)
		limitedRouter.Route("/groups", newGroupsHandler(encoder, s.groupsService).Routes)

		authedRouter.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			// inject CORS headers to bypass checks
			s.sse.Headers = map[string]string{
				"Content-Type":      "text/event-stream",
				"Cache-Control":     "no-cache",
				"Connection":        "keep-alive",
				"X-Accel-Buffering": "no",
			}
			s.sse.ServeHTTP(w, r)
		})
	})

	return r
}
