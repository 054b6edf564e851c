package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/emberhollow/hearth/internal/auth"
	"github.com/emberhollow/hearth/internal/cleanup"
	"github.com/emberhollow/hearth/internal/config"
	"github.com/emberhollow/hearth/internal/database"
	"github.com/emberhollow/hearth/internal/events"
	"github.com/emberhollow/hearth/internal/groups"
	"github.com/emberhollow/hearth/internal/http"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/internal/notification"
	"github.com/emberhollow/hearth/internal/permission"
	"github.com/emberhollow/hearth/internal/scheduler"
	"github.com/emberhollow/hearth/internal/server"
	"github.com/emberhollow/hearth/internal/valkey"

	"github.com/asaskevich/EventBus"
	"github.com/r3labs/sse/v2"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	var configPath string
	pflag.StringVar(&configPath, "config", "", "path to configuration file")
	pflag.Parse()

	// read config
	cfg := config.New(configPath, version)

	// init new logger
	log := logger.New(cfg.Config)

	// init dynamic config
	cfg.DynamicReload(log)

	// setup server-sent-events
	serverEvents := sse.New()
	serverEvents.CreateStreamWithOpts("logs", sse.StreamOpts{MaxEntries: 1000, AutoReplay: true})

	// register SSE writer
	log.RegisterSSEWriter(serverEvents)

	// setup internal eventbus
	bus := EventBus.New()

	// open database connection
	db, err := database.NewDB(cfg.Config, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create new db")
	}

	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("could not open db connection")
	}

	log.Info().Msgf("Starting Hearth")
	log.Info().Msgf("Version: %s", version)
	log.Info().Msgf("Commit: %s", commit)
	log.Info().Msgf("Build date: %s", date)
	log.Info().Msgf("Log-level: %s", cfg.Config.Logging.Level)
	log.Info().Msgf("Using database: %s", db.Driver)

	// setup repos
	var (
		userRepo           = database.NewUserRepo(log, db)
		roleAssignmentRepo = database.NewRoleAssignmentRepo(log, db)
		groupRepo          = database.NewGroupRepo(log, db)
		membershipRepo     = database.NewGroupMembershipRepo(log, db)
		postRepo           = database.NewPostRepo(log, db)
		postLikeRepo       = database.NewPostLikeRepo(log, db)
		statusRepo         = database.NewCleanupStatusRepo(log, db)
		notificationRepo   = database.NewNotificationRepo(log, db)
	)

	// serialize cleanups across processes via Valkey when it is configured,
	// otherwise within this process only
	var (
		valkeyService *valkey.Service
		locker        cleanup.Locker = cleanup.NewLocalLocker()
	)
	if cfg.Config.Valkey.Enabled {
		valkeyService, err = valkey.NewService(cfg.Config.Valkey)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create new valkey service")
		}
		defer valkeyService.Close()

		locker = valkey.NewLocker(valkeyService)
		log.Info().Msg("Valkey service initialized")
	}

	// setup services
	var (
		notificationService = notification.NewService(log, notificationRepo)
		permissionService   = permission.NewService(log, roleAssignmentRepo)
		cleanupService      = cleanup.NewService(log, permissionService, postRepo, postLikeRepo, groupRepo, membershipRepo, statusRepo, locker, bus)
		groupsService       = groups.NewService(log, groupRepo, permissionService, cfg.Config.Groups.Defaults)
		authService         = auth.NewService(log, userRepo)
		schedulingService   = scheduler.NewService(log, cfg.Config, cleanupService)
	)

	// register event subscribers
	events.NewSubscribers(log, bus, notificationService)

	errorChannel := make(chan error)

	go func() {
		httpServer := http.NewServer(
			log,
			cfg,
			serverEvents,
			db,
			version,
			commit,
			date,
			authService,
			permissionService,
			cleanupService,
			groupsService,
			notificationService,
			valkeyService,
		)
		errorChannel <- httpServer.Open()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	srv := server.NewServer(log, cfg.Config, schedulingService)
	if err := srv.Start(); err != nil {
		log.Fatal().Stack().Err(err).Msg("could not start server")
		return
	}

	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			log.Log().Msg("shutting down server sighup")
			srv.Shutdown()
			if err := db.Close(); err != nil {
				log.Error().Stack().Err(err).Msg("could not close db connection")
			}
			valkeyService.Close()
			os.Exit(1)
		case syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM:
			log.Info().Msg("Shutting down server...")
			srv.Shutdown()
			if err := db.Close(); err != nil {
				log.Error().Stack().Err(err).Msg("could not close db connection")
			}
			valkeyService.Close()
			os.Exit(0)
		}
	}
}
