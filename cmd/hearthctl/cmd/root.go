package cmd

import (
	"fmt"
	"os"

	"github.com/emberhollow/hearth/internal/cleanup"
	"github.com/emberhollow/hearth/internal/config"
	"github.com/emberhollow/hearth/internal/database"
	"github.com/emberhollow/hearth/internal/groups"
	"github.com/emberhollow/hearth/internal/logger"
	"github.com/emberhollow/hearth/internal/permission"

	"github.com/spf13/cobra"
)

// Exit codes so scripts can distinguish why a command failed.
const (
	exitStoreFailure       = 1
	exitIntegrityViolation = 2
	exitPermissionDenied   = 3
)

var (
	configPath string
	actingUser string
)

var rootCmd = &cobra.Command{
	Use:   "hearthctl",
	Short: "Hearth CLI - permission checks and data lifecycle operations",
	Long: `hearthctl is the command-line interface for Hearth, a permission-gated
data lifecycle manager. Use it to check effective roles, run cleanups,
inspect store status and validate data integrity.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitStoreFailure)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&actingUser, "as", "", "user id to act as for permission-gated commands")
}

// app bundles the wiring the subcommands need. The CLI talks to the store
// directly through the same services the server uses.
type app struct {
	db *database.DB

	permissionSvc permission.Service
	cleanupSvc    cleanup.Service
	groupsSvc     groups.Service
}

func newApp() (*app, error) {
	cfg := config.New(configPath, "hearthctl")

	// keep command output clean, the services log through a disabled logger
	log := logger.Mock()

	db, err := database.NewDB(cfg.Config, log)
	if err != nil {
		return nil, fmt.Errorf("could not configure database: %w", err)
	}
	if err := db.Open(); err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	var (
		roleAssignmentRepo = database.NewRoleAssignmentRepo(log, db)
		groupRepo          = database.NewGroupRepo(log, db)
		membershipRepo     = database.NewGroupMembershipRepo(log, db)
		postRepo           = database.NewPostRepo(log, db)
		postLikeRepo       = database.NewPostLikeRepo(log, db)
		statusRepo         = database.NewCleanupStatusRepo(log, db)
	)

	permissionSvc := permission.NewService(log, roleAssignmentRepo)
	cleanupSvc := cleanup.NewService(log, permissionSvc, postRepo, postLikeRepo, groupRepo, membershipRepo, statusRepo, cleanup.NewLocalLocker(), nil)
	groupsSvc := groups.NewService(log, groupRepo, permissionSvc, cfg.Config.Groups.Defaults)

	return &app{
		db:            db,
		permissionSvc: permissionSvc,
		cleanupSvc:    cleanupSvc,
		groupsSvc:     groupsSvc,
	}, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
