package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/config"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/database"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/logger"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/metrics"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/repository"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/server"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/services"
)

type flags struct {
	addr   string
	dbPath string
	debug  bool
	skipDB bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "police-app",
		Short:        "Criminal and crime registry API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "listen address (overrides APP_ADDR)")
	cmd.Flags().StringVar(&f.dbPath, "db-path", "", "SQLite file (overrides DATABASE_PATH)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "include internal error detail in responses")
	cmd.Flags().BoolVar(&f.skipDB, "skip-db", false, "start without opening the database")
	return cmd
}

// load reads the environment, applies the flags and only then validates, so
// --skip-db and --db-path take part in validation.
func (f flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies the flags the user actually set over the loaded config.
func (f flags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("addr") {
		cfg.AppAddr = f.addr
	}
	if cmd.Flags().Changed("db-path") {
		cfg.DatabasePath = f.dbPath
	}
	if cmd.Flags().Changed("debug") {
		cfg.AppDebug = f.debug
	}
	if cmd.Flags().Changed("skip-db") {
		cfg.SkipDatabase = f.skipDB
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	deps := server.Deps{Config: cfg, Logger: log, Metrics: m}

	if cfg.SkipDatabase {
		log.Warn("database initialisation skipped; data routes will answer 503")
	} else {
		db, err := database.Connect(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Error("close database", zap.Error(err))
			}
		}()

		if !cfg.SkipMigrations {
			applied, err := database.Migrate(ctx, db)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("schema up to date", zap.Strings("applied", applied))
		}

		repo := repository.New(db)
		policy := services.SearchPolicy{
			QueryFirstMatchOnly:  cfg.SearchFirstMatchOnly,
			QueryExactNationalID: cfg.SearchExactNationalID,
		}
		deps.Repo = repo
		deps.Service = services.NewCrimeService(repo, policy, log, m)
	}

	e := server.New(deps)
	return server.Run(ctx, e, cfg.AppAddr, cfg.AppShutdownGrace, log)
}
