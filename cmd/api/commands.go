package main

import (
	"context"
	"fmt"

	"carvedrock/internal/config"
	"carvedrock/internal/database"
	"carvedrock/internal/events"
	"carvedrock/internal/logger"
	custommiddleware "carvedrock/internal/middleware"
	"carvedrock/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once flags and environment are resolved
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "catalog-api",
		Short:        "CarvedRock product catalog API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()

			log, err := logger.New(a.cfg.Server.Env, "catalog-api")
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().String("db-driver", "", "database driver: postgres|sqlite")
	viper.BindPFlag("DB_DRIVER", rootCmd.PersistentFlags().Lookup("db-driver"))

	rootCmd.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a))
	return rootCmd
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the catalog API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().String("port", "", "listen port")
	viper.BindPFlag("SERVER_PORT", cmd.Flags().Lookup("port"))
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				return database.RunMigrations(db, a.log)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				return database.MigrationStatus(db)
			},
		},
	)
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample products into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(db, a.log); err != nil {
				return err
			}
			_, err = database.Seed(cmd.Context(), db.Gorm(), a.log)
			return err
		},
	}
}

func (a *app) openDB() (database.Service, error) {
	db, err := database.New(a.cfg.Database, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (a *app) serve(ctx context.Context) error {
	a.log.Info("Starting catalog API",
		zap.String("env", a.cfg.Server.Env),
		zap.String("port", a.cfg.Server.Port),
	)

	db, err := a.openDB()
	if err != nil {
		return err
	}

	a.log.Info("Database health check", zap.Any("health", db.Health(ctx)))

	if err := database.RunMigrations(db, a.log); err != nil {
		db.Close()
		return err
	}

	if a.cfg.Server.IsDevelopment() {
		if _, err := database.Seed(ctx, db.Gorm(), a.log); err != nil {
			a.log.Warn("Failed to seed development data", zap.Error(err))
		}
	}

	deps := server.Dependencies{DB: db, Publisher: events.NopPublisher{}}

	if a.cfg.RabbitMQ.URL != "" {
		publisher, err := events.NewAMQPPublisher(a.cfg.RabbitMQ.URL, a.cfg.RabbitMQ.Exchange, a.log)
		if err != nil {
			a.log.Warn("Event publishing disabled", zap.Error(err))
		} else {
			deps.Publisher = publisher
		}
	}

	if a.cfg.Redis.Enabled {
		client, err := custommiddleware.NewRateLimitClient(ctx, a.cfg.Redis.Addr(), a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			a.log.Warn("Rate limiting disabled", zap.Error(err))
		} else {
			deps.Redis = client
		}
	}

	if a.cfg.JWT.Secret == "" {
		a.log.Warn("JWT_SECRET is empty; product creation will reject every token")
	}

	return runServer(server.NewServer(a.cfg, a.log, deps), a.log)
}
