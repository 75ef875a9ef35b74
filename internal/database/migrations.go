package database

import (
	"fmt"

	"carvedrock/internal/entity"
	"carvedrock/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations executes all pending migrations. PostgreSQL uses the embedded goose files;
// SQLite, used for local runs and tests, is migrated from the entity definitions.
func RunMigrations(db Service, logger *zap.Logger) error {
	if db.Driver() == DriverSQLite {
		logger.Info("Auto-migrating sqlite schema")
		if err := db.Gorm().AutoMigrate(&entity.Product{}); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations...")

	if err := goose.Up(db.DB(), "."); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// MigrationStatus prints the goose status table for the embedded migrations
func MigrationStatus(db Service) error {
	if db.Driver() == DriverSQLite {
		return fmt.Errorf("migration status is only tracked for postgres")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.Status(db.DB(), ".")
}
