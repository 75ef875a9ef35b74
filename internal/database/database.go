package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"carvedrock/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Service owns the connection pool shared by the ORM and the migrator.
type Service interface {
	DB() *sql.DB
	Gorm() *gorm.DB
	Driver() string
	Health(ctx context.Context) map[string]string
	Close() error
}

type service struct {
	db     *sql.DB
	gorm   *gorm.DB
	driver string
	logger *zap.Logger
}

// New opens the configured database. PostgreSQL goes through the pgx stdlib driver so
// goose and GORM share a single *sql.DB.
func New(cfg config.DatabaseConfig, logger *zap.Logger) (Service, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	switch cfg.Driver {
	case DriverPostgres, "":
		db, err := sql.Open("pgx", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres connection: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), gormCfg)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise gorm: %w", err)
		}
		return &service{db: db, gorm: gdb, driver: DriverPostgres, logger: logger}, nil

	case DriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite connection: %w", err)
		}
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
		return &service{db: db, gorm: gdb, driver: DriverSQLite, logger: logger}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (s *service) DB() *sql.DB {
	return s.db
}

func (s *service) Gorm() *gorm.DB {
	return s.gorm
}

func (s *service) Driver() string {
	return s.driver
}

// Health pings the database and reports pool statistics
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("Database health check failed", zap.Error(err))
		stats["status"] = "down"
		stats["error"] = "database unreachable"
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["driver"] = s.driver
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)

	return stats
}

func (s *service) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}
