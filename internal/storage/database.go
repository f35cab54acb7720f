package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/storage/migrations"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver      string
	Path        string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
	Debug       bool
}

// Open returns the storage backend selected by config. Relational backends
// are migrated before they are returned.
func Open(ctx context.Context, config DatabaseConfig, logger *zap.Logger) (Storage, error) {
	if config.UseInMemory {
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	}

	db, err := openDB(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := migrations.Run(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	logger.Info("Using relational storage", zap.String("driver", db.Dialect().Name().String()))
	return NewBunStorage(db), nil
}

func openDB(ctx context.Context, config DatabaseConfig) (*bun.DB, error) {
	var db *bun.DB

	switch config.Driver {
	case DriverPostgres:
		connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

		sqldb, err := sql.Open("postgres", connStr)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())

	case DriverSQLite, "":
		if err := ensureDir(config.Path); err != nil {
			return nil, err
		}

		sqldb, err := sql.Open(sqliteshim.ShimName, config.Path)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		// SQLite allows a single writer; one shared connection also keeps
		// the pragmas below in effect for every query.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		sqldb.SetConnMaxLifetime(0)
		db = bun.NewDB(sqldb, sqlitedialect.New())

		for _, pragma := range []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("error applying %q: %w", pragma, err)
			}
		}

	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	if config.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return db, nil
}

func ensureDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating database directory: %w", err)
	}
	return nil
}
