package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inkwell/config"
	"inkwell/models"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// Options tweak how the connection is opened. The zero value is fine.
type Options struct {
	LogLevel logger.LogLevel
}

func NewDatabase(cfg config.DatabaseConfig, opts Options) (*DB, error) {
	sqlDB, dialector, err := open(cfg)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database := &DB{gormDB}
	if err := database.createTables(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logrus.WithField("driver", cfg.Driver).Info("Database initialized successfully")
	return database, nil
}

func open(cfg config.DatabaseConfig) (*sql.DB, gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		sqlDB, err := sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
		return sqlDB, &sqlite.Dialector{DriverName: "sqlite3", Conn: sqlDB}, nil
	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return sqlDB, postgres.New(postgres.Config{Conn: sqlDB}), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (db *DB) createTables() error {
	return db.AutoMigrate(models.All()...)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
