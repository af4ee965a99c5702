package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogapi/app/config"
	"blogapi/app/models"
	"blogapi/app/repositories"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Handle owns an open storage backend and the Store built on it.
type Handle struct {
	Store  *repositories.Store
	Badger *badger.DB
	Gorm   *gorm.DB
}

// Open connects to the configured backend and builds its Store.
func Open(cfg config.StorageConfig, log *zap.Logger) (*Handle, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		db, err := OpenBadger(cfg.BadgerPath, log)
		if err != nil {
			return nil, err
		}
		store, err := repositories.NewBadgerStore(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &Handle{Store: store, Badger: db}, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: repositories.NewGormStore(db), Gorm: db}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close releases the store and the underlying connection.
func (h *Handle) Close() error {
	var errs []error
	if h.Store != nil {
		errs = append(errs, h.Store.Close())
	}
	if h.Badger != nil {
		errs = append(errs, h.Badger.Close())
	}
	if h.Gorm != nil {
		sqlDB, err := h.Gorm.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// Ping checks that the backend answers.
func (h *Handle) Ping(ctx context.Context) error {
	if h.Gorm != nil {
		sqlDB, err := h.Gorm.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	if h.Badger != nil && h.Badger.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// OpenBadger opens a badger database at path. An empty path opens an
// in-memory database.
func OpenBadger(path string, log *zap.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	if log != nil {
		opts = opts.WithLogger(newBadgerLogger(log))
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts.WithNumVersionsToKeep(1))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return db, nil
}

// OpenGorm connects to postgres or sqlite and migrates the schema.
func OpenGorm(cfg config.StorageConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("driver %q is not relational", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer; ":memory:" is also per connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the posts and comments tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
