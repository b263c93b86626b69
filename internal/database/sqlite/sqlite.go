package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sarathi/internal/models"
)

var (
	dbInstance *gorm.DB
	once       sync.Once
	initErr    error
)

// GetDB initializes and returns the singleton GORM handle for the SQLite
// store. The connection is opened once for the process lifetime; individual
// operations borrow short-lived connections from the underlying pool.
func GetDB(path string) (*gorm.DB, error) {
	once.Do(func() {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			initErr = fmt.Errorf("open sqlite store %q: %w", path, err)
			return
		}
		if err := Migrate(db); err != nil {
			initErr = err
			return
		}
		dbInstance = db
	})
	return dbInstance, initErr
}

// Migrate creates or updates the persisted tables: feed entries, feed
// chunks, sessions and session messages.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.FeedEntry{},
		&models.FeedChunk{},
		&models.Session{},
		&models.Message{},
	); err != nil {
		return fmt.Errorf("migrate store schema: %w", err)
	}
	return nil
}

// Open returns an isolated GORM handle, bypassing the singleton. Tests use
// this with ":memory:" so each test owns a private store.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", path, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Close shuts down the singleton connection.
func Close() error {
	if dbInstance == nil {
		return nil
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck pings the store.
func HealthCheck(ctx context.Context) error {
	if dbInstance == nil {
		return fmt.Errorf("store not initialized")
	}
	sqlDB, err := dbInstance.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
