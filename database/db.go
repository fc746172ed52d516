package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

var db *gorm.DB

var ErrNotInitialized = errors.New("history database not initialized")

// Init opens the history database at path, creating it when missing.
func Init(ctx context.Context, path string) error {
	logger := log.FromContext(ctx)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	conn, err := gorm.Open(GetDialect(path), &gorm.Config{
		Logger: glogger.New(logger, glogger.Config{
			Colorful:                  true,
			SlowThreshold:             time.Second * 5,
			LogLevel:                  glogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		PrepareStmt: true,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	logger.Debug("Database connected", "path", path)
	if err := conn.AutoMigrate(&SyncRun{}, &TypeStat{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	db = conn
	logger.Debug("Database migrated")
	return nil
}

func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	db = nil
	return sqlDB.Close()
}
