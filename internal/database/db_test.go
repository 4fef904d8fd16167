package database

import (
	"path/filepath"
	"testing"
	"time"

	"restaurant-catalog/internal/config"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestNewConnectionSQLiteMigrates(t *testing.T) {
	db, err := NewConnection(config.DBConfig{
		Driver:          "sqlite",
		SQLitePath:      filepath.Join(t.TempDir(), "catalog.db"),
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Minute,
		LogLevel:        "silent",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	for _, table := range []string{"restaurants", "users", "categories", "products", "product_sizes", "product_images", "product_category", "audit_logs"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s was not created", table)
		}
	}
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"info":   logger.Info,
		"":       logger.Warn,
		"bogus":  logger.Warn,
	}
	for in, want := range cases {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
