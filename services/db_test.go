package services

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/models"
)

// newTestDB opens a fresh sqlite database with plugin and host tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDriver = "sqlite"
	cfg.DatabaseURI = filepath.Join(t.TempDir(), "bbsplus.db")
	cfg.LogLevel = "silent"

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	all := append(models.PluginModels(), models.HostModels()...)
	if err := config.Migrate(db, all...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed %T: %v", v, err)
		}
	}
}
