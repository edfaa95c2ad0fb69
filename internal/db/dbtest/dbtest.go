// Package dbtest opens throwaway SQLite databases carrying the service schema.
package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"koffa/internal/db"
	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	profiledomain "koffa/internal/domain/profile"
)

const settingsTable = `CREATE TABLE family_settings (
	family_id TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
)`

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gormDB.AutoMigrate(
		&profiledomain.Profile{},
		&familydomain.Family{},
		&familydomain.FamilyMember{},
		&invitationdomain.Invitation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := gormDB.Exec(settingsTable).Error; err != nil {
		t.Fatalf("create family_settings: %v", err)
	}

	return gormDB
}
