// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"testing"

	"gorm.io/gorm"

	"taskapi/internal/db"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// The pool is pinned to one connection so every statement sees the same
// in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gormDB
}
