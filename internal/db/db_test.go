package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewLogger_IgnoresRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	query := func() (string, int64) { return "SELECT * FROM users WHERE email = 'a@example.com'", 0 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), query, errors.New("connection refused"))
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), `"component":"gorm"`)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestMigrateAndReset(t *testing.T) {
	gormDB, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.NoError(t, Migrate(gormDB))
	for _, m := range Models() {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}

	assert.NoError(t, Reset(gormDB))
	for _, m := range Models() {
		assert.False(t, gormDB.Migrator().HasTable(m))
	}
}
