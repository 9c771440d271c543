// Package testutil provides isolated stores and fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret"

// Config returns a configuration pointing at a fresh SQLite file and
// media directory under t.TempDir().
func Config(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DBDriver:           "sqlite",
		DBPath:             filepath.Join(dir, "test.db"),
		JWTSecret:          JWTSecret,
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   time.Hour,
		MediaRoot:          filepath.Join(dir, "media"),
		MediaURL:           "/static/media",
		MaxUploadBytes:     1024 * 1024,
		RateLimitPerMinute: 1000,
		CORSOrigins:        "*",
	}
}

// NewDB opens a migrated store private to the calling test.
func NewDB(t *testing.T, cfg *config.Config, extra ...interface{}) *gorm.DB {
	t.Helper()

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.MigrateShared(db))
	require.NoError(t, database.MigrateModels(db, extra))
	return db
}

// CreateUser inserts an active user with a low-cost bcrypt hash.
func CreateUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := models.NewUser(email, string(hash), "")
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)
	return user
}
