package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, "/static/media", cfg.MediaURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("db_driver: sqlite\nport: \"9000\"\njwt_access_expiry: 1h\nmedia_root: /srv/media\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "9100", cfg.Port, "env overrides file")
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, "/srv/media", cfg.MediaRoot)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_REFRESH_EXPIRY", "forever")
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 10*1024*1024, cfg.MaxUploadBytes)
}
