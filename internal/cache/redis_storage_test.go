package cache

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStorageDisabled(t *testing.T) {
	s, err := NewRedisStorage(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNewRedisStorageUnreachable(t *testing.T) {
	// Port 1 is reserved and refuses connections.
	s, err := NewRedisStorage(&config.Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "recipe-api:limiter_127.0.0.1", prefixed("limiter_127.0.0.1"))
}
