package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "plana", cfg.Mongo.Database)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGODB_DATABASE", "plana_test")
	t.Setenv("JWT_EXPIRE_HOURS", "72")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "plana_test", cfg.Mongo.Database)
	assert.Equal(t, 72, cfg.JWT.ExpireHours)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}
