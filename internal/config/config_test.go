package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("POST_REQUIRES_AUTH", "")

		cfg := Load()
		assert.Equal(t, "8080", cfg.Port)
		assert.True(t, cfg.PostRequiresAuth)
	})

	t.Run("Values from environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("POST_REQUIRES_AUTH", "false")

		cfg := Load()
		assert.Equal(t, "9090", cfg.Port)
		assert.False(t, cfg.PostRequiresAuth)
	})
}

func TestGetBoolDefault(t *testing.T) {
	t.Run("Parses booleans", func(t *testing.T) {
		t.Setenv("LINKFEED_FLAG", "1")
		assert.True(t, GetBoolDefault("LINKFEED_FLAG", false))
	})

	t.Run("Falls back on garbage", func(t *testing.T) {
		t.Setenv("LINKFEED_FLAG", "maybe")
		assert.True(t, GetBoolDefault("LINKFEED_FLAG", true))
	})
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("LINKFEED_VALUE", "set")
	assert.Equal(t, "set", GetEnvDefault("LINKFEED_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnvDefault("LINKFEED_MISSING_VALUE", "fallback"))
}
