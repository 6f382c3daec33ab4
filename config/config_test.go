package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "unset falls back to local endpoint", raw: "", want: "http://localhost:8000"},
		{name: "blank falls back to local endpoint", raw: "   ", want: "http://localhost:8000"},
		{name: "trailing slash stripped", raw: "https://digits.example.com/", want: "https://digits.example.com"},
		{name: "path kept", raw: "https://example.com/ml/", want: "https://example.com/ml"},
		{name: "already clean", raw: "http://10.0.0.5:9000", want: "http://10.0.0.5:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.raw))
		})
	}
}

func TestParseConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 320, cfg.Preview.MaxSide)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.False(t, cfg.Events.Enabled)
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://classifier:8000/")
	t.Setenv("PORT", "9999")

	v := viper.New()
	setDefaults(v)
	require.NoError(t, bindEnv(v))

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://classifier:8000", cfg.API.BaseURL)
	assert.Equal(t, "9999", cfg.Server.Port)
}

func TestParseConfigLegacyEnvName(t *testing.T) {
	t.Setenv("VITE_API_BASE_URL", "http://legacy:8000")

	v := viper.New()
	setDefaults(v)
	require.NoError(t, bindEnv(v))

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "http://legacy:8000", cfg.API.BaseURL)
}
