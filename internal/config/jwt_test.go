package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_Disabled(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "a-very-long-test-secret", cfg.Secret)
	assert.Equal(t, "resume-sifter", cfg.Issuer)
	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestNewJWTConfig_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		errMsg     string
	}{
		{"short secret", "short", "24", "at least 16 characters"},
		{"non-numeric expiration", "a-very-long-test-secret", "abc", "invalid JWT_EXPIRATION_HOURS"},
		{"zero expiration", "a-very-long-test-secret", "0", "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
