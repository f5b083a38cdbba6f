package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/codequest")
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.PaymentLocation.String())
	assert.Equal(t, 10, cfg.PaymentWindowStart)
	assert.Equal(t, 11, cfg.PaymentWindowEnd)
	assert.Equal(t, 13, cfg.MobileWindowEnd)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "memory", cfg.OTPStore)
	assert.False(t, cfg.CloudinaryConfigured())
}

func TestLoadRequiresSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	setRequired(t)
	t.Setenv("ENCRYPTION_KEY", "short")
	_, err = Load()
	assert.ErrorContains(t, err, "32 bytes")
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequired(t)
	t.Setenv("PAYMENT_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.ErrorContains(t, err, "PAYMENT_TIMEZONE")

	setRequired(t)
	t.Setenv("PAYMENT_TIMEZONE", "")
	t.Setenv("OTP_STORE", "redis")
	_, err = Load()
	assert.ErrorContains(t, err, "OTP_STORE")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("MOBILE_TIMEZONE", "UTC")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.Equal(t, time.UTC, cfg.MobileLocation)
	assert.False(t, cfg.OTPExposeCode)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
