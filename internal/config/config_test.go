package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFlags struct {
	bools   map[string]bool
	strings map[string]string
	fail    bool
}

func (s stubFlags) BoolVariation(key string, _ ldcontext.Context, def bool) (bool, error) {
	if s.fail {
		return true, errors.New("flag store down")
	}
	if v, ok := s.bools[key]; ok {
		return v, nil
	}
	return def, nil
}

func (s stubFlags) StringVariation(key string, _ ldcontext.Context, def string) (string, error) {
	if v, ok := s.strings[key]; ok {
		return v, nil
	}
	return def, nil
}

func TestSnapshotFlags(t *testing.T) {
	ctx := ldcontext.New("test")

	got := snapshotFlags(stubFlags{
		bools:   map[string]bool{"nightly_rent_sync": false, "cors_high_security": true},
		strings: map[string]string{"sendgrid_from_email": "ops@acme.test"},
	}, ctx)
	assert.False(t, got.nightlyRentSync)
	assert.True(t, got.corsHighSecurity)
	assert.True(t, got.sendgridSandboxMode)
	assert.Equal(t, "ops@acme.test", got.sendgridFromEmail)

	// evaluation errors fall back to defaults
	got = snapshotFlags(stubFlags{fail: true}, ctx)
	assert.True(t, got.nightlyRentSync)
	assert.False(t, got.seedDbWithTestData)
	assert.Equal(t, defaultFromEmail, got.sendgridFromEmail)
}

func TestLoadConfigFromEnvOffline(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	AppName = "rent-service-test"
	t.Setenv("ENV", "dev")
	t.Setenv("DB_URL", "postgres://localhost/rent")
	t.Setenv("APP_PORT", "")
	t.Setenv("LD_SDK_KEY", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RSA_PUBLIC_KEY_BASE64", base64.StdEncoding.EncodeToString(pubPEM))

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.NotNil(t, cfg.RSAPublicKey)
	assert.Equal(t, key.PublicKey.N, cfg.RSAPublicKey.N)
	assert.Equal(t, defaultFromPhone, cfg.TwilioFromPhone)
	assert.True(t, cfg.LDFlag_NightlyRentSync)
	assert.False(t, cfg.LDFlag_NotifyExpiringLeases)
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := parsePublicKey(base64.StdEncoding.EncodeToString([]byte("not a pem")))
	assert.Error(t, err)
	_, err = parsePublicKey("%%%")
	assert.Error(t, err)
}
