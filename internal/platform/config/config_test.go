package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPolicyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_STRATEGY", "policy")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("DB_TABLE", "customers")
	t.Setenv("DB_CPF_COLUMN", "cpf")
	t.Setenv("DB_SECRET_NAME", "shop/db")
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTH_STRATEGY", "")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("AUTH_VALIDATE_CPF", "")
	t.Setenv("HTTP_WRITE_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.Equal(t, StrategyPolicy, cfg.Auth.Strategy)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Token.TTL)
	assert.Equal(t, "custom:cpf", cfg.Directory.Attribute)
	assert.Nil(t, cfg.Auth.ValidateCPF)
	assert.Equal(t, "*", cfg.Auth.DefaultResource)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	setPolicyEnv(t)
	t.Setenv("AUTH_VALIDATE_CPF", "true")
	t.Setenv("AUDIT_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TOKEN_TTL", "15m")

	cfg := FromEnv()

	require.NotNil(t, cfg.Auth.ValidateCPF)
	assert.True(t, *cfg.Auth.ValidateCPF)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Token.TTL)
	assert.Equal(t, "customers", cfg.Database.Table)
}

func TestValidate(t *testing.T) {
	t.Run("complete policy configuration is valid", func(t *testing.T) {
		setPolicyEnv(t)
		require.NoError(t, FromEnv().Validate())
	})

	t.Run("missing table is reported", func(t *testing.T) {
		setPolicyEnv(t)
		t.Setenv("DB_TABLE", "")
		err := FromEnv().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_TABLE")
	})

	t.Run("token strategy requires signing key", func(t *testing.T) {
		setPolicyEnv(t)
		t.Setenv("AUTH_STRATEGY", "token")
		t.Setenv("JWT_SECRET", "")
		err := FromEnv().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("env secret backend does not need a secret name", func(t *testing.T) {
		setPolicyEnv(t)
		t.Setenv("SECRET_BACKEND", "env")
		t.Setenv("DB_SECRET_NAME", "")
		require.NoError(t, FromEnv().Validate())
	})

	t.Run("mock strategy needs nothing", func(t *testing.T) {
		t.Setenv("AUTH_STRATEGY", "mock")
		t.Setenv("DB_HOST", "")
		t.Setenv("JWT_SECRET", "")
		require.NoError(t, FromEnv().Validate())
	})

	t.Run("unknown strategy is reported", func(t *testing.T) {
		t.Setenv("AUTH_STRATEGY", "oauth")
		err := FromEnv().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_STRATEGY")
	})
}
