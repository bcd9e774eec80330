package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerEnvKeys = []string{
	"LEDGER_APP_NAME",
	"LEDGER_APP_ENV",
	"LEDGER_DATABASE_HOST",
	"LEDGER_DATABASE_PORT",
	"LEDGER_DATABASE_PASSWORD",
	"LEDGER_DATABASE_SSLMODE",
	"LEDGER_DATABASE_MAX_OPEN_CONNS",
	"LEDGER_DATABASE_MAX_IDLE_CONNS",
	"LEDGER_JWT_SECRET",
	"LEDGER_JWT_HEADER_IDENTITY",
	"LEDGER_LEDGER_TRANSACTION_TIMEOUT",
	"LEDGER_LEDGER_UNFUNDED_REFUND_POLICY",
	"LEDGER_SCHEDULER_ALERT_SWEEP_INTERVAL",
	"LEDGER_TELEMETRY_SAMPLING_RATIO",
}

func clearLedgerEnv(t *testing.T) {
	t.Helper()
	for _, k := range ledgerEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearLedgerEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "inventory-ledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "ledger", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 15*time.Second, cfg.Ledger.TransactionTimeout)
		assert.Equal(t, "allow", cfg.Ledger.UnfundedRefundPolicy)
		assert.Equal(t, "Inventory", cfg.Ledger.ReceivingExpenseCategory)
		assert.Equal(t, 30*time.Second, cfg.Ledger.AlertLeaseTTL)
		assert.Equal(t, 5, cfg.Ledger.AlertRetryMaxAttempts)
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.AlertSweepInterval)
		assert.Equal(t, time.Minute, cfg.Scheduler.RetryDrainInterval)
		assert.Empty(t, cfg.Redis.Host)
		assert.True(t, cfg.JWT.HeaderIdentity)
	})

	t.Run("loads values from environment variables with LEDGER prefix", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_APP_NAME", "ledger-test")
		t.Setenv("LEDGER_DATABASE_HOST", "testdb.local")
		t.Setenv("LEDGER_DATABASE_PORT", "5433")
		t.Setenv("LEDGER_LEDGER_TRANSACTION_TIMEOUT", "3s")
		t.Setenv("LEDGER_LEDGER_UNFUNDED_REFUND_POLICY", "reject")
		t.Setenv("LEDGER_SCHEDULER_ALERT_SWEEP_INTERVAL", "2m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ledger-test", cfg.App.Name)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 3*time.Second, cfg.Ledger.TransactionTimeout)
		assert.Equal(t, "reject", cfg.Ledger.UnfundedRefundPolicy)
		assert.Equal(t, 2*time.Minute, cfg.Scheduler.AlertSweepInterval)
	})

	t.Run("rejects unknown unfunded refund policy", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_LEDGER_UNFUNDED_REFUND_POLICY", "sometimes")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unfunded_refund_policy")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires a long jwt secret", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_APP_ENV", "production")
		t.Setenv("LEDGER_JWT_SECRET", "short")
		t.Setenv("LEDGER_DATABASE_PASSWORD", "secret")
		t.Setenv("LEDGER_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects header identity", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_APP_ENV", "production")
		t.Setenv("LEDGER_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("LEDGER_DATABASE_PASSWORD", "secret")
		t.Setenv("LEDGER_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header_identity")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearLedgerEnv(t)
		t.Setenv("LEDGER_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "ledger",
		Password: "p@ss word",
		DBName:   "ledger",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://ledger:")
	assert.Contains(t, dsn, "@db.local:5432/ledger")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss word")
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
