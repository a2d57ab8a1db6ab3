package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_PORT", "APP_ENV", "DB_DRIVER", "MYSQL_DSN", "PG_DSN", "DB_MIGRATE",
	"REDIS_ADDR", "CART_CACHE_TTL", "KAFKA_BROKERS", "KAFKA_ORDER_TOPIC",
	"JWT_SECRET", "ORDER_NUMBER_POLICY", "CHECKOUT_PRICING", "CHECKOUT_TIMEOUT",
	"SALES_MODULE", "ORDER_OPEN_STATUS", "ORDER_CANCELLED_STATUS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, DriverMySQL, cfg.Driver)
	require.True(t, cfg.Migrate)
	require.Equal(t, 15*time.Minute, cfg.CartCacheTTL)
	require.Equal(t, 5*time.Second, cfg.CheckoutTimeout)
	require.Equal(t, "counter", cfg.NumberPolicy)
	require.Equal(t, "first", cfg.Pricing)
	require.Equal(t, "Sales", cfg.SalesModule)
	require.Equal(t, "Closed", cfg.OpenStatus)
	require.Equal(t, "Cancelled", cfg.CancelledStatus)
	require.Empty(t, cfg.RedisAddr)
	require.Empty(t, cfg.KafkaBrokers)
	require.False(t, cfg.Production())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("CHECKOUT_PRICING", "SUM")
	t.Setenv("CHECKOUT_TIMEOUT", "750ms")
	t.Setenv("ORDER_NUMBER_POLICY", "random")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.True(t, cfg.Production())
	require.Equal(t, DriverPostgres, cfg.Driver)
	require.False(t, cfg.Migrate)
	require.Equal(t, "sum", cfg.Pricing)
	require.Equal(t, 750*time.Millisecond, cfg.CheckoutTimeout)
	require.Equal(t, "random", cfg.NumberPolicy)
}

func TestFromEnv_ReportsEveryInvalidKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CHECKOUT_PRICING", "avg")
	t.Setenv("CHECKOUT_TIMEOUT", "soon")
	t.Setenv("DB_MIGRATE", "maybe")

	_, err := FromEnv()
	require.Error(t, err)
	for _, k := range []string{"DB_DRIVER", "CHECKOUT_PRICING", "CHECKOUT_TIMEOUT", "DB_MIGRATE"} {
		require.Contains(t, err.Error(), k)
	}
}

func TestLoad_ReadsDotEnvWithoutOverridingEnv(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are absent from the environment
	require.NoError(t, os.Unsetenv("DB_DRIVER"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER=memory\nAPP_PORT=9090\n"), 0o600))
	t.Setenv("APP_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DriverMemory, cfg.Driver)
	require.Equal(t, "7070", cfg.Port)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}
