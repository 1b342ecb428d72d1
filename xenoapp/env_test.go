package xenoapp_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/advdv/xeno/xenoapp"
	"github.com/advdv/xeno/xenoapp/xenoapptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type ordersEnv struct {
	xenoapp.BaseEnvironment
	OrdersTable string `env:"ORDERS_TABLE,required"`
}

func TestParseEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		xenoapptest.SetBaseEnv(t, 18090)

		env, err := xenoapp.ParseEnv[xenoapp.BaseEnvironment]()()
		require.NoError(t, err)
		assert.Equal(t, 18090, env.Port)
		assert.Equal(t, "test", env.ServiceName)
		assert.Equal(t, "/health", env.ReadinessCheckPath)
		assert.Equal(t, "/metrics", env.MetricsPath)
		assert.Equal(t, zapcore.InfoLevel, env.LogLevel)
		assert.Equal(t, int64(xenoapp.LambdaMaxResponsePayloadBytes), env.MaxBodyBytes)
		assert.Equal(t, 30*time.Second, env.LambdaTimeout)
		assert.Equal(t, 500, env.ErrorStatusMin)
		assert.Equal(t, 599, env.ErrorStatusMax)
		assert.Equal(t, xenoapp.KVMemory, env.KVBackend)
	})

	t.Run("custom fields", func(t *testing.T) {
		xenoapptest.SetBaseEnv(t, 18090).KVBackend(xenoapp.KVDynamoDB)
		t.Setenv("XENO_KV_TABLE", "kv")
		t.Setenv("ORDERS_TABLE", "orders")

		env, err := xenoapp.ParseEnv[ordersEnv]()()
		require.NoError(t, err)
		assert.Equal(t, "orders", env.OrdersTable)
		assert.Equal(t, "kv", env.KVTable)
	})

	t.Run("missing custom field", func(t *testing.T) {
		xenoapptest.SetBaseEnv(t, 18090)

		_, err := xenoapp.ParseEnv[ordersEnv]()()
		require.ErrorContains(t, err, "ORDERS_TABLE")
	})

	t.Run("dotenv files", func(t *testing.T) {
		xenoapptest.SetBaseEnv(t, 18090)

		file := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(file, []byte("ORDERS_TABLE=from-dotenv\nXENO_SERVICE_NAME=ignored\n"), 0o600))
		t.Setenv("XENO_DOTENV", file)
		t.Cleanup(func() { os.Unsetenv("ORDERS_TABLE") })

		env, err := xenoapp.ParseEnv[ordersEnv]()()
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", env.OrdersTable)
		assert.Equal(t, "test", env.ServiceName)
	})

	t.Run("missing dotenv file", func(t *testing.T) {
		xenoapptest.SetBaseEnv(t, 18090)
		t.Setenv("XENO_DOTENV", filepath.Join(t.TempDir(), "nope.env"))

		_, err := xenoapp.ParseEnv[xenoapp.BaseEnvironment]()()
		require.ErrorContains(t, err, "failed to load dotenv files")
	})
}

func TestBaseEnvironmentValidate(t *testing.T) {
	valid := func() xenoapp.BaseEnvironment {
		return xenoapp.BaseEnvironment{
			KVBackend:          xenoapp.KVMemory,
			ErrorStatusMin:     500,
			ErrorStatusMax:     599,
			ReadinessCheckPath: "/health",
			MetricsPath:        "/metrics",
		}
	}

	for _, tt := range []struct {
		name    string
		mutate  func(e *xenoapp.BaseEnvironment)
		wantErr string
	}{
		{name: "valid", mutate: func(*xenoapp.BaseEnvironment) {}},
		{
			name:    "unsupported backend",
			mutate:  func(e *xenoapp.BaseEnvironment) { e.KVBackend = "etcd" },
			wantErr: `unsupported XENO_KV_BACKEND: "etcd"`,
		},
		{
			name:    "pebble without dir",
			mutate:  func(e *xenoapp.BaseEnvironment) { e.KVBackend = xenoapp.KVPebble },
			wantErr: "XENO_KV_PEBBLE_DIR is required for the pebble backend",
		},
		{
			name:    "redis without addr",
			mutate:  func(e *xenoapp.BaseEnvironment) { e.KVBackend = xenoapp.KVRedis },
			wantErr: "XENO_KV_REDIS_ADDR is required",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(e *xenoapp.BaseEnvironment) { e.KVBackend = xenoapp.KVS3 },
			wantErr: "XENO_KV_BUCKET is required",
		},
		{
			name:   "ssm needs nothing else",
			mutate: func(e *xenoapp.BaseEnvironment) { e.KVBackend = xenoapp.KVSSM },
		},
		{
			name:    "inverted status range",
			mutate:  func(e *xenoapp.BaseEnvironment) { e.ErrorStatusMin = 600 },
			wantErr: "exceeds XENO_ERROR_STATUS_MAX",
		},
		{
			name:    "relative metrics path",
			mutate:  func(e *xenoapp.BaseEnvironment) { e.MetricsPath = "metrics" },
			wantErr: "must start with a slash",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			env := valid()
			tt.mutate(&env)

			err := env.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
