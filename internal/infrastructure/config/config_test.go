package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managedEnv lists every variable the tests touch so each case starts clean
var managedEnv = []string{
	"RENTAL_APP_NAME",
	"RENTAL_APP_ENV",
	"RENTAL_APP_PORT",
	"RENTAL_DATABASE_DRIVER",
	"RENTAL_DATABASE_HOST",
	"RENTAL_DATABASE_PORT",
	"RENTAL_DATABASE_PASSWORD",
	"RENTAL_DATABASE_DBNAME",
	"RENTAL_DATABASE_SSLMODE",
	"RENTAL_DATABASE_MAX_OPEN_CONNS",
	"RENTAL_DATABASE_MAX_IDLE_CONNS",
	"RENTAL_GATEWAY_MODE",
	"RENTAL_GATEWAY_BASE_URL",
	"RENTAL_RECONCILIATION_LOWER_RATIO",
	"RENTAL_RECONCILIATION_UPPER_RATIO",
	"RENTAL_DRAFT_SESSION_TTL",
	"RENTAL_DRAFT_RENTAL_DAYS",
	"RENTAL_HTTP_CORS_ALLOW_ORIGINS",
	"RENTAL_TELEMETRY_SAMPLING_RATIO",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "rental-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "rental", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, GatewayModeDatabase, cfg.Gateway.Mode)
		assert.Equal(t, 0.5, cfg.Reconciliation.LowerRatio)
		assert.Equal(t, 1.1, cfg.Reconciliation.UpperRatio)
		assert.Equal(t, 2*time.Hour, cfg.Draft.SessionTTL)
		assert.Equal(t, 7, cfg.Draft.RentalDays)
		assert.Equal(t, "rental-backend", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with RENTAL prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RENTAL_APP_NAME", "test-app")
		t.Setenv("RENTAL_APP_PORT", "9000")
		t.Setenv("RENTAL_DATABASE_HOST", "testdb.local")
		t.Setenv("RENTAL_DATABASE_PORT", "5433")
		t.Setenv("RENTAL_GATEWAY_MODE", "rest")
		t.Setenv("RENTAL_GATEWAY_BASE_URL", "http://shop.local/api")
		t.Setenv("RENTAL_RECONCILIATION_LOWER_RATIO", "0.8")
		t.Setenv("RENTAL_RECONCILIATION_UPPER_RATIO", "1.05")
		t.Setenv("RENTAL_DRAFT_SESSION_TTL", "45m")
		t.Setenv("RENTAL_DRAFT_RENTAL_DAYS", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, GatewayModeREST, cfg.Gateway.Mode)
		assert.Equal(t, "http://shop.local/api", cfg.Gateway.BaseURL)
		assert.Equal(t, 0.8, cfg.Reconciliation.LowerRatio)
		assert.Equal(t, 1.05, cfg.Reconciliation.UpperRatio)
		assert.Equal(t, 45*time.Minute, cfg.Draft.SessionTTL)
		assert.Equal(t, 3, cfg.Draft.RentalDays)
	})

	t.Run("explicit zero lower ratio is kept", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RENTAL_RECONCILIATION_LOWER_RATIO", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.Reconciliation.LowerRatio)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RENTAL_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("RENTAL_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("sqlite driver uses dbname as path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RENTAL_DATABASE_DRIVER", "sqlite")
		t.Setenv("RENTAL_DATABASE_DBNAME", "file:rental.db")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "file:rental.db", cfg.Database.DSN())
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown gateway mode",
			env:     map[string]string{"RENTAL_GATEWAY_MODE": "grpc"},
			wantErr: "gateway.mode must be",
		},
		{
			name:    "rest mode requires base url",
			env:     map[string]string{"RENTAL_GATEWAY_MODE": "rest"},
			wantErr: "gateway.base_url is required",
		},
		{
			name:    "upper ratio below one",
			env:     map[string]string{"RENTAL_RECONCILIATION_UPPER_RATIO": "0.9"},
			wantErr: "reconciliation band",
		},
		{
			name:    "lower ratio above one",
			env:     map[string]string{"RENTAL_RECONCILIATION_LOWER_RATIO": "1.2", "RENTAL_RECONCILIATION_UPPER_RATIO": "1.5"},
			wantErr: "reconciliation band",
		},
		{
			name:    "unknown database driver",
			env:     map[string]string{"RENTAL_DATABASE_DRIVER": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "sampling ratio out of range",
			env:     map[string]string{"RENTAL_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
		{
			name:    "production requires database password",
			env:     map[string]string{"RENTAL_APP_ENV": "production", "RENTAL_DATABASE_SSLMODE": "require"},
			wantErr: "database.password is required in production",
		},
		{
			name:    "production forbids sslmode disable",
			env:     map[string]string{"RENTAL_APP_ENV": "production", "RENTAL_DATABASE_PASSWORD": "secret"},
			wantErr: "sslmode cannot be 'disable'",
		},
		{
			name: "production forbids wildcard CORS",
			env: map[string]string{
				"RENTAL_APP_ENV":                 "production",
				"RENTAL_DATABASE_PASSWORD":       "secret",
				"RENTAL_DATABASE_SSLMODE":        "require",
				"RENTAL_HTTP_CORS_ALLOW_ORIGINS": "*",
			},
			wantErr: "cors_allow_origins cannot be '*'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		User:     "rental",
		Password: "p@ss word",
		DBName:   "rental",
		SSLMode:  "require",
	}

	assert.Equal(t, "postgres://rental:p%40ss%20word@db:5432/rental?sslmode=require", d.DSN())
}
