package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "HTTP_ADDRESS", "STORE_BACKEND", "SHEET_URL", "SHEET_ID", "SHEET_NAME",
		"SQLITE_PATH", "KAFKA_BROKERS", "SESSION_TTL", "JWT_SECRET", "SUBCATEGORIES", "SUMMARY_SAME_YEAR",
		"KAFKA_GROUP_ID", "METRICS_ADDRESS", "MIRROR_BACKEND"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, BackendSheets, cfg.StoreBackend)
	require.Equal(t, "Sheet1", cfg.SheetName)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Empty(t, cfg.KafkaBrokers)
	require.False(t, cfg.AuthEnabled())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost/activity")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SUMMARY_SAME_YEAR", "true")
	t.Setenv("SUBCATEGORIES", "Reading, Cooking")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendPostgres, cfg.StoreBackend)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.True(t, cfg.AuthEnabled())
	require.True(t, cfg.SameYearDefault)
	require.Equal(t, []string{"Reading", "Cooking"}, cfg.Subcategories)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activitylog.yaml")
	doc := `
store_backend: sqlite
sqlite_path: /var/lib/activity.db
sheet:
  url: https://docs.google.com/spreadsheets/d/abc123/edit
  name: Log
kafka:
  brokers: [kafka:9092]
session_ttl: 2h
subcategories:
  - Workout
  - Language Practice
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SQLITE_PATH", "/tmp/override.db")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.StoreBackend)
	require.Equal(t, "/tmp/override.db", cfg.SQLitePath)
	require.Equal(t, "Log", cfg.SheetName)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, []string{"Workout", "Language Practice"}, cfg.Subcategories)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_ttl: soon\n"), 0o600))
	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"sheets without url", func(c *Config) {}, false},
		{"sheets without credentials", func(c *Config) { c.SheetURL = "abc" }, false},
		{"sheets complete", func(c *Config) { c.SheetURL = "abc"; c.CredentialsJSON = "{}" }, true},
		{"postgres without url", func(c *Config) { c.StoreBackend = BackendPostgres }, false},
		{"sqlite default path", func(c *Config) { c.StoreBackend = BackendSQLite }, true},
		{"memory", func(c *Config) { c.StoreBackend = BackendMemory }, true},
		{"unknown backend", func(c *Config) { c.StoreBackend = "excel" }, false},
		{"zero ttl", func(c *Config) { c.StoreBackend = BackendMemory; c.SessionTTL = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestValidateMirror(t *testing.T) {
	cfg := Defaults()
	require.ErrorIs(t, cfg.ValidateMirror(), ErrInvalidConfig)

	cfg.KafkaBrokers = []string{"kafka:9092"}
	require.NoError(t, cfg.ValidateMirror())

	cfg.MirrorBackend = BackendPostgres
	require.ErrorIs(t, cfg.ValidateMirror(), ErrInvalidConfig)
	cfg.PostgresURL = "postgres://localhost/mirror"
	require.NoError(t, cfg.ValidateMirror())

	cfg.MirrorBackend = BackendMemory
	require.ErrorIs(t, cfg.ValidateMirror(), ErrInvalidConfig)
}
