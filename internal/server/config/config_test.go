package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophtodo/internal/server/token"
)

// clearEnv обнуляет переменные, которые читает Load
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG", "ENV", "ADDR", "STORAGE_DRIVER", "STORAGE_DSN", "JWT_SECRET", "TOKEN_TTL",
		"PASSWORD_HASHER", "BCRYPT_COST", "LOG_LEVEL", "LOG_FORMAT", "CORS_ORIGINS",
		"EXPOSE_INTERNAL_ERRORS", "READ_HEADER_TIMEOUT", "SHUTDOWN_TIMEOUT",
	}
	for _, k := range keys {
		t.Setenv(EnvPrefix+k, "")
	}
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noDotenv(t *testing.T) []string {
	return []string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}
}

func boolPtr(b bool) *bool { return &b }

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":3001", cfg.Addr)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.ExposeInternal())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Layering(t *testing.T) {
	clearEnv(t)

	yamlPath := writeFile(t, "config.yaml", `
environment: test
addr: ":7000"
storage:
  driver: bolt
  dsn: /var/lib/gophtodo/todo.db
auth:
  token_ttl: 24h
  password_hasher: bcrypt
  bcrypt_cost: 4
log:
  level: warn
cors:
  allowed_origins:
    - https://todo.example.com
`)
	envPath := writeFile(t, ".env", `
GOPHTODO_ADDR=:4000
GOPHTODO_LOG_LEVEL=debug
GOPHTODO_JWT_SECRET=from-dotenv
`)

	// Реальное окружение важнее .env
	t.Setenv("GOPHTODO_ADDR", ":5000")

	cfg, err := Load([]string{"--config", yamlPath, "--env-file", envPath, "--log-format", "json"})
	require.NoError(t, err)

	want := Default()
	want.Environment = EnvTest
	want.Addr = ":5000"
	want.Storage = Storage{Driver: DriverBolt, DSN: "/var/lib/gophtodo/todo.db"}
	want.Auth = Auth{
		JWTSecret:      "from-dotenv",
		PasswordHasher: "bcrypt",
		TokenTTL:       24 * time.Hour,
		BcryptCost:     4,
	}
	want.Log = Log{Level: "debug", Format: "json"}
	want.CORS.AllowedOrigins = []string{"https://todo.example.com"}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOPHTODO_CONFIG", writeFile(t, "config.yaml", "addr: \":8123\"\n"))

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, ":8123", cfg.Addr)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOPHTODO_ADDR", ":5000")
	t.Setenv("GOPHTODO_EXPOSE_INTERNAL_ERRORS", "true")
	t.Setenv("GOPHTODO_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	args := append(noDotenv(t), "--addr", ":6000", "--expose-internal-errors=false", "--token-ttl", "1h")
	cfg, err := Load(args)
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.Addr)
	assert.Equal(t, boolPtr(false), cfg.ExposeInternalErrors)
	assert.False(t, cfg.ExposeInternal())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "legacy-secret")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "legacy-secret", cfg.Auth.JWTSecret)

	// Переменная с префиксом важнее
	t.Setenv("GOPHTODO_JWT_SECRET", "prefixed-secret")
	cfg, err = Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "prefixed-secret", cfg.Auth.JWTSecret)
}

func TestLoad_Production(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		secret  string
	}{
		{name: "missing secret", secret: "", wantErr: ErrInsecureSecret},
		{name: "development secret", secret: token.DevSecret, wantErr: ErrInsecureSecret},
		{name: "real secret", secret: "a-long-random-production-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GOPHTODO_ENV", "production")
			t.Setenv("GOPHTODO_JWT_SECRET", tt.secret)

			cfg, err := Load(noDotenv(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, cfg.IsProduction())
			assert.False(t, cfg.ExposeInternal(), "internal errors are hidden in production by default")
		})
	}
}

func TestLoad_Version(t *testing.T) {
	clearEnv(t)
	// Невалидный драйвер не мешает показать версию
	t.Setenv("GOPHTODO_STORAGE_DRIVER", "mongodb")

	cfg, err := Load([]string{"--version"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		env     map[string]string
		wantErr error
		name    string
		args    []string
	}{
		{
			name:    "help",
			args:    []string{"--help"},
			wantErr: pflag.ErrHelp,
		},
		{
			name:    "bad duration in env",
			env:     map[string]string{"GOPHTODO_TOKEN_TTL": "a week"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad bool in env",
			env:     map[string]string{"GOPHTODO_EXPOSE_INTERNAL_ERRORS": "maybe"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown driver",
			args:    []string{"--storage-driver", "mongodb"},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(append(noDotenv(t), tt.args...))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(append(noDotenv(t), "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(c *Config)
		name    string
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "postgres", mutate: func(c *Config) {
			c.Storage = Storage{Driver: DriverPostgres, DSN: "postgres://u:p@localhost:5432/todo"}
		}},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "staging" }, wantErr: true},
		{name: "empty addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: true},
		{name: "empty dsn", mutate: func(c *Config) { c.Storage.DSN = "" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
		{name: "unknown hasher", mutate: func(c *Config) { c.Auth.PasswordHasher = "md5" }, wantErr: true},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 99 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.HTTP.ShutdownTimeout = 0 }, wantErr: true},
		{name: "no cors origins", mutate: func(c *Config) { c.CORS.AllowedOrigins = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
