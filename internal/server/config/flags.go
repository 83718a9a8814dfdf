package config

import (
	"time"

	"github.com/spf13/pflag"
)

// flagValues значения флагов командной строки.
// Применяются к конфигурации только если флаг явно указан.
type flagValues struct {
	configPath           string
	envFile              string
	environment          string
	addr                 string
	storageDriver        string
	storageDSN           string
	jwtSecret            string
	passwordHasher       string
	logLevel             string
	logFormat            string
	corsOrigins          []string
	tokenTTL             time.Duration
	readHeaderTimeout    time.Duration
	shutdownTimeout      time.Duration
	bcryptCost           int
	exposeInternalErrors bool
	showVersion          bool
}

func newFlagSet(defaults *Config) (*pflag.FlagSet, *flagValues) {
	v := &flagValues{}
	fs := pflag.NewFlagSet("gophtodo", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&v.configPath, "config", "c", "", "path to YAML config file (env "+EnvPrefix+"CONFIG)")
	fs.StringVar(&v.envFile, "env-file", ".env", "path to .env file, ignored if missing")
	fs.StringVar(&v.environment, "env", defaults.Environment, "environment: development, production or test")
	fs.StringVarP(&v.addr, "addr", "a", defaults.Addr, "address to listen on")
	fs.StringVar(&v.storageDriver, "storage-driver", defaults.Storage.Driver, "storage driver: sqlite, postgres or bolt")
	fs.StringVarP(&v.storageDSN, "dsn", "d", defaults.Storage.DSN, "database file path or PostgreSQL DSN")
	fs.StringVarP(&v.jwtSecret, "jwt-secret", "s", "", "HMAC secret for session tokens")
	fs.DurationVar(&v.tokenTTL, "token-ttl", defaults.Auth.TokenTTL, "session token lifetime")
	fs.StringVar(&v.passwordHasher, "password-hasher", defaults.Auth.PasswordHasher, "password hashing algorithm: argon2id or bcrypt")
	fs.IntVar(&v.bcryptCost, "bcrypt-cost", defaults.Auth.BcryptCost, "bcrypt cost factor")
	fs.StringVar(&v.logLevel, "log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&v.logFormat, "log-format", defaults.Log.Format, "log format: text or json")
	fs.StringSliceVar(&v.corsOrigins, "cors-origins", defaults.CORS.AllowedOrigins, "allowed CORS origins")
	fs.BoolVar(&v.exposeInternalErrors, "expose-internal-errors", false, "return raw internal error messages to clients")
	fs.DurationVar(&v.readHeaderTimeout, "read-header-timeout", defaults.HTTP.ReadHeaderTimeout, "HTTP read header timeout")
	fs.DurationVar(&v.shutdownTimeout, "shutdown-timeout", defaults.HTTP.ShutdownTimeout, "graceful shutdown timeout")
	fs.BoolVarP(&v.showVersion, "version", "v", false, "show version information")

	return fs, v
}

func (v *flagValues) apply(fs *pflag.FlagSet, cfg *Config) {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}

	set("env", func() { cfg.Environment = v.environment })
	set("addr", func() { cfg.Addr = v.addr })
	set("storage-driver", func() { cfg.Storage.Driver = v.storageDriver })
	set("dsn", func() { cfg.Storage.DSN = v.storageDSN })
	set("jwt-secret", func() { cfg.Auth.JWTSecret = v.jwtSecret })
	set("token-ttl", func() { cfg.Auth.TokenTTL = v.tokenTTL })
	set("password-hasher", func() { cfg.Auth.PasswordHasher = v.passwordHasher })
	set("bcrypt-cost", func() { cfg.Auth.BcryptCost = v.bcryptCost })
	set("log-level", func() { cfg.Log.Level = v.logLevel })
	set("log-format", func() { cfg.Log.Format = v.logFormat })
	set("cors-origins", func() { cfg.CORS.AllowedOrigins = v.corsOrigins })
	set("read-header-timeout", func() { cfg.HTTP.ReadHeaderTimeout = v.readHeaderTimeout })
	set("shutdown-timeout", func() { cfg.HTTP.ShutdownTimeout = v.shutdownTimeout })
	set("expose-internal-errors", func() {
		expose := v.exposeInternalErrors
		cfg.ExposeInternalErrors = &expose
	})
}
