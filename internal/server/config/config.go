// Package config handles configuration for the server: defaults, an optional
// YAML file, a .env file, GOPHTODO_* environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophtodo/internal/crypto"
	"github.com/iudanet/gophtodo/internal/logging"
	"github.com/iudanet/gophtodo/internal/server/token"
)

// Окружения
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

var (
	// ErrInvalidConfig базовая ошибка валидации конфигурации
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInsecureSecret возвращается, если в production не задан JWT секрет
	ErrInsecureSecret = errors.New("jwt secret must be set in production")
)

// Config holds runtime settings for the gophtodo server.
type Config struct {
	// ExposeInternalErrors отдавать клиенту текст 500 ошибок.
	// nil - по умолчанию: true везде, кроме production.
	ExposeInternalErrors *bool   `yaml:"expose_internal_errors"`
	Environment          string  `yaml:"environment"`
	Addr                 string  `yaml:"addr"`
	Storage              Storage `yaml:"storage"`
	Auth                 Auth    `yaml:"auth"`
	Log                  Log     `yaml:"log"`
	HTTP                 HTTP    `yaml:"http"`
	CORS                 CORS    `yaml:"cors"`
	ShowVersion          bool    `yaml:"-"`
}

// Storage настройки хранилища
type Storage struct {
	Driver string `yaml:"driver"` // sqlite | postgres | bolt
	DSN    string `yaml:"dsn"`    // путь к файлу или строка подключения
}

// Auth настройки токенов и хеширования паролей
type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	PasswordHasher string        `yaml:"password_hasher"` // argon2id | bcrypt
	TokenTTL       time.Duration `yaml:"token_ttl"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
}

// Log настройки логирования
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// HTTP таймауты сервера
type HTTP struct {
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// CORS настройки cross-origin запросов
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default возвращает конфигурацию для локальной разработки.
// JWT секрет пустой: сервис токенов подставит dev-секрет и предупредит в логе.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Addr:        ":3001",
		Storage: Storage{
			Driver: DriverSQLite,
			DSN:    "gophtodo.db",
		},
		Auth: Auth{
			PasswordHasher: crypto.AlgorithmArgon2id,
			TokenTTL:       token.DefaultTTL,
			BcryptCost:     10,
		},
		Log: Log{
			Level:  "info",
			Format: logging.FormatText,
		},
		HTTP: HTTP{
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
		},
	}
}

// IsProduction сообщает, запущен ли сервер в production окружении
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ExposeInternal возвращает итоговое значение expose_internal_errors
func (c *Config) ExposeInternal() bool {
	if c.ExposeInternalErrors != nil {
		return *c.ExposeInternalErrors
	}
	return !c.IsProduction()
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown environment %q", ErrInvalidConfig, c.Environment))
	}

	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("%w: addr is required", ErrInvalidConfig))
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverBolt:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver))
	}
	if c.Storage.DSN == "" {
		errs = append(errs, fmt.Errorf("%w: storage dsn is required", ErrInvalidConfig))
	}

	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig))
	}
	if _, err := crypto.NewPasswordHasher(c.Auth.PasswordHasher, crypto.WithBcryptCost(c.Auth.BcryptCost)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	if err := logging.ValidateFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	if c.HTTP.ReadHeaderTimeout <= 0 || c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: http timeouts must be positive", ErrInvalidConfig))
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one CORS origin is required", ErrInvalidConfig))
	}

	if c.IsProduction() && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == token.DevSecret) {
		errs = append(errs, ErrInsecureSecret)
	}

	return errors.Join(errs...)
}
