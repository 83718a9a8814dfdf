package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "GOPHTODO_"

// lookupFunc ищет значение переменной окружения
type lookupFunc func(key string) (string, bool)

// Load собирает конфигурацию из всех источников и валидирует ее.
// args - аргументы командной строки без имени программы.
// Возвращает pflag.ErrHelp, если запрошена справка.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs, flags := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if flags.showVersion {
		cfg.ShowVersion = true
		return cfg, nil
	}

	// Путь к YAML: флаг важнее переменной окружения
	configPath := flags.configPath
	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "CONFIG")
	}
	if configPath != "" {
		if err := loadYAML(cfg, configPath); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotenv(flags.envFile)
	if err != nil {
		return nil, err
	}

	// Реальное окружение важнее .env
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	flags.apply(fs, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// readDotenv читает .env файл без изменения окружения процесса.
// Отсутствующий файл не ошибка.
func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return values, nil
}

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	str("ENV", &cfg.Environment)
	str("ADDR", &cfg.Addr)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	str("PASSWORD_HASHER", &cfg.Auth.PasswordHasher)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	// PORT и JWT_SECRET без префикса - привычные имена для PaaS
	if v, ok := lookup("PORT"); ok && v != "" {
		cfg.Addr = ":" + v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		cfg.Auth.JWTSecret = v
	}
	str("JWT_SECRET", &cfg.Auth.JWTSecret)

	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.Auth.TokenTTL, "TOKEN_TTL"},
		{&cfg.HTTP.ReadHeaderTimeout, "READ_HEADER_TIMEOUT"},
		{&cfg.HTTP.ShutdownTimeout, "SHUTDOWN_TIMEOUT"},
	}
	for _, d := range durations {
		v, ok := lookup(EnvPrefix + d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup(EnvPrefix + "BCRYPT_COST"); ok && v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sBCRYPT_COST: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		cfg.Auth.BcryptCost = cost
	}

	if v, ok := lookup(EnvPrefix + "EXPOSE_INTERNAL_ERRORS"); ok && v != "" {
		expose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sEXPOSE_INTERNAL_ERRORS: %w", ErrInvalidConfig, EnvPrefix, err)
		}
		cfg.ExposeInternalErrors = &expose
	}

	return nil
}

// splitList разбирает список через запятую, пустые элементы отбрасываются
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
