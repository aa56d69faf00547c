package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Metrics struct {
		Addr string
	}

	Auth struct {
		PasswordSalt   string
		HashIterations int
		TokenSecret    string
	}

	Chat struct {
		OptimisticSend   bool
		MaxMessageLength int
	}

	Store struct {
		BreakerFailures int
		BreakerTimeout  time.Duration
	}
}

// New reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "grpc_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "muzz")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// empty METRICS_ADDR disables the endpoint
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.Metrics.Addr = strings.TrimSpace(v)
	} else {
		cfg.Metrics.Addr = ":9090"
	}

	// Auth. Salt and token secret have no defaults, see Validate.
	cfg.Auth.PasswordSalt = strings.TrimSpace(os.Getenv("PASSWORD_SALT"))
	cfg.Auth.HashIterations = getEnvInt("PASSWORD_HASH_ITERATIONS", 60000)
	cfg.Auth.TokenSecret = strings.TrimSpace(os.Getenv("TOKEN_SECRET"))

	// Chat
	cfg.Chat.OptimisticSend = true
	if v := os.Getenv("CHAT_OPTIMISTIC_SEND"); strings.TrimSpace(v) != "" {
		cfg.Chat.OptimisticSend = isTruthy(v)
	}
	cfg.Chat.MaxMessageLength = getEnvInt("CHAT_MAX_MESSAGE_LENGTH", 2000)

	// Store circuit breaker
	cfg.Store.BreakerFailures = getEnvInt("STORE_BREAKER_FAILURES", 5)
	cfg.Store.BreakerTimeout = getEnvDuration("STORE_BREAKER_TIMEOUT", 30*time.Second)

	return cfg
}

// Validate reports every mandatory setting that is missing or unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.PasswordSalt == "" {
		errs = append(errs, errors.New("PASSWORD_SALT must be set"))
	}
	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET must be set"))
	}
	if c.Auth.HashIterations <= 0 {
		errs = append(errs, errors.New("PASSWORD_HASH_ITERATIONS must be positive"))
	}
	if c.Chat.MaxMessageLength <= 0 {
		errs = append(errs, errors.New("CHAT_MAX_MESSAGE_LENGTH must be positive"))
	}
	if c.Store.BreakerFailures <= 0 {
		errs = append(errs, errors.New("STORE_BREAKER_FAILURES must be positive"))
	}
	if c.Store.BreakerTimeout <= 0 {
		errs = append(errs, errors.New("STORE_BREAKER_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
