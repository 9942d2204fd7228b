package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

const defaultPaymentDetails = "Сбербанк: 1234 5678 9012 3456\n" +
	"Тинькофф: 9876 5432 1098 7654"

type Postgres struct {
	Host     string `validate:"required"`
	User     string `validate:"required"`
	Password string
	Name     string `validate:"required"`
	Port     string `validate:"required"`
}

// DSN в формате, который ожидает gorm.io/driver/postgres
func (p Postgres) DSN() string {
	return "host=" + p.Host + " user=" + p.User + " password=" + p.Password +
		" dbname=" + p.Name + " port=" + p.Port + " sslmode=disable"
}

type Config struct {
	BotToken   string `validate:"required"`
	WebhookURL string `validate:"omitempty,url"`
	ListenAddr string `validate:"required"`

	OperatorID int64 `validate:"gt=0"`
	ReviewerID int64 `validate:"gt=0"`

	Backend        string   `validate:"oneof=postgres redis memory"`
	Postgres       Postgres `validate:"-"`
	RedisAddr      string   `validate:"required_if=Backend redis"`
	RedisNamespace string   `validate:"required"`

	SessionIdleTimeout time.Duration `validate:"gt=0"`
	PaymentDetails     string        `validate:"required"`
	LogLevel           string
}

// Load читает конфигурацию из переменных окружения и проверяет её
func Load() (Config, error) {
	operatorID, err := parseID("ADMIN_ID", os.Getenv("ADMIN_ID"))
	if err != nil {
		return Config{}, err
	}

	reviewerID := operatorID
	if raw := os.Getenv("REVIEWER_ID"); raw != "" {
		if reviewerID, err = parseID("REVIEWER_ID", raw); err != nil {
			return Config{}, err
		}
	}

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("config: SESSION_IDLE_TIMEOUT: %w", err)
	}

	cfg := Config{
		BotToken:           os.Getenv("BOT_TOKEN"),
		WebhookURL:         os.Getenv("BOT_URL"),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		OperatorID:         operatorID,
		ReviewerID:         reviewerID,
		Backend:            getEnv("STORE_BACKEND", BackendPostgres),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisNamespace:     getEnv("REDIS_NAMESPACE", "tg_shop"),
		SessionIdleTimeout: idle,
		PaymentDetails:     getEnv("PAYMENT_DETAILS", defaultPaymentDetails),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Postgres: Postgres{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
		},
	}

	v := validatorv10.New()
	if err := v.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Backend == BackendPostgres {
		if err := v.Struct(cfg.Postgres); err != nil {
			return Config{}, fmt.Errorf("config: postgres: %w", err)
		}
	}
	return cfg, nil
}

func parseID(name, raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("config: %s is not set", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	return id, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
