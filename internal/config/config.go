package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Port      string
	LogLevel  string
	DB        DBConfig
	RedisAddr string
	RedisPass string
	Kafka     KafkaConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	CORS      []string
	CacheTTL  time.Duration
}

type DBConfig struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	NotifyTo string
	FromName string
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnv("PORT", "5000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		DB: DBConfig{
			Host: getEnv("DB_HOST", "127.0.0.1"),
			Port: getEnv("DB_PORT", "3306"),
			User: getEnv("DB_USER", "root"),
			Pass: os.Getenv("DB_PASSWORD"),
			Name: getEnv("DB_NAME", "restaurant-db"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092,localhost:9093,localhost:9094")),
			Topic:   getEnv("KAFKA_TOPIC", "restaurant-topic"),
			GroupID: getEnv("KAFKA_GROUP_ID", "restaurant-notifier-group"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET_KEY", "secret"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			FromName: getEnv("SMTP_FROM_NAME", "Qual a Boa"),
			NotifyTo: os.Getenv("NOTIFY_EMAIL"),
		},
		CORS: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
	}

	var err error
	if cfg.JWT.TTL, err = getDuration("JWT_ACCESS_TOKEN_EXPIRES", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.PerMinute, err = getInt("RATELIMIT_PER_MINUTE", 100); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.PerMinute <= 0 {
		return Config{}, fmt.Errorf("RATELIMIT_PER_MINUTE must be positive, got %d", cfg.RateLimit.PerMinute)
	}
	if cfg.RateLimit.Burst, err = getInt("RATELIMIT_BURST", 20); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DSN builds the MySQL connection string. clientFoundRows makes UPDATE report
// matched rather than changed rows.
func (c DBConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Pass
	mc.Net = "tcp"
	mc.Addr = c.Host + ":" + c.Port
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
