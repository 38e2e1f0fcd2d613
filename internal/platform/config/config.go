package config

import (
	"os"
	"strings"
	"time"

	platformstrings "motorcover/pkg/platform/strings"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	PostgresDSN   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	SMTP          SMTPConfig
	JWTSigningKey string
	S3Bucket      string
	S3Region      string
}

// RedisConfig holds connection settings for the idempotency store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds producer settings for the notification outbox relay.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SMTPConfig holds mail relay settings for the notification dispatcher.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("MOTORCOVER_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("MOTORCOVER_POSTGRES_DSN"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		S3Bucket:      os.Getenv("DOCUMENTS_S3_BUCKET"),
		S3Region:      envOr("AWS_REGION", "us-east-1"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: envOr("KAFKA_NOTIFICATIONS_TOPIC", "motorcover.notifications"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envOr("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = platformstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}
	if cfg.JWTSigningKey == "" {
		// Development default - must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
