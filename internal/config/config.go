package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	DB        PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	Printing  PrintingConfig
}

type AppConfig struct {
	Name         string
	LogLevel     string
	SecretKey    string
	OTLPEndpoint string
	MenuSeed     string
	Workers      int
}

type ServerConfig struct {
	Addr string
}

type PostgresConfig struct {
	URL      string
	MaxConns int
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type SchedulerConfig struct {
	ReportAt          string
	KeepAliveURL      string
	KeepAliveInterval time.Duration
}

type PrintingConfig struct {
	SpoolDir string
	Group    string
}

// Load reads the POS server configuration.
func Load() (*Config, error) {
	cfg := read()
	return cfg, cfg.validate()
}

// LoadPrintRouter reads the configuration of the print router, which needs
// the broker but never touches the database.
func LoadPrintRouter() (*Config, error) {
	cfg := read()
	if !cfg.Kafka.Enabled() {
		return cfg, fmt.Errorf("KAFKA_ADDR is required")
	}
	if cfg.Printing.SpoolDir == "" {
		return cfg, fmt.Errorf("PRINT_SPOOL_DIR is required")
	}
	return cfg, nil
}

func read() *Config {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Name:         getEnv("APP_NAME", "restaurant-pos"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			SecretKey:    getEnv("SECRET_KEY", ""),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			MenuSeed:     getEnv("MENU_SEED", ""),
			Workers:      getEnvAsInt("WORKER_POOL_SIZE", 2),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		DB: PostgresConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitAndTrim(getEnv("KAFKA_ADDR", "")),
			Topic:   getEnv("OUTBOX_TOPIC", "kitchen.events"),
		},
		Scheduler: SchedulerConfig{
			ReportAt:          getEnv("REPORT_AT", "00:05"),
			KeepAliveURL:      getEnv("KEEPALIVE_URL", ""),
			KeepAliveInterval: getEnvAsDuration("KEEPALIVE_INTERVAL", 10*time.Minute),
		},
		Printing: PrintingConfig{
			SpoolDir: getEnv("PRINT_SPOOL_DIR", "./spool"),
			Group:    getEnv("PRINT_GROUP", "print-router"),
		},
	}
}

// ReportClock parses REPORT_AT as hour and minute of the local day.
func (s SchedulerConfig) ReportClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.ReportAt)
	if err != nil {
		return 0, 0, fmt.Errorf("REPORT_AT %q: %w", s.ReportAt, err)
	}
	return t.Hour(), t.Minute(), nil
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is invalid")
	}
	if _, _, err := c.Scheduler.ReportClock(); err != nil {
		return err
	}
	if c.Scheduler.KeepAliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
