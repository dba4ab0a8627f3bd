// Package config конфигурация сервиса из TOML файла.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/linkage"
)

// PathEnv переменная окружения с путем к конфигурации
const PathEnv = "CONFIG_PATH"

// DefaultPath путь к конфигурации по умолчанию
const DefaultPath = "config.toml"

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Redis      RedisConfig      `toml:"redis"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Booking    BookingConfig    `toml:"booking"`
	AbuseGuard AbuseGuardConfig `toml:"abuse_guard"`
	Pricing    PricingConfig    `toml:"pricing"`
}

type ServerConfig struct {
	HTTPPort        int  `toml:"http_port"`
	ReadTimeout     int  `toml:"read_timeout"`  // секунды
	WriteTimeout    int  `toml:"write_timeout"` // секунды
	IdleTimeout     int  `toml:"idle_timeout"`  // секунды
	ShutdownTimeout int  `toml:"shutdown_timeout"`
	TrustProxy      bool `toml:"trust_proxy"` // доверять X-Forwarded-For

	// CORSOrigins сайты, с которых клиенты отправляют заявки
	CORSOrigins []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	TxRetries       int    `toml:"tx_retries"`        // повторы при ошибке сериализации
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr          string `toml:"addr"`
	Password      string `toml:"password"`
	DB            int    `toml:"db"`
	KeyPrefix     string `toml:"key_prefix"`
	SessionTTLMin int    `toml:"session_ttl_minutes"`
}

type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type BookingConfig struct {
	AccountID          int64  `toml:"account_id"`
	Timezone           string `toml:"timezone"`
	DefaultBufferHours int    `toml:"default_buffer_hours"`
	ReconcileInterval  int    `toml:"reconcile_interval"` // секунды
	ReconcileBatch     int    `toml:"reconcile_batch"`
	LinkWriteAttempts  int    `toml:"link_write_attempts"`
}

type AbuseGuardConfig struct {
	RateLimit         int64 `toml:"rate_limit"`
	RateWindowMin     int   `toml:"rate_window_minutes"`
	DuplicateLimit    int64 `toml:"duplicate_limit"`
	DuplicateWindowMn int   `toml:"duplicate_window_minutes"`
	DuplicateBanMin   int   `toml:"duplicate_ban_minutes"`
	FailureLimit      int64 `toml:"failure_limit"`
	FailureWindowMin  int   `toml:"failure_window_minutes"`
	FailureBanMin     int   `toml:"failure_ban_minutes"`
}

type PricingConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает конфигурацию. Путь из CONFIG_PATH имеет приоритет над path.
func Load(path string) (*Config, error) {
	if env := strings.TrimSpace(os.Getenv(PathEnv)); env != "" {
		path = env
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Default значения, которые файл может переопределить
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxRetries:       3,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			KeyPrefix:     "rental",
			SessionTTLMin: 12 * 60,
		},
		Kafka: KafkaConfig{
			Topic: "rental.notifications",
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc_rental_service",
		},
		Booking: BookingConfig{
			AccountID:          1,
			Timezone:           domain.DefaultTimezone,
			DefaultBufferHours: domain.DefaultBufferHours,
			ReconcileInterval:  60,
			ReconcileBatch:     50,
			LinkWriteAttempts:  3,
		},
		AbuseGuard: AbuseGuardConfig{
			RateLimit:         10,
			RateWindowMin:     10,
			DuplicateLimit:    3,
			DuplicateWindowMn: 30,
			DuplicateBanMin:   60,
			FailureLimit:      5,
			FailureWindowMin:  60,
			FailureBanMin:     60,
		},
		Pricing: PricingConfig{
			Timeout: 5,
		},
	}
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database.host and database.dbname are required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("kafka.brokers and kafka.topic are required when kafka is enabled"))
	}
	if c.Pricing.URL == "" {
		errs = append(errs, errors.New("pricing.url is required"))
	}
	if c.Booking.AccountID <= 0 {
		errs = append(errs, errors.New("booking.account_id must be positive"))
	}
	if c.Booking.DefaultBufferHours < domain.MinBufferHours || c.Booking.DefaultBufferHours > domain.MaxBufferHours {
		errs = append(errs, fmt.Errorf("booking.default_buffer_hours must be between %d and %d",
			domain.MinBufferHours, domain.MaxBufferHours))
	}
	if _, err := domain.NewCalendar(c.Booking.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("booking.timezone: %w", err))
	}

	return errors.Join(errs...)
}

// GuardConfig лимиты abuse guard
func (a AbuseGuardConfig) GuardConfig() abuseguard.Config {
	return abuseguard.Config{
		RateLimit:       a.RateLimit,
		RateWindow:      time.Duration(a.RateWindowMin) * time.Minute,
		DuplicateLimit:  a.DuplicateLimit,
		DuplicateWindow: time.Duration(a.DuplicateWindowMn) * time.Minute,
		DuplicateBan:    time.Duration(a.DuplicateBanMin) * time.Minute,
		FailureLimit:    a.FailureLimit,
		FailureWindow:   time.Duration(a.FailureWindowMin) * time.Minute,
		FailureBan:      time.Duration(a.FailureBanMin) * time.Minute,
	}
}

// ReconcilerConfig параметры записи и сверки ссылок конфликтов
func (b BookingConfig) ReconcilerConfig() linkage.Config {
	cfg := linkage.DefaultConfig()
	if b.LinkWriteAttempts > 0 {
		cfg.MaxAttempts = b.LinkWriteAttempts
	}
	if b.ReconcileInterval > 0 {
		cfg.Interval = time.Duration(b.ReconcileInterval) * time.Second
	}
	if b.ReconcileBatch > 0 {
		cfg.BatchSize = b.ReconcileBatch
	}
	return cfg
}
