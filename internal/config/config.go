package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig возвращается, когда значения конфигурации не проходят валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Booking  BookingConfig  `toml:"booking"`
	Pricing  PricingConfig  `toml:"pricing"`
	Relay    RelayConfig    `toml:"relay"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
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
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
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

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
}

// RedisConfig кэш канонических часов работы. Enabled=false отключает кэш
type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	HoursTTLSeconds int    `toml:"hours_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL        string `toml:"url"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

// BookingConfig параметры движка бронирований
type BookingConfig struct {
	// DefaultTimezone используется, если у площадки не задан или не распознан часовой пояс
	DefaultTimezone string `toml:"default_timezone"`
	// PendingTTLSeconds время жизни pending-бронирования до подтверждения оплаты
	PendingTTLSeconds int `toml:"pending_ttl_seconds"`
	// MaxBookingsPerUserPerDay лимит бронирований пользователя на площадке в день (0 - без лимита)
	MaxBookingsPerUserPerDay int `toml:"max_bookings_per_user_per_day"`
	// PolicyServiceURL внешний сервис политик бронирования (пусто - используется локальный лимит)
	PolicyServiceURL     string `toml:"policy_service_url"`
	PolicyServiceTimeout int    `toml:"policy_service_timeout"`
	TxMaxRetries         int    `toml:"tx_max_retries"`
}

// PricingConfig параметры комиссии процессинга и платформы
type PricingConfig struct {
	ProcessingFeePercent    float64 `toml:"processing_fee_percent"`
	ProcessingFeeFixedCents int64   `toml:"processing_fee_fixed_cents"`
	CommissionRate          float64 `toml:"commission_rate"`
}

type RelayConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	BatchSize           int `toml:"batch_size"`
	// MaxAttempts после стольких неудачных публикаций запись больше не выбирается (0 - без ограничения)
	MaxAttempts int `toml:"max_attempts"`
	// MetricsPort порт /metrics процесса релея
	MetricsPort int `toml:"metrics_port"`
}

// Load загружает конфигурацию из TOML-файла и применяет переопределения из окружения (.env поддерживается)
func Load(path string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "seat_reservation_service"},
		Tracing: TracingConfig{SampleRatio: 1},
		Redis:   RedisConfig{HoursTTLSeconds: 60},
		RabbitMQ: RabbitMQConfig{
			Exchange:   "seat_reservations.notifications",
			RoutingKey: "booking.confirmation",
		},
		Booking: BookingConfig{
			DefaultTimezone:      "America/New_York",
			PendingTTLSeconds:    900,
			PolicyServiceTimeout: 3,
			TxMaxRetries:         3,
		},
		Pricing: PricingConfig{
			ProcessingFeePercent:    0.029,
			ProcessingFeeFixedCents: 30,
			CommissionRate:          0.20,
		},
		Relay: RelayConfig{PollIntervalSeconds: 5, BatchSize: 50, MaxAttempts: 10, MetricsPort: 9091},
	}
}

// applyEnv переопределяет секреты и адреса переменными окружения SRS_*
func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "SRS_DB_HOST")
	setInt(&cfg.Database.Port, "SRS_DB_PORT")
	setString(&cfg.Database.User, "SRS_DB_USER")
	setString(&cfg.Database.Password, "SRS_DB_PASSWORD")
	setString(&cfg.Database.DBName, "SRS_DB_NAME")
	setString(&cfg.Redis.Addr, "SRS_REDIS_ADDR")
	setString(&cfg.Redis.Password, "SRS_REDIS_PASSWORD")
	setString(&cfg.RabbitMQ.URL, "SRS_RABBITMQ_URL")
	setString(&cfg.Tracing.Endpoint, "SRS_OTLP_ENDPOINT")
	setString(&cfg.Logs.Level, "SRS_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range: %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	}
	if c.Pricing.ProcessingFeePercent < 0 || c.Pricing.ProcessingFeePercent >= 1 {
		return fmt.Errorf("%w: pricing.processing_fee_percent must be in [0, 1)", ErrInvalidConfig)
	}
	if c.Pricing.ProcessingFeeFixedCents < 0 {
		return fmt.Errorf("%w: pricing.processing_fee_fixed_cents must be non-negative", ErrInvalidConfig)
	}
	if c.Pricing.CommissionRate < 0 || c.Pricing.CommissionRate > 1 {
		return fmt.Errorf("%w: pricing.commission_rate must be in [0, 1]", ErrInvalidConfig)
	}
	if c.Booking.PendingTTLSeconds <= 0 {
		return fmt.Errorf("%w: booking.pending_ttl_seconds must be positive", ErrInvalidConfig)
	}
	if c.Booking.MaxBookingsPerUserPerDay < 0 {
		return fmt.Errorf("%w: booking.max_bookings_per_user_per_day must be non-negative", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	if c.Relay.BatchSize <= 0 {
		return fmt.Errorf("%w: relay.batch_size must be positive", ErrInvalidConfig)
	}
	return nil
}
