package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	S3        S3Config
	Interview BackendConfig `envPrefix:"INTERVIEW_ANALYSIS_"`
	Posture   BackendConfig `envPrefix:"POSTURE_ANALYSIS_"`
	Analysis  AnalysisConfig
	Tips      TipsConfig
	Health    HealthConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5m"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// Максимальный размер загружаемого видео
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" envDefault:"524288000"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"aceinterview"`
	Password        string        `env:"DB_PASSWORD" envDefault:"secret"`
	Name            string        `env:"DB_NAME" envDefault:"aceinterview"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int           `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type S3Config struct {
	Endpoint  string `env:"S3_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string `env:"S3_BUCKET" envDefault:"interview-videos"`
	UseSSL    bool   `env:"S3_USE_SSL" envDefault:"false"`
}

// BackendConfig адрес внешнего сервиса анализа.
// Префикс переменных задаётся в Config (INTERVIEW_ANALYSIS_ / POSTURE_ANALYSIS_).
type BackendConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000"`
}

type AnalysisConfig struct {
	PollInterval   time.Duration `env:"ANALYSIS_POLL_INTERVAL" envDefault:"2s"`
	RequestTimeout time.Duration `env:"ANALYSIS_REQUEST_TIMEOUT" envDefault:"60s"`
	// 0: опрашивать без ограничения по времени
	PollDeadline time.Duration `env:"ANALYSIS_POLL_DEADLINE" envDefault:"30m"`
	JobTimeout   time.Duration `env:"ANALYSIS_JOB_TIMEOUT" envDefault:"1h"`
	Concurrency  int           `env:"ANALYSIS_WORKER_CONCURRENCY" envDefault:"4"`
}

type TipsConfig struct {
	CacheTTL time.Duration `env:"TIPS_CACHE_TTL" envDefault:"24h"`
}

type HealthConfig struct {
	Interval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"30s"`
}

type MetricsConfig struct {
	// Порт отдельного metrics-сервера воркера
	Port string `env:"METRICS_PORT" envDefault:"9091"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// json или console
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.PollInterval <= 0 {
		return fmt.Errorf("invalid config: ANALYSIS_POLL_INTERVAL must be positive")
	}
	if c.Analysis.RequestTimeout <= 0 {
		return fmt.Errorf("invalid config: ANALYSIS_REQUEST_TIMEOUT must be positive")
	}
	if c.Analysis.PollDeadline < 0 {
		return fmt.Errorf("invalid config: ANALYSIS_POLL_DEADLINE cannot be negative")
	}
	if c.Interview.BaseURL == "" || c.Posture.BaseURL == "" {
		return fmt.Errorf("invalid config: analysis service base URLs are required")
	}
	return nil
}
