package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Limits   LimitsConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type DatabaseConfig struct {
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           string `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"pluralkit"`
	Password       string `env:"DB_PASSWORD" envDefault:"pluralkit"`
	DBName         string `env:"DB_NAME" envDefault:"members"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`
}

// RedisConfig with an empty Addr disables the account cache.
type RedisConfig struct {
	Addr            string        `env:"REDIS_ADDR"`
	Password        string        `env:"REDIS_PASSWORD"`
	DB              int           `env:"REDIS_DB" envDefault:"0"`
	AccountCacheTTL time.Duration `env:"ACCOUNT_CACHE_TTL" envDefault:"10m"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

type LimitsConfig struct {
	MaxMemberCount int `env:"MAX_MEMBER_COUNT" envDefault:"1000"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Limits.MaxMemberCount <= 0 {
		return nil, fmt.Errorf("MAX_MEMBER_COUNT must be positive, got %d", cfg.Limits.MaxMemberCount)
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
