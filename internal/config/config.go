package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string         `mapstructure:"http_addr"`
	CORSOrigins []string       `mapstructure:"cors_origins"`
	Database    DatabaseConfig `mapstructure:"database"`
	JWT         JWTConfig      `mapstructure:"jwt"`
	Log         LogConfig      `mapstructure:"log"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Realtime    RealtimeConfig `mapstructure:"realtime"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// RedisConfig enables the announcement feed cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	FeedTTL  time.Duration `mapstructure:"feed_ttl"`
}

// RealtimeConfig switches announcement fan-out to Postgres NOTIFY so that
// every server instance sees every announcement.
type RealtimeConfig struct {
	PGNotify bool   `mapstructure:"pg_notify"`
	Channel  string `mapstructure:"channel"`
}

var envBindings = map[string]string{
	"http_addr":          "HTTP_ADDR",
	"cors_origins":       "CORS_ORIGINS",
	"database.host":      "DB_HOST",
	"database.port":      "DB_PORT",
	"database.user":      "DB_USER",
	"database.password":  "DB_PASSWORD",
	"database.name":      "DB_NAME",
	"database.sslmode":   "DB_SSLMODE",
	"database.timezone":  "DB_TIMEZONE",
	"jwt.secret":         "JWT_SECRET",
	"jwt.ttl":            "JWT_TTL",
	"log.level":          "LOG_LEVEL",
	"log.file":           "LOG_FILE",
	"redis.addr":         "REDIS_ADDR",
	"redis.password":     "REDIS_PASSWORD",
	"redis.db":           "REDIS_DB",
	"redis.feed_ttl":     "FEED_CACHE_TTL",
	"realtime.pg_notify": "PG_NOTIFY",
	"realtime.channel":   "PG_NOTIFY_CHANNEL",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "rideconnect")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("jwt.secret", "supersecret")
	v.SetDefault("jwt.ttl", 72*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "./logs/app.log")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.feed_ttl", time.Minute)
	v.SetDefault("realtime.pg_notify", false)
	v.SetDefault("realtime.channel", "announcements")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.JWT.Secret == "supersecret" {
		logrus.Warn("JWT_SECRET not set, using the development fallback")
	}
	return cfg, nil
}

// DSN builds a key/value connection string understood by both pgx and lib/pq.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}
