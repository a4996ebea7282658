// Package config provides configuration management for the KTV request service.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cron      CronConfig      `mapstructure:"cron"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// StorageConfig selects the store implementation.
type StorageConfig struct {
	// postgres or memory (memory is for local demos, data is lost on restart)
	Driver string `mapstructure:"driver" validate:"oneof=postgres memory"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns" validate:"gte=0"`
	MinConns        int32         `mapstructure:"min_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the libpq style connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=" + p.SSLMode,
	}
	return u.String()
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"gte=0"`
	PoolSize     int           `mapstructure:"pool_size" validate:"gte=0"`
	MinIdleConns int           `mapstructure:"min_idle_conns" validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// NotifyConfig configures the change notification channel.
type NotifyConfig struct {
	// redis or memory
	Driver        string `mapstructure:"driver" validate:"oneof=redis memory"`
	ChannelPrefix string `mapstructure:"channel_prefix" validate:"required"`
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret string        `mapstructure:"secret" validate:"required,min=16"`
	Issuer string        `mapstructure:"issuer" validate:"required"`
	Expiry time.Duration `mapstructure:"expiry" validate:"gt=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error fatal"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Caller bool   `mapstructure:"caller"`
}

// AdminConfig is the account seeded at startup when missing.
type AdminConfig struct {
	Email    string `mapstructure:"email" validate:"omitempty,email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// RateLimitConfig holds per-IP and per-user token bucket settings.
type RateLimitConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	IPRate    float64 `mapstructure:"ip_rate" validate:"gte=0"`
	IPBurst   int     `mapstructure:"ip_burst" validate:"gte=0"`
	UserRate  float64 `mapstructure:"user_rate" validate:"gte=0"`
	UserBurst int     `mapstructure:"user_burst" validate:"gte=0"`
}

// CronConfig holds schedules for maintenance jobs.
type CronConfig struct {
	DedupeUsers string `mapstructure:"dedupe_users" validate:"required,cron"`
	Resync      string `mapstructure:"resync" validate:"required,cron"`
}
