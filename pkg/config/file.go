package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. KTV_POSTGRES_HOST.
const EnvPrefix = "KTV"

// FileLoader loads configuration from YAML files and environment variables.
type FileLoader struct {
	configPath string
	validator  *Validator
}

// NewFileLoader creates a new file loader.
func NewFileLoader(configPath string) *FileLoader {
	return &FileLoader{
		configPath: configPath,
		validator:  NewValidator(),
	}
}

// Load loads configuration from file and environment variables.
func (l *FileLoader) Load() (*Config, error) {
	v := viper.New()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional if all required values are in env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.database", "ktv")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 25)
	v.SetDefault("postgres.min_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("notify.driver", "redis")
	v.SetDefault("notify.channel_prefix", "ktv:changes")

	// Keys without a useful default are still registered so AutomaticEnv
	// can populate them during Unmarshal.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("jwt.issuer", "yangbei-ktv")
	v.SetDefault("jwt.expiry", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("admin.name", "管理員")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.ip_rate", 20)
	v.SetDefault("rate_limit.ip_burst", 40)
	v.SetDefault("rate_limit.user_rate", 5)
	v.SetDefault("rate_limit.user_burst", 10)

	v.SetDefault("cron.dedupe_users", "0 3 * * *")
	v.SetDefault("cron.resync", "@every 1m")
}
