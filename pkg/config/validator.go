package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// Validator checks a loaded Config. Errors name fields by their YAML key,
// e.g. "postgres.host: required".
type Validator struct {
	v *validator.Validate
}

// NewValidator registers the config-specific rules.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	// ParseStandard accepts five-field specs and descriptors like "@every 1m".
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(driverRules, Config{})
	return &Validator{v: v}
}

// driverRules requires connection settings only for the selected drivers.
func driverRules(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	if cfg.Storage.Driver == "postgres" {
		pg := cfg.Postgres
		requireField(sl, pg.Host, "postgres.host")
		requireField(sl, pg.User, "postgres.user")
		requireField(sl, pg.Database, "postgres.database")
		if pg.Port <= 0 || pg.Port > 65535 {
			sl.ReportError(pg.Port, "postgres.port", "Port", "port", "")
		}
		if pg.MaxConns > 0 && pg.MinConns > pg.MaxConns {
			sl.ReportError(pg.MinConns, "postgres.min_conns", "MinConns", "ltefield", "max_conns")
		}
	}

	if cfg.Notify.Driver == "redis" {
		requireField(sl, cfg.Redis.Host, "redis.host")
		if cfg.Redis.Port <= 0 || cfg.Redis.Port > 65535 {
			sl.ReportError(cfg.Redis.Port, "redis.port", "Port", "port", "")
		}
	}

	if cfg.Admin.Email != "" && len(cfg.Admin.Password) < 6 {
		sl.ReportError(cfg.Admin.Password, "admin.password", "Password", "min", "6")
	}
}

func requireField(sl validator.StructLevel, value, name string) {
	if value == "" {
		sl.ReportError(value, name, name, "required", "")
	}
}

// Validate checks tags and driver rules and joins every violation.
func (v *Validator) Validate(cfg *Config) error {
	err := v.v.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
