// Package config handles loading and validation of tixmail configuration:
// SMTP settings from the environment and the event file (tixmail.yaml).
package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/NielsdaWheelz/tixmail/internal/errors"
)

// Env holds the delivery settings read from the environment.
// All four of address, password, host and port are required before a
// delivery session can be opened.
type Env struct {
	SenderAddress  string        `env:"EMAIL_ADDRESS,notEmpty"`
	SenderPassword string        `env:"EMAIL_PASSWORD,notEmpty"`
	Host           string        `env:"SMTP_SERVER,notEmpty"`
	Port           int           `env:"SMTP_PORT,notEmpty"`
	TLSPolicy      string        `env:"SMTP_TLS_POLICY" envDefault:"mandatory"`
	Auth           string        `env:"SMTP_AUTH"       envDefault:"auto"`
	Timeout        time.Duration `env:"SMTP_TIMEOUT"    envDefault:"30s"`
}

// RequiredEnvVars lists the variables that must be set and non-empty.
var RequiredEnvVars = []string{"EMAIL_ADDRESS", "EMAIL_PASSWORD", "SMTP_SERVER", "SMTP_PORT"}

// TLS policies accepted in SMTP_TLS_POLICY.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// Auth mechanisms accepted in SMTP_AUTH. AuthAuto picks the strongest
// mechanism the server advertises.
const (
	AuthAuto    = "auto"
	AuthPlain   = "plain"
	AuthLogin   = "login"
	AuthCramMD5 = "cram-md5"
)

// Environ returns the process environment as a map.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

// LoadEnv parses Env from the given variables.
// Returns E_CONFIG_MISSING naming every missing variable, or
// E_CONFIG_INVALID when a value cannot be parsed.
func LoadEnv(vars map[string]string) (Env, error) {
	if missing := MissingEnv(vars); len(missing) > 0 {
		return Env{}, errors.NewWithDetails(
			errors.EConfigMissing,
			"missing required environment: "+strings.Join(missing, ", "),
			map[string]string{
				"missing": strings.Join(missing, ","),
				"hint":    "set the SMTP sender, password, server and port before sending",
			},
		)
	}

	var cfg Env
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Env{}, errors.Wrap(errors.EConfigInvalid, "invalid SMTP environment: "+err.Error(), err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Env{}, errors.NewWithDetails(errors.EConfigInvalid, "SMTP_PORT out of range", map[string]string{
			"port": strconv.Itoa(cfg.Port),
		})
	}
	cfg.TLSPolicy = strings.ToLower(strings.TrimSpace(cfg.TLSPolicy))
	switch cfg.TLSPolicy {
	case TLSMandatory, TLSOpportunistic, TLSNone:
	default:
		return Env{}, errors.NewWithDetails(errors.EConfigInvalid, "SMTP_TLS_POLICY must be mandatory, opportunistic or none", map[string]string{
			"tls_policy": cfg.TLSPolicy,
		})
	}
	cfg.Auth = strings.ToLower(strings.TrimSpace(cfg.Auth))
	switch cfg.Auth {
	case AuthAuto, AuthPlain, AuthLogin, AuthCramMD5:
	default:
		return Env{}, errors.NewWithDetails(errors.EConfigInvalid, "SMTP_AUTH must be auto, plain, login or cram-md5", map[string]string{
			"auth": cfg.Auth,
		})
	}
	if cfg.Timeout <= 0 {
		return Env{}, errors.New(errors.EConfigInvalid, "SMTP_TIMEOUT must be positive")
	}
	return cfg, nil
}

// MissingEnv returns the required variables that are unset or blank, sorted.
func MissingEnv(vars map[string]string) []string {
	var missing []string
	for _, key := range RequiredEnvVars {
		if strings.TrimSpace(vars[key]) == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
