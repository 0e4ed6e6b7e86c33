package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/cookie"
	"github.com/dropDatabas3/authgate/internal/email"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/options"
	"github.com/dropDatabas3/authgate/internal/providers"
	_ "github.com/dropDatabas3/authgate/internal/providers/all"
	"gopkg.in/yaml.v3"
)

// KindEmail es el kind de provider para magic links; el resto sale del catálogo.
const KindEmail = "email"

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// Metrics expone /metrics en el mismo listener.
		Metrics bool `yaml:"metrics"`
		// RateLimit por ip|action|provider sobre los POST. Max 0 = desactivado.
		RateLimit struct {
			Max        int           `yaml:"max"`
			Window     time.Duration `yaml:"window"`
			TrustProxy bool          `yaml:"trust_proxy"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Auth struct {
		// URL pública (ej. https://app.example/api/auth). Vacía → localhost.
		URL          string `yaml:"url"`
		Secret       string `yaml:"secret"`
		StrictSecret bool   `yaml:"strict_secret"`
		Debug        bool   `yaml:"debug"`
		// Audit loguea signin/signout/session en el logger "audit".
		Audit bool `yaml:"audit"`

		UseSecureCookies *bool                 `yaml:"use_secure_cookies"`
		Cookies          cookie.PolicyOverride `yaml:"cookies"`

		Session options.SessionOverride `yaml:"session"`
		JWT     struct {
			Secret string         `yaml:"secret"`
			MaxAge *time.Duration `yaml:"max_age"`
		} `yaml:"jwt"`

		Pages options.Pages `yaml:"pages"`
		Theme options.Theme `yaml:"theme"`
	} `yaml:"auth"`

	Adapter struct {
		// "" | none | memory | redis | pg
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Prefix string `yaml:"prefix"`
	} `yaml:"adapter"`

	SMTP email.SMTPConfig `yaml:"smtp"`

	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig declara un provider. Kind es un nombre del catálogo o "email".
type ProviderConfig struct {
	Kind              string `yaml:"kind"`
	providers.Options `yaml:",inline"`
	// MaxAge del magic link (sólo kind=email).
	MaxAge time.Duration `yaml:"max_age"`
}

// Load lee path (opcional: "" o inexistente = sólo defaults) y aplica env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		if c.IsProd() {
			c.Log.Level = "info"
		} else {
			c.Log.Level = "debug"
		}
	}
	if c.Server.RateLimit.Max > 0 && c.Server.RateLimit.Window <= 0 {
		c.Server.RateLimit.Window = time.Minute
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	// en prod un secret ausente es fatal
	if c.IsProd() {
		c.Auth.StrictSecret = true
	}
}

// IsProd indica APP_ENV=prod|production.
func (c *Config) IsProd() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa el yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvBool("SERVER_METRICS"); ok {
		c.Server.Metrics = v
	}
	if v, ok := getEnvInt("RATE_LIMIT_MAX"); ok {
		c.Server.RateLimit.Max = v
	}

	// AUTH
	if v := options.URLFromEnv(os.Getenv); v != "" {
		c.Auth.URL = v
	}
	if v, ok := getEnvStr("AUTH_SECRET"); ok {
		c.Auth.Secret = v
	}
	if v, ok := getEnvBool("AUTH_AUDIT"); ok {
		c.Auth.Audit = v
	}
	if v, ok := getEnvBool("AUTH_DEBUG"); ok {
		c.Auth.Debug = v
	}
	if v, ok := getEnvBool("AUTH_STRICT_SECRET"); ok {
		c.Auth.StrictSecret = v
	}

	// ADAPTER
	if v, ok := getEnvStr("ADAPTER_DRIVER"); ok {
		c.Adapter.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := getEnvStr("ADAPTER_DSN"); ok {
		c.Adapter.DSN = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLSMode = v
	}
}

var knownDrivers = map[string]bool{"": true, "none": true, "memory": true, "redis": true, "pg": true}

// Validate chequea lo que no depende de construir providers ni abrir conexiones.
func (c *Config) Validate() error {
	if !knownDrivers[c.Adapter.Driver] {
		return apperrors.ErrConfiguration.WithDetailf("unknown adapter driver %q", c.Adapter.Driver)
	}
	if (c.Adapter.Driver == "redis" || c.Adapter.Driver == "pg") && c.Adapter.DSN == "" {
		return apperrors.ErrConfiguration.WithDetailf("adapter %q requires a dsn", c.Adapter.Driver)
	}
	if _, err := options.ParseURL(c.Auth.URL); err != nil {
		return apperrors.ErrConfiguration.WithDetail("invalid auth url").WithCause(err)
	}

	catalog := make(map[string]bool)
	for _, k := range providers.Catalog.Available() {
		catalog[k] = true
	}
	for i, p := range c.Providers {
		switch {
		case p.Kind == KindEmail:
			if c.SMTP.Host == "" || c.SMTP.From == "" {
				return apperrors.ErrMissingProviderField.WithDetailf("providers[%d]: email provider requires smtp.host and smtp.from", i)
			}
		case catalog[p.Kind]:
			if p.ClientID == "" {
				return apperrors.ErrMissingProviderField.WithDetailf("providers[%d] (%s): client_id is required", i, p.Kind)
			}
		default:
			return apperrors.ErrConfiguration.WithDetailf("providers[%d]: unknown kind %q", i, p.Kind)
		}
	}
	return nil
}

// BuildProviders construye los providers declarados. sender se usa para kind=email.
func (c *Config) BuildProviders(sender email.Sender) ([]providers.Config, error) {
	out := make([]providers.Config, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.Kind == KindEmail {
			id := p.ID
			if id == "" {
				id = KindEmail
			}
			name := p.Name
			if name == "" {
				name = "Email"
			}
			out = append(out, providers.Config{
				ID: id, Name: name, Type: providers.TypeEmail,
				Email: &providers.EmailConfig{From: c.SMTP.From, MaxAge: p.MaxAge, Sender: sender},
			})
			continue
		}
		pc, err := providers.Catalog.Build(p.Kind, p.Options)
		if err != nil {
			return nil, apperrors.ErrConfiguration.WithDetail(err.Error()).WithCause(err)
		}
		out = append(out, pc)
	}
	return out, nil
}
