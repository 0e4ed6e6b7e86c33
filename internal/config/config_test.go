package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  app_env: dev
server:
  addr: ":9090"
auth:
  url: https://app.example/api/auth
  secret: from-yaml
  session:
    max_age: 168h
  cookies:
    session_token:
      options:
        domain: example.com
  pages:
    signin: /login
adapter:
  driver: memory
smtp:
  host: smtp.example
  from: noreply@example
providers:
  - kind: google
    client_id: gid
    client_secret: gsecret
  - kind: github
    id: gh
    client_id: ghid
    scopes: [read:user]
  - kind: email
    max_age: 10m
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "LOG_LEVEL", "SERVER_ADDR", "AUTH_URL", "VERCEL_URL", "AUTH_SECRET", "AUTH_DEBUG", "ADAPTER_DRIVER", "ADAPTER_DSN", "AUTH_STRICT_SECRET", "RATE_LIMIT_MAX", "AUTH_AUDIT"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	c, err := Load(writeFile(t, sample))
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "https://app.example/api/auth", c.Auth.URL)
	require.NotNil(t, c.Auth.Session.MaxAge)
	assert.Equal(t, 168*time.Hour, *c.Auth.Session.MaxAge)
	require.NotNil(t, c.Auth.Cookies.SessionToken)
	assert.Equal(t, "example.com", *c.Auth.Cookies.SessionToken.Options.Domain)
	assert.Equal(t, "/login", c.Auth.Pages.SignIn)
	assert.Equal(t, 587, c.SMTP.Port)
	require.Len(t, c.Providers, 3)
	assert.Equal(t, "gh", c.Providers[1].ID)
	assert.Equal(t, 10*time.Minute, c.Providers[2].MaxAge)
	require.NoError(t, c.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("VERCEL_URL", "preview.vercel.app")
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("AUTH_DEBUG", "true")

	c, err := Load(writeFile(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Auth.Secret)
	assert.Equal(t, "preview.vercel.app", c.Auth.URL)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.True(t, c.Auth.Debug)

	t.Setenv("AUTH_URL", "https://auth.example")
	c, err = Load(writeFile(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example", c.Auth.URL, "AUTH_URL wins over VERCEL_URL")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Empty(t, c.Adapter.Driver)
	require.NoError(t, c.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "server: [unclosed"))
	require.Error(t, err)
}

func TestLoad_ProdForcesStrictSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "PROD")
	c, err := Load("")
	require.NoError(t, err)
	assert.True(t, c.IsProd())
	assert.True(t, c.Auth.StrictSecret)
	assert.Equal(t, "info", c.Log.Level)
}

func TestValidate_Errors(t *testing.T) {
	clearEnv(t)
	cases := map[string]func(c *Config){
		"unknown driver":   func(c *Config) { c.Adapter.Driver = "mongo" },
		"redis needs dsn":  func(c *Config) { c.Adapter.Driver = "redis" },
		"bad url":          func(c *Config) { c.Auth.URL = "https://" },
		"unknown kind":     func(c *Config) { c.Providers = []ProviderConfig{{Kind: "myspace"}} },
		"missing clientid": func(c *Config) { c.Providers = []ProviderConfig{{Kind: "google"}} },
		"email needs smtp": func(c *Config) { c.Providers = []ProviderConfig{{Kind: KindEmail}} },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Load("")
			require.NoError(t, err)
			mut(c)
			err = c.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsConfiguration(err))
		})
	}
}

type nopSender struct{}

func (nopSender) Send(string, string, string, string) error { return nil }

func TestBuildProviders(t *testing.T) {
	clearEnv(t)
	c, err := Load(writeFile(t, sample))
	require.NoError(t, err)

	ps, err := c.BuildProviders(nopSender{})
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, "google", ps[0].ID)
	assert.Equal(t, "gh", ps[1].ID)
	assert.Equal(t, []string{"read:user"}, ps[1].OAuth.Scopes)
	assert.Equal(t, "email", ps[2].ID)
	assert.Equal(t, providers.TypeEmail, ps[2].Type)
	assert.Equal(t, 10*time.Minute, ps[2].Email.MaxAge)
	assert.Equal(t, "noreply@example", ps[2].Email.From)

	_, err = providers.Parse(ps, "https://app.example/api/auth", "")
	require.NoError(t, err)
}

func TestLoad_RateLimitAndAudit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("AUTH_AUDIT", "true")
	c, err := Load(writeFile(t, "server:\n  rate_limit:\n    trust_proxy: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, c.Server.RateLimit.Max)
	assert.Equal(t, time.Minute, c.Server.RateLimit.Window, "window defaults when a limit is set")
	assert.True(t, c.Server.RateLimit.TrustProxy)
	assert.True(t, c.Auth.Audit)
}
