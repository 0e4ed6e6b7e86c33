// Package app arma el servicio a partir de la configuración: logger, métricas,
// adapter de sesiones, SMTP, providers y router HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/authgate/internal/adapter"
	_ "github.com/dropDatabas3/authgate/internal/adapter/memory"
	_ "github.com/dropDatabas3/authgate/internal/adapter/pg"
	_ "github.com/dropDatabas3/authgate/internal/adapter/redis"
	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/email"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	authhttp "github.com/dropDatabas3/authgate/internal/http"
	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/options"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/rate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App es la aplicación cableada.
type App struct {
	Handler http.Handler
	Options *options.UserOptions
	Addr    string

	log     *zap.Logger
	cleanup func() error
}

// New cablea la aplicación. Close libera el adapter.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 1. Métricas
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	// 2. Adapter (nil = sesiones stateless)
	ad, cleanup, err := adapter.Open(ctx, adapter.Config{
		Driver: cfg.Adapter.Driver,
		DSN:    cfg.Adapter.DSN,
		Prefix: cfg.Adapter.Prefix,
	})
	if err != nil {
		return nil, apperrors.ErrConfiguration.WithDetail("adapter open failed").WithCause(err)
	}

	// 3. Providers
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP, log.Named("smtp"))
	}
	provs, err := cfg.BuildProviders(sender)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	if err := checkEmailStore(provs, ad); err != nil {
		_ = cleanup()
		return nil, err
	}

	u := &options.UserOptions{
		Providers:        provs,
		Secret:           cfg.Auth.Secret,
		StrictSecret:     cfg.Auth.StrictSecret,
		Session:          cfg.Auth.Session,
		JWT:              jwt.Override{Secret: cfg.Auth.JWT.Secret, MaxAge: cfg.Auth.JWT.MaxAge},
		Pages:            cfg.Auth.Pages,
		Theme:            cfg.Auth.Theme,
		Debug:            cfg.Auth.Debug,
		UseSecureCookies: cfg.Auth.UseSecureCookies,
		Cookies:          cfg.Auth.Cookies,
		Adapter:          ad,
		Logger:           log.Named("auth"),
		Metrics:          rec,
	}
	if cfg.Auth.Audit {
		u.Events = audit.New(log)
	}
	if err := options.Validate(u, cfg.Auth.URL); err != nil {
		_ = cleanup()
		return nil, err
	}

	limiter, closeLimiter, err := newLimiter(cfg)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	cleanup = chainCleanup(cleanup, closeLimiter)

	base, _ := options.ParseURL(cfg.Auth.URL)
	deps := authhttp.RouterDeps{
		Handler:  authhttp.NewHandler(u, cfg.Auth.URL, log.Named("auth")),
		BasePath: base.BasePath,
		Logger:   log.Named("http"),
		Metrics:  rec,
		RateLimit: mw.RateLimitConfig{
			Limiter:    limiter,
			TrustProxy: cfg.Server.RateLimit.TrustProxy,
		},
	}
	if cfg.Server.Metrics {
		deps.Gatherer = reg
	}

	log.Info("app wired",
		logger.BaseURL(base.Base()),
		logger.String("adapter", driverName(cfg.Adapter.Driver)),
		logger.Int("providers", len(provs)),
	)
	return &App{
		Handler: authhttp.NewRouter(deps),
		Options: u,
		Addr:    cfg.Server.Addr,
		log:     log,
		cleanup: cleanup,
	}, nil
}

// Run sirve hasta que ctx se cancele.
func (a *App) Run(ctx context.Context) error {
	return authhttp.Serve(ctx, a.Addr, a.Handler, a.log)
}

// Close libera las conexiones del adapter.
func (a *App) Close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

// checkEmailStore: los magic links necesitan un adapter que guarde verification tokens.
func checkEmailStore(provs []providers.Config, ad adapter.Adapter) error {
	for _, p := range provs {
		if p.Type != providers.TypeEmail {
			continue
		}
		if _, ok := ad.(adapter.VerificationStore); !ok {
			return apperrors.ErrConfiguration.WithDetailf("provider %q requires an adapter with verification token support", p.ID)
		}
	}
	return nil
}

// newLimiter: con adapter redis el contador se comparte entre réplicas; si no, en memoria.
func newLimiter(cfg *config.Config) (rate.Limiter, func() error, error) {
	rl := cfg.Server.RateLimit
	if rl.Max <= 0 {
		return nil, nil, nil
	}
	p := rate.Policy{Max: int64(rl.Max), Window: rl.Window}
	if cfg.Adapter.Driver != "redis" {
		return rate.NewMemoryLimiter(p), nil, nil
	}
	opts, err := goredis.ParseURL(cfg.Adapter.DSN)
	if err != nil {
		return nil, nil, apperrors.ErrConfiguration.WithDetail("invalid redis dsn for rate limiter").WithCause(err)
	}
	client := goredis.NewClient(opts)
	return rate.NewRedisLimiter(client, cfg.Adapter.Prefix+"rl:", p), client.Close, nil
}

func chainCleanup(fns ...func() error) func() error {
	return func() error {
		var errs []error
		for _, f := range fns {
			if f != nil {
				errs = append(errs, f())
			}
		}
		return errors.Join(errs...)
	}
}

func driverName(d string) string {
	if d == "" {
		return "none"
	}
	return d
}
