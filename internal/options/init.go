package options

import (
	"context"
	"os"
	"strings"

	"github.com/dropDatabas3/authgate/internal/adapter"
	"github.com/dropDatabas3/authgate/internal/callbacks"
	"github.com/dropDatabas3/authgate/internal/callbackurl"
	"github.com/dropDatabas3/authgate/internal/cookie"
	"github.com/dropDatabas3/authgate/internal/csrf"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/events"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/secret"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Params son los datos de un request ya extraídos por la capa HTTP.
type Params struct {
	Options *UserOptions
	// URL configurada; vacía → variables de entorno (EnvURLKeys).
	URL        string
	Action     Action
	ProviderID string
	// CallbackURL viene del query o body del request.
	CallbackURL string
	// CSRFToken viene del body en POST y del query en GET.
	CSRFToken string
	IsPost    bool
	Cookies   map[string]string
}

// Result es la salida de Init. Cookies sigue el orden CSRF, callback URL.
type Result struct {
	Options Internal
	Cookies []cookie.Directive
}

func (p Params) userOptions() *UserOptions {
	if p.Options == nil {
		return &UserOptions{}
	}
	return p.Options
}

func (p Params) url() (URL, error) {
	raw := p.URL
	if raw == "" {
		raw = URLFromEnv(os.Getenv)
	}
	u, err := ParseURL(raw)
	if err != nil {
		return URL{}, apperrors.ErrConfiguration.WithDetail("invalid auth url").WithCause(err)
	}
	return u, nil
}

// Init resuelve las opciones del request. Sólo devuelve errores de configuración
// (o falta de entropía): anomalías del request degradan a defaults seguros.
func Init(ctx context.Context, p Params) (*Result, error) {
	u := p.userOptions()
	log := logger.Debug(logger.OrNop(u.Logger), u.Debug).With(
		logger.Action(string(p.Action)),
		logger.ProviderID(p.ProviderID),
	)

	base, err := p.url()
	if err != nil {
		return nil, err
	}

	// secret, providers y cookie policy son puros e independientes.
	var (
		material secret.Material
		resolved providers.Resolved
		policy   cookie.Policy
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		material, err = deriveSecret(log, u, base)
		return err
	})
	g.Go(func() (err error) {
		resolved, err = providers.Parse(u.Providers, base.Base(), p.ProviderID)
		return err
	})
	g.Go(func() error {
		policy = cookiePolicy(log, u, base)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	session := resolveSession(log, u)
	cbs := callbacks.Defaults().Merge(u.Callbacks)
	opts := Internal{
		Debug:     u.Debug,
		Pages:     u.Pages,
		Theme:     resolveTheme(u.Theme),
		BaseURL:   base.BaseURL,
		BasePath:  base.BasePath,
		Base:      base.Base(),
		Action:    p.Action,
		Provider:  resolved.Provider,
		Providers: resolved.Providers,
		Cookies:   policy,
		Secret:    material,
		Session:   session,
		JWT: jwt.Options{
			Secret: material,
			MaxAge: session.MaxAge,
			Encode: jwt.Encode,
			Decode: jwt.Decode,
		}.Merge(u.JWT),
		Events:    events.Safe(u.Events, log, u.Metrics),
		Adapter:   adapter.Safe(u.Adapter, log, u.Metrics),
		Callbacks: cbs,
		Logger:    log,
		Metrics:   u.Metrics,
	}

	var directives []cookie.Directive

	tok, err := csrf.Create(csrf.Input{
		Secret:      material,
		CookieValue: p.Cookies[policy.CSRFToken.Name],
		IsPost:      p.IsPost,
		BodyValue:   p.CSRFToken,
	})
	if err != nil {
		return nil, apperrors.ErrInternalServerError.WithDetail("csrf token generation failed").WithCause(err)
	}
	opts.CSRFToken = tok.Token
	opts.CSRFTokenVerified = tok.Verified
	if tok.Cookie != "" {
		directives = append(directives, policy.CSRFToken.Issue(tok.Cookie))
	}
	u.Metrics.CSRF(csrfOutcome(tok))

	cb, err := callbackurl.Create(ctx, callbackurl.Input{
		BaseURL:     base.BaseURL,
		CookieValue: p.Cookies[policy.CallbackURL.Name],
		ParamValue:  p.CallbackURL,
		Redirect:    cbs.Redirect,
		Log:         log,
	})
	if err != nil {
		return nil, err
	}
	opts.CallbackURL = cb.URL
	if cb.Cookie != "" {
		directives = append(directives, policy.CallbackURL.Issue(cb.Cookie))
	}
	u.Metrics.CallbackURL(string(cb.Outcome))

	return &Result{Options: opts, Cookies: directives}, nil
}

func csrfOutcome(r csrf.Result) string {
	switch {
	case r.Verified:
		return metrics.CSRFVerified
	case r.Cookie != "":
		return metrics.CSRFIssued
	default:
		return metrics.CSRFReused
	}
}

func deriveSecret(log *zap.Logger, u *UserOptions, base URL) (secret.Material, error) {
	return secret.Derive(log, secret.Input{
		Secret:   u.Secret,
		BaseURL:  base.BaseURL,
		BasePath: base.BasePath,
		Fallback: u.SecretFallback,
		Strict:   u.StrictSecret,
	})
}

func cookiePolicy(log *zap.Logger, u *UserOptions, base URL) cookie.Policy {
	secure := strings.HasPrefix(base.BaseURL, "https://")
	if u.UseSecureCookies != nil {
		secure = *u.UseSecureCookies
	}
	return cookie.Defaults(secure).Merge(log, u.Cookies)
}

// resolveSession aplica el override de sesión. Sin adapter no hay store donde
// buscar una sesión, así que jwt=false se ignora.
func resolveSession(log *zap.Logger, u *UserOptions) SessionOptions {
	s := SessionOptions{
		JWT:       u.Adapter == nil,
		MaxAge:    DefaultSessionMaxAge,
		UpdateAge: DefaultSessionUpdateAge,
	}
	o := u.Session
	if o.JWT != nil {
		if u.Adapter == nil && !*o.JWT {
			log.Warn("session.jwt=false ignored: no adapter configured, sessions stay stateless")
		} else {
			s.JWT = *o.JWT
		}
	}
	if o.MaxAge != nil && *o.MaxAge > 0 {
		s.MaxAge = *o.MaxAge
	}
	if o.UpdateAge != nil && *o.UpdateAge >= 0 {
		s.UpdateAge = *o.UpdateAge
	}
	return s
}

func resolveTheme(t Theme) Theme {
	if t.ColorScheme == "" {
		t.ColorScheme = "auto"
	}
	return t
}

// Validate es el chequeo de arranque: URL, providers, secret estricto y overrides
// de sesión. Devuelve el primer error de configuración.
func Validate(u *UserOptions, rawURL string) error {
	if u == nil {
		u = &UserOptions{}
	}
	base, err := Params{URL: rawURL}.url()
	if err != nil {
		return err
	}
	if _, err := providers.Parse(u.Providers, base.Base(), ""); err != nil {
		return err
	}
	if _, err := deriveSecret(zap.NewNop(), u, base); err != nil {
		return err
	}
	if d := u.Session.MaxAge; d != nil && *d <= 0 {
		return apperrors.ErrConfiguration.WithDetail("session.max_age must be positive")
	}
	if d := u.Session.UpdateAge; d != nil && *d < 0 {
		return apperrors.ErrConfiguration.WithDetail("session.update_age must not be negative")
	}
	return nil
}
