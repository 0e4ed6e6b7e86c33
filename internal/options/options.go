// Package options convierte la configuración estática de la aplicación y los datos
// de un request en un snapshot Internal inmutable, más la lista ordenada de cookies
// que la respuesta tiene que emitir.
//
// Precedencia: defaults → UserOptions → valores calculados del request. BaseURL,
// BasePath, Base, Action y Provider siempre salen del request.
package options

import (
	"time"

	"github.com/dropDatabas3/authgate/internal/adapter"
	"github.com/dropDatabas3/authgate/internal/callbacks"
	"github.com/dropDatabas3/authgate/internal/cookie"
	"github.com/dropDatabas3/authgate/internal/events"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/secret"
	"go.uber.org/zap"
)

// Action es la acción de autenticación pedida.
type Action string

const (
	ActionProviders     Action = "providers"
	ActionSession       Action = "session"
	ActionCSRF          Action = "csrf"
	ActionSignIn        Action = "signin"
	ActionSignOut       Action = "signout"
	ActionCallback      Action = "callback"
	ActionVerifyRequest Action = "verify-request"
	ActionError         Action = "error"
)

var actions = map[Action]struct{}{
	ActionProviders: {}, ActionSession: {}, ActionCSRF: {}, ActionSignIn: {},
	ActionSignOut: {}, ActionCallback: {}, ActionVerifyRequest: {}, ActionError: {},
}

// ParseAction valida s.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actions[a]
	return a, ok
}

const (
	DefaultSessionMaxAge    = 30 * 24 * time.Hour
	DefaultSessionUpdateAge = 24 * time.Hour
)

// Pages son rutas propias de la aplicación que reemplazan las respuestas por defecto.
type Pages struct {
	SignIn        string `yaml:"signin"`
	SignOut       string `yaml:"signout"`
	Error         string `yaml:"error"`
	VerifyRequest string `yaml:"verify_request"`
	NewUser       string `yaml:"new_user"`
}

// Theme se expone tal cual a las páginas de la aplicación.
type Theme struct {
	ColorScheme string `yaml:"color_scheme" json:"colorScheme"`
	Logo        string `yaml:"logo" json:"logo"`
	BrandColor  string `yaml:"brand_color" json:"brandColor"`
}

// SessionOptions es la política de sesión resuelta.
type SessionOptions struct {
	// JWT = sesión stateless. Siempre true sin adapter.
	JWT       bool
	MaxAge    time.Duration
	UpdateAge time.Duration
}

// SessionOverride es el override parcial de sesión.
type SessionOverride struct {
	JWT       *bool          `yaml:"jwt"`
	MaxAge    *time.Duration `yaml:"max_age"`
	UpdateAge *time.Duration `yaml:"update_age"`
}

// UserOptions es la configuración estática de la aplicación. Se comparte entre
// requests y Init nunca la modifica.
type UserOptions struct {
	Providers []providers.Config

	Secret string
	// SecretFallback reemplaza al default derivado de la URL cuando no hay Secret.
	SecretFallback string
	// StrictSecret rechaza arrancar sin Secret.
	StrictSecret bool

	Session SessionOverride
	JWT     jwt.Override

	Pages Pages
	Theme Theme
	Debug bool

	// UseSecureCookies nil = según el scheme de la URL.
	UseSecureCookies *bool
	Cookies          cookie.PolicyOverride

	Adapter   adapter.Adapter
	Events    events.Handler
	Callbacks callbacks.Table

	Logger  *zap.Logger
	Metrics *metrics.Recorder

	// BaseURL se acepta pero se ignora: la URL siempre sale del entorno/request.
	BaseURL string
}

// Internal es el snapshot resuelto de un request. No se modifica después de Init.
type Internal struct {
	Debug bool
	Pages Pages
	Theme Theme

	BaseURL  string
	BasePath string
	Base     string
	Action   Action
	// Provider es nil si el request no nombra un provider configurado.
	Provider  *providers.Descriptor
	Providers []providers.Descriptor

	Cookies cookie.Policy
	Secret  secret.Material
	Session SessionOptions
	JWT     jwt.Options

	// Events y Adapter ya vienen decorados; Adapter es nil en modo stateless.
	Events    events.Handler
	Adapter   adapter.Adapter
	Callbacks callbacks.Table

	Logger  *zap.Logger
	Metrics *metrics.Recorder

	CallbackURL       string
	CSRFToken         string
	CSRFTokenVerified bool
}

// Page devuelve la página configurada para a, o "" si no hay override.
func (o Internal) Page(a Action) string {
	switch a {
	case ActionSignIn:
		return o.Pages.SignIn
	case ActionSignOut:
		return o.Pages.SignOut
	case ActionError:
		return o.Pages.Error
	case ActionVerifyRequest:
		return o.Pages.VerifyRequest
	}
	return ""
}
