// Package cookie define la política de cookies de authgate: nombres y atributos por
// defecto según HTTPS, merge campo a campo con overrides del usuario y las
// directivas Set-Cookie que emite cada request.
package cookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"go.uber.org/zap"
)

const namePrefix = "authgate."

// Options son los atributos de una cookie.
type Options struct {
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	Path     string
	Domain   string
	// MaxAge en segundos; 0 = cookie de sesión del browser, <0 = borrar.
	MaxAge  int
	Expires time.Time
}

// Spec es una cookie con nombre y atributos.
type Spec struct {
	Name    string
	Options Options
}

// Policy es la tabla de cookies que maneja authgate.
type Policy struct {
	SessionToken     Spec
	CallbackURL      Spec
	CSRFToken        Spec
	PKCECodeVerifier Spec
	State            Spec
}

// Defaults devuelve la política por defecto. Con useSecure los nombres usan los
// prefijos __Secure- / __Host- y todas las cookies son Secure.
func Defaults(useSecure bool) Policy {
	prefix := ""
	hostPrefix := ""
	if useSecure {
		prefix = "__Secure-"
		hostPrefix = "__Host-"
	}
	base := Options{
		HTTPOnly: true,
		Secure:   useSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	short := base
	short.MaxAge = int((15 * time.Minute).Seconds())

	return Policy{
		SessionToken:     Spec{Name: prefix + namePrefix + "session-token", Options: base},
		CallbackURL:      Spec{Name: prefix + namePrefix + "callback-url", Options: base},
		CSRFToken:        Spec{Name: hostPrefix + namePrefix + "csrf-token", Options: base},
		PKCECodeVerifier: Spec{Name: prefix + namePrefix + "pkce.code_verifier", Options: short},
		State:            Spec{Name: prefix + namePrefix + "state", Options: short},
	}
}

// ParseSameSite convierte el string de config a http.SameSite.
// Acepta: "", "lax", "strict", "none" (case-insensitive). Default: Lax.
func ParseSameSite(log *zap.Logger, s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		logger.OrNop(log).Warn("cookie: SameSite desconocido, usando Lax", logger.String("same_site", s))
		return http.SameSiteLaxMode
	}
}

// Names devuelve los nombres de todas las cookies de la política.
func (p Policy) Names() []string {
	return []string{
		p.SessionToken.Name,
		p.CallbackURL.Name,
		p.CSRFToken.Name,
		p.PKCECodeVerifier.Name,
		p.State.Name,
	}
}
