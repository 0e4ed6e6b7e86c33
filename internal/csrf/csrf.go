// Package csrf implementa el double-submit CSRF token atado a una cookie.
//
// El valor de la cookie es token + "|" + HMAC(secret, token). El token viaja además
// en el body de los POST; un atacante cross-site no puede leer la cookie y por lo
// tanto no puede armar un body que coincida.
package csrf

import (
	"crypto/subtle"
	"strings"

	"github.com/dropDatabas3/authgate/internal/secret"
	"github.com/dropDatabas3/authgate/internal/security/token"
)

const (
	sep       = "|"
	purpose   = "csrf"
	tokenSize = 32 // bytes de entropía
)

// Input es la entrada de Create.
type Input struct {
	Secret      secret.Material
	CookieValue string
	IsPost      bool
	// BodyValue es el token enviado en el body (POST) o query (GET).
	BodyValue string
}

// Result es la salida de Create.
type Result struct {
	Token string
	// Cookie no vacío = hay que emitir la cookie CSRF con este valor.
	Cookie   string
	Verified bool
}

// Create resuelve el token del request. Cookies ausentes, malformadas o
// adulteradas generan un token nuevo con Verified=false; sólo falla si no hay
// entropía disponible.
func Create(in Input) (Result, error) {
	if tok, ok := Parse(in.Secret, in.CookieValue); ok {
		verified := in.IsPost && in.BodyValue != "" &&
			subtle.ConstantTimeCompare([]byte(in.BodyValue), []byte(tok)) == 1
		return Result{Token: tok, Verified: verified}, nil
	}

	tok, err := token.GenerateHex(tokenSize)
	if err != nil {
		return Result{}, err
	}
	return Result{Token: tok, Cookie: CookieValue(in.Secret, tok)}, nil
}

// CookieValue arma el valor de cookie para tok.
func CookieValue(s secret.Material, tok string) string {
	return tok + sep + s.Sum(purpose, tok)
}

// Parse valida un valor de cookie y devuelve su token.
func Parse(s secret.Material, cookieValue string) (string, bool) {
	tok, hash, found := strings.Cut(cookieValue, sep)
	if !found || tok == "" || hash == "" {
		return "", false
	}
	if !s.Verify(purpose, tok, hash) {
		return "", false
	}
	return tok, true
}
