package options

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultURL se usa cuando no hay URL configurada en el entorno.
	DefaultURL = "http://localhost:3000/api/auth"
	// DefaultBasePath es el path de montaje cuando la URL no trae uno.
	DefaultBasePath = "/api/auth"
)

// EnvURLKeys es el orden de las variables de entorno consultadas para la URL.
var EnvURLKeys = []string{"AUTH_URL", "VERCEL_URL"}

// URL es la URL pública del servicio de autenticación.
type URL struct {
	// BaseURL es el origen (scheme://host[:port]).
	BaseURL string
	// BasePath nunca termina en "/".
	BasePath string
}

// Base devuelve BaseURL+BasePath.
func (u URL) Base() string { return u.BaseURL + u.BasePath }

// URLFromEnv devuelve el primer valor no vacío de EnvURLKeys.
func URLFromEnv(getenv func(string) string) string {
	for _, k := range EnvURLKeys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// ParseURL toma el primer candidato no vacío (o DefaultURL). Sin scheme se asume
// https (VERCEL_URL viene sin scheme); sin path se usa DefaultBasePath.
func ParseURL(candidates ...string) (URL, error) {
	raw := DefaultURL
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			raw = c
			break
		}
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("parse auth url %q: %w", raw, err)
	}
	if u.Host == "" {
		return URL{}, fmt.Errorf("parse auth url %q: missing host", raw)
	}
	p := u.EscapedPath()
	if p == "" || p == "/" {
		p = DefaultBasePath
	}
	return URL{
		BaseURL:  u.Scheme + "://" + u.Host,
		BasePath: strings.TrimRight(p, "/"),
	}, nil
}
