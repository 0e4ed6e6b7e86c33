package cookie

import (
	"net/http"
	"time"
)

// Directive es una cookie a emitir en la respuesta. Se crea por request y no se muta.
type Directive struct {
	Name    string
	Value   string
	Options Options
}

// Issue arma la directiva para emitir value con los atributos de s.
func (s Spec) Issue(value string) Directive {
	return Directive{Name: s.Name, Value: value, Options: s.Options}
}

// IssueUntil es Issue con expiración absoluta (ej. session-token).
func (s Spec) IssueUntil(value string, expires time.Time) Directive {
	d := s.Issue(value)
	d.Options.Expires = expires.UTC()
	d.Options.MaxAge = int(time.Until(expires).Seconds())
	if d.Options.MaxAge <= 0 {
		d.Options.MaxAge = -1
	}
	return d
}

// Expired devuelve la directiva que borra la cookie s del browser.
// Mismo name/domain/path/flags para que el user-agent la sobreescriba.
func (s Spec) Expired() Directive {
	d := s.Issue("")
	d.Options.MaxAge = -1
	d.Options.Expires = time.Unix(0, 0).UTC()
	return d
}

// HTTPCookie traduce la directiva a *http.Cookie.
func (d Directive) HTTPCookie() *http.Cookie {
	c := &http.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     d.Options.Path,
		Domain:   d.Options.Domain,
		MaxAge:   d.Options.MaxAge,
		Secure:   d.Options.Secure,
		HttpOnly: d.Options.HTTPOnly,
		SameSite: d.Options.SameSite,
	}
	if !d.Options.Expires.IsZero() {
		c.Expires = d.Options.Expires
	}
	if c.Path == "" {
		c.Path = "/"
	}
	return c
}

// Write emite las directivas como Set-Cookie, en orden.
func Write(w http.ResponseWriter, directives ...Directive) {
	for _, d := range directives {
		http.SetCookie(w, d.HTTPCookie())
	}
}
