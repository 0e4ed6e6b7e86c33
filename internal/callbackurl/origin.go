package callbackurl

import (
	"net/url"
	"strings"
)

// SameOrigin resuelve candidate contra base y lo devuelve sólo si tiene el mismo
// origen (scheme, host, puerto). ok=false significa "rechazar".
func SameOrigin(base, candidate string) (resolved string, ok bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.ContainsAny(candidate, "\\") || hasControl(candidate) {
		return "", false
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" || b.Host == "" {
		return "", false
	}
	c, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	r := b.ResolveReference(c)
	if r.User != nil || origin(r) != origin(b) {
		return "", false
	}
	return r.String(), true
}

func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	return scheme + "://" + host + ":" + port
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
