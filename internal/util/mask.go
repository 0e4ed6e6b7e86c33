// Package util tiene helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja sólo la primera letra del usuario y del dominio para logs:
// "ada@example.com" → "a…@e….com". Sin "@" enmascara el string entero.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	user, dom, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		switch {
		case s == "":
			return ""
		case len(s) <= 3:
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	labels := strings.Split(dom, ".")
	if len(labels[0]) > 1 {
		labels[0] = labels[0][:1] + "…"
	}
	return user + "@" + strings.Join(labels, ".")
}
