package http

import "github.com/dropDatabas3/authgate/internal/cookie"

func (req *request) setCookie(d cookie.Directive) {
	cookie.Write(req.w, d)
}

func (req *request) cookieValue(name string) string {
	if c, err := req.r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}
