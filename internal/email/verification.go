package email

import (
	"bytes"
	"context"
	"fmt"
	htmltpl "html/template"
	"net/url"
	"strings"
	texttpl "text/template"
	"time"
)

// VerificationRequest son los datos del magic link a enviar.
type VerificationRequest struct {
	Identifier string
	URL        string
	Expires    time.Time
	// Provider es el id del provider que originó el sign-in.
	Provider string
}

type verifyVars struct {
	Site string
	Link string
	TTL  string
}

var (
	verifyHTML = htmltpl.Must(htmltpl.New("verify_html").Parse(`<!doctype html>
<html><body style="font-family:Helvetica,Arial,sans-serif">
<p>Sign in to <strong>{{.Site}}</strong></p>
<p><a href="{{.Link}}">Sign in</a></p>
<p style="color:#888">This link expires in {{.TTL}}. If you did not request this email you can safely ignore it.</p>
</body></html>`))

	verifyTXT = texttpl.Must(texttpl.New("verify_txt").Parse(`Sign in to {{.Site}}
{{.Link}}

This link expires in {{.TTL}}.
`))
)

// Render arma subject, html y texto del mail de verificación.
func Render(req VerificationRequest, now time.Time) (subject, html, text string, err error) {
	site := req.URL
	if u, perr := url.Parse(req.URL); perr == nil && u.Host != "" {
		site = u.Host
	}
	vars := verifyVars{Site: site, Link: req.URL, TTL: ttl(req.Expires.Sub(now))}

	var hb, tb bytes.Buffer
	if err := verifyHTML.Execute(&hb, vars); err != nil {
		return "", "", "", fmt.Errorf("render verify html: %w", err)
	}
	if err := verifyTXT.Execute(&tb, vars); err != nil {
		return "", "", "", fmt.Errorf("render verify txt: %w", err)
	}
	return "Sign in to " + site, hb.String(), tb.String(), nil
}

func ttl(d time.Duration) string {
	switch {
	case d <= 0:
		return "a few minutes"
	case d >= time.Hour:
		h := int(d.Round(time.Hour) / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	default:
		m := int(d.Round(time.Minute) / time.Minute)
		if m <= 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
}

// SendVerification renderiza y envía el mail con s.
func SendVerification(_ context.Context, s Sender, req VerificationRequest) error {
	if s == nil {
		return fmt.Errorf("email: no sender configured")
	}
	to := strings.TrimSpace(req.Identifier)
	if to == "" {
		return fmt.Errorf("email: empty identifier")
	}
	subject, html, text, err := Render(req, time.Now())
	if err != nil {
		return err
	}
	return s.Send(to, subject, html, text)
}
