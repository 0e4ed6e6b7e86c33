package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/adapter"
	"github.com/dropDatabas3/authgate/internal/callbacks"
	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/email"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/events"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/options"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/security/token"
)

// Códigos de error que viajan en ?error= hacia la página de error o de signin.
const (
	errConfiguration     = "Configuration"
	errAccessDenied      = "AccessDenied"
	errVerification      = "Verification"
	errEmailSignin       = "EmailSignin"
	errCredentialsSignin = "CredentialsSignin"
)

const verificationPurpose = "verification"

func (req *request) pageOr(a options.Action) string {
	if p := req.o.Page(a); p != "" {
		return p
	}
	return req.o.Base + "/" + string(a)
}

func (req *request) errorURL(code string) string {
	return withQuery(req.pageOr(options.ActionError), "error", code)
}

func (req *request) publicProviders() []providers.Public {
	out := make([]providers.Public, 0, len(req.o.Providers))
	for _, p := range req.o.Providers {
		out = append(out, p.Public())
	}
	return out
}

// ---- csrf / providers ----

func (req *request) csrf() {
	writeJSON(req.w, http.StatusOK, map[string]string{"csrfToken": req.o.CSRFToken})
}

func (req *request) providers() {
	out := make(map[string]providers.Public, len(req.o.Providers))
	for _, p := range req.o.Providers {
		out[p.ID] = p.Public()
	}
	writeJSON(req.w, http.StatusOK, out)
}

// ---- signin ----

func (req *request) signInPage() {
	if page := req.o.Pages.SignIn; page != "" {
		http.Redirect(req.w, req.r, withQuery(page,
			"callbackUrl", req.o.CallbackURL,
			"error", req.r.URL.Query().Get("error"),
		), http.StatusFound)
		return
	}
	writeJSON(req.w, http.StatusOK, map[string]any{
		"csrfToken":   req.o.CSRFToken,
		"callbackUrl": req.o.CallbackURL,
		"providers":   req.publicProviders(),
	})
}

func (req *request) signIn() {
	if !req.o.CSRFTokenVerified {
		redirect(req.w, req.r, req.body, withQuery(req.pageOr(options.ActionSignIn), "csrf", "true"))
		return
	}
	p := req.o.Provider
	if p == nil {
		apperrors.WriteError(req.w, apperrors.ErrProviderNotFound)
		return
	}
	switch p.Type {
	case providers.TypeOAuth:
		req.oauthSignIn(p)
	case providers.TypeEmail:
		req.emailSignIn(p)
	default:
		apperrors.WriteError(req.w, apperrors.ErrBadRequest.WithDetailf("provider %q signs in through its callback url", p.ID))
	}
}

func (req *request) oauthSignIn(p *providers.Descriptor) {
	var state, verifier string
	if p.HasCheck(providers.CheckState) {
		s, err := token.GenerateOpaqueToken(32)
		if err != nil {
			apperrors.WriteError(req.w, apperrors.ErrInternalServerError.WithCause(err))
			return
		}
		state = s
		req.setCookie(req.o.Cookies.State.Issue(state))
	}
	if p.HasCheck(providers.CheckPKCE) {
		verifier = providers.NewVerifier()
		req.setCookie(req.o.Cookies.PKCECodeVerifier.Issue(verifier))
	}
	req.log.Debug("redirecting to provider", logger.ProviderID(p.ID))
	redirect(req.w, req.r, req.body, p.AuthorizationURL(state, verifier))
}

func (req *request) verificationStore() (adapter.VerificationStore, bool) {
	vs, ok := req.o.Adapter.(adapter.VerificationStore)
	if !ok {
		req.log.Error("email sign-in requires an adapter with verification token support",
			logger.Code(apperrors.ErrConfiguration.Code))
	}
	return vs, ok
}

func (req *request) emailSignIn(p *providers.Descriptor) {
	ctx := req.r.Context()
	addr := strings.ToLower(strings.TrimSpace(req.body.Get("email")))
	if addr == "" || !strings.Contains(addr, "@") {
		redirect(req.w, req.r, req.body, req.errorURL(errEmailSignin))
		return
	}
	vs, ok := req.verificationStore()
	if !ok {
		redirect(req.w, req.r, req.body, req.errorURL(errConfiguration))
		return
	}

	allowed, err := req.o.Callbacks.SignIn(ctx, callbacks.SignInParams{
		User:     domain.User{ID: addr, Email: addr},
		Provider: p.ID,
	})
	if err != nil || !allowed {
		if err != nil {
			req.log.Warn("signIn callback failed", logger.Err(err))
		}
		redirect(req.w, req.r, req.body, req.errorURL(errAccessDenied))
		return
	}

	tok, err := token.GenerateOpaqueToken(32)
	if err != nil {
		apperrors.WriteError(req.w, apperrors.ErrInternalServerError.WithCause(err))
		return
	}
	expires := time.Now().Add(p.EmailMaxAge())
	_ = vs.CreateVerificationToken(ctx, domain.VerificationToken{
		Identifier: addr,
		TokenHash:  req.o.Secret.Sum(verificationPurpose, tok),
		Expires:    expires,
	})

	link := withQuery(p.CallbackURL, "callbackUrl", req.o.CallbackURL, "token", tok, "email", addr)
	if err := p.SendVerification(ctx, email.VerificationRequest{Identifier: addr, URL: link, Expires: expires}); err != nil {
		req.log.Error("sending verification request failed", logger.ProviderID(p.ID), logger.Err(err))
		redirect(req.w, req.r, req.body, req.errorURL(errEmailSignin))
		return
	}
	redirect(req.w, req.r, req.body, withQuery(req.pageOr(options.ActionVerifyRequest), "provider", p.ID, "type", string(p.Type)))
}

// ---- callback ----

func (req *request) callback() {
	p := req.o.Provider
	if p == nil {
		apperrors.WriteError(req.w, apperrors.ErrProviderNotFound)
		return
	}
	switch p.Type {
	case providers.TypeOAuth:
		// el code exchange no forma parte de este servicio; sólo limpiamos los checks
		req.setCookie(req.o.Cookies.State.Expired())
		req.setCookie(req.o.Cookies.PKCECodeVerifier.Expired())
		apperrors.WriteError(req.w, apperrors.ErrNotImplemented.WithDetail("oauth authorization code exchange is not supported"))
	case providers.TypeEmail:
		req.emailCallback(p)
	case providers.TypeCredentials:
		req.credentialsCallback(p)
	}
}

func (req *request) emailCallback(p *providers.Descriptor) {
	q := req.r.URL.Query()
	tok := strings.TrimSpace(q.Get("token"))
	addr := strings.ToLower(strings.TrimSpace(q.Get("email")))
	if tok == "" || addr == "" {
		redirect(req.w, req.r, req.body, req.errorURL(errVerification))
		return
	}
	vs, ok := req.verificationStore()
	if !ok {
		redirect(req.w, req.r, req.body, req.errorURL(errConfiguration))
		return
	}
	vt, _ := vs.UseVerificationToken(req.r.Context(), addr, req.o.Secret.Sum(verificationPurpose, tok))
	if vt == nil || !time.Now().Before(vt.Expires) {
		_ = req.o.Events.Error(req.r.Context(), events.Message{Provider: p.ID, Err: apperrors.ErrVerificationTokenInvalid})
		redirect(req.w, req.r, req.body, req.errorURL(errVerification))
		return
	}
	req.completeSignIn(p, domain.User{ID: addr, Email: addr})
}

// credentialFields son campos del body que no se pasan a Authorize.
var credentialFields = map[string]bool{"csrfToken": true, "callbackUrl": true, "json": true}

func (req *request) credentialsCallback(p *providers.Descriptor) {
	if req.r.Method != http.MethodPost {
		apperrors.WriteError(req.w, apperrors.ErrMethodNotAllowed)
		return
	}
	if !req.o.CSRFTokenVerified {
		redirect(req.w, req.r, req.body, withQuery(req.pageOr(options.ActionSignIn), "csrf", "true"))
		return
	}
	if !req.o.Session.JWT {
		req.log.Error("credentials sign-in requires jwt sessions", logger.ProviderID(p.ID))
		redirect(req.w, req.r, req.body, req.errorURL(errConfiguration))
		return
	}

	creds := make(map[string]string, len(req.body))
	for k := range req.body {
		if !credentialFields[k] {
			creds[k] = req.body.Get(k)
		}
	}
	user, err := p.Credentials.Authorize(req.r.Context(), creds, req.r)
	if err != nil {
		req.log.Warn("credentials authorize failed", logger.ProviderID(p.ID), logger.Err(err))
	}
	if err != nil || user == nil {
		redirect(req.w, req.r, req.body, withQuery(req.pageOr(options.ActionSignIn),
			"error", errCredentialsSignin, "provider", p.ID))
		return
	}
	req.completeSignIn(p, *user)
}

// ---- signout ----

func (req *request) signOutPage() {
	if page := req.o.Pages.SignOut; page != "" {
		http.Redirect(req.w, req.r, withQuery(page, "callbackUrl", req.o.CallbackURL), http.StatusFound)
		return
	}
	writeJSON(req.w, http.StatusOK, map[string]string{"csrfToken": req.o.CSRFToken})
}

func (req *request) signOut() {
	if !req.o.CSRFTokenVerified {
		apperrors.WriteError(req.w, apperrors.ErrCSRFTokenInvalid)
		return
	}
	req.endSession()
	redirect(req.w, req.r, req.body, req.o.CallbackURL)
}

// ---- verify-request / error ----

func (req *request) verifyRequest() {
	if page := req.o.Pages.VerifyRequest; page != "" {
		http.Redirect(req.w, req.r, page, http.StatusFound)
		return
	}
	writeJSON(req.w, http.StatusOK, map[string]string{
		"message":  "Check your email: a sign in link has been sent to your email address.",
		"url":      req.o.BaseURL,
		"provider": req.r.URL.Query().Get("provider"),
	})
}

var errorMessages = map[string]string{
	errConfiguration:     "There is a problem with the server configuration.",
	errAccessDenied:      "You do not have permission to sign in.",
	errVerification:      "The sign in link is no longer valid. It may have been used already or it may have expired.",
	errEmailSignin:       "The verification email could not be sent.",
	errCredentialsSignin: "Sign in failed. Check the details you provided are correct.",
}

func (req *request) errorPage() {
	code := req.r.URL.Query().Get("error")
	if page := req.o.Pages.Error; page != "" {
		http.Redirect(req.w, req.r, withQuery(page, "error", code), http.StatusFound)
		return
	}
	status := http.StatusOK
	switch code {
	case errConfiguration:
		status = http.StatusInternalServerError
	case errAccessDenied, errVerification:
		status = http.StatusForbidden
	}
	msg, ok := errorMessages[code]
	if !ok {
		msg = "Unable to sign in."
	}
	writeJSON(req.w, status, map[string]string{"error": code, "message": msg, "url": req.o.BaseURL})
}
