package http

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/authgate/internal/callbacks"
	"github.com/dropDatabas3/authgate/internal/domain"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/events"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
)

func claimsFromUser(u domain.User) jwt.Claims {
	c := jwt.Claims{"sub": u.ID}
	for k, v := range map[string]string{"name": u.Name, "email": u.Email, "picture": u.Image} {
		if v != "" {
			c[k] = v
		}
	}
	return c
}

func userFromClaims(c jwt.Claims) *domain.User {
	s := func(k string) string {
		v, _ := c[k].(string)
		return v
	}
	return &domain.User{ID: s("sub"), Name: s("name"), Email: s("email"), Image: s("picture")}
}

func numericClaim(c jwt.Claims, key string) (time.Time, bool) {
	switch v := c[key].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	}
	return time.Time{}, false
}

// encodeSession corre el callback jwt y firma el token de sesión.
func (req *request) encodeSession(p callbacks.JWTParams) (string, jwt.Claims, error) {
	ctx := req.r.Context()
	claims, err := req.o.Callbacks.JWT(ctx, p)
	if err != nil {
		return "", nil, err
	}
	if claims == nil {
		claims = jwt.Claims{}
	}
	tok, err := req.o.JWT.Encode(ctx, jwt.EncodeParams{Secret: req.o.JWT.Secret, Claims: claims, MaxAge: req.o.JWT.MaxAge})
	return tok, claims, err
}

// completeSignIn crea la sesión (stateful si hay adapter, si no JWT), emite la
// cookie y redirige a la callback url.
func (req *request) completeSignIn(p *providers.Descriptor, user domain.User) {
	ctx := req.r.Context()
	o := req.o

	allowed, err := o.Callbacks.SignIn(ctx, callbacks.SignInParams{User: user, Provider: p.ID})
	if err != nil {
		req.log.Warn("signIn callback failed", logger.Err(err))
	}
	if err != nil || !allowed {
		_ = o.Events.Error(ctx, events.Message{User: &user, Provider: p.ID, Err: apperrors.ErrSignInRejected.WithCause(err)})
		redirect(req.w, req.r, req.body, req.errorURL(errAccessDenied))
		return
	}

	expires := time.Now().Add(o.Session.MaxAge)
	msg := events.Message{User: &user, Provider: p.ID}

	if !o.Session.JWT && o.Adapter != nil {
		if sess, _ := o.Adapter.CreateSession(ctx, user.ID, expires); sess != nil {
			req.setCookie(o.Cookies.SessionToken.IssueUntil(sess.SessionToken, sess.Expires))
			msg.Session = sess
			_ = o.Events.SignIn(ctx, msg)
			redirect(req.w, req.r, req.body, o.CallbackURL)
			return
		}
		req.log.Warn("adapter could not create a session, falling back to a stateless session", logger.UserID(user.ID))
	}

	tok, _, err := req.encodeSession(callbacks.JWTParams{Token: claimsFromUser(user), User: &user, Provider: p.ID})
	if err != nil {
		req.log.Error("encoding session token failed", logger.Err(err))
		apperrors.WriteError(req.w, apperrors.ErrInternalServerError.WithCause(err))
		return
	}
	req.setCookie(o.Cookies.SessionToken.IssueUntil(tok, expires))
	_ = o.Events.SignIn(ctx, msg)
	redirect(req.w, req.r, req.body, o.CallbackURL)
}

// session devuelve la sesión actual o {} si no hay.
func (req *request) session() {
	ctx := req.r.Context()
	o := req.o
	empty := map[string]any{}

	tok := req.cookieValue(o.Cookies.SessionToken.Name)
	if tok == "" {
		writeJSON(req.w, http.StatusOK, empty)
		return
	}
	now := time.Now()

	if !o.Session.JWT && o.Adapter != nil {
		sess, _ := o.Adapter.GetSession(ctx, tok)
		if sess != nil {
			if sess.Expired(now) {
				_ = o.Adapter.DeleteSession(ctx, tok)
				req.setCookie(o.Cookies.SessionToken.Expired())
				writeJSON(req.w, http.StatusOK, empty)
				return
			}
			user := &domain.User{ID: sess.UserID}
			payload, err := o.Callbacks.Session(ctx, callbacks.SessionPayload{
				User: user, Expires: sess.Expires.UTC().Format(time.RFC3339),
			}, nil)
			if err != nil {
				req.log.Warn("session callback failed", logger.Err(err))
				writeJSON(req.w, http.StatusOK, empty)
				return
			}
			_ = o.Events.Session(ctx, events.Message{User: user, Session: sess})
			writeJSON(req.w, http.StatusOK, payload)
			return
		}
		// puede ser un token stateless emitido cuando el adapter falló
	}

	claims, err := o.JWT.Decode(ctx, jwt.DecodeParams{Secret: o.JWT.Secret, Token: tok})
	if err != nil {
		req.log.Debug("invalid session token", logger.Err(err))
		req.setCookie(o.Cookies.SessionToken.Expired())
		writeJSON(req.w, http.StatusOK, empty)
		return
	}

	expires, _ := numericClaim(claims, "exp")
	// sesión rolling: se re-firma cuando pasó UpdateAge desde la emisión
	if iat, ok := numericClaim(claims, "iat"); !ok || now.Sub(iat) >= o.Session.UpdateAge {
		next, nextClaims, err := req.encodeSession(callbacks.JWTParams{Token: claims})
		if err != nil {
			req.log.Warn("renewing session token failed", logger.Err(err))
		} else {
			expires = now.Add(o.Session.MaxAge)
			claims = nextClaims
			req.setCookie(o.Cookies.SessionToken.IssueUntil(next, expires))
		}
	}

	user := userFromClaims(claims)
	payload, err := o.Callbacks.Session(ctx, callbacks.SessionPayload{
		User: user, Expires: expires.UTC().Format(time.RFC3339),
	}, claims)
	if err != nil {
		req.log.Warn("session callback failed", logger.Err(err))
		writeJSON(req.w, http.StatusOK, empty)
		return
	}
	_ = o.Events.Session(ctx, events.Message{User: user})
	writeJSON(req.w, http.StatusOK, payload)
}

// endSession borra la sesión del adapter (si hay), dispara signOut y expira la cookie.
func (req *request) endSession() {
	ctx := req.r.Context()
	o := req.o
	tok := req.cookieValue(o.Cookies.SessionToken.Name)
	if tok != "" {
		var msg events.Message
		if !o.Session.JWT && o.Adapter != nil {
			if sess, _ := o.Adapter.GetSession(ctx, tok); sess != nil {
				msg.Session = sess
				_ = o.Adapter.DeleteSession(ctx, tok)
			}
		}
		if msg.Session == nil {
			if claims, err := o.JWT.Decode(ctx, jwt.DecodeParams{Secret: o.JWT.Secret, Token: tok}); err == nil {
				msg.User = userFromClaims(claims)
			}
		}
		_ = o.Events.SignOut(ctx, msg)
	}
	req.setCookie(o.Cookies.SessionToken.Expired())
}
