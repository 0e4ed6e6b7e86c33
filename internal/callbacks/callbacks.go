// Package callbacks define la tabla de callbacks que el usuario puede reemplazar
// (signIn, redirect, session, jwt) y sus implementaciones por defecto.
package callbacks

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/callbackurl"
	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/jwt"
)

// SignInParams es la entrada del callback signIn.
type SignInParams struct {
	User     domain.User
	Provider string
	Profile  map[string]any
}

// SessionPayload es lo que devuelve la acción session al cliente.
type SessionPayload struct {
	User    *domain.User `json:"user,omitempty"`
	Expires string       `json:"expires,omitempty"`
}

// JWTParams es la entrada del callback jwt. User sólo viene en el sign-in.
type JWTParams struct {
	Token     jwt.Claims
	User      *domain.User
	Provider  string
	IsNewUser bool
}

type (
	SignInFunc   func(ctx context.Context, p SignInParams) (bool, error)
	RedirectFunc = callbackurl.Hook
	SessionFunc  func(ctx context.Context, session SessionPayload, token jwt.Claims) (SessionPayload, error)
	JWTFunc      func(ctx context.Context, p JWTParams) (jwt.Claims, error)
)

// Table es la tabla de callbacks resuelta. Todas las entradas son no-nil.
type Table struct {
	SignIn   SignInFunc
	Redirect RedirectFunc
	Session  SessionFunc
	JWT      JWTFunc
}

// Defaults devuelve los callbacks por defecto.
func Defaults() Table {
	return Table{
		SignIn:   defaultSignIn,
		Redirect: defaultRedirect,
		Session:  defaultSession,
		JWT:      defaultJWT,
	}
}

// Merge reemplaza en t los callbacks no-nil de o.
func (t Table) Merge(o Table) Table {
	if o.SignIn != nil {
		t.SignIn = o.SignIn
	}
	if o.Redirect != nil {
		t.Redirect = o.Redirect
	}
	if o.Session != nil {
		t.Session = o.Session
	}
	if o.JWT != nil {
		t.JWT = o.JWT
	}
	return t
}

func defaultSignIn(context.Context, SignInParams) (bool, error) { return true, nil }

func defaultRedirect(_ context.Context, url, baseURL string) (string, error) {
	if resolved, ok := callbackurl.SameOrigin(baseURL, url); ok {
		return resolved, nil
	}
	return baseURL, nil
}

func defaultSession(_ context.Context, session SessionPayload, _ jwt.Claims) (SessionPayload, error) {
	return session, nil
}

func defaultJWT(_ context.Context, p JWTParams) (jwt.Claims, error) {
	return p.Token, nil
}
