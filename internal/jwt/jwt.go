// Package jwt implementa el encode/decode por defecto de los tokens de sesión
// stateless. Firma HS512 con la clave derivada del secret de la aplicación.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/secret"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims son las claims del token de sesión.
type Claims = jwtv5.MapClaims

// EncodeParams agrupa la entrada de Encode.
type EncodeParams struct {
	Secret secret.Material
	Claims Claims
	MaxAge time.Duration
}

// DecodeParams agrupa la entrada de Decode.
type DecodeParams struct {
	Secret secret.Material
	Token  string
}

// EncodeFunc firma claims. Reemplazable por el usuario.
type EncodeFunc func(ctx context.Context, p EncodeParams) (string, error)

// DecodeFunc verifica y decodifica un token. Reemplazable por el usuario.
type DecodeFunc func(ctx context.Context, p DecodeParams) (Claims, error)

var ErrTokenInvalid = errors.New("jwt: token invalid")

// Encode es el EncodeFunc por defecto: HS512 con iat/exp/jti.
func Encode(_ context.Context, p EncodeParams) (string, error) {
	if p.Secret.IsZero() {
		return "", errors.New("jwt: missing secret")
	}
	now := time.Now().UTC()
	claims := Claims{}
	for k, v := range p.Claims {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	if p.MaxAge > 0 {
		claims["exp"] = now.Add(p.MaxAge).Unix()
	}
	if _, ok := claims["jti"]; !ok {
		claims["jti"] = uuid.NewString()
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(p.Secret.Bytes())
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Decode es el DecodeFunc por defecto. Sólo acepta HS512 y valida exp.
func Decode(_ context.Context, p DecodeParams) (Claims, error) {
	if p.Token == "" {
		return nil, ErrTokenInvalid
	}
	claims := Claims{}
	_, err := jwtv5.ParseWithClaims(p.Token, claims, func(t *jwtv5.Token) (any, error) {
		return p.Secret.Bytes(), nil
	}, jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS512.Alg()}), jwtv5.WithIssuedAt())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// Options son las opciones JWT resueltas.
type Options struct {
	Secret secret.Material
	MaxAge time.Duration
	Encode EncodeFunc
	Decode DecodeFunc
}

// Override es el override parcial del usuario; campos nil/zero no se tocan.
type Override struct {
	// Secret explícito para firmar; si está vacío se usa el secret de la aplicación.
	Secret string
	MaxAge *time.Duration
	Encode EncodeFunc
	Decode DecodeFunc
}

// Merge aplica o sobre opts campo por campo.
func (opts Options) Merge(o Override) Options {
	if o.Secret != "" {
		opts.Secret = secret.FromBytes([]byte(o.Secret))
	}
	if o.MaxAge != nil {
		opts.MaxAge = *o.MaxAge
	}
	if o.Encode != nil {
		opts.Encode = o.Encode
	}
	if o.Decode != nil {
		opts.Decode = o.Decode
	}
	return opts
}
