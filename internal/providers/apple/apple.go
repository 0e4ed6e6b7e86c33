// Package apple registra "Sign in with Apple".
//
// Apple no usa un client secret estático: el secret es un JWT ES256 firmado con
// la clave privada del developer (key id + team id), válido hasta 6 meses.
package apple

import (
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/providers"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const ID = "apple"

const (
	audience      = "https://appleid.apple.com"
	authEndpoint  = "https://appleid.apple.com/auth/authorize"
	tokenEndpoint = "https://appleid.apple.com/auth/token"

	// DefaultSecretTTL es el máximo que acepta Apple.
	DefaultSecretTTL = 180 * 24 * time.Hour
)

func init() { providers.Register(ID, New) }

// SecretParams son los componentes del client secret.
type SecretParams struct {
	KeyID    string
	TeamID   string
	ClientID string
	// PrivateKey en PEM (PKCS#8 o SEC1). Acepta "\n" escapados como vienen de env.
	PrivateKey string
}

// GenerateClientSecret firma el client secret ES256.
func GenerateClientSecret(p SecretParams, now time.Time, ttl time.Duration) (string, error) {
	if p.KeyID == "" || p.TeamID == "" || p.ClientID == "" || p.PrivateKey == "" {
		return "", fmt.Errorf("apple: key_id, team_id, client_id and private_key are required")
	}
	if ttl <= 0 {
		ttl = DefaultSecretTTL
	}
	key, err := jwtv5.ParseECPrivateKeyFromPEM([]byte(strings.ReplaceAll(p.PrivateKey, `\n`, "\n")))
	if err != nil {
		return "", fmt.Errorf("apple: parse private key: %w", err)
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodES256, jwtv5.RegisteredClaims{
		Issuer:    p.TeamID,
		Subject:   p.ClientID,
		Audience:  jwtv5.ClaimStrings{audience},
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
	})
	tok.Header["kid"] = p.KeyID
	return tok.SignedString(key)
}

// New construye el provider. Si no hay client_secret lo deriva de
// Extra{key_id, team_id, private_key}.
func New(o providers.Options) (providers.Config, error) {
	if o.ClientSecret == "" {
		s, err := GenerateClientSecret(SecretParams{
			KeyID:      o.Extra["key_id"],
			TeamID:     o.Extra["team_id"],
			ClientID:   o.ClientID,
			PrivateKey: o.Extra["private_key"],
		}, time.Now(), 0)
		if err != nil {
			return providers.Config{}, err
		}
		o.ClientSecret = s
	}
	oc := providers.OAuthFromOptions(o, authEndpoint, tokenEndpoint, "",
		[]string{"name", "email"}, map[string]string{"response_mode": "form_post"})
	oc.IDToken = true
	oc.Checks = []providers.Check{providers.CheckPKCE}
	oc.Profile = Profile
	return providers.Config{ID: ID, Name: "Apple", Type: providers.TypeOAuth, OAuth: oc}, nil
}

// Profile mapea los claims del id_token. Apple no devuelve imagen.
func Profile(raw map[string]any) (domain.User, error) {
	id := providers.Str(raw, "sub")
	if id == "" {
		return domain.User{}, fmt.Errorf("apple: profile without sub")
	}
	return domain.User{ID: id, Name: providers.Str(raw, "name"), Email: providers.Str(raw, "email")}, nil
}
