package providers_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/authgate/internal/providers"
	_ "github.com/dropDatabas3/authgate/internal/providers/all"
	"github.com/dropDatabas3/authgate/internal/providers/apple"
	"github.com/dropDatabas3/authgate/internal/providers/facebook"
	"github.com/dropDatabas3/authgate/internal/providers/github"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Available(t *testing.T) {
	assert.Equal(t, []string{"apple", "facebook", "github", "google", "microsoft"}, providers.Catalog.Available())
}

func TestCatalog_BuildGoogle(t *testing.T) {
	c, err := providers.Catalog.Build("google", providers.Options{ClientID: "id", ClientSecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "google", c.ID)
	assert.Equal(t, providers.TypeOAuth, c.Type)
	assert.Equal(t, []string{"openid", "email", "profile"}, c.OAuth.Scopes)
	require.NoError(t, providers.Validate(c))
}

func TestCatalog_BuildOverridesIDAndScopes(t *testing.T) {
	c, err := providers.Catalog.Build("github", providers.Options{
		ID: "gh-enterprise", Name: "GitHub EE", ClientID: "id", Scopes: []string{"read:user"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gh-enterprise", c.ID)
	assert.Equal(t, "GitHub EE", c.Name)
	assert.Equal(t, []string{"read:user"}, c.OAuth.Scopes)
	assert.Equal(t, "true", c.OAuth.Params["allow_signup"])
}

func TestCatalog_Unknown(t *testing.T) {
	_, err := providers.Catalog.Build("myspace", providers.Options{})
	require.Error(t, err)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := providers.NewRegistry()
	f := func(providers.Options) (providers.Config, error) { return providers.Config{}, nil }
	r.RegisterFactory("x", f)
	assert.Panics(t, func() { r.RegisterFactory("x", f) })
}

func TestMicrosoft_Tenant(t *testing.T) {
	c, err := providers.Catalog.Build("microsoft", providers.Options{ClientID: "id", Extra: map[string]string{"tenant_id": "contoso"}})
	require.NoError(t, err)
	assert.Contains(t, c.OAuth.AuthorizationURL, "/contoso/oauth2/v2.0/authorize")

	c, err = providers.Catalog.Build("microsoft", providers.Options{ClientID: "id"})
	require.NoError(t, err)
	assert.Contains(t, c.OAuth.AuthorizationURL, "/common/")
}

func TestProfiles(t *testing.T) {
	u, err := github.Profile(map[string]any{"id": float64(12345), "login": "octo", "avatar_url": "https://a/x.png"})
	require.NoError(t, err)
	assert.Equal(t, "12345", u.ID)
	assert.Equal(t, "octo", u.Name)
	assert.Equal(t, "https://a/x.png", u.Image)

	u, err = facebook.Profile(map[string]any{"id": "9", "name": "Ana", "picture": map[string]any{"data": map[string]any{"url": "https://p"}}})
	require.NoError(t, err)
	assert.Equal(t, "https://p", u.Image)

	_, err = providers.StandardProfile(map[string]any{"email": "a@b"})
	require.Error(t, err)
}

func pemKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(k)
	require.NoError(t, err)
	return k, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestApple_ClientSecret(t *testing.T) {
	key, pemStr := pemKey(t)
	now := time.Now()
	// como viene de una variable de entorno
	escaped := strings.ReplaceAll(pemStr, "\n", `\n`)

	s, err := apple.GenerateClientSecret(apple.SecretParams{
		KeyID: "KID123", TeamID: "TEAM", ClientID: "com.example.web", PrivateKey: escaped,
	}, now, time.Hour)
	require.NoError(t, err)

	var claims jwtv5.RegisteredClaims
	tok, err := jwtv5.ParseWithClaims(s, &claims, func(*jwtv5.Token) (any, error) { return &key.PublicKey, nil },
		jwtv5.WithValidMethods([]string{"ES256"}))
	require.NoError(t, err)
	assert.Equal(t, "KID123", tok.Header["kid"])
	assert.Equal(t, "TEAM", claims.Issuer)
	assert.Equal(t, "com.example.web", claims.Subject)
	assert.Equal(t, jwtv5.ClaimStrings{"https://appleid.apple.com"}, claims.Audience)
}

func TestApple_BuildDerivesSecret(t *testing.T) {
	_, pemStr := pemKey(t)
	c, err := providers.Catalog.Build("apple", providers.Options{
		ClientID: "com.example.web",
		Extra:    map[string]string{"key_id": "K", "team_id": "T", "private_key": pemStr},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(c.OAuth.ClientSecret, ".")+1)
	assert.Equal(t, "form_post", c.OAuth.Params["response_mode"])
	assert.Equal(t, []providers.Check{providers.CheckPKCE}, c.OAuth.Checks)

	_, err = providers.Catalog.Build("apple", providers.Options{ClientID: "x"})
	require.Error(t, err)
}
