// Package google registra el provider OIDC de Google.
package google

import "github.com/dropDatabas3/authgate/internal/providers"

const ID = "google"

const (
	authEndpoint     = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint    = "https://oauth2.googleapis.com/token"
	userInfoEndpoint = "https://openidconnect.googleapis.com/v1/userinfo"
)

func init() { providers.Register(ID, New) }

// New construye el provider de Google.
func New(o providers.Options) (providers.Config, error) {
	oc := providers.OAuthFromOptions(o, authEndpoint, tokenEndpoint, userInfoEndpoint,
		[]string{"openid", "email", "profile"}, nil)
	oc.IDToken = true
	oc.Checks = []providers.Check{providers.CheckState, providers.CheckPKCE}
	return providers.Config{ID: ID, Name: "Google", Type: providers.TypeOAuth, OAuth: oc}, nil
}
