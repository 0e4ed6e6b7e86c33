// Package facebook registra el provider OAuth 2.0 de Facebook.
package facebook

import (
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/providers"
)

const ID = "facebook"

const (
	graphVersion  = "v18.0"
	authEndpoint  = "https://www.facebook.com/" + graphVersion + "/dialog/oauth"
	tokenEndpoint = "https://graph.facebook.com/" + graphVersion + "/oauth/access_token"
	userEndpoint  = "https://graph.facebook.com/me?fields=id,name,email,picture"
)

func init() { providers.Register(ID, New) }

// New construye el provider de Facebook.
func New(o providers.Options) (providers.Config, error) {
	oc := providers.OAuthFromOptions(o, authEndpoint, tokenEndpoint, userEndpoint, []string{"email"}, nil)
	oc.Profile = Profile
	return providers.Config{ID: ID, Name: "Facebook", Type: providers.TypeOAuth, OAuth: oc}, nil
}

// Profile mapea la respuesta de /me; la imagen viene anidada en picture.data.url.
func Profile(raw map[string]any) (domain.User, error) {
	id := providers.Str(raw, "id")
	if id == "" {
		return domain.User{}, fmt.Errorf("facebook: profile without id")
	}
	u := domain.User{ID: id, Name: providers.Str(raw, "name"), Email: providers.Str(raw, "email")}
	if pic, ok := raw["picture"].(map[string]any); ok {
		if data, ok := pic["data"].(map[string]any); ok {
			u.Image = providers.Str(data, "url")
		}
	}
	return u, nil
}
