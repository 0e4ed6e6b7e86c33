// Package github registra el provider OAuth 2.0 de GitHub. GitHub no emite
// ID tokens; el perfil sale de la API /user.
package github

import (
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/providers"
)

const ID = "github"

const (
	authEndpoint  = "https://github.com/login/oauth/authorize"
	tokenEndpoint = "https://github.com/login/oauth/access_token"
	userEndpoint  = "https://api.github.com/user"
)

func init() { providers.Register(ID, New) }

// New construye el provider de GitHub.
func New(o providers.Options) (providers.Config, error) {
	oc := providers.OAuthFromOptions(o, authEndpoint, tokenEndpoint, userEndpoint,
		[]string{"read:user", "user:email"}, map[string]string{"allow_signup": "true"})
	oc.Profile = Profile
	return providers.Config{ID: ID, Name: "GitHub", Type: providers.TypeOAuth, OAuth: oc}, nil
}

// Profile mapea la respuesta de /user. Name cae al login si está vacío.
func Profile(raw map[string]any) (domain.User, error) {
	id := providers.Str(raw, "id")
	if id == "" {
		return domain.User{}, fmt.Errorf("github: profile without id")
	}
	name := providers.Str(raw, "name")
	if name == "" {
		name = providers.Str(raw, "login")
	}
	return domain.User{ID: id, Name: name, Email: providers.Str(raw, "email"), Image: providers.Str(raw, "avatar_url")}, nil
}
