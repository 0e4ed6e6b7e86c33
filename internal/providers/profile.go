package providers

import (
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain"
)

// Str lee un string de un perfil crudo; números JSON se formatean sin decimales.
func Str(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

// StandardProfile mapea claims OIDC estándar (sub, name, email, picture).
func StandardProfile(raw map[string]any) (domain.User, error) {
	id := Str(raw, "sub")
	if id == "" {
		return domain.User{}, fmt.Errorf("profile without sub")
	}
	return domain.User{ID: id, Name: Str(raw, "name"), Email: Str(raw, "email"), Image: Str(raw, "picture")}, nil
}

// OAuthFromOptions arma un OAuthConfig base con las credenciales de o.
// scopes/params son los defaults del provider; o los reemplaza si vienen.
func OAuthFromOptions(o Options, authURL, tokenURL, userInfoURL string, scopes []string, params map[string]string) *OAuthConfig {
	if len(o.Scopes) > 0 {
		scopes = o.Scopes
	}
	merged := make(map[string]string, len(params)+len(o.Params))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range o.Params {
		merged[k] = v
	}
	return &OAuthConfig{
		ClientID:         o.ClientID,
		ClientSecret:     o.ClientSecret,
		AuthorizationURL: authURL,
		TokenURL:         tokenURL,
		UserInfoURL:      userInfoURL,
		Scopes:           scopes,
		Params:           merged,
		Checks:           []Check{CheckState},
		Profile:          StandardProfile,
	}
}
