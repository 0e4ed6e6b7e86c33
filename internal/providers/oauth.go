package providers

import (
	"golang.org/x/oauth2"
)

// OAuth2Config arma el *oauth2.Config del provider. Nil si no es OAuth.
func (d Descriptor) OAuth2Config() *oauth2.Config {
	if d.OAuth == nil {
		return nil
	}
	return &oauth2.Config{
		ClientID:     d.OAuth.ClientID,
		ClientSecret: d.OAuth.ClientSecret,
		RedirectURL:  d.CallbackURL,
		Scopes:       append([]string(nil), d.OAuth.Scopes...),
		Endpoint: oauth2.Endpoint{
			AuthURL:  d.OAuth.AuthorizationURL,
			TokenURL: d.OAuth.TokenURL,
		},
	}
}

// AuthorizationURL arma la URL de autorización. state se incluye sólo si el
// provider declara el check state; verifier sólo con pkce (S256).
func (d Descriptor) AuthorizationURL(state, verifier string) string {
	cfg := d.OAuth2Config()
	if cfg == nil {
		return ""
	}
	opts := make([]oauth2.AuthCodeOption, 0, len(d.OAuth.Params)+2)
	for k, v := range d.OAuth.Params {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	if d.HasCheck(CheckPKCE) && verifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}
	if !d.HasCheck(CheckState) {
		state = ""
	}
	return cfg.AuthCodeURL(state, opts...)
}

// NewVerifier genera un code_verifier PKCE.
func NewVerifier() string { return oauth2.GenerateVerifier() }
