package providers

import (
	"strings"

	apperrors "github.com/dropDatabas3/authgate/internal/errors"
)

// Resolved es el resultado de Parse.
type Resolved struct {
	Providers []Descriptor
	// Provider es nil si el request no nombra un provider configurado.
	Provider *Descriptor
}

// Parse valida configs y arma un Descriptor por provider, en el mismo orden.
// base es baseURL+basePath sin "/" final. Un providerID vacío o desconocido
// no es error: Provider queda nil.
func Parse(configs []Config, base, providerID string) (Resolved, error) {
	base = strings.TrimRight(base, "/")
	seen := make(map[string]struct{}, len(configs))
	out := Resolved{Providers: make([]Descriptor, 0, len(configs))}

	for _, c := range configs {
		if err := Validate(c); err != nil {
			return Resolved{}, err
		}
		if _, dup := seen[c.ID]; dup {
			return Resolved{}, apperrors.ErrDuplicateProvider.WithDetailf("provider id %q is declared more than once", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Name == "" {
			c.Name = c.ID
		}
		out.Providers = append(out.Providers, Descriptor{
			Config:      c,
			SignInURL:   base + "/signin/" + c.ID,
			CallbackURL: base + "/callback/" + c.ID,
		})
	}

	if providerID != "" {
		for i := range out.Providers {
			if out.Providers[i].ID == providerID {
				out.Provider = &out.Providers[i]
				break
			}
		}
	}
	return out, nil
}

// Validate chequea la unión etiquetada: Type conocido, exactamente la variante
// correspondiente presente y sus campos requeridos.
func Validate(c Config) error {
	missing := func(field string) error {
		return apperrors.ErrMissingProviderField.WithDetailf("provider %q: %s is required", c.ID, field)
	}
	if c.ID == "" {
		return missing("id")
	}
	if strings.ContainsAny(c.ID, "/?#") {
		return apperrors.ErrConfiguration.WithDetailf("provider id %q contains reserved characters", c.ID)
	}

	variants := 0
	for _, set := range []bool{c.OAuth != nil, c.Email != nil, c.Credentials != nil} {
		if set {
			variants++
		}
	}
	if variants > 1 {
		return apperrors.ErrConfiguration.WithDetailf("provider %q: only the %q variant may be set", c.ID, c.Type)
	}

	switch c.Type {
	case TypeOAuth:
		if c.OAuth == nil {
			return missing("oauth")
		}
		if c.OAuth.ClientID == "" {
			return missing("oauth.clientId")
		}
		if c.OAuth.AuthorizationURL == "" {
			return missing("oauth.authorizationUrl")
		}
		for _, chk := range c.OAuth.Checks {
			switch chk {
			case CheckState, CheckPKCE, CheckNone:
			default:
				return apperrors.ErrConfiguration.WithDetailf("provider %q: unknown check %q", c.ID, chk)
			}
		}
	case TypeEmail:
		if c.Email == nil {
			return missing("email")
		}
		if c.Email.SendVerificationRequest == nil && c.Email.Sender == nil {
			return missing("email.sendVerificationRequest")
		}
	case TypeCredentials:
		if c.Credentials == nil {
			return missing("credentials")
		}
		if c.Credentials.Authorize == nil {
			return missing("credentials.authorize")
		}
	default:
		return apperrors.ErrConfiguration.WithDetailf("provider %q: unknown type %q", c.ID, c.Type)
	}
	return nil
}
