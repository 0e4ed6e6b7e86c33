// Package providers resuelve la configuración de providers de autenticación.
//
// Un provider es una unión etiquetada: Type indica qué variante (OAuth, Email,
// Credentials) tiene que estar presente. Parse valida la unión y arma para cada
// provider sus URLs de signin y callback bajo la base de la aplicación.
//
// Los providers OAuth conocidos (google, github, ...) viven en sub-paquetes que se
// registran en el Catalog desde init().
package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/email"
)

// Type indica la variante del provider.
type Type string

const (
	TypeOAuth       Type = "oauth"
	TypeEmail       Type = "email"
	TypeCredentials Type = "credentials"
)

// Check es una protección del flujo OAuth.
type Check string

const (
	CheckState Check = "state"
	CheckPKCE  Check = "pkce"
	CheckNone  Check = "none"
)

// ProfileFunc normaliza el perfil crudo del provider a un domain.User.
type ProfileFunc func(raw map[string]any) (domain.User, error)

// OAuthConfig es la variante OAuth/OIDC.
type OAuthConfig struct {
	ClientID         string
	ClientSecret     string
	AuthorizationURL string
	TokenURL         string
	UserInfoURL      string
	Scopes           []string
	// Params extra del authorization request (response_mode, prompt, ...).
	Params  map[string]string
	Checks  []Check
	IDToken bool
	Profile ProfileFunc
}

// SendVerificationFunc envía el magic link.
type SendVerificationFunc func(ctx context.Context, req email.VerificationRequest) error

// EmailConfig es la variante email (magic link).
type EmailConfig struct {
	From   string
	MaxAge time.Duration
	// SendVerificationRequest tiene prioridad sobre Sender.
	SendVerificationRequest SendVerificationFunc
	Sender                  email.Sender
}

// CredentialInput describe un campo del formulario de credentials.
type CredentialInput struct {
	Label       string `json:"label,omitempty"`
	Type        string `json:"type,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// AuthorizeFunc valida credenciales. (nil, nil) = credenciales rechazadas.
type AuthorizeFunc func(ctx context.Context, credentials map[string]string, r *http.Request) (*domain.User, error)

// CredentialsConfig es la variante credentials.
type CredentialsConfig struct {
	Credentials map[string]CredentialInput
	Authorize   AuthorizeFunc
}

// Config es la configuración de un provider tal como la declara la aplicación.
type Config struct {
	ID   string
	Name string
	Type Type

	OAuth       *OAuthConfig
	Email       *EmailConfig
	Credentials *CredentialsConfig
}

// Descriptor es un Config resuelto con sus URLs.
type Descriptor struct {
	Config
	SignInURL   string
	CallbackURL string
}

// Public es la vista de un provider que se expone al cliente.
type Public struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// Public devuelve la vista pública del descriptor (sin secretos).
func (d Descriptor) Public() Public {
	return Public{ID: d.ID, Name: d.Name, Type: d.Type, SignInURL: d.SignInURL, CallbackURL: d.CallbackURL}
}

// HasCheck indica si el provider OAuth declara el check c.
func (d Descriptor) HasCheck(c Check) bool {
	if d.OAuth == nil {
		return false
	}
	for _, x := range d.OAuth.Checks {
		if x == c {
			return true
		}
	}
	return false
}

// EmailMaxAge devuelve la vigencia del magic link (24h por defecto).
func (d Descriptor) EmailMaxAge() time.Duration {
	if d.Email != nil && d.Email.MaxAge > 0 {
		return d.Email.MaxAge
	}
	return 24 * time.Hour
}

// SendVerification envía el magic link usando el override o el Sender.
func (d Descriptor) SendVerification(ctx context.Context, req email.VerificationRequest) error {
	if d.Email == nil {
		return nil
	}
	req.Provider = d.ID
	if d.Email.SendVerificationRequest != nil {
		return d.Email.SendVerificationRequest(ctx, req)
	}
	return email.SendVerification(ctx, d.Email.Sender, req)
}
