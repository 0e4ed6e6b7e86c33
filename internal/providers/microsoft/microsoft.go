// Package microsoft registra el provider OIDC de Microsoft (Entra ID).
// Soporta cuentas personales y work/school según el tenant.
package microsoft

import (
	"github.com/dropDatabas3/authgate/internal/providers"
)

const ID = "microsoft"

const loginBase = "https://login.microsoftonline.com/"

func init() { providers.Register(ID, New) }

// New construye el provider. Extra["tenant_id"] vacío → "common" (multi-tenant).
func New(o providers.Options) (providers.Config, error) {
	tenant := o.Extra["tenant_id"]
	if tenant == "" {
		tenant = "common"
	}
	oc := providers.OAuthFromOptions(o,
		loginBase+tenant+"/oauth2/v2.0/authorize",
		loginBase+tenant+"/oauth2/v2.0/token",
		"https://graph.microsoft.com/oidc/userinfo",
		[]string{"openid", "profile", "email"}, nil)
	oc.IDToken = true
	oc.Checks = []providers.Check{providers.CheckState, providers.CheckPKCE}
	return providers.Config{ID: ID, Name: "Microsoft", Type: providers.TypeOAuth, OAuth: oc}, nil
}
