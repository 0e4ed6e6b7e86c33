package cookie

import (
	"go.uber.org/zap"
)

// OptionsOverride es un override parcial de Options. Los campos nil no se tocan.
type OptionsOverride struct {
	HTTPOnly *bool   `yaml:"http_only"`
	Secure   *bool   `yaml:"secure"`
	SameSite *string `yaml:"same_site"`
	Path     *string `yaml:"path"`
	Domain   *string `yaml:"domain"`
	MaxAge   *int    `yaml:"max_age"`
}

// SpecOverride es un override parcial de una cookie.
type SpecOverride struct {
	Name    *string         `yaml:"name"`
	Options OptionsOverride `yaml:"options"`
}

// PolicyOverride son los overrides de cookies del usuario.
type PolicyOverride struct {
	SessionToken     *SpecOverride `yaml:"session_token"`
	CallbackURL      *SpecOverride `yaml:"callback_url"`
	CSRFToken        *SpecOverride `yaml:"csrf_token"`
	PKCECodeVerifier *SpecOverride `yaml:"pkce_code_verifier"`
	State            *SpecOverride `yaml:"state"`
}

// Merge aplica o sobre p campo por campo: overridear Domain no pierde HTTPOnly.
func (p Policy) Merge(log *zap.Logger, o PolicyOverride) Policy {
	p.SessionToken = p.SessionToken.merge(log, o.SessionToken)
	p.CallbackURL = p.CallbackURL.merge(log, o.CallbackURL)
	p.CSRFToken = p.CSRFToken.merge(log, o.CSRFToken)
	p.PKCECodeVerifier = p.PKCECodeVerifier.merge(log, o.PKCECodeVerifier)
	p.State = p.State.merge(log, o.State)
	return p
}

func (s Spec) merge(log *zap.Logger, o *SpecOverride) Spec {
	if o == nil {
		return s
	}
	if o.Name != nil && *o.Name != "" {
		s.Name = *o.Name
	}
	oo := o.Options
	if oo.HTTPOnly != nil {
		s.Options.HTTPOnly = *oo.HTTPOnly
	}
	if oo.Secure != nil {
		s.Options.Secure = *oo.Secure
	}
	if oo.SameSite != nil {
		s.Options.SameSite = ParseSameSite(log, *oo.SameSite)
	}
	if oo.Path != nil {
		s.Options.Path = *oo.Path
	}
	if oo.Domain != nil {
		s.Options.Domain = *oo.Domain
	}
	if oo.MaxAge != nil {
		s.Options.MaxAge = *oo.MaxAge
	}
	return s
}
