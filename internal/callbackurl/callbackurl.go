// Package callbackurl resuelve a dónde redirigir al usuario después de autenticarse,
// sin permitir open redirects: el resultado siempre es del mismo origen que la base.
package callbackurl

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"go.uber.org/zap"
)

// Hook transforma/valida el candidato ya validado (callback "redirect" del usuario).
type Hook func(ctx context.Context, url, baseURL string) (string, error)

// Input es la entrada de Create.
type Input struct {
	// BaseURL es el origen configurado de la aplicación (ej. https://app.example).
	BaseURL     string
	CookieValue string
	ParamValue  string
	Redirect    Hook
	Log         *zap.Logger
}

// Outcome describe cómo se resolvió la URL (para métricas).
type Outcome string

const (
	OutcomeParam    Outcome = "param"
	OutcomeCookie   Outcome = "cookie"
	OutcomeDefault  Outcome = "default"
	OutcomeRejected Outcome = "rejected"
)

// Result es la salida de Create. Cookie vacío = no hace falta reemitir.
type Result struct {
	URL     string
	Cookie  string
	Outcome Outcome
}

// Create elige param > cookie > base, descarta candidatos de otro origen y corre
// el hook al final. Nunca devuelve error por input del request.
func Create(ctx context.Context, in Input) (Result, error) {
	log := logger.OrNop(in.Log)

	candidate, outcome := in.BaseURL, OutcomeDefault
	switch {
	case in.ParamValue != "":
		candidate, outcome = in.ParamValue, OutcomeParam
	case in.CookieValue != "":
		candidate, outcome = in.CookieValue, OutcomeCookie
	}

	resolved, ok := SameOrigin(in.BaseURL, candidate)
	if !ok {
		log.Debug("callback url rejected, falling back to base url",
			logger.String("candidate", candidate),
			logger.BaseURL(in.BaseURL),
		)
		resolved, outcome = in.BaseURL, OutcomeRejected
	}

	if in.Redirect != nil {
		resolved = runHook(ctx, log, in, resolved)
	}

	res := Result{URL: resolved, Outcome: outcome}
	if resolved != in.CookieValue {
		res.Cookie = resolved
	}
	return res, nil
}

// runHook aplica el hook; si falla, hace panic o devuelve otro origen se queda con
// el valor ya validado.
func runHook(ctx context.Context, log *zap.Logger, in Input, validated string) (out string) {
	out = validated
	defer func() {
		if r := recover(); r != nil {
			log.Error("redirect callback panicked", logger.Err(fmt.Errorf("%v", r)))
			out = validated
		}
	}()

	next, err := in.Redirect(ctx, validated, in.BaseURL)
	if err != nil {
		log.Error("redirect callback failed", logger.Err(err))
		return validated
	}
	if checked, ok := SameOrigin(in.BaseURL, next); ok {
		return checked
	}
	log.Warn("redirect callback returned a foreign origin, ignoring", logger.String("url", next))
	return validated
}
