// Package rate limita intentos de sign-in por cliente con ventanas fijas.
package rate

import (
	"context"
	"time"
)

// Result es la respuesta de un Limiter para una key.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	// WindowTTL es lo que falta para que la ventana actual se reinicie.
	WindowTTL time.Duration
	Hits      int64
}

// Limiter cuenta hits por key dentro de una ventana.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Policy es el límite aplicado por un Limiter.
type Policy struct {
	Max    int64
	Window time.Duration
}

func (p Policy) result(hits int64, ttl time.Duration) Result {
	res := Result{Allowed: hits <= p.Max, Hits: hits, WindowTTL: ttl}
	if rem := p.Max - hits; rem > 0 {
		res.Remaining = rem
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = p.Window
		}
	}
	return res
}

// windowStart trunca now a la ventana; todas las réplicas comparten el mismo corte.
func (p Policy) windowStart(now time.Time) time.Time {
	return now.UTC().Truncate(p.Window)
}
