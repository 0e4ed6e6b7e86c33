// Package adapter define el contrato de persistencia de sesiones stateful y el
// decorador que aísla sus fallas del request.
//
// Drivers disponibles (registrados vía init()):
//   - memory: go-cache in-process (dev/testing)
//   - redis:  go-redis
//   - pg:     pgx pool
package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain"
)

// Adapter es el capability-set mínimo que el core usa: sesiones por token opaco.
type Adapter interface {
	CreateSession(ctx context.Context, userID string, expires time.Time) (*domain.Session, error)
	// GetSession devuelve nil, nil si el token no existe.
	GetSession(ctx context.Context, sessionToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionToken string) error
}

// VerificationStore es opcional: lo necesitan los providers de email.
type VerificationStore interface {
	CreateVerificationToken(ctx context.Context, vt domain.VerificationToken) error
	// UseVerificationToken consume el token; devuelve nil, nil si no existe.
	UseVerificationToken(ctx context.Context, identifier, tokenHash string) (*domain.VerificationToken, error)
}

// Config es la configuración para abrir un driver.
type Config struct {
	Driver string // "memory" | "redis" | "pg"
	DSN    string
	Prefix string // prefijo de keys (sólo redis)
}

// Factory abre un Adapter para cfg.
type Factory func(ctx context.Context, cfg Config) (Adapter, func() error, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registra un driver. Llamar desde init() del paquete del driver.
func Register(driver string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[driver] = f
}

// Drivers devuelve los drivers registrados, ordenados.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open abre el driver de cfg. Driver vacío o "none" => nil (sesiones stateless).
func Open(ctx context.Context, cfg Config) (Adapter, func() error, error) {
	if cfg.Driver == "" || cfg.Driver == "none" {
		return nil, func() error { return nil }, nil
	}
	mu.RLock()
	f, ok := factories[cfg.Driver]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("adapter: driver not registered: %s (available: %v)", cfg.Driver, Drivers())
	}
	return f(ctx, cfg)
}
