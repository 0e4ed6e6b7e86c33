// Package memory implementa adapter.Adapter en memoria con go-cache.
// Útil para desarrollo y testing: las sesiones no sobreviven un restart.
package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/authgate/internal/adapter"
	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

func init() {
	adapter.Register("memory", func(ctx context.Context, cfg adapter.Config) (adapter.Adapter, func() error, error) {
		m := New()
		return m, func() error { m.c.Flush(); return nil }, nil
	})
}

// Mem guarda sesiones y verification tokens en un go-cache con TTL por entrada.
type Mem struct {
	c *gocache.Cache
}

var (
	_ adapter.Adapter           = (*Mem)(nil)
	_ adapter.VerificationStore = (*Mem)(nil)
)

// New crea un adapter en memoria.
func New() *Mem {
	return &Mem{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func sessionKey(token string) string  { return "session:" + token }
func verifyKey(id, hash string) string { return "verify:" + id + ":" + hash }

func (m *Mem) CreateSession(ctx context.Context, userID string, expires time.Time) (*domain.Session, error) {
	s := &domain.Session{
		SessionToken: uuid.NewString(),
		UserID:       userID,
		Expires:      expires.UTC(),
	}
	m.c.Set(sessionKey(s.SessionToken), *s, time.Until(expires))
	return s, nil
}

func (m *Mem) GetSession(ctx context.Context, sessionToken string) (*domain.Session, error) {
	v, ok := m.c.Get(sessionKey(sessionToken))
	if !ok {
		return nil, nil
	}
	s := v.(domain.Session)
	return &s, nil
}

func (m *Mem) DeleteSession(ctx context.Context, sessionToken string) error {
	m.c.Delete(sessionKey(sessionToken))
	return nil
}

func (m *Mem) CreateVerificationToken(ctx context.Context, vt domain.VerificationToken) error {
	m.c.Set(verifyKey(vt.Identifier, vt.TokenHash), vt, time.Until(vt.Expires))
	return nil
}

func (m *Mem) UseVerificationToken(ctx context.Context, identifier, tokenHash string) (*domain.VerificationToken, error) {
	k := verifyKey(identifier, tokenHash)
	v, ok := m.c.Get(k)
	if !ok {
		return nil, nil
	}
	m.c.Delete(k)
	vt := v.(domain.VerificationToken)
	return &vt, nil
}
