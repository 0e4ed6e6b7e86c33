// Package redis implementa adapter.Adapter sobre Redis (go-redis).
// Cada sesión es una key JSON con TTL igual a su expiración.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/adapter"
	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

func init() {
	adapter.Register("redis", func(ctx context.Context, cfg adapter.Config) (adapter.Adapter, func() error, error) {
		opts, err := goredis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter/redis: parse dsn: %w", err)
		}
		rdb := goredis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("adapter/redis: ping failed: %w", err)
		}
		return New(rdb, cfg.Prefix), rdb.Close, nil
	})
}

// Store guarda sesiones en Redis.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

var (
	_ adapter.Adapter           = (*Store)(nil)
	_ adapter.VerificationStore = (*Store)(nil)
)

// New crea el adapter sobre un cliente ya conectado.
func New(client goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "authgate"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *Store) CreateSession(ctx context.Context, userID string, expires time.Time) (*domain.Session, error) {
	sess := &domain.Session{
		SessionToken: uuid.NewString(),
		UserID:       userID,
		Expires:      expires.UTC(),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, s.key("session", sess.SessionToken), b, time.Until(expires)).Err(); err != nil {
		return nil, fmt.Errorf("adapter/redis: set session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, sessionToken string) (*domain.Session, error) {
	b, err := s.client.Get(ctx, s.key("session", sessionToken)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adapter/redis: get session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("adapter/redis: decode session: %w", err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionToken string) error {
	return s.client.Del(ctx, s.key("session", sessionToken)).Err()
}

func (s *Store) CreateVerificationToken(ctx context.Context, vt domain.VerificationToken) error {
	b, err := json.Marshal(vt)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key("verify", vt.Identifier, vt.TokenHash), b, time.Until(vt.Expires)).Err()
}

func (s *Store) UseVerificationToken(ctx context.Context, identifier, tokenHash string) (*domain.VerificationToken, error) {
	b, err := s.client.GetDel(ctx, s.key("verify", identifier, tokenHash)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adapter/redis: use verification token: %w", err)
	}
	var vt domain.VerificationToken
	if err := json.Unmarshal(b, &vt); err != nil {
		return nil, err
	}
	return &vt, nil
}
