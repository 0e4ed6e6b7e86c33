// Package pg implementa adapter.Adapter sobre PostgreSQL.
// Usa pgxpool directamente; el schema vive en migrations/postgres/auth.
package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authgate/internal/adapter"
	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/security/token"
	migrations "github.com/dropDatabas3/authgate/migrations/postgres"
)

func init() {
	adapter.Register("pg", func(ctx context.Context, cfg adapter.Config) (adapter.Adapter, func() error, error) {
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter/pg: connect: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("adapter/pg: ping: %w", err)
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return New(pool), func() error { pool.Close(); return nil }, nil
	})
}

// Store guarda sesiones en las tablas auth_session / auth_verification_token.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ adapter.Adapter           = (*Store)(nil)
	_ adapter.VerificationStore = (*Store)(nil)
)

// New crea el adapter sobre un pool ya abierto.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate aplica los .sql embebidos en orden. Son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := fs.ReadDir(migrations.AuthFS, migrations.AuthDir)
	if err != nil {
		return fmt.Errorf("adapter/pg: read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := fs.ReadFile(migrations.AuthFS, migrations.AuthDir+"/"+name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("adapter/pg: migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, userID string, expires time.Time) (*domain.Session, error) {
	tok, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	sess := &domain.Session{SessionToken: tok, UserID: userID, Expires: expires.UTC()}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO auth_session (session_token, user_id, expires_at) VALUES ($1, $2, $3)`,
		sess.SessionToken, sess.UserID, sess.Expires)
	if err != nil {
		return nil, fmt.Errorf("adapter/pg: insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, sessionToken string) (*domain.Session, error) {
	var sess domain.Session
	err := s.pool.QueryRow(ctx,
		`SELECT session_token, user_id, expires_at FROM auth_session
		 WHERE session_token = $1 AND expires_at > NOW()`,
		sessionToken,
	).Scan(&sess.SessionToken, &sess.UserID, &sess.Expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adapter/pg: get session: %w", err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionToken string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM auth_session WHERE session_token = $1`, sessionToken)
	return err
}

func (s *Store) CreateVerificationToken(ctx context.Context, vt domain.VerificationToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_verification_token (identifier, token_hash, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (identifier, token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		vt.Identifier, vt.TokenHash, vt.Expires.UTC())
	return err
}

func (s *Store) UseVerificationToken(ctx context.Context, identifier, tokenHash string) (*domain.VerificationToken, error) {
	var vt domain.VerificationToken
	err := s.pool.QueryRow(ctx,
		`DELETE FROM auth_verification_token WHERE identifier = $1 AND token_hash = $2
		 RETURNING identifier, token_hash, expires_at`,
		identifier, tokenHash,
	).Scan(&vt.Identifier, &vt.TokenHash, &vt.Expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adapter/pg: use verification token: %w", err)
	}
	return &vt, nil
}
