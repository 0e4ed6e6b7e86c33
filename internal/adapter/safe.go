package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"go.uber.org/zap"
)

// FailureRecorder recibe las fallas aisladas (ej. métricas). Puede ser nil.
type FailureRecorder interface {
	CollaboratorFailure(collaborator, op string)
}

// safeAdapter envuelve un Adapter: captura errores y panics, los loguea y los
// convierte en no-op. Nunca reintenta.
type safeAdapter struct {
	next Adapter
	log  *zap.Logger
	rec  FailureRecorder
}

// Safe decora a. Si a es nil devuelve nil: sin adapter las sesiones son stateless.
// Si a implementa VerificationStore, el decorado también.
func Safe(a Adapter, log *zap.Logger, rec FailureRecorder) Adapter {
	if a == nil {
		return nil
	}
	if s, ok := a.(*safeAdapter); ok {
		return s
	}
	if s, ok := a.(*safeVerifyingAdapter); ok {
		return s
	}
	base := &safeAdapter{
		next: a,
		log:  logger.OrNop(log).With(logger.Component("adapter")),
		rec:  rec,
	}
	if vs, ok := a.(VerificationStore); ok {
		return &safeVerifyingAdapter{safeAdapter: base, vs: vs}
	}
	return base
}

func (s *safeAdapter) fail(op string, err error, fields ...zap.Field) {
	fields = append(fields, logger.Op(op), logger.Err(err))
	s.log.Error("adapter error", fields...)
	if s.rec != nil {
		s.rec.CollaboratorFailure("adapter", op)
	}
}

func (s *safeAdapter) guard(op string) {
	if rec := recover(); rec != nil {
		s.fail(op, fmt.Errorf("panic: %v", rec))
	}
}

func (s *safeAdapter) CreateSession(ctx context.Context, userID string, expires time.Time) (out *domain.Session, _ error) {
	defer s.guard("CreateSession")
	sess, err := s.next.CreateSession(ctx, userID, expires)
	if err != nil {
		s.fail("CreateSession", err, logger.UserID(userID))
		return nil, nil
	}
	return sess, nil
}

func (s *safeAdapter) GetSession(ctx context.Context, sessionToken string) (out *domain.Session, _ error) {
	defer s.guard("GetSession")
	sess, err := s.next.GetSession(ctx, sessionToken)
	if err != nil {
		s.fail("GetSession", err)
		return nil, nil
	}
	return sess, nil
}

func (s *safeAdapter) DeleteSession(ctx context.Context, sessionToken string) error {
	defer s.guard("DeleteSession")
	if err := s.next.DeleteSession(ctx, sessionToken); err != nil {
		s.fail("DeleteSession", err)
	}
	return nil
}

type safeVerifyingAdapter struct {
	*safeAdapter
	vs VerificationStore
}

func (s *safeVerifyingAdapter) CreateVerificationToken(ctx context.Context, vt domain.VerificationToken) error {
	defer s.guard("CreateVerificationToken")
	if err := s.vs.CreateVerificationToken(ctx, vt); err != nil {
		s.fail("CreateVerificationToken", err)
	}
	return nil
}

func (s *safeVerifyingAdapter) UseVerificationToken(ctx context.Context, identifier, tokenHash string) (out *domain.VerificationToken, _ error) {
	defer s.guard("UseVerificationToken")
	vt, err := s.vs.UseVerificationToken(ctx, identifier, tokenHash)
	if err != nil {
		s.fail("UseVerificationToken", err)
		return nil, nil
	}
	return vt, nil
}
