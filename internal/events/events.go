// Package events define los hooks de eventos de auth y el decorador que evita que
// un hook que falla o hace panic rompa el request.
package events

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"go.uber.org/zap"
)

// Message es el payload de un evento. Los campos que no aplican quedan vacíos.
type Message struct {
	User      *domain.User
	Session   *domain.Session
	Provider  string
	IsNewUser bool
	Err       error
}

// Handler es el capability-set de eventos.
type Handler interface {
	SignIn(ctx context.Context, m Message) error
	SignOut(ctx context.Context, m Message) error
	CreateUser(ctx context.Context, m Message) error
	UpdateUser(ctx context.Context, m Message) error
	LinkAccount(ctx context.Context, m Message) error
	Session(ctx context.Context, m Message) error
	Error(ctx context.Context, m Message) error
}

// Func es un hook individual.
type Func func(ctx context.Context, m Message) error

// Hooks implementa Handler con funciones opcionales; las nil son no-op.
type Hooks struct {
	OnSignIn      Func
	OnSignOut     Func
	OnCreateUser  Func
	OnUpdateUser  Func
	OnLinkAccount Func
	OnSession     Func
	OnError       Func
}

var _ Handler = Hooks{}

func call(f Func, ctx context.Context, m Message) error {
	if f == nil {
		return nil
	}
	return f(ctx, m)
}

func (h Hooks) SignIn(ctx context.Context, m Message) error      { return call(h.OnSignIn, ctx, m) }
func (h Hooks) SignOut(ctx context.Context, m Message) error     { return call(h.OnSignOut, ctx, m) }
func (h Hooks) CreateUser(ctx context.Context, m Message) error  { return call(h.OnCreateUser, ctx, m) }
func (h Hooks) UpdateUser(ctx context.Context, m Message) error  { return call(h.OnUpdateUser, ctx, m) }
func (h Hooks) LinkAccount(ctx context.Context, m Message) error { return call(h.OnLinkAccount, ctx, m) }
func (h Hooks) Session(ctx context.Context, m Message) error     { return call(h.OnSession, ctx, m) }
func (h Hooks) Error(ctx context.Context, m Message) error       { return call(h.OnError, ctx, m) }

// FailureRecorder recibe las fallas aisladas. Puede ser nil.
type FailureRecorder interface {
	CollaboratorFailure(collaborator, op string)
}

type safeHandler struct {
	next Handler
	log  *zap.Logger
	rec  FailureRecorder
}

// Safe decora h: errores y panics se loguean y nunca llegan al caller.
// Un h nil se trata como Hooks{} (todo no-op). Los eventos no se reintentan.
func Safe(h Handler, log *zap.Logger, rec FailureRecorder) Handler {
	if h == nil {
		h = Hooks{}
	}
	if s, ok := h.(*safeHandler); ok {
		return s
	}
	return &safeHandler{
		next: h,
		log:  logger.OrNop(log).With(logger.Component("events")),
		rec:  rec,
	}
}

func (s *safeHandler) run(ctx context.Context, name string, f func() error) (ret error) {
	defer func() {
		if r := recover(); r != nil {
			s.failed(name, fmt.Errorf("panic: %v", r))
		}
		ret = nil
	}()
	if err := f(); err != nil {
		s.failed(name, err)
	}
	return nil
}

func (s *safeHandler) failed(name string, err error) {
	s.log.Error("event handler error", logger.Op(name), logger.Err(err))
	if s.rec != nil {
		s.rec.CollaboratorFailure("events", name)
	}
}

func (s *safeHandler) SignIn(ctx context.Context, m Message) error {
	return s.run(ctx, "signIn", func() error { return s.next.SignIn(ctx, m) })
}

func (s *safeHandler) SignOut(ctx context.Context, m Message) error {
	return s.run(ctx, "signOut", func() error { return s.next.SignOut(ctx, m) })
}

func (s *safeHandler) CreateUser(ctx context.Context, m Message) error {
	return s.run(ctx, "createUser", func() error { return s.next.CreateUser(ctx, m) })
}

func (s *safeHandler) UpdateUser(ctx context.Context, m Message) error {
	return s.run(ctx, "updateUser", func() error { return s.next.UpdateUser(ctx, m) })
}

func (s *safeHandler) LinkAccount(ctx context.Context, m Message) error {
	return s.run(ctx, "linkAccount", func() error { return s.next.LinkAccount(ctx, m) })
}

func (s *safeHandler) Session(ctx context.Context, m Message) error {
	return s.run(ctx, "session", func() error { return s.next.Session(ctx, m) })
}

func (s *safeHandler) Error(ctx context.Context, m Message) error {
	return s.run(ctx, "error", func() error { return s.next.Error(ctx, m) })
}
