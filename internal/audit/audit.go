// Package audit registra los eventos de autenticación como líneas estructuradas.
// Los emails se enmascaran; los tokens de sesión nunca se loguean.
package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/authgate/internal/events"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New devuelve un events.Handler que escribe cada evento en log (named "audit").
// Session va en debug: se dispara en cada lectura de sesión.
func New(log *zap.Logger) events.Handler {
	l := logger.OrNop(log).Named("audit")
	at := func(lvl zapcore.Level, event string) events.Func {
		return func(_ context.Context, m events.Message) error {
			if ce := l.Check(lvl, event); ce != nil {
				ce.Write(Fields(m)...)
			}
			return nil
		}
	}
	return events.Hooks{
		OnSignIn:      at(zapcore.InfoLevel, "signin"),
		OnSignOut:     at(zapcore.InfoLevel, "signout"),
		OnCreateUser:  at(zapcore.InfoLevel, "create_user"),
		OnUpdateUser:  at(zapcore.InfoLevel, "update_user"),
		OnLinkAccount: at(zapcore.InfoLevel, "link_account"),
		OnSession:     at(zapcore.DebugLevel, "session"),
		OnError:       at(zapcore.WarnLevel, "error"),
	}
}

// Fields arma los campos de auditoría de m.
func Fields(m events.Message) []zap.Field {
	fs := []zap.Field{zap.String("ts", time.Now().UTC().Format(time.RFC3339Nano))}
	if m.Provider != "" {
		fs = append(fs, logger.ProviderID(m.Provider))
	}
	if u := m.User; u != nil {
		fs = append(fs, logger.UserID(u.ID))
		if u.Email != "" {
			fs = append(fs, zap.String("email", util.MaskEmail(u.Email)))
		}
	}
	if s := m.Session; s != nil {
		if m.User == nil {
			fs = append(fs, logger.UserID(s.UserID))
		}
		fs = append(fs, zap.Time("session_expires", s.Expires))
	}
	if m.IsNewUser {
		fs = append(fs, zap.Bool("new_user", true))
	}
	if m.Err != nil {
		fs = append(fs, logger.Err(m.Err))
	}
	return fs
}
