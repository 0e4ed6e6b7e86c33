package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug devuelve l con los mensajes debug habilitados sólo si on es true.
// El core de base tiene que estar construido en nivel debug para que on=true
// tenga efecto; con on=false el nivel mínimo sube a info.
func Debug(l *zap.Logger, on bool) *zap.Logger {
	if l == nil {
		l = L()
	}
	if on {
		return l
	}
	return l.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
}

// OrNop devuelve l, o un logger que descarta todo si l es nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
