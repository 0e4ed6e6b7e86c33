package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once  sync.Once
	root  atomic.Pointer[zap.Logger]
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init construye el logger raíz. Sólo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		level.SetLevel(parseLevel(cfg.Level))
		root.Store(build(cfg, level))
	})
}

// L devuelve el logger raíz; sin Init queda en dev/info.
func L() *zap.Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(Config{})
	return root.Load()
}

// SetLevel cambia el nivel del logger raíz sin reconstruirlo.
func SetLevel(lvl string) {
	level.SetLevel(parseLevel(lvl))
}

// Named devuelve el logger raíz con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushea los buffers pendientes.
func Sync() error {
	if l := root.Load(); l != nil {
		return l.Sync()
	}
	return nil
}
