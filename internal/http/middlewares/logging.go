package middlewares

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// statusRecorder captura el status code de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

// WithLogging inyecta un logger scoped (request_id, method, path) en el contexto,
// loguea el fin de cada request y lo registra en rec (puede ser nil).
func WithLogging(base *zap.Logger, rec *metrics.Recorder) Middleware {
	base = logger.OrNop(base)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := base.With(
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r.WithContext(logger.ToContext(r.Context(), reqLog)))

			dur := time.Since(start)
			action := "none"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if a := rc.URLParam("action"); a != "" {
					action = a
				}
			}
			rec.HTTPRequest(action, r.Method, sr.status, dur)

			fields := []zap.Field{logger.Action(action), logger.Status(sr.status), logger.Duration(dur)}
			switch {
			case sr.status >= 500:
				reqLog.Error("request failed", fields...)
			case sr.status >= 400:
				reqLog.Warn("request completed with client error", fields...)
			default:
				reqLog.Info("request completed", fields...)
			}
		})
	}
}
