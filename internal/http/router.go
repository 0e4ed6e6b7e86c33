package http

import (
	"net/http"
	"strings"

	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RouterDeps contiene las dependencias del router.
type RouterDeps struct {
	Handler  *Handler
	BasePath string
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
	// Gatherer != nil expone GET /metrics.
	Gatherer prometheus.Gatherer
	// RateLimit se aplica a los POST (signin, callback, signout).
	RateLimit mw.RateLimitConfig
}

// NewRouter arma el chi.Router con las rutas de auth bajo BasePath.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// /readyz es público y sin logging (muy frecuente)
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	base := "/" + strings.Trim(deps.BasePath, "/")
	if base == "/" {
		base = ""
	}
	routes := func(r chi.Router) {
		r.Use(
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithLogging(deps.Logger, deps.Metrics),
			mw.WithSecurityHeaders(),
			mw.WithNoStore(),
		)
		for _, pattern := range []string{"/{action}", "/{action}/{provider}"} {
			r.Get(pattern, deps.Handler.ServeHTTP)
			r.With(mw.WithRateLimit(deps.RateLimit)).Post(pattern, deps.Handler.ServeHTTP)
		}
	}
	if base == "" {
		r.Group(routes)
	} else {
		r.Route(base, routes)
	}
	return r
}
