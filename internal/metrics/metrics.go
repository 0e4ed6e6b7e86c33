// Package metrics expone las métricas Prometheus del servicio. Se define aparte
// para no crear ciclos entre http, options y los decoradores de adapter/events.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder agrupa los collectors. Un *Recorder nil es válido y no registra nada.
type Recorder struct {
	collaboratorFailures *prometheus.CounterVec
	csrf                 *prometheus.CounterVec
	callbackURL          *prometheus.CounterVec
	requests             *prometheus.CounterVec
	latency              *prometheus.HistogramVec
}

// New crea los collectors y los registra en reg (default si es nil).
// Si reg ya tiene los collectors (otro New) se reutilizan.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_collaborator_failures_total",
			Help: "Fallos (error o panic) absorbidos de adapter y events",
		}, []string{"collaborator", "op"}),
		csrf: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_csrf_tokens_total",
			Help: "Resolución del CSRF token por request",
		}, []string{"outcome"}),
		callbackURL: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_callback_url_total",
			Help: "Origen de la callback URL resuelta",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_http_requests_total",
			Help: "Requests HTTP por acción y status",
		}, []string{"action", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authgate_http_request_duration_ms",
			Help:    "Latencia de requests HTTP en milisegundos",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"action"}),
	}
	var err error
	if r.collaboratorFailures, err = register(reg, r.collaboratorFailures); err != nil {
		return nil, err
	}
	if r.csrf, err = register(reg, r.csrf); err != nil {
		return nil, err
	}
	if r.callbackURL, err = register(reg, r.callbackURL); err != nil {
		return nil, err
	}
	if r.requests, err = register(reg, r.requests); err != nil {
		return nil, err
	}
	if r.latency, err = register(reg, r.latency); err != nil {
		return nil, err
	}
	return r, nil
}

// register devuelve el collector ya registrado si existe uno equivalente.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// CollaboratorFailure implementa adapter.FailureRecorder y events.FailureRecorder.
func (r *Recorder) CollaboratorFailure(collaborator, op string) {
	if r == nil {
		return
	}
	r.collaboratorFailures.WithLabelValues(collaborator, op).Inc()
}

// CSRF outcomes.
const (
	CSRFIssued   = "issued"
	CSRFReused   = "reused"
	CSRFVerified = "verified"
)

// CSRF registra un outcome de CSRF.
func (r *Recorder) CSRF(outcome string) {
	if r == nil {
		return
	}
	r.csrf.WithLabelValues(outcome).Inc()
}

// CallbackURL registra cómo se resolvió la callback URL.
func (r *Recorder) CallbackURL(outcome string) {
	if r == nil {
		return
	}
	r.callbackURL.WithLabelValues(outcome).Inc()
}

// HTTPRequest registra un request terminado.
func (r *Recorder) HTTPRequest(action, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(action, method, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(action).Observe(float64(d) / float64(time.Millisecond))
}

// Handler expone g (default si es nil) en formato Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
