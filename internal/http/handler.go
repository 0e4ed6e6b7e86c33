package http

import (
	"net/http"
	"net/url"

	"github.com/dropDatabas3/authgate/internal/cookie"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/options"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler resuelve options por request y despacha la acción.
type Handler struct {
	opts *options.UserOptions
	url  string
	log  *zap.Logger
}

// NewHandler crea el handler. rawURL vacía → variables de entorno.
func NewHandler(opts *options.UserOptions, rawURL string, log *zap.Logger) *Handler {
	if opts == nil {
		opts = &options.UserOptions{}
	}
	return &Handler{opts: opts, url: rawURL, log: logger.OrNop(log)}
}

// request agrupa lo que necesita cada acción.
type request struct {
	w    http.ResponseWriter
	r    *http.Request
	body url.Values
	o    options.Internal
	log  *zap.Logger
}

// ServeHTTP implementa el dispatch de {action}[/{provider}].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action, ok := options.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		apperrors.WriteError(w, apperrors.ErrUnknownAction)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		apperrors.WriteError(w, apperrors.ErrMethodNotAllowed)
		return
	}

	body, err := readForm(w, r)
	if err != nil {
		apperrors.WriteError(w, apperrors.ErrBadRequest.WithDetail("invalid request body").WithCause(err))
		return
	}
	isPost := r.Method == http.MethodPost
	csrfToken := body.Get("csrfToken")
	if !isPost {
		csrfToken = r.URL.Query().Get("csrfToken")
	}

	res, err := options.Init(r.Context(), options.Params{
		Options:     h.opts,
		URL:         h.url,
		Action:      action,
		ProviderID:  chi.URLParam(r, "provider"),
		CallbackURL: param(r, body, "callbackUrl"),
		CSRFToken:   csrfToken,
		IsPost:      isPost,
		Cookies:     cookieMap(r),
	})
	if err != nil {
		logger.From(r.Context()).Error("options init failed", logger.Action(string(action)), logger.Err(err))
		apperrors.WriteError(w, err)
		return
	}

	// cookies del resolver primero (CSRF, callback url)
	cookie.Write(w, res.Cookies...)

	req := &request{
		w:    w,
		r:    r,
		body: body,
		o:    res.Options,
		log:  res.Options.Logger.With(logger.RequestID(w.Header().Get("X-Request-ID"))),
	}
	h.dispatch(req, isPost)
}

func (h *Handler) dispatch(req *request, isPost bool) {
	switch req.o.Action {
	case options.ActionCSRF:
		req.csrf()
	case options.ActionProviders:
		req.providers()
	case options.ActionSession:
		req.session()
	case options.ActionSignIn:
		if isPost {
			req.signIn()
		} else {
			req.signInPage()
		}
	case options.ActionCallback:
		req.callback()
	case options.ActionSignOut:
		if isPost {
			req.signOut()
		} else {
			req.signOutPage()
		}
	case options.ActionVerifyRequest:
		req.verifyRequest()
	case options.ActionError:
		req.errorPage()
	}
}
