package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/authgate/internal/adapter/memory"
	"github.com/dropDatabas3/authgate/internal/domain"
	"github.com/dropDatabas3/authgate/internal/email"
	apperrors "github.com/dropDatabas3/authgate/internal/errors"
	"github.com/dropDatabas3/authgate/internal/events"
	"github.com/dropDatabas3/authgate/internal/options"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAuthURL   = "http://localhost:3000/api/auth"
	sessionCookie = "authgate.session-token"
	csrfCookie    = "authgate.csrf-token"
)

// browser guarda cookies entre requests como lo haría un user-agent.
type browser struct {
	t   *testing.T
	h   http.Handler
	jar map[string]string
}

func newBrowser(t *testing.T, u *options.UserOptions) *browser {
	t.Helper()
	h := NewRouter(RouterDeps{
		Handler:  NewHandler(u, testAuthURL, zap.NewNop()),
		BasePath: "/api/auth",
		Logger:   zap.NewNop(),
	})
	return &browser{t: t, h: h, jar: map[string]string{}}
}

func (b *browser) do(method, target string, form url.Values) *http.Response {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, v := range b.jar {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)

	res := rec.Result()
	for _, c := range res.Cookies() {
		if c.MaxAge < 0 {
			delete(b.jar, c.Name)
		} else {
			b.jar[c.Name] = c.Value
		}
	}
	return res
}

func decode(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&m))
	return m
}

func (b *browser) csrfToken() string {
	b.t.Helper()
	res := b.do(http.MethodGet, "/api/auth/csrf", nil)
	require.Equal(b.t, http.StatusOK, res.StatusCode)
	tok, _ := decode(b.t, res)["csrfToken"].(string)
	require.NotEmpty(b.t, tok)
	return tok
}

func credentialsProvider() providers.Config {
	return providers.Config{
		ID:   "creds",
		Type: providers.TypeCredentials,
		Credentials: &providers.CredentialsConfig{
			Credentials: map[string]providers.CredentialInput{"username": {Label: "Username"}},
			Authorize: func(_ context.Context, c map[string]string, _ *http.Request) (*domain.User, error) {
				if c["password"] != "pw" {
					return nil, nil
				}
				return &domain.User{ID: "u-" + c["username"], Name: c["username"], Email: c["username"] + "@example.com"}, nil
			},
		},
	}
}

func TestCSRF_IssuedOnceThenReused(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s3cret"})

	first := b.csrfToken()
	require.Contains(t, b.jar, csrfCookie)
	assert.True(t, strings.HasPrefix(b.jar[csrfCookie], first+"|"))

	assert.Equal(t, first, b.csrfToken(), "a valid cookie keeps the same token")
}

func TestProviders_ListsPublicViews(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Providers: []providers.Config{credentialsProvider()}})

	res := b.do(http.MethodGet, "/api/auth/providers", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode(t, res)
	p, ok := body["creds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "credentials", p["type"])
	assert.Equal(t, testAuthURL+"/signin/creds", p["signinUrl"])
	assert.Equal(t, testAuthURL+"/callback/creds", p["callbackUrl"])
}

func TestUnknownAction(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s"})
	res := b.do(http.MethodGet, "/api/auth/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSession_EmptyWithoutValidCookie(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s"})

	res := b.do(http.MethodGet, "/api/auth/session", nil)
	assert.Empty(t, decode(t, res))

	b.jar[sessionCookie] = "garbage"
	res = b.do(http.MethodGet, "/api/auth/session", nil)
	assert.Empty(t, decode(t, res))
	assert.NotContains(t, b.jar, sessionCookie, "invalid session cookie is expired")
}

func TestCredentials_SignInSessionSignOut(t *testing.T) {
	var signIns, signOuts atomic.Int32
	b := newBrowser(t, &options.UserOptions{
		Secret:    "s3cret",
		Providers: []providers.Config{credentialsProvider()},
		Events: events.Hooks{
			OnSignIn:  func(context.Context, events.Message) error { signIns.Add(1); return nil },
			OnSignOut: func(context.Context, events.Message) error { signOuts.Add(1); return nil },
		},
	})
	tok := b.csrfToken()

	res := b.do(http.MethodPost, "/api/auth/callback/creds", url.Values{
		"csrfToken": {tok}, "username": {"ada"}, "password": {"pw"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "http://localhost:3000", res.Header.Get("Location"))
	require.Contains(t, b.jar, sessionCookie)
	assert.EqualValues(t, 1, signIns.Load())

	sess := decode(t, b.do(http.MethodGet, "/api/auth/session", nil))
	user, ok := sess["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u-ada", user["id"])
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotEmpty(t, sess["expires"])

	res = b.do(http.MethodPost, "/api/auth/signout", url.Values{})
	assert.Equal(t, http.StatusForbidden, res.StatusCode, "signout requires csrf")
	require.Contains(t, b.jar, sessionCookie)

	res = b.do(http.MethodPost, "/api/auth/signout", url.Values{"csrfToken": {tok}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.NotContains(t, b.jar, sessionCookie)
	assert.EqualValues(t, 1, signOuts.Load())

	assert.Empty(t, decode(t, b.do(http.MethodGet, "/api/auth/session", nil)))
}

func TestCredentials_Rejected(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Providers: []providers.Config{credentialsProvider()}})
	tok := b.csrfToken()

	res := b.do(http.MethodPost, "/api/auth/callback/creds", url.Values{
		"csrfToken": {tok}, "username": {"ada"}, "password": {"wrong"},
	})
	require.Equal(t, http.StatusFound, res.StatusCode)
	loc := res.Header.Get("Location")
	assert.Contains(t, loc, "/api/auth/signin")
	assert.Contains(t, loc, "error=CredentialsSignin")
	assert.NotContains(t, b.jar, sessionCookie)
}

func TestCredentials_JSONRedirect(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Providers: []providers.Config{credentialsProvider()}})
	tok := b.csrfToken()

	res := b.do(http.MethodPost, "/api/auth/callback/creds", url.Values{
		"csrfToken": {tok}, "username": {"ada"}, "password": {"pw"}, "json": {"true"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "http://localhost:3000", decode(t, res)["url"])
}

func TestSignIn_WithoutCSRFRedirectsToSignInPage(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Providers: []providers.Config{credentialsProvider()}})

	res := b.do(http.MethodPost, "/api/auth/signin/creds", url.Values{"csrfToken": {"forged"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, testAuthURL+"/signin?csrf=true", res.Header.Get("Location"))
}

func TestSignInPage_CallbackURLValidation(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s"})

	res := b.do(http.MethodGet, "/api/auth/signin?callbackUrl="+url.QueryEscape("https://evil.example/x"), nil)
	assert.Equal(t, "http://localhost:3000", decode(t, res)["callbackUrl"])

	res = b.do(http.MethodGet, "/api/auth/signin?callbackUrl="+url.QueryEscape("/dashboard"), nil)
	assert.Equal(t, "http://localhost:3000/dashboard", decode(t, res)["callbackUrl"])
	assert.Equal(t, "http://localhost:3000/dashboard", b.jar["authgate.callback-url"])

	// sin param, el valor sale de la cookie
	res = b.do(http.MethodGet, "/api/auth/signin", nil)
	assert.Equal(t, "http://localhost:3000/dashboard", decode(t, res)["callbackUrl"])
}

func TestSignInPage_CustomPageRedirects(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Pages: options.Pages{SignIn: "/login"}})
	res := b.do(http.MethodGet, "/api/auth/signin", nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/login?"))
}

func TestOAuth_SignInRedirectsWithStateAndPKCE(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Providers: []providers.Config{{
		ID:   "idp",
		Type: providers.TypeOAuth,
		OAuth: &providers.OAuthConfig{
			ClientID:         "cid",
			AuthorizationURL: "https://idp.example/authorize",
			TokenURL:         "https://idp.example/token",
			Checks:           []providers.Check{providers.CheckState, providers.CheckPKCE},
		},
	}}})
	tok := b.csrfToken()

	res := b.do(http.MethodPost, "/api/auth/signin/idp", url.Values{"csrfToken": {tok}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example", loc.Host)
	q := loc.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, testAuthURL+"/callback/idp", q.Get("redirect_uri"))
	assert.Equal(t, b.jar["authgate.state"], q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, b.jar["authgate.pkce.code_verifier"])

	res = b.do(http.MethodGet, "/api/auth/callback/idp?code=abc", nil)
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)
	assert.NotContains(t, b.jar, "authgate.state")
}

func TestEmail_MagicLinkStatefulSession(t *testing.T) {
	var (
		mu     sync.Mutex
		sent   []email.VerificationRequest
		failed []error
	)
	b := newBrowser(t, &options.UserOptions{
		Secret:  "s3cret",
		Adapter: memory.New(),
		Events: events.Hooks{OnError: func(_ context.Context, m events.Message) error {
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, m.Err)
			return nil
		}},
		Providers: []providers.Config{{
			ID:   "email",
			Type: providers.TypeEmail,
			Email: &providers.EmailConfig{
				SendVerificationRequest: func(_ context.Context, req email.VerificationRequest) error {
					mu.Lock()
					defer mu.Unlock()
					sent = append(sent, req)
					return nil
				},
			},
		}},
	})
	tok := b.csrfToken()

	res := b.do(http.MethodPost, "/api/auth/signin/email", url.Values{"csrfToken": {tok}, "email": {" Ada@Example.com "}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), testAuthURL+"/verify-request"))

	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].Identifier)
	assert.Equal(t, "email", sent[0].Provider)
	link, err := url.Parse(sent[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/callback/email", link.Path)

	res = b.do(http.MethodGet, link.RequestURI(), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "http://localhost:3000", res.Header.Get("Location"))
	require.Contains(t, b.jar, sessionCookie)
	assert.NotContains(t, b.jar[sessionCookie], ".", "stateful sessions use opaque tokens")

	sess := decode(t, b.do(http.MethodGet, "/api/auth/session", nil))
	user, ok := sess["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user["id"])

	// el link es de un solo uso
	res = b.do(http.MethodGet, link.RequestURI(), nil)
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Contains(t, res.Header.Get("Location"), "error=Verification")
	require.Len(t, failed, 1)
	assert.Same(t, apperrors.ErrVerificationTokenInvalid, failed[0])
}

func TestEmail_WithoutAdapterIsConfigurationError(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s", Providers: []providers.Config{{
		ID: "email", Type: providers.TypeEmail,
		Email: &providers.EmailConfig{
			SendVerificationRequest: func(context.Context, email.VerificationRequest) error { return nil },
		},
	}}})
	tok := b.csrfToken()

	res := b.do(http.MethodPost, "/api/auth/signin/email", url.Values{"csrfToken": {tok}, "email": {"a@b.c"}})
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Contains(t, res.Header.Get("Location"), "error=Configuration")
}

func TestErrorPage_Statuses(t *testing.T) {
	b := newBrowser(t, &options.UserOptions{Secret: "s"})
	cases := map[string]int{
		"Configuration": http.StatusInternalServerError,
		"AccessDenied":  http.StatusForbidden,
		"Verification":  http.StatusForbidden,
		"Other":         http.StatusOK,
	}
	for code, status := range cases {
		res := b.do(http.MethodGet, "/api/auth/error?error="+code, nil)
		assert.Equal(t, status, res.StatusCode, code)
		assert.Equal(t, code, decode(t, res)["error"])
	}
}

func TestReadyz(t *testing.T) {
	b := newBrowser(t, nil)
	res := b.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
