// Package handlertest holds the fake backend and request helpers the
// handler packages test against.
package handlertest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/crypto"
	"hrportal/internal/platform/logging"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/views"
)

type Call struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   string
}

type reply struct {
	status int
	body   string
}

// Backend records every call and answers from a table keyed by
// "METHOD /path". Unknown routes answer 404.
type Backend struct {
	mu     sync.Mutex
	calls  []Call
	routes map[string]reply
	status int
	server *httptest.Server
}

func NewBackend(t *testing.T, routes map[string]string) *Backend {
	t.Helper()
	b := &Backend{routes: make(map[string]reply, len(routes))}
	for k, body := range routes {
		b.routes[k] = reply{status: http.StatusOK, body: body}
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	status := b.status
	rep, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such route"}`))
		return
	}
	if rep.body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

// Respond sets the answer for one route.
func (b *Backend) Respond(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = reply{status: status, body: body}
}

// FailWith makes every later call answer status with an empty body. Zero
// restores the route table.
func (b *Backend) FailWith(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

func (b *Backend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Client points a backend client named name at b.
func (b *Backend) Client(t *testing.T, name string) *backend.Client {
	t.Helper()
	client, err := backend.New(name, b.server.URL, 5*time.Second, backend.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return client
}

// Env bundles what every handler needs besides its services.
type Env struct {
	Log      *logrus.Logger
	Sessions *middleware.Sessions
	Views    *views.Renderer
	Cache    *cache.Cache
	Store    *cache.MemoryStore
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	log := logging.Discard()
	sealer, err := crypto.New("", "test-secret")
	require.NoError(t, err)
	sessions := middleware.NewSessions(auth.NewSessionCodec("test-secret", sealer, time.Hour), false, log)
	renderer, err := views.New(sessions, log, false)
	require.NoError(t, err)
	store := cache.NewMemoryStore()
	return &Env{
		Log:      log,
		Sessions: sessions,
		Views:    renderer,
		Cache:    cache.New(store, cache.WithLogger(log)),
		Store:    store,
	}
}

// Session is a signed-in user of the given role.
func Session(role auth.Role) auth.Session {
	return auth.Session{
		UserID:       "u-1",
		EmployeeID:   "e-1",
		Email:        "hana@example.com",
		FullName:     "Hana Ito",
		Role:         role,
		BackendToken: "backend-token",
	}
}

// Do serves one request as session. A non-nil form is sent url-encoded.
func Do(router http.Handler, session auth.Session, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req = req.WithContext(middleware.WithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// Toast reads the flash message a response set.
func Toast(t *testing.T, rec *httptest.ResponseRecorder) flash.Message {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	msg, ok := flash.Pop(httptest.NewRecorder(), req)
	require.True(t, ok, "expected a toast cookie")
	return msg
}
