package lookup

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/logging"
)

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (h *hitCounter) inc(path string) {
	h.mu.Lock()
	h.hits[path]++
	h.mu.Unlock()
}

func (h *hitCounter) get(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func newTestService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := backend.New("primary", srv.URL, time.Second, backend.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return NewService(NewStore(client), cache.New(cache.NewMemoryStore(), cache.WithLogger(logging.Discard())))
}

func TestAllLoadsEveryListOnce(t *testing.T) {
	hits := &hitCounter{hits: map[string]int{}}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.inc(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/Positions":
			_, _ = w.Write([]byte(`[{"id":3,"title":"Backend Engineer"}]`))
		default:
			_, _ = w.Write([]byte(`[{"id":2,"name":"Engineering"}]`))
		}
	})

	set, err := svc.All(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", NameOf(set.Positions, 3))
	assert.Equal(t, "Engineering", NameOf(set.Departments, 2))
	assert.Empty(t, NameOf(set.Departments, 99))

	_, err = svc.All(t.Context())
	require.NoError(t, err)
	for _, path := range []string{"/api/Departments", "/api/Positions", "/api/JobLevels", "/api/EmploymentTypes", "/api/TimeTypes"} {
		assert.Equal(t, 1, hits.get(path), path)
	}
}

func TestAllFailsWhenOneListFails(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/TimeTypes" {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := svc.All(t.Context())
	require.Error(t, err)
	assert.Equal(t, "boom", backend.MessageOr(err, "fallback"))
}
