package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/logging"
	"hrportal/internal/platform/metrics"
	"hrportal/internal/requestctx"
)

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestctx.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New("info", &buf)
	handler := RequestID(Logger(log, metrics.New())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	line := buf.String()
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"path":"/teapot"`)
	assert.Contains(t, line, `"level":"warning"`)
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(8, 64)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	big := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("reason=this is far too long"))
	big.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=1"))
	small.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, small)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubmitOnce(t *testing.T) {
	calls := 0
	duplicate := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	handler := SubmitOnce(cache.NewMemoryStore(), time.Minute, duplicate, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		MarkSubmitted(r.Context())
		w.WriteHeader(http.StatusSeeOther)
	}))

	post := func(user, key string) int {
		form := url.Values{"points": {"100"}}
		if key != "" {
			form.Set(IdempotencyField, key)
		}
		req := httptest.NewRequest(http.MethodPost, "/credits/transfer/confirm", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = req.WithContext(WithSession(req.Context(), auth.Session{UserID: user}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusSeeOther, post("u1", "k1"))
	assert.Equal(t, http.StatusConflict, post("u1", "k1"))
	assert.Equal(t, http.StatusSeeOther, post("u2", "k1"))
	assert.Equal(t, http.StatusSeeOther, post("u1", ""))
	assert.Equal(t, http.StatusSeeOther, post("u1", ""))
	assert.Equal(t, 4, calls)
}

func TestSubmitOnceReleasesFailedAttempt(t *testing.T) {
	fail := true
	calls := 0
	duplicate := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	handler := SubmitOnce(cache.NewMemoryStore(), time.Minute, duplicate, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		MarkSubmitted(r.Context())
		w.WriteHeader(http.StatusSeeOther)
	}))

	post := func() int {
		form := url.Values{IdempotencyField: {"k1"}}
		req := httptest.NewRequest(http.MethodPost, "/credits/redeem/confirm", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = req.WithContext(WithSession(req.Context(), auth.Session{UserID: "u1"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusBadGateway, post())
	fail = false
	require.Equal(t, http.StatusSeeOther, post(), "a failed confirmation can be retried")
	assert.Equal(t, http.StatusConflict, post())
	assert.Equal(t, 2, calls)
}
