package request

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/attachment"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/logging"
	"hrportal/internal/platform/validation"
	"hrportal/internal/requestctx"
)

type call struct {
	Method      string
	Path        string
	Body        string
	ContentType string
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.calls = append(r.calls, call{Method: req.Method, Path: req.URL.Path, Body: string(body), ContentType: req.Header.Get("Content-Type")})
	r.mu.Unlock()
}

func (r *recorder) all() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func (r *recorder) count(method, path string) int {
	n := 0
	for _, c := range r.all() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, h http.HandlerFunc) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	client, err := backend.New("primary", srv.URL, time.Second, backend.WithLogger(logging.Discard()))
	require.NoError(t, err)
	svc := NewService(NewStore(client), cache.New(cache.NewMemoryStore(), cache.WithLogger(logging.Discard())), "timesheets")
	svc.Now = func() time.Time { return testNow }
	return svc, rec
}

func sickLeave(days int) TimeOffForm {
	return TimeOffForm{
		Type:      "PAID_SICK_LEAVE",
		StartDate: testNow.Format(validation.DateLayout),
		EndDate:   testNow.AddDate(0, 0, days-1).Format(validation.DateLayout),
		Reason:    "flu",
	}
}

func TestSickLeaveOverThreeDaysNeedsCertificate(t *testing.T) {
	svc, rec := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	_, _, err := svc.SubmitTimeOff(t.Context(), sickLeave(4), attachment.List{})
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Medical certificate is required for sick leave longer than 3 days", verr.Fields()["attachments"])
	assert.Empty(t, rec.all())
}

func TestSickLeaveWithCertificateIsSubmitted(t *testing.T) {
	svc, rec := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"r9","type":"PAID_SICK_LEAVE","status":"PENDING"}`))
	})
	cert, err := attachment.NewFile("cert.pdf", []byte("%PDF-1.4\n%%EOF\n"))
	require.NoError(t, err)
	files, err := attachment.List{}.Add(cert)
	require.NoError(t, err)

	created, msg, err := svc.SubmitTimeOff(t.Context(), sickLeave(5), files)
	require.NoError(t, err)
	assert.Equal(t, MsgSubmitted, msg)
	assert.Equal(t, StatusPending, created.Status)

	calls := rec.all()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/v1/requests", calls[0].Path)
	assert.True(t, strings.HasPrefix(calls[0].ContentType, "multipart/form-data"))
	assert.Contains(t, calls[0].Body, `name="type"`)
	assert.Contains(t, calls[0].Body, "PAID_SICK_LEAVE")
	assert.Contains(t, calls[0].Body, `filename="cert.pdf"`)
}

func TestShortSickLeaveNeedsNoCertificate(t *testing.T) {
	v := sickLeave(3).Validate(testNow, attachment.List{})
	assert.False(t, v.HasIssues(), v.Issues())
}

func TestTimeOffFormRules(t *testing.T) {
	cases := []struct {
		name  string
		field string
		form  TimeOffForm
	}{
		{"missing type", "type", TimeOffForm{StartDate: "2026-03-03", EndDate: "2026-03-03"}},
		{"timesheet type", "type", TimeOffForm{Type: "TIMESHEET_WEEKLY", StartDate: "2026-03-03", EndDate: "2026-03-03"}},
		{"past start", "startDate", TimeOffForm{Type: "WFH", StartDate: "2026-03-01", EndDate: "2026-03-03"}},
		{"end before start", "endDate", TimeOffForm{Type: "WFH", StartDate: "2026-03-05", EndDate: "2026-03-03"}},
		{"missing end", "endDate", TimeOffForm{Type: "WFH", StartDate: "2026-03-05"}},
		{"long reason", "reason", TimeOffForm{Type: "WFH", StartDate: "2026-03-05", EndDate: "2026-03-05", Reason: strings.Repeat("x", 501)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.Validate(testNow, attachment.List{}).Err()
			verr, ok := validation.As(err)
			require.True(t, ok)
			assert.Contains(t, verr.Fields(), tc.field)
		})
	}
}

func TestRejectDialog(t *testing.T) {
	svc, rec := newTestService(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	blank := RejectForm{Reason: "   "}
	assert.False(t, blank.ConfirmEnabled())
	_, err := svc.Reject(t.Context(), "r1", blank)
	_, ok := validation.As(err)
	require.True(t, ok)
	assert.Empty(t, rec.all())

	typed := RejectForm{Reason: "Overlaps with release week"}
	assert.True(t, typed.ConfirmEnabled())
	msg, err := svc.Reject(t.Context(), "r1", typed)
	require.NoError(t, err)
	assert.Equal(t, MsgRejected, msg)

	calls := rec.all()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/v1/requests/r1/reject", calls[0].Path)
	assert.JSONEq(t, `{"reason":"Overlaps with release week"}`, calls[0].Body)
}

func TestApproveInvalidatesListAndStats(t *testing.T) {
	var approved atomic.Bool
	svc, rec := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/requests/r1/approve":
			approved.Store(true)
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/v1/requests/stats":
			if approved.Load() {
				_, _ = w.Write([]byte(`{"pending":0,"approved":1,"total":1}`))
				return
			}
			_, _ = w.Write([]byte(`{"pending":1,"total":1}`))
		default:
			status := "PENDING"
			if approved.Load() {
				status = "APPROVED"
			}
			_, _ = w.Write([]byte(`{"data":[{"id":"r1","type":"PAID_LEAVE","status":"` + status + `"}],"pagination":{"page":1,"limit":10,"total":1,"totalPages":1}}`))
		}
	})
	ctx := requestctx.WithSubject(t.Context(), "manager-1")
	params := ListParams{Scope: ScopeTeam}

	page, err := svc.List(ctx, params)
	require.NoError(t, err)
	require.Equal(t, StatusPending, page.Data[0].Status)
	stats, err := svc.Stats(ctx, ScopeTeam)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pending)

	_, err = svc.List(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(http.MethodGet, "/api/v1/requests"))

	msg, err := svc.Approve(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, MsgApproved, msg)

	page, err = svc.List(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, page.Data[0].Status)
	assert.Empty(t, page.Data[0].ActionsFor(ScopeTeam))
	stats, err = svc.Stats(ctx, ScopeTeam)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 2, rec.count(http.MethodGet, "/api/v1/requests"))
	assert.Equal(t, 2, rec.count(http.MethodGet, "/api/v1/requests/stats"))
}

func TestCancelSurfacesBackendMessage(t *testing.T) {
	svc, rec := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Request is no longer pending"}`))
	})
	_, err := svc.Cancel(t.Context(), "r1")
	require.Error(t, err)
	assert.Equal(t, "Request is no longer pending", backend.MessageOr(err, MsgCancelFailed))
	assert.Equal(t, 1, len(rec.all()))
}
