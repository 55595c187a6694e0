package profile

import (
	"io"
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
	"hrportal/internal/platform/validation"
	"hrportal/internal/requestctx"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type log struct {
	mu    sync.Mutex
	lines []string
	body  map[string]string
}

func (l *log) add(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	l.mu.Lock()
	defer l.mu.Unlock()
	line := r.Method + " " + r.URL.Path
	l.lines = append(l.lines, line)
	l.body[line] = string(b)
}

func (l *log) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func newTestService(t *testing.T, primary, credits http.HandlerFunc) (*Service, *log) {
	t.Helper()
	calls := &log{body: map[string]string{}}
	wrap := func(h http.HandlerFunc) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.add(r)
			h(w, r)
		}))
		t.Cleanup(srv.Close)
		return srv
	}
	p, err := backend.New("primary", wrap(primary).URL, time.Second, backend.WithLogger(logging.Discard()))
	require.NoError(t, err)
	c, err := backend.New("credits", wrap(credits).URL, time.Second, backend.WithLogger(logging.Discard()))
	require.NoError(t, err)
	svc := NewService(NewStore(p, c), cache.New(cache.NewMemoryStore(), cache.WithLogger(logging.Discard())))
	svc.Now = func() time.Time { return now }
	return svc, calls
}

func noContent(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func validPersonal() PersonalForm {
	return PersonalForm{
		FullName:           "Jane Doe",
		Phone:              "+1 555 0100",
		DateOfBirth:        "1990-05-01",
		DocumentNumber:     "X1234567",
		DocumentIssuedDate: "2020-01-10",
		DocumentExpiration: "2030-01-10",
	}
}

func TestPersonalFormRules(t *testing.T) {
	assert.False(t, validPersonal().Validate(now).HasIssues())

	cases := []struct {
		name  string
		field string
		edit  func(*PersonalForm)
	}{
		{"bad phone", "phone", func(f *PersonalForm) { f.Phone = "call me" }},
		{"future birth", "dateOfBirth", func(f *PersonalForm) { f.DateOfBirth = "2026-03-02" }},
		{"expiry before issue", "documentExpirationDate", func(f *PersonalForm) { f.DocumentExpiration = "2019-12-31" }},
		{"expiry same day", "documentExpirationDate", func(f *PersonalForm) { f.DocumentExpiration = f.DocumentIssuedDate }},
		{"number without issue date", "documentIssuedDate", func(f *PersonalForm) { f.DocumentIssuedDate = ""; f.DocumentExpiration = "" }},
		{"contact without phone", "emergencyPhone", func(f *PersonalForm) { f.EmergencyName = "Sam" }},
		{"missing name", "fullName", func(f *PersonalForm) { f.FullName = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validPersonal()
			tc.edit(&f)
			verr, ok := validation.As(f.Validate(now).Err())
			require.True(t, ok)
			assert.Contains(t, verr.Fields(), tc.field)
		})
	}
}

func TestUpdatePersonalRefreshesProfile(t *testing.T) {
	var mu sync.Mutex
	name := "Jane"
	svc, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPut {
			name = "Jane Doe"
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"fullName":"` + name + `","phone":"+1 555 0100"}`))
	}, noContent)
	ctx := requestctx.WithSubject(t.Context(), "u1")

	p, err := svc.Personal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane", p.FullName)

	msg, err := svc.UpdatePersonal(ctx, validPersonal())
	require.NoError(t, err)
	assert.Equal(t, MsgPersonalSaved, msg)

	p, err = svc.Personal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.FullName)
	assert.Equal(t, []string{"GET /api/Employees/me", "PUT /api/Employees/me/personal", "GET /api/Employees/me"}, calls.snapshot())
	assert.JSONEq(t, `{
		"fullName":"Jane Doe","phone":"+1 555 0100","address":"","dateOfBirth":"1990-05-01",
		"emergencyContact":{"name":"","relationship":"","phone":""},
		"identityDocument":{"number":"X1234567","issuedDate":"2020-01-10","expirationDate":"2030-01-10"}
	}`, calls.body["PUT /api/Employees/me/personal"])
}

func TestEducationCRUD(t *testing.T) {
	svc, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":"ed1","degree":"BSc","institution":"MIT","startYear":2010,"endYear":2014}]`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}, noContent)

	bad := EducationForm{Degree: "MSc", Institution: "MIT", StartYear: 2016, EndYear: 2015}
	_, err := svc.SaveEducation(t.Context(), "", bad)
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields(), "endYear")

	future := EducationForm{Degree: "MSc", Institution: "MIT", StartYear: 2027}
	_, err = svc.SaveEducation(t.Context(), "", future)
	_, ok = validation.As(err)
	require.True(t, ok)
	assert.Empty(t, calls.snapshot())

	msg, err := svc.SaveEducation(t.Context(), "", EducationForm{Degree: "MSc", Institution: "MIT", StartYear: 2015, EndYear: 2017})
	require.NoError(t, err)
	assert.Equal(t, MsgEducationAdded, msg)

	found, ok, err := svc.FindEducation(t.Context(), "ed1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "BSc", found.Degree)

	msg, err = svc.SaveEducation(t.Context(), "ed1", EducationFormFrom(found))
	require.NoError(t, err)
	assert.Equal(t, MsgEducationUpdated, msg)

	msg, err = svc.DeleteEducation(t.Context(), "ed1")
	require.NoError(t, err)
	assert.Equal(t, MsgEducationDeleted, msg)

	assert.Equal(t, []string{"POST /api/Education", "GET /api/Education/me", "PUT /api/Education/ed1", "DELETE /api/Education/ed1"}, calls.snapshot())
}

func TestBankAccounts(t *testing.T) {
	svc, calls := newTestService(t, noContent, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":"b1","bankName":"First","accountNumber":"1234567890","routingCode":"FIRST001","isPrimary":true}]`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		field string
		form  BankAccountForm
	}{
		{"accountNumber", BankAccountForm{BankName: "B", AccountHolder: "J", AccountNumber: "1234", RoutingCode: "ABCDEF"}},
		{"accountNumber", BankAccountForm{BankName: "B", AccountHolder: "J", AccountNumber: "12345678x", RoutingCode: "ABCDEF"}},
		{"routingCode", BankAccountForm{BankName: "B", AccountHolder: "J", AccountNumber: "12345678", RoutingCode: "AB-1"}},
		{"bankName", BankAccountForm{AccountHolder: "J", AccountNumber: "12345678", RoutingCode: "ABCDEF"}},
	}
	for _, tc := range cases {
		_, err := svc.SaveBankAccount(t.Context(), "", tc.form)
		verr, ok := validation.As(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields(), tc.field)
	}
	assert.Empty(t, calls.snapshot())

	msg, err := svc.SaveBankAccount(t.Context(), "", BankAccountForm{BankName: "First", AccountHolder: "Jane", AccountNumber: "1234 5678 90", RoutingCode: "first001"})
	require.NoError(t, err)
	assert.Equal(t, MsgBankAdded, msg)
	assert.JSONEq(t, `{"bankName":"First","accountHolder":"Jane","accountNumber":"1234567890","routingCode":"FIRST001","isPrimary":false}`, calls.body["POST /api/bankaccount"])

	accounts, err := svc.BankAccounts(t.Context())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "•••• 7890", accounts[0].Masked())

	msg, err = svc.DeleteBankAccount(t.Context(), "b1")
	require.NoError(t, err)
	assert.Equal(t, MsgBankDeleted, msg)
}
