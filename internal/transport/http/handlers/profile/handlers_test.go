package profilehandler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/profile"
	"hrportal/internal/transport/http/handlers/handlertest"
)

const (
	personalJSON  = `{"fullName":"Hana Ito","phone":"+81 3 1234 5678","address":"1 Chome","dateOfBirth":"1990-04-01","emergencyContact":{"name":"","relationship":"","phone":""},"identityDocument":{"number":"","issuedDate":"","expirationDate":""}}`
	educationJSON = `[{"id":"ed-1","degree":"BSc","institution":"Kyoto University","fieldOfStudy":"Physics","startYear":2008,"endYear":2012}]`
	banksJSON     = `[{"id":"ba-1","bankName":"Mizuho","accountHolder":"Hana Ito","accountNumber":"1234567890","routingCode":"MHCBJPJT","isPrimary":true}]`
)

type fixture struct {
	router  http.Handler
	primary *handlertest.Backend
	ledger  *handlertest.Backend
	session auth.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := handlertest.NewEnv(t)
	primary := handlertest.NewBackend(t, map[string]string{
		"GET /api/Employees/me":          personalJSON,
		"PUT /api/Employees/me/personal": "",
		"GET /api/Education/me":          educationJSON,
		"POST /api/Education":            "",
		"PUT /api/Education/ed-1":        "",
		"DELETE /api/Education/ed-1":     "",
	})
	ledger := handlertest.NewBackend(t, map[string]string{
		"GET /api/bankaccount/me":      banksJSON,
		"POST /api/bankaccount":        "",
		"PUT /api/bankaccount/ba-1":    "",
		"DELETE /api/bankaccount/ba-1": "",
	})
	store := profile.NewStore(primary.Client(t, "primary"), ledger.Client(t, "credits"))
	h := NewHandler(profile.NewService(store, env.Cache), env.Views, env.Log)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return &fixture{router: r, primary: primary, ledger: ledger, session: handlertest.Session(auth.RoleEmployee)}
}

func (f *fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	return handlertest.Do(f.router, f.session, method, target, form)
}

func TestProfilePageShowsEverySection(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Hana Ito"`)
	assert.Contains(t, body, "Kyoto University")
	assert.Contains(t, body, "Mizuho")
	assert.Contains(t, body, "7890")
	assert.NotContains(t, body, "1234567890", "account numbers are masked")
}

func TestEducationCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/profile/education/ed-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Kyoto University"`)

	rec = f.do(http.MethodGet, "/profile/education/ed-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	form := url.Values{"degree": {"MSc"}, "institution": {" Osaka University "}, "startYear": {"2013"}, "endYear": {"2015"}}
	rec = f.do(http.MethodPost, "/profile/education", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
	assert.Equal(t, profile.MsgEducationAdded, handlertest.Toast(t, rec).Text)
	posts := f.primary.CallsTo(http.MethodPost, "/api/Education")
	require.Len(t, posts, 1)
	assert.JSONEq(t, `{"degree":"MSc","institution":"Osaka University","startYear":2013,"endYear":2015}`, posts[0].Body)
	assert.Equal(t, "Bearer backend-token", posts[0].Auth)

	rec = f.do(http.MethodPost, "/profile/education/ed-1", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, profile.MsgEducationUpdated, handlertest.Toast(t, rec).Text)
	assert.Len(t, f.primary.CallsTo(http.MethodPut, "/api/Education/ed-1"), 1)

	rec = f.do(http.MethodPost, "/profile/education/ed-1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, profile.MsgEducationDeleted, handlertest.Toast(t, rec).Text)
	assert.Len(t, f.primary.CallsTo(http.MethodDelete, "/api/Education/ed-1"), 1)
}

func TestEducationYearsAreChecked(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/profile/education", url.Values{
		"degree": {"MSc"}, "institution": {"Osaka University"}, "startYear": {"2015"}, "endYear": {"2013"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be on or after the start year")
	assert.Empty(t, f.primary.CallsTo(http.MethodPost, "/api/Education"))
}

func TestBankAccountsGoToCreditsBackend(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/profile/bank-accounts", url.Values{
		"bankName": {"Resona"}, "accountHolder": {"Hana Ito"}, "accountNumber": {"1111 2222 33"}, "routingCode": {"dhbkjpjt"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, profile.MsgBankAdded, handlertest.Toast(t, rec).Text)
	posts := f.ledger.CallsTo(http.MethodPost, "/api/bankaccount")
	require.Len(t, posts, 1)
	assert.JSONEq(t, `{"bankName":"Resona","accountHolder":"Hana Ito","accountNumber":"1111222233","routingCode":"DHBKJPJT","isPrimary":false}`, posts[0].Body)
	assert.Empty(t, f.primary.Calls(), "bank accounts never touch the primary backend")

	rec = f.do(http.MethodPost, "/profile/bank-accounts", url.Values{
		"bankName": {"Resona"}, "accountHolder": {"Hana Ito"}, "accountNumber": {"12ab"}, "routingCode": {"DHBKJPJT"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, f.ledger.CallsTo(http.MethodPost, "/api/bankaccount"), 1)

	rec = f.do(http.MethodPost, "/profile/bank-accounts/ba-1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, profile.MsgBankDeleted, handlertest.Toast(t, rec).Text)
}

func TestPersonalUpdate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/profile/personal", url.Values{
		"fullName": {"Hana Ito"}, "phone": {"call me"}, "dateOfBirth": {"1990-04-01"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a valid phone number")
	assert.Empty(t, f.primary.CallsTo(http.MethodPut, "/api/Employees/me/personal"))

	rec = f.do(http.MethodPost, "/profile/personal", url.Values{
		"fullName": {"Hana Ito"}, "phone": {"+81 3 1234 5678"}, "dateOfBirth": {"1990-04-01"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, profile.MsgPersonalSaved, handlertest.Toast(t, rec).Text)
	assert.Len(t, f.primary.CallsTo(http.MethodPut, "/api/Employees/me/personal"), 1)
}

func TestExpiredTokenSignsOut(t *testing.T) {
	f := newFixture(t)
	f.primary.FailWith(http.StatusUnauthorized)

	rec := f.do(http.MethodPost, "/profile/education/ed-1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))
}
