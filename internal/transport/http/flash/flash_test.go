package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, "Request approved")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	msg, ok := Pop(out, req)
	require.True(t, ok)
	assert.Equal(t, Message{Kind: KindSuccess, Text: "Request approved"}, msg)

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestPopWithoutCookie(t *testing.T) {
	_, ok := Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestPopDropsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "%%%"})
	_, ok := Pop(httptest.NewRecorder(), req)
	assert.False(t, ok)
}
