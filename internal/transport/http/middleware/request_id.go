package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"hrportal/internal/platform/backend"
	"hrportal/internal/requestctx"
)

const maxRequestIDLength = 128

// RequestID keeps a sane incoming X-Request-ID or mints one, echoes it on the
// response and stores it for backend calls and logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(backend.RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(backend.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}

func GetRequestID(r *http.Request) string {
	return requestctx.GetRequestID(r.Context())
}
