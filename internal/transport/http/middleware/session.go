package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/requestctx"
	"hrportal/internal/transport/http/api"
)

const SessionCookie = "hrportal_session"

type ctxKey string

const ctxKeySession ctxKey = "session"

// Sessions loads the signed session cookie into the request context.
type Sessions struct {
	Codec  *auth.SessionCodec
	Secure bool
	Log    *logrus.Logger
}

func NewSessions(codec *auth.SessionCodec, secure bool, log *logrus.Logger) *Sessions {
	return &Sessions{Codec: codec, Secure: secure, Log: log}
}

func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		session, err := s.Codec.Decode(c.Value)
		if err != nil {
			s.Log.WithField("requestId", GetRequestID(r)).WithError(err).Debug("dropping session cookie")
			s.Clear(w)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores the session along with the backend token and cache
// subject derived from it.
func WithSession(ctx context.Context, session auth.Session) context.Context {
	ctx = context.WithValue(ctx, ctxKeySession, session)
	ctx = requestctx.WithBearerToken(ctx, session.BackendToken)
	return requestctx.WithSubject(ctx, session.Subject())
}

func GetSession(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(ctxKeySession).(auth.Session)
	return session, ok
}

func (s *Sessions) Set(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(1, 0),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LocalPath returns target when it is a path on this site and "/" otherwise.
func LocalPath(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

// LoginURL is where an anonymous request for target is sent.
func LoginURL(target string) string {
	if path := LocalPath(target); path != "/" {
		return "/login?next=" + url.QueryEscape(path)
	}
	return "/login"
}

// RequireSession sends anonymous page requests to the login form and answers
// anonymous JSON requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r))
			return
		}
		target := ""
		if r.Method == http.MethodGet {
			target = r.URL.RequestURI()
		}
		http.Redirect(w, r, LoginURL(target), http.StatusSeeOther)
	})
}

// RequireCapability hides a route from roles that cannot use it. The backend
// still authorizes the calls behind it.
func RequireCapability(capability string, forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSession(r.Context())
			if !ok {
				RequireSession(next).ServeHTTP(w, r)
				return
			}
			if !session.Role.Can(capability) {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
