package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"hrportal/internal/transport/http/api"
)

const rateLimitPrefix = "hrportal:ratelimit"

type RateLimitKeyFunc func(r *http.Request) string

// NewLimiterStore shares counters through Redis when a client is given and
// keeps them in process otherwise.
func NewLimiterStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix, CleanUpInterval: time.Minute}), nil
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, errors.Wrap(err, "rate limit store")
	}
	return store, nil
}

type rateLimiter struct {
	name    string
	limiter *limiter.Limiter
	keyFn   RateLimitKeyFunc
	log     *logrus.Logger
}

func newRateLimiter(name string, store limiter.Store, perMinute int, keyFn RateLimitKeyFunc, log *logrus.Logger) *rateLimiter {
	return &rateLimiter{
		name:    name,
		limiter: limiter.New(store, limiter.Rate{Period: time.Minute, Limit: int64(perMinute)}),
		keyFn:   keyFn,
		log:     log,
	}
}

// RateLimit caps every request per signed-in user, or per client IP for
// anonymous traffic.
func RateLimit(store limiter.Store, perMinute int, log *logrus.Logger) func(http.Handler) http.Handler {
	rl := newRateLimiter("global", store, perMinute, actorOrIPKey, log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SensitiveRateLimit applies tighter limits to credential endpoints and to
// ledger mutations.
func SensitiveRateLimit(store limiter.Store, basePerMinute int, log *logrus.Logger) func(http.Handler) http.Handler {
	authByIP := newRateLimiter("auth", store, max(basePerMinute/4, 1), clientIPKey, log)
	ledgerByActor := newRateLimiter("ledger", store, max(basePerMinute/2, 1), actorOrIPKey, log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !authByIP.enforce(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !ledgerByActor.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	lctx, err := rl.limiter.Get(r.Context(), rl.name+":"+key)
	if err != nil {
		rl.log.WithError(err).WithField("limiter", rl.name).Warn("rate limit store unavailable")
		return true
	}

	resetIn := max(int(time.Until(time.Unix(lctx.Reset, 0)).Seconds()), 0)
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

	if !lctx.Reached {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	rl.log.WithFields(logrus.Fields{
		"limiter": rl.name,
		"key":     key,
		"path":    r.URL.Path,
		"method":  r.Method,
		"limit":   lctx.Limit,
	}).Warn("rate limit exceeded")
	if strings.HasPrefix(r.URL.Path, "/api/") {
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r))
	} else {
		http.Error(w, "Too many requests, please slow down.", http.StatusTooManyRequests)
	}
	return false
}

func actorOrIPKey(r *http.Request) string {
	if session, ok := GetSession(r.Context()); ok && session.UserID != "" {
		return "user:" + session.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if value := strings.TrimSpace(first); value != "" {
			return "ip:" + value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:" + strings.TrimSpace(r.RemoteAddr)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r.Method != http.MethodPost {
		return sensitiveScopeNone
	}
	switch path := strings.TrimRight(r.URL.Path, "/"); {
	case path == "/login", path == "/forgot-password":
		return sensitiveScopeAuth
	case strings.HasPrefix(path, "/credits/") && strings.HasSuffix(path, "/confirm"),
		path == "/credits/award", path == "/credits/deduct":
		return sensitiveScopeActor
	}
	return sensitiveScopeNone
}
