package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// IdempotencyField is the hidden form input confirmation pages carry.
const IdempotencyField = "idempotencyKey"

type SubmissionStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type submissionKey struct{}

type submission struct {
	done atomic.Bool
}

// MarkSubmitted records that the guarded handler completed its action, so
// the claimed key stays used. Outside SubmitOnce it does nothing.
func MarkSubmitted(ctx context.Context) {
	if s, ok := ctx.Value(submissionKey{}).(*submission); ok {
		s.done.Store(true)
	}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// SubmitOnce lets a form carrying an idempotency key through only once per
// user within ttl; repeats go to onDuplicate. Forms without a key pass. When
// the handler returns without MarkSubmitted the key is released so the same
// confirmation can be retried.
func SubmitOnce(store SubmissionStore, ttl time.Duration, onDuplicate http.Handler, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			key := strings.TrimSpace(r.PostFormValue(IdempotencyField))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor := actorOrIPKey(r)
			claimKey := "submit|" + RequestHash([]byte(actor+"\x00"+r.URL.Path+"\x00"+key))
			fresh, err := store.Claim(r.Context(), claimKey, ttl)
			if err != nil {
				log.WithError(err).WithField("requestId", GetRequestID(r)).Warn("idempotency check failed")
				next.ServeHTTP(w, r)
				return
			}
			if !fresh {
				log.WithFields(logrus.Fields{"path": r.URL.Path, "requestId": GetRequestID(r)}).Info("duplicate submission ignored")
				onDuplicate.ServeHTTP(w, r)
				return
			}
			state := &submission{}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), submissionKey{}, state)))
			if state.done.Load() {
				return
			}
			if err := store.Release(context.WithoutCancel(r.Context()), claimKey); err != nil {
				log.WithError(err).WithField("requestId", GetRequestID(r)).Warn("idempotency release failed")
			}
		})
	}
}
