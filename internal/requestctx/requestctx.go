package requestctx

import "context"

type ctxKey string

const (
	requestIDKey   ctxKey = "request_id"
	bearerTokenKey ctxKey = "bearer_token"
	subjectKey     ctxKey = "subject"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithBearerToken attaches the caller's backend access token. Backend clients
// forward it as the Authorization header.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

func GetBearerToken(ctx context.Context) string {
	if value, ok := ctx.Value(bearerTokenKey).(string); ok {
		return value
	}
	return ""
}

// WithSubject records the signed-in user id used to scope per-user cache
// entries.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

func GetSubject(ctx context.Context) string {
	if value, ok := ctx.Value(subjectKey).(string); ok {
		return value
	}
	return ""
}
