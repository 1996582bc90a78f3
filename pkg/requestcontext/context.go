// Package requestcontext carries request-scoped values from middleware to
// services without either side importing the other.
//
//	ctx = requestcontext.WithUserID(ctx, userID)
//	owner := requestcontext.UserID(ctx)
package requestcontext

import (
	"context"
	"time"

	id "taskboard/pkg/domain"
)

type key int

const (
	userIDKey key = iota
	clientIPKey
	requestIDKey
	requestTimeKey
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// UserID returns the caller set by the user middleware, or the nil ID.
func UserID(ctx context.Context) id.UserID {
	userID, _ := value[id.UserID](ctx, userIDKey)
	return userID
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func ClientIP(ctx context.Context) string {
	ip, _ := value[string](ctx, clientIPKey)
	return ip
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// RequestID returns the correlation ID for logs and audit events.
func RequestID(ctx context.Context) string {
	reqID, _ := value[string](ctx, requestIDKey)
	return reqID
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the time pinned for this request so every timestamp written
// while handling it agrees. Outside a request it falls back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, requestTimeKey); ok {
		return t
	}
	return time.Now().UTC()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
