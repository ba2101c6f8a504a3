// Package requestcontext carries request-scoped values without tying services
// to a transport. The HTTP middleware and the Lambda adapters write them;
// the decision engine and audit publishers read them.
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	keyClientIP key = iota
	keyUserAgent
	keyRequestID
	keyRequestTime
	keySubject
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

func str(ctx context.Context, k key) string {
	s, _ := value[string](ctx, k)
	return s
}

// Subject is the identity recovered from a verified access token.
type Subject struct {
	CPF      string
	Customer bool
	TokenID  string
}

// SubjectFrom reports the authenticated subject; ok is false on
// unauthenticated requests.
func SubjectFrom(ctx context.Context) (Subject, bool) {
	return value[Subject](ctx, keySubject)
}

func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, keySubject, s)
}

func ClientIP(ctx context.Context) string {
	return str(ctx, keyClientIP)
}

func UserAgent(ctx context.Context) string {
	return str(ctx, keyUserAgent)
}

// WithClientMetadata stores the caller address and raw User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, clientIP)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

func RequestID(ctx context.Context) string {
	return str(ctx, keyRequestID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now is the time the request arrived, or time.Now outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, keyRequestTime); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyRequestTime, t)
}
