package middleware

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	requestInfoKey
)

// requestInfo is attached by RequestLogger and filled in by inner middleware,
// so the outer log line can report who made the request.
type requestInfo struct {
	RequestID string
	UserID    int64
}

// WithUserID returns a child context carrying the authenticated user's id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.UserID = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user's id, if any.
func UserID(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok && uid > 0
}
