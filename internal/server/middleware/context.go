// Package middleware holds the gin middleware in front of the live routes: request
// logging, client IP capture and Bearer authentication.
package middleware

import "context"

type contextKey struct{ name string }

var (
	userIDKey      = contextKey{"user_id"}
	displayNameKey = contextKey{"display_name"}
	clientIPKey    = contextKey{"client_ip"}
)

// WithIdentity returns a context carrying the authenticated actor's user id and display name.
func WithIdentity(ctx context.Context, userID, displayName string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, displayNameKey, displayName)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetDisplayName returns the display name from context and true if set; otherwise "", false.
func GetDisplayName(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(displayNameKey).(string)
	return v, ok
}

// WithClientIP returns a context carrying the caller's IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the IP stored by the ClientIP middleware, or "unknown".
// Its signature matches audit.IPExtractor.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
