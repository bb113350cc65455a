package httpapi

import "context"

type ctxKey string

const ownerIDKey ctxKey = "ownerID"

func withOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// ownerFrom returns the owner id stored by the auth middleware.
func ownerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ownerIDKey).(string)
	return id
}
