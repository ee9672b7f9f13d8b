package common

import "context"

type ctxKey string

const (
	adminIDKey   ctxKey = "auth/admin-id"
	adminRoleKey ctxKey = "auth/admin-role"
)

// WithAdmin stores the authenticated admin identity on the context.
func WithAdmin(ctx context.Context, id, role string) context.Context {
	ctx = context.WithValue(ctx, adminIDKey, id)
	return context.WithValue(ctx, adminRoleKey, role)
}

// AdminID extracts the authenticated admin identifier from the context.
func AdminID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(adminIDKey).(string)
	return id, ok && id != ""
}

// AdminRole extracts the authenticated admin role from the context.
func AdminRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(adminRoleKey).(string)
	return role, ok && role != ""
}
