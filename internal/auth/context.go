package auth

import (
	"context"

	"github.com/hcardin/mesada/internal/model"
)

type contextKey struct{}

// AuthContext carries the authenticated user through a request.
type AuthContext struct {
	UserID    int64
	Roles     model.RoleSet
	SessionID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func Roles(ctx context.Context) model.RoleSet {
	ac, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return ac.Roles
}

// IsValidator reports whether the request's user holds the validator role.
func IsValidator(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	return ok && ac.Roles.Has(model.RoleValidator)
}
