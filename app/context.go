package app

import "context"

type contextKey string

const (
	userIDKey    contextKey = "UserID"
	userEmailKey contextKey = "UserEmail"
	cartIDKey    contextKey = "CartID"
)

func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userEmailKey, email)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func WithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, cartIDKey, cartID)
}

func CartIDFrom(ctx context.Context) (string, bool) {
	cartID, ok := ctx.Value(cartIDKey).(string)
	return cartID, ok && cartID != ""
}
