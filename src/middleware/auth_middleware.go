package middleware

import (
	"context"
	"errors"
	"net/http"
	"spendtracker/src/logger"
	"spendtracker/src/util"
	"strings"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	usernameKey contextKey = "username"
)

// ParseTokenFromRequest extracts and validates the bearer token of r.
func ParseTokenFromRequest(r *http.Request, secret string) (*util.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.New("token is missing")
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return util.ParseToken(secret, tokenString)
}

// JWTAuth rejects requests without a valid token and stores the caller in
// the request context.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseTokenFromRequest(r, secret)
			if err != nil {
				util.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Username)
			log := logger.FromContext(ctx).With().Int64("user_id", claims.UserID).Logger()
			ctx = logger.WithContext(ctx, log)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, userID int64, username string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, usernameKey, username)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(usernameKey).(string)
	return name
}
