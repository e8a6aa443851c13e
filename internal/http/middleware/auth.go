package middleware

import (
	"context"
	"net/http"
	"strings"

	"rcvj/internal/common"
	"rcvj/internal/domain/user"
	"rcvj/internal/http/response"
	"rcvj/internal/security"
)

type contextKey string

const ContextActorKey contextKey = "actor"

// ActorResolver re-resolves the token's username against the users table;
// a deleted account invalidates otherwise valid tokens.
type ActorResolver interface {
	CurrentUser(ctx context.Context, username string) (*user.User, error)
}

type AuthMiddleware struct {
	jwt   *security.JWTProvider
	users ActorResolver
}

func NewAuthMiddleware(jwt *security.JWTProvider, users ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "no token, authorization denied", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.jwt.Parse(parts[1])
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "token is not valid", err))
			return
		}
		if claims.Username == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "token is not valid", nil))
			return
		}
		actor, err := m.users.CurrentUser(r.Context(), claims.Username)
		if err != nil {
			response.Error(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ContextActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ActorFromContext(ctx context.Context) (*user.User, bool) {
	actor, ok := ctx.Value(ContextActorKey).(*user.User)
	return actor, ok
}
