package http

import (
	"context"
	"net/http"
	"strings"

	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type ctxKey struct{}

var ctxUserKey = ctxKey{}

type authUser struct {
	UserID int64
	Name   string
}

// authMiddleware is a no-op when no token service is configured.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	if a.tokenSvc == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, domuser.ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := a.tokenSvc.ParseToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, domuser.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, &authUser{
			UserID: claims.UserID,
			Name:   claims.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getAuthUser(ctx context.Context) *authUser {
	val := ctx.Value(ctxUserKey)
	if user, ok := val.(*authUser); ok {
		return user
	}
	return nil
}

// actingAs rejects a request that names a user other than the token's.
// Without a gate every user id is accepted.
func actingAs(r *http.Request, userID int64) error {
	user := getAuthUser(r.Context())
	if user == nil || user.UserID == userID {
		return nil
	}
	return domuser.ErrForbidden
}
