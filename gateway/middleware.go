package gateway

import (
	"context"
	"net/http"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

type contextKey string

const userKey contextKey = "user"

// bearerAuth guards the query routes with the same IdentityVerifier as
// the socket gate and injects the resolved user into the request context.
func (g *Gateway) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.verifier.Verify(r.Context(), bearerToken(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}
