package auth

import (
	"context"
	"net/http"
	"strings"

	"calculator-saas/internal/httputil"
	"calculator-saas/internal/logging"

	"github.com/sirupsen/logrus"
)

const (
	MsgTokenRequired = "Access token required"
	MsgInvalidToken  = "Invalid token"
)

type contextKey string

const identityKey = contextKey("identity")

// Middleware rejects requests without a valid bearer token before any route
// logic runs: a missing or malformed header is 401, a token that fails
// verification is 403. On success the Identity is stored in the context.
func Middleware(tokens *TokenService, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httputil.WriteError(w, http.StatusUnauthorized, MsgTokenRequired)
				return
			}

			identity, err := tokens.Verify(tokenString)
			if err != nil {
				logging.FromContext(r.Context(), log).WithError(err).Warn("token verification failed")
				httputil.WriteError(w, http.StatusForbidden, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithIdentity attaches identity to ctx, including the user id used in logs.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey, identity)
	return logging.WithUserID(ctx, identity.UserID)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok && identity != nil
}
