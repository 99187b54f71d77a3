package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/louisbranch/openwall/internal/platform/errors"
)

// requireAuth verifies the bearer token and resolves the session user. A
// valid token whose account is gone fails with SESSION_USER_MISSING, not
// UNAUTHENTICATED, so clients know a retry cannot help.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			writeError(w, err)
			return
		}
		userID, err := s.tokens.Verify(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		user, err := s.identity.Resolve(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New(errors.CodeUnauthenticated, "authorization header is required")
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(rest) == "" {
		return "", errors.New(errors.CodeUnauthenticated, "authorization header must be a bearer token")
	}
	return strings.TrimSpace(rest), nil
}
