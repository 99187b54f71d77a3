// Package httpapi exposes the wall service over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/louisbranch/openwall/internal/services/wall/engagement"
	"github.com/louisbranch/openwall/internal/services/wall/identity"
	"github.com/louisbranch/openwall/internal/services/wall/storage"
	"github.com/louisbranch/openwall/internal/services/wall/token"
)

// Server routes HTTP requests to the wall domain services.
type Server struct {
	identity   *identity.Service
	engagement *engagement.Service
	tokens     *token.Issuer
}

// New creates an API server over the given services.
func New(identitySvc *identity.Service, engagementSvc *engagement.Service, tokens *token.Issuer) *Server {
	return &Server{
		identity:   identitySvc,
		engagement: engagementSvc,
		tokens:     tokens,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /up", s.handleUp)

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/signin", s.handleSignin)
	mux.Handle("GET /auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{username}", s.handleProfile)
	mux.Handle("POST /users/{username}/follow", s.requireAuth(s.handleFollow))
	mux.Handle("PATCH /users/me", s.requireAuth(s.handleUpdateProfile))

	mux.HandleFunc("GET /content", s.handleListContent)
	mux.Handle("POST /content", s.requireAuth(s.handleCreateContent))
	mux.HandleFunc("GET /content/{id}", s.handleGetContent)
	mux.Handle("PUT /content/{id}", s.requireAuth(s.handleUpdateContent))
	mux.Handle("DELETE /content/{id}", s.requireAuth(s.handleDeleteContent))

	mux.Handle("POST /content/{id}/comments", s.requireAuth(s.handleAddComment))
	mux.Handle("DELETE /content/{id}/comments/{commentId}", s.requireAuth(s.handleDeleteComment))
	mux.Handle("POST /content/{id}/like", s.requireAuth(s.toggleHandler(storage.EdgeLike)))
	mux.Handle("POST /content/{id}/share", s.requireAuth(s.toggleHandler(storage.EdgeShare)))
	mux.Handle("POST /content/{id}/save", s.requireAuth(s.toggleHandler(storage.EdgeSave)))

	mux.HandleFunc("GET /walls/{username}", s.handleWall)
	mux.Handle("POST /walls/{username}", s.requireAuth(s.handlePostWallMessage))
	mux.Handle("DELETE /walls/{username}/messages/{id}", s.requireAuth(s.handleDeleteWallMessage))

	return mux
}

func (s *Server) handleUp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type contextKey string

const userContextKey contextKey = "wall.user"

// sessionUser returns the authenticated account stored by requireAuth.
func sessionUser(ctx context.Context) (storage.User, bool) {
	user, ok := ctx.Value(userContextKey).(storage.User)
	return user, ok
}
