package httpapi

import (
	"net/http"
	"time"

	"github.com/louisbranch/openwall/internal/platform/errors"
)

type publicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Fullname  string    `json:"fullname"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.identity.List(r.Context(), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	profiles := make([]publicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, publicProfile{
			ID:        user.ID,
			Username:  user.Username,
			Fullname:  user.Fullname,
			CreatedAt: user.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.engagement.Profile(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type toggleResponse struct {
	Active bool `json:"active"`
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	active, err := s.engagement.ToggleFollow(r.Context(), user.ID, r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: active})
}
