package httpapi

import (
	"net/http"

	"github.com/louisbranch/openwall/internal/platform/errors"
)

func (s *Server) handleWall(w http.ResponseWriter, r *http.Request) {
	views, err := s.engagement.ListWallMessages(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

type wallMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) handlePostWallMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	var req wallMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	view, err := s.engagement.PostWallMessage(r.Context(), user.ID, r.PathValue("username"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleDeleteWallMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	err := s.engagement.DeleteWallMessage(r.Context(), user.ID, r.PathValue("username"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
