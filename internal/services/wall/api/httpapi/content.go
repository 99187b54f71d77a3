package httpapi

import (
	"net/http"

	"github.com/louisbranch/openwall/internal/platform/errors"
	"github.com/louisbranch/openwall/internal/services/wall/engagement"
	"github.com/louisbranch/openwall/internal/services/wall/storage"
)

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := engagement.ListFilter{
		Kind:           storage.ContentKind(query.Get("kind")),
		AuthorUsername: query.Get("author"),
	}
	if filter.Kind != "" {
		switch filter.Kind {
		case storage.KindPost, storage.KindMessage, storage.KindWallMessage:
		default:
			writeError(w, errors.New(errors.CodeContentInvalidKind, "unknown content kind"))
			return
		}
	}
	views, err := s.engagement.ListContent(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	view, err := s.engagement.GetContentView(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type createContentRequest struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	ImageRef    string `json:"imageRef"`
	Body        string `json:"body"`
	WallOwner   string `json:"wallOwner"`
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	var req createContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	content, err := s.engagement.CreateContent(r.Context(), user.ID, engagement.CreateContentParams{
		Kind:        storage.ContentKind(req.Kind),
		Description: req.Description,
		ImageRef:    req.ImageRef,
		Body:        req.Body,
		WallOwner:   req.WallOwner,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.engagement.GetContentView(r.Context(), content.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type contentPatchRequest struct {
	Description *string `json:"description"`
	ImageRef    *string `json:"imageRef"`
	Body        *string `json:"body"`
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	var req contentPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	content, err := s.engagement.UpdateContent(r.Context(), user.ID, r.PathValue("id"), engagement.ContentPatch{
		Description: req.Description,
		ImageRef:    req.ImageRef,
		Body:        req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.engagement.GetContentView(r.Context(), content.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	if err := s.engagement.DeleteContent(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type commentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	comment, err := s.engagement.AddComment(r.Context(), user.ID, r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	err := s.engagement.DeleteComment(r.Context(), user.ID, r.PathValue("id"), r.PathValue("commentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) toggleHandler(kind storage.EdgeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := sessionUser(r.Context())
		if !ok {
			writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
			return
		}
		active, err := s.engagement.Toggle(r.Context(), user.ID, r.PathValue("id"), kind)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Active: active})
	}
}
