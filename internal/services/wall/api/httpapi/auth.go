package httpapi

import (
	"net/http"
	"time"

	"github.com/louisbranch/openwall/internal/platform/errors"
	"github.com/louisbranch/openwall/internal/services/wall/identity"
	"github.com/louisbranch/openwall/internal/services/wall/storage"
)

type identityView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarRef string    `json:"avatarRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toIdentityView(user storage.User) identityView {
	return identityView{
		ID:        user.ID,
		Username:  user.Username,
		Fullname:  user.Fullname,
		Email:     user.Email,
		Phone:     user.Phone,
		Bio:       user.Bio,
		AvatarRef: user.AvatarRef,
		CreatedAt: user.CreatedAt,
	}
}

type signupRequest struct {
	Username   string `json:"username"`
	Fullname   string `json:"fullname"`
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.identity.Register(r.Context(), identity.RegisterParams{
		Username:   req.Username,
		Fullname:   req.Fullname,
		Credential: req.Credential,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIdentityView(user))
}

type signinRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type signinResponse struct {
	Token string       `json:"token"`
	User  identityView `json:"user"`
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.identity.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, errors.Wrap(errors.CodeUnknown, "issue session token", err))
		return
	}
	writeJSON(w, http.StatusOK, signinResponse{Token: signed, User: toIdentityView(user)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	content, err := s.engagement.ListContentByAuthor(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		identityView
		Content any `json:"content"`
	}{toIdentityView(user), content})
}

type profilePatchRequest struct {
	Username  *string `json:"username"`
	Fullname  *string `json:"fullname"`
	Bio       *string `json:"bio"`
	AvatarRef *string `json:"avatarRef"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(r.Context())
	if !ok {
		writeError(w, errors.New(errors.CodeUnauthenticated, "no session"))
		return
	}
	var req profilePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.identity.UpdateProfile(r.Context(), user.ID, identity.ProfilePatch{
		Username:  req.Username,
		Fullname:  req.Fullname,
		Bio:       req.Bio,
		AvatarRef: req.AvatarRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityView(updated))
}
