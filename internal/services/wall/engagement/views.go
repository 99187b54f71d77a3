package engagement

import (
	"context"
	"time"

	"github.com/louisbranch/openwall/internal/services/wall/storage"
)

// UserRef is the populated shape of a referenced user.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// CommentView is a comment with its creator populated.
type CommentView struct {
	ID        string    `json:"id"`
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContentView is a content item with computed engagement state. Summary
// views carry counts only; detail views also populate the edge user lists
// and comments.
type ContentView struct {
	ID          string              `json:"id"`
	Kind        storage.ContentKind `json:"kind"`
	Description string              `json:"description,omitempty"`
	ImageRef    string              `json:"imageRef,omitempty"`
	Body        string              `json:"body,omitempty"`
	Author      UserRef             `json:"author"`
	WallOwner   *UserRef            `json:"wallOwner,omitempty"`

	LikeCount    int64 `json:"likeCount"`
	ShareCount   int64 `json:"shareCount"`
	SaveCount    int64 `json:"saveCount"`
	CommentCount int64 `json:"commentCount"`

	Likes    []UserRef     `json:"likes,omitempty"`
	Shares   []UserRef     `json:"shares,omitempty"`
	Saves    []UserRef     `json:"saves,omitempty"`
	Comments []CommentView `json:"comments,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileView is a user's public profile with populated graph edges.
type ProfileView struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Fullname       string    `json:"fullname"`
	Bio            string    `json:"bio,omitempty"`
	AvatarRef      string    `json:"avatarRef,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	FollowerCount  int64     `json:"followerCount"`
	FollowingCount int64     `json:"followingCount"`
	Followers      []UserRef `json:"followers"`
	Following      []UserRef `json:"following"`
}

func userRef(user storage.User) UserRef {
	return UserRef{ID: user.ID, Username: user.Username, Fullname: user.Fullname}
}

// lookupRef resolves a user reference, reporting ok=false for dangling ids.
func (s *Service) lookupRef(ctx context.Context, userID string) (UserRef, bool) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return UserRef{}, false
	}
	return userRef(user), true
}

// summaryView assembles a content view with counts only.
func (s *Service) summaryView(ctx context.Context, content storage.Content) (ContentView, error) {
	view := ContentView{
		ID:          content.ID,
		Kind:        content.Kind,
		Description: content.Description,
		ImageRef:    content.ImageRef,
		Body:        content.Body,
		CreatedAt:   content.CreatedAt,
		UpdatedAt:   content.UpdatedAt,
	}

	// A deleted author leaves the content readable with a bare id.
	if ref, ok := s.lookupRef(ctx, content.AuthorID); ok {
		view.Author = ref
	} else {
		view.Author = UserRef{ID: content.AuthorID}
	}
	if content.WallOwnerID != "" {
		if ref, ok := s.lookupRef(ctx, content.WallOwnerID); ok {
			view.WallOwner = &ref
		} else {
			view.WallOwner = &UserRef{ID: content.WallOwnerID}
		}
	}

	var err error
	if view.LikeCount, err = s.store.CountEdges(ctx, content.ID, storage.EdgeLike); err != nil {
		return ContentView{}, storeErr("count likes", err)
	}
	if view.ShareCount, err = s.store.CountEdges(ctx, content.ID, storage.EdgeShare); err != nil {
		return ContentView{}, storeErr("count shares", err)
	}
	if view.SaveCount, err = s.store.CountEdges(ctx, content.ID, storage.EdgeSave); err != nil {
		return ContentView{}, storeErr("count saves", err)
	}
	if view.CommentCount, err = s.store.CountComments(ctx, content.ID); err != nil {
		return ContentView{}, storeErr("count comments", err)
	}
	return view, nil
}

// detailView assembles a content view with populated edge lists and comments.
// Dangling user references are skipped; counts still reflect live edges.
func (s *Service) detailView(ctx context.Context, content storage.Content) (ContentView, error) {
	view, err := s.summaryView(ctx, content)
	if err != nil {
		return ContentView{}, err
	}

	for _, kind := range []storage.EdgeKind{storage.EdgeLike, storage.EdgeShare, storage.EdgeSave} {
		edges, err := s.store.ListEdges(ctx, content.ID, kind, populateLimit)
		if err != nil {
			return ContentView{}, storeErr("list edges", err)
		}
		refs := make([]UserRef, 0, len(edges))
		for _, edge := range edges {
			if ref, ok := s.lookupRef(ctx, edge.UserID); ok {
				refs = append(refs, ref)
			}
		}
		switch kind {
		case storage.EdgeLike:
			view.Likes = refs
		case storage.EdgeShare:
			view.Shares = refs
		case storage.EdgeSave:
			view.Saves = refs
		}
	}

	comments, err := s.store.ListComments(ctx, content.ID, commentLimit)
	if err != nil {
		return ContentView{}, storeErr("list comments", err)
	}
	view.Comments = make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		commentView := CommentView{ID: comment.ID, Text: comment.Text, CreatedAt: comment.CreatedAt}
		if ref, ok := s.lookupRef(ctx, comment.UserID); ok {
			commentView.User = ref
		} else {
			commentView.User = UserRef{ID: comment.UserID}
		}
		view.Comments = append(view.Comments, commentView)
	}
	return view, nil
}
