// Package engagement implements content, toggle, comment, and follow
// operations over wall storage.
package engagement

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/louisbranch/openwall/internal/platform/errors"
	"github.com/louisbranch/openwall/internal/platform/id"
	"github.com/louisbranch/openwall/internal/services/wall/storage"
	"github.com/louisbranch/openwall/internal/services/wall/username"
)

const (
	// populateLimit caps how many edge users a single view resolves.
	populateLimit = 50
	// commentLimit caps how many comments a single view carries.
	commentLimit = 100
	// listLimit caps collection listings.
	listLimit = 100
)

// Service coordinates engagement state transitions and view assembly.
type Service struct {
	store storage.Store
	now   func() time.Time
	newID func() (string, error)
}

// New creates an engagement service backed by store.
func New(store storage.Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: id.NewID,
	}
}

// NewForTest creates an engagement service with injected clock and id source.
func NewForTest(store storage.Store, now func() time.Time, newID func() (string, error)) *Service {
	return &Service{store: store, now: now, newID: newID}
}

// storeErr maps infrastructure failures to coded errors. Deadline and
// cancellation surface as TIMEOUT so callers can retry with a fresh budget.
func storeErr(message string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.Wrap(errors.CodeTimeout, message, err)
	}
	return errors.Wrap(errors.CodeUnavailable, message, err)
}

// CreateContentParams carries input for content creation.
type CreateContentParams struct {
	Kind        storage.ContentKind
	Description string
	ImageRef    string
	Body        string
	WallOwner   string // wall message target username
}

// ContentPatch carries the mutable fields of a content update. Nil fields
// are left unchanged.
type ContentPatch struct {
	Description *string
	ImageRef    *string
	Body        *string
}

func validateCreate(params CreateContentParams) error {
	switch params.Kind {
	case storage.KindPost:
		if strings.TrimSpace(params.Description) == "" {
			return errors.New(errors.CodeContentEmptyDescription, "post description is required")
		}
		if strings.TrimSpace(params.ImageRef) == "" {
			return errors.New(errors.CodeContentEmptyImageRef, "post image is required")
		}
	case storage.KindMessage, storage.KindWallMessage:
		if strings.TrimSpace(params.Body) == "" {
			return errors.New(errors.CodeContentEmptyText, "message text is required")
		}
	default:
		return errors.New(errors.CodeContentInvalidKind, "unknown content kind")
	}
	return nil
}

// CreateContent validates and stores a new content item authored by authorID.
// Wall messages resolve WallOwner to an existing user first.
func (s *Service) CreateContent(ctx context.Context, authorID string, params CreateContentParams) (storage.Content, error) {
	if err := validateCreate(params); err != nil {
		return storage.Content{}, err
	}

	var wallOwnerID string
	if params.Kind == storage.KindWallMessage {
		owner, err := s.resolveUsername(ctx, params.WallOwner)
		if err != nil {
			return storage.Content{}, err
		}
		wallOwnerID = owner.ID
	}

	contentID, err := s.newID()
	if err != nil {
		return storage.Content{}, errors.Wrap(errors.CodeUnknown, "generate content id", err)
	}
	now := s.now()
	content := storage.Content{
		ID:          contentID,
		Kind:        params.Kind,
		Description: strings.TrimSpace(params.Description),
		ImageRef:    strings.TrimSpace(params.ImageRef),
		Body:        strings.TrimSpace(params.Body),
		WallOwnerID: wallOwnerID,
		AuthorID:    authorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutContent(ctx, content); err != nil {
		return storage.Content{}, storeErr("store content", err)
	}
	return content, nil
}

// UpdateContent applies a partial update. Only the author may update.
func (s *Service) UpdateContent(ctx context.Context, actorID, contentID string, patch ContentPatch) (storage.Content, error) {
	content, err := s.getContent(ctx, contentID)
	if err != nil {
		return storage.Content{}, err
	}
	if content.AuthorID != actorID {
		return storage.Content{}, errors.New(errors.CodeForbidden, "only the author may update this content")
	}

	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if content.Kind == storage.KindPost && description == "" {
			return storage.Content{}, errors.New(errors.CodeContentEmptyDescription, "post description is required")
		}
		content.Description = description
	}
	if patch.ImageRef != nil {
		imageRef := strings.TrimSpace(*patch.ImageRef)
		if content.Kind == storage.KindPost && imageRef == "" {
			return storage.Content{}, errors.New(errors.CodeContentEmptyImageRef, "post image is required")
		}
		content.ImageRef = imageRef
	}
	if patch.Body != nil {
		body := strings.TrimSpace(*patch.Body)
		if content.Kind != storage.KindPost && body == "" {
			return storage.Content{}, errors.New(errors.CodeContentEmptyText, "message text is required")
		}
		content.Body = body
	}
	content.UpdatedAt = s.now()

	if err := s.store.UpdateContent(ctx, content); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.Content{}, errors.New(errors.CodeNotFound, "content not found")
		}
		return storage.Content{}, storeErr("update content", err)
	}
	return content, nil
}

// DeleteContent removes a content item. Only the author may delete.
// Dependent edges and comments are left dangling; reads skip them.
func (s *Service) DeleteContent(ctx context.Context, actorID, contentID string) error {
	content, err := s.getContent(ctx, contentID)
	if err != nil {
		return err
	}
	if content.AuthorID != actorID {
		return errors.New(errors.CodeForbidden, "only the author may delete this content")
	}
	if err := s.store.DeleteContent(ctx, contentID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.New(errors.CodeNotFound, "content not found")
		}
		return storeErr("delete content", err)
	}
	return nil
}

func (s *Service) getContent(ctx context.Context, contentID string) (storage.Content, error) {
	content, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.Content{}, errors.New(errors.CodeNotFound, "content not found")
		}
		return storage.Content{}, storeErr("get content", err)
	}
	return content, nil
}

func (s *Service) resolveUsername(ctx context.Context, name string) (storage.User, error) {
	canonical, err := username.Canonicalize(name)
	if err != nil {
		return storage.User{}, errors.Wrap(errors.CodeNotFound, "unknown user", err)
	}
	user, err := s.store.GetUserByUsername(ctx, canonical)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.User{}, errors.New(errors.CodeNotFound, "unknown user")
		}
		return storage.User{}, storeErr("lookup user", err)
	}
	return user, nil
}

// Toggle flips a like/share/save edge from userID to the target content.
// Returns whether the edge is active after the call. A racing duplicate
// insert is absorbed as an active edge.
func (s *Service) Toggle(ctx context.Context, userID, targetID string, kind storage.EdgeKind) (bool, error) {
	if _, err := s.getContent(ctx, targetID); err != nil {
		return false, err
	}

	existing, err := s.store.GetEdge(ctx, userID, targetID, kind)
	switch {
	case err == nil:
		if err := s.store.DeleteEdge(ctx, existing.ID); err != nil {
			return false, storeErr("delete edge", err)
		}
		return false, nil
	case stderrors.Is(err, storage.ErrNotFound):
		// fall through to insert
	default:
		return false, storeErr("get edge", err)
	}

	edgeID, err := s.newID()
	if err != nil {
		return false, errors.Wrap(errors.CodeUnknown, "generate edge id", err)
	}
	edge := storage.Edge{
		ID:        edgeID,
		UserID:    userID,
		TargetID:  targetID,
		Kind:      kind,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertEdge(ctx, edge); err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			// Another toggle won the insert; the edge is active either way.
			return true, nil
		}
		return false, storeErr("insert edge", err)
	}
	return true, nil
}

// ToggleFollow flips the follow edge from followerID to the named user.
// Returns whether the follow is active after the call.
func (s *Service) ToggleFollow(ctx context.Context, followerID, followeeUsername string) (bool, error) {
	followee, err := s.resolveUsername(ctx, followeeUsername)
	if err != nil {
		return false, err
	}
	if followee.ID == followerID {
		return false, errors.New(errors.CodeGraphSelfFollow, "cannot follow yourself")
	}

	existing, err := s.store.GetFollow(ctx, followerID, followee.ID)
	switch {
	case err == nil:
		if err := s.store.DeleteFollow(ctx, existing.ID); err != nil {
			return false, storeErr("delete follow", err)
		}
		return false, nil
	case stderrors.Is(err, storage.ErrNotFound):
		// fall through to insert
	default:
		return false, storeErr("get follow", err)
	}

	followID, err := s.newID()
	if err != nil {
		return false, errors.Wrap(errors.CodeUnknown, "generate follow id", err)
	}
	follow := storage.Follow{
		ID:         followID,
		FollowerID: followerID,
		FolloweeID: followee.ID,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertFollow(ctx, follow); err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return true, nil
		}
		return false, storeErr("insert follow", err)
	}
	return true, nil
}

// AddComment attaches a comment by userID to the target content.
func (s *Service) AddComment(ctx context.Context, userID, targetID, text string) (CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CommentView{}, errors.New(errors.CodeCommentEmptyText, "comment text is required")
	}
	if _, err := s.getContent(ctx, targetID); err != nil {
		return CommentView{}, err
	}

	commentID, err := s.newID()
	if err != nil {
		return CommentView{}, errors.Wrap(errors.CodeUnknown, "generate comment id", err)
	}
	comment := storage.Comment{
		ID:        commentID,
		TargetID:  targetID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.store.PutComment(ctx, comment); err != nil {
		return CommentView{}, storeErr("store comment", err)
	}

	view := CommentView{ID: comment.ID, Text: comment.Text, CreatedAt: comment.CreatedAt}
	if user, err := s.store.GetUser(ctx, userID); err == nil {
		view.User = userRef(user)
	} else {
		view.User = UserRef{ID: userID}
	}
	return view, nil
}

// DeleteComment removes a comment. Only its creator may delete it.
func (s *Service) DeleteComment(ctx context.Context, actorID, targetID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.New(errors.CodeNotFound, "comment not found")
		}
		return storeErr("get comment", err)
	}
	if comment.TargetID != targetID {
		return errors.New(errors.CodeNotFound, "comment not found")
	}
	if comment.UserID != actorID {
		return errors.New(errors.CodeForbidden, "only the comment creator may delete it")
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.New(errors.CodeNotFound, "comment not found")
		}
		return storeErr("delete comment", err)
	}
	return nil
}

// ListFilter narrows content listings.
type ListFilter struct {
	Kind           storage.ContentKind
	AuthorUsername string
}

// ListContent returns content views with computed counts. Filtering by
// author orders newest first.
func (s *Service) ListContent(ctx context.Context, filter ListFilter) ([]ContentView, error) {
	storeFilter := storage.ContentFilter{Kind: filter.Kind}
	if filter.AuthorUsername != "" {
		author, err := s.resolveUsername(ctx, filter.AuthorUsername)
		if err != nil {
			return nil, err
		}
		storeFilter.AuthorID = author.ID
		storeFilter.NewestFirst = true
	}

	items, err := s.store.ListContent(ctx, storeFilter, listLimit)
	if err != nil {
		return nil, storeErr("list content", err)
	}
	views := make([]ContentView, 0, len(items))
	for _, item := range items {
		view, err := s.summaryView(ctx, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ListContentByAuthor returns the author's content newest first, counts only.
func (s *Service) ListContentByAuthor(ctx context.Context, authorID string) ([]ContentView, error) {
	items, err := s.store.ListContent(ctx, storage.ContentFilter{AuthorID: authorID, NewestFirst: true}, listLimit)
	if err != nil {
		return nil, storeErr("list content", err)
	}
	views := make([]ContentView, 0, len(items))
	for _, item := range items {
		view, err := s.summaryView(ctx, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetContentView returns one content item with populated engagement lists.
func (s *Service) GetContentView(ctx context.Context, contentID string) (ContentView, error) {
	content, err := s.getContent(ctx, contentID)
	if err != nil {
		return ContentView{}, err
	}
	return s.detailView(ctx, content)
}

// Profile returns the public profile of the named user with populated
// follower and following lists.
func (s *Service) Profile(ctx context.Context, name string) (ProfileView, error) {
	user, err := s.resolveUsername(ctx, name)
	if err != nil {
		return ProfileView{}, err
	}

	followerEdges, err := s.store.ListFollowers(ctx, user.ID, populateLimit)
	if err != nil {
		return ProfileView{}, storeErr("list followers", err)
	}
	followingEdges, err := s.store.ListFollowing(ctx, user.ID, populateLimit)
	if err != nil {
		return ProfileView{}, storeErr("list following", err)
	}
	followerCount, err := s.store.CountFollowers(ctx, user.ID)
	if err != nil {
		return ProfileView{}, storeErr("count followers", err)
	}
	followingCount, err := s.store.CountFollowing(ctx, user.ID)
	if err != nil {
		return ProfileView{}, storeErr("count following", err)
	}

	view := ProfileView{
		ID:             user.ID,
		Username:       user.Username,
		Fullname:       user.Fullname,
		Bio:            user.Bio,
		AvatarRef:      user.AvatarRef,
		CreatedAt:      user.CreatedAt,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		Followers:      make([]UserRef, 0, len(followerEdges)),
		Following:      make([]UserRef, 0, len(followingEdges)),
	}
	for _, edge := range followerEdges {
		if ref, ok := s.lookupRef(ctx, edge.FollowerID); ok {
			view.Followers = append(view.Followers, ref)
		}
	}
	for _, edge := range followingEdges {
		if ref, ok := s.lookupRef(ctx, edge.FolloweeID); ok {
			view.Following = append(view.Following, ref)
		}
	}
	return view, nil
}

// ListWallMessages returns the named user's public wall, newest first.
func (s *Service) ListWallMessages(ctx context.Context, wallOwner string) ([]ContentView, error) {
	owner, err := s.resolveUsername(ctx, wallOwner)
	if err != nil {
		return nil, err
	}
	filter := storage.ContentFilter{
		Kind:        storage.KindWallMessage,
		WallOwnerID: owner.ID,
		NewestFirst: true,
	}
	items, err := s.store.ListContent(ctx, filter, listLimit)
	if err != nil {
		return nil, storeErr("list wall messages", err)
	}
	views := make([]ContentView, 0, len(items))
	for _, item := range items {
		view, err := s.summaryView(ctx, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// PostWallMessage creates a wall message from authorID on wallOwner's wall.
func (s *Service) PostWallMessage(ctx context.Context, authorID, wallOwner, body string) (ContentView, error) {
	content, err := s.CreateContent(ctx, authorID, CreateContentParams{
		Kind:      storage.KindWallMessage,
		Body:      body,
		WallOwner: wallOwner,
	})
	if err != nil {
		return ContentView{}, err
	}
	return s.summaryView(ctx, content)
}

// DeleteWallMessage removes a wall message. Only its author may delete it.
func (s *Service) DeleteWallMessage(ctx context.Context, actorID, wallOwner, messageID string) error {
	owner, err := s.resolveUsername(ctx, wallOwner)
	if err != nil {
		return err
	}
	content, err := s.getContent(ctx, messageID)
	if err != nil {
		return err
	}
	if content.Kind != storage.KindWallMessage || content.WallOwnerID != owner.ID {
		return errors.New(errors.CodeNotFound, "wall message not found")
	}
	return s.DeleteContent(ctx, actorID, messageID)
}
