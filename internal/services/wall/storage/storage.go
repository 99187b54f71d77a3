// Package storage defines persistence contracts for wall service state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// ContentKind discriminates the content variants sharing one table.
type ContentKind string

const (
	KindPost        ContentKind = "post"
	KindMessage     ContentKind = "message"
	KindWallMessage ContentKind = "wall_message"
)

// EdgeKind discriminates the toggleable engagement edges.
type EdgeKind string

const (
	EdgeLike  EdgeKind = "like"
	EdgeShare EdgeKind = "share"
	EdgeSave  EdgeKind = "save"
)

// User stores one registered identity.
type User struct {
	ID           string
	Username     string
	Fullname     string
	Email        string
	Phone        string
	PasswordHash string
	Bio          string
	AvatarRef    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Content stores one post, direct message, or public wall message.
type Content struct {
	ID          string
	Kind        ContentKind
	Description string // posts
	ImageRef    string // posts
	Body        string // messages and wall messages
	WallOwnerID string // wall messages: whose wall this sits on
	AuthorID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Edge stores one like/share/save relationship from a user to a content item.
// At most one edge exists per (UserID, TargetID, Kind).
type Edge struct {
	ID        string
	UserID    string
	TargetID  string
	Kind      EdgeKind
	CreatedAt time.Time
}

// Comment stores one comment by a user on a content item.
type Comment struct {
	ID        string
	TargetID  string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// Follow stores one directed follow relationship between two users.
// At most one follow exists per (FollowerID, FolloweeID).
type Follow struct {
	ID         string
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// ContentFilter narrows and orders content listings.
type ContentFilter struct {
	Kind        ContentKind // zero value matches all kinds
	AuthorID    string
	WallOwnerID string
	NewestFirst bool
}

// UserStore persists registered identities.
//
// PutUser and UpdateUser return ErrAlreadyExists when a unique column
// (username, email, phone) collides with another record.
type UserStore interface {
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByLogin(ctx context.Context, login string) (User, error)
	UpdateUser(ctx context.Context, user User) error
	ListUsers(ctx context.Context, limit int) ([]User, error)
}

// ContentStore persists content items.
type ContentStore interface {
	PutContent(ctx context.Context, content Content) error
	GetContent(ctx context.Context, id string) (Content, error)
	UpdateContent(ctx context.Context, content Content) error
	DeleteContent(ctx context.Context, id string) error
	ListContent(ctx context.Context, filter ContentFilter, limit int) ([]Content, error)
}

// EdgeStore persists engagement edges.
//
// InsertEdge returns ErrAlreadyExists when an edge for the same
// (user, target, kind) tuple is already present; this is the serialization
// point for concurrent toggles.
type EdgeStore interface {
	InsertEdge(ctx context.Context, edge Edge) error
	GetEdge(ctx context.Context, userID, targetID string, kind EdgeKind) (Edge, error)
	DeleteEdge(ctx context.Context, id string) error
	ListEdges(ctx context.Context, targetID string, kind EdgeKind, limit int) ([]Edge, error)
	CountEdges(ctx context.Context, targetID string, kind EdgeKind) (int64, error)
}

// CommentStore persists comments.
type CommentStore interface {
	PutComment(ctx context.Context, comment Comment) error
	GetComment(ctx context.Context, id string) (Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, targetID string, limit int) ([]Comment, error)
	CountComments(ctx context.Context, targetID string) (int64, error)
}

// FollowStore persists the follow graph.
//
// InsertFollow returns ErrAlreadyExists for a duplicate (follower, followee)
// pair, mirroring EdgeStore.InsertEdge.
type FollowStore interface {
	InsertFollow(ctx context.Context, follow Follow) error
	GetFollow(ctx context.Context, followerID, followeeID string) (Follow, error)
	DeleteFollow(ctx context.Context, id string) error
	ListFollowers(ctx context.Context, followeeID string, limit int) ([]Follow, error)
	ListFollowing(ctx context.Context, followerID string, limit int) ([]Follow, error)
	CountFollowers(ctx context.Context, followeeID string) (int64, error)
	CountFollowing(ctx context.Context, followerID string) (int64, error)
}

// Store aggregates every persistence contract the wall service consumes.
type Store interface {
	UserStore
	ContentStore
	EdgeStore
	CommentStore
	FollowStore
}
