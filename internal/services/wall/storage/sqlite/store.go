// Package sqlite provides a SQLite-backed wall storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/openwall/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/openwall/internal/services/wall/storage"
	msqlite "modernc.org/sqlite"

	"github.com/louisbranch/openwall/internal/services/wall/storage/sqlite/migrations"
)

// Store persists wall state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite wall store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// SQLite reports constraint violations as result codes 1555 (primary key)
// and 2067 (unique index).
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case 1555, 2067:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- users ---

// PutUser inserts one identity record.
func (s *Store) PutUser(ctx context.Context, user storage.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("username is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, username, fullname, email, phone, password_hash, bio, avatar_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Fullname,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Bio,
		user.AvatarRef,
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

const userColumns = `id, username, fullname, email, phone, password_hash, bio, avatar_ref, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (storage.User, error) {
	var user storage.User
	var createdAt, updatedAt int64
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Fullname,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Bio,
		&user.AvatarRef,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.User{}, err
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

// GetUser returns one identity record by id.
func (s *Store) GetUser(ctx context.Context, id string) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername returns one identity record by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return storage.User{}, fmt.Errorf("username is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// GetUserByLogin returns one identity record whose username, email, or phone
// equals login.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return storage.User{}, fmt.Errorf("login is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username = ? OR (email <> '' AND email = ?) OR (phone <> '' AND phone = ?)`,
		login,
		login,
		login,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.User{}, storage.ErrNotFound
		}
		return storage.User{}, fmt.Errorf("get user by login: %w", err)
	}
	return user, nil
}

// UpdateUser rewrites one identity record.
func (s *Store) UpdateUser(ctx context.Context, user storage.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users
		 SET username = ?, fullname = ?, email = ?, phone = ?, password_hash = ?, bio = ?, avatar_ref = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Fullname,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Bio,
		user.AvatarRef,
		toMillis(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListUsers returns registered identities, oldest first.
func (s *Store) ListUsers(ctx context.Context, limit int) ([]storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]storage.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// --- content ---

const contentColumns = `id, kind, description, image_ref, body, wall_owner_id, author_id, created_at, updated_at`

func scanContent(row interface{ Scan(...any) error }) (storage.Content, error) {
	var content storage.Content
	var kind string
	var createdAt, updatedAt int64
	err := row.Scan(
		&content.ID,
		&kind,
		&content.Description,
		&content.ImageRef,
		&content.Body,
		&content.WallOwnerID,
		&content.AuthorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Content{}, err
	}
	content.Kind = storage.ContentKind(kind)
	content.CreatedAt = fromMillis(createdAt)
	content.UpdatedAt = fromMillis(updatedAt)
	return content, nil
}

// PutContent inserts one content item.
func (s *Store) PutContent(ctx context.Context, content storage.Content) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(content.ID) == "" {
		return fmt.Errorf("content id is required")
	}
	if strings.TrimSpace(content.AuthorID) == "" {
		return fmt.Errorf("author id is required")
	}
	if content.Kind == "" {
		return fmt.Errorf("content kind is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO content (id, kind, description, image_ref, body, wall_owner_id, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		content.ID,
		string(content.Kind),
		content.Description,
		content.ImageRef,
		content.Body,
		content.WallOwnerID,
		content.AuthorID,
		toMillis(content.CreatedAt),
		toMillis(content.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put content: %w", err)
	}
	return nil
}

// GetContent returns one content item by id.
func (s *Store) GetContent(ctx context.Context, id string) (storage.Content, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Content{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Content{}, fmt.Errorf("content id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE id = ?`, id)
	content, err := scanContent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Content{}, storage.ErrNotFound
		}
		return storage.Content{}, fmt.Errorf("get content: %w", err)
	}
	return content, nil
}

// UpdateContent rewrites the mutable fields of one content item.
func (s *Store) UpdateContent(ctx context.Context, content storage.Content) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(content.ID) == "" {
		return fmt.Errorf("content id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE content SET description = ?, image_ref = ?, body = ?, updated_at = ? WHERE id = ?`,
		content.Description,
		content.ImageRef,
		content.Body,
		toMillis(content.UpdatedAt),
		content.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteContent removes one content item. Dependent edges and comments are
// left in place; reads tolerate the dangling references.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("content id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListContent returns content matching filter.
func (s *Store) ListContent(ctx context.Context, filter storage.ContentFilter, limit int) ([]storage.Content, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	query := `SELECT ` + contentColumns + ` FROM content`
	var clauses []string
	var args []any
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.AuthorID != "" {
		clauses = append(clauses, "author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.WallOwnerID != "" {
		clauses = append(clauses, "wall_owner_id = ?")
		args = append(args, filter.WallOwnerID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY created_at ASC, id ASC"
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	items := make([]storage.Content, 0, limit)
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("list content: %w", err)
		}
		items = append(items, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// --- edges ---

// InsertEdge inserts one engagement edge. A concurrent insert for the same
// (user, target, kind) tuple loses against the unique index and surfaces as
// ErrAlreadyExists.
func (s *Store) InsertEdge(ctx context.Context, edge storage.Edge) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(edge.ID) == "" {
		return fmt.Errorf("edge id is required")
	}
	if strings.TrimSpace(edge.UserID) == "" {
		return fmt.Errorf("edge user id is required")
	}
	if strings.TrimSpace(edge.TargetID) == "" {
		return fmt.Errorf("edge target id is required")
	}
	if edge.Kind == "" {
		return fmt.Errorf("edge kind is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO edges (id, user_id, target_id, kind, created_at) VALUES (?, ?, ?, ?, ?)`,
		edge.ID,
		edge.UserID,
		edge.TargetID,
		string(edge.Kind),
		toMillis(edge.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

func scanEdge(row interface{ Scan(...any) error }) (storage.Edge, error) {
	var edge storage.Edge
	var kind string
	var createdAt int64
	if err := row.Scan(&edge.ID, &edge.UserID, &edge.TargetID, &kind, &createdAt); err != nil {
		return storage.Edge{}, err
	}
	edge.Kind = storage.EdgeKind(kind)
	edge.CreatedAt = fromMillis(createdAt)
	return edge, nil
}

// GetEdge returns the active edge for (user, target, kind).
func (s *Store) GetEdge(ctx context.Context, userID, targetID string, kind storage.EdgeKind) (storage.Edge, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Edge{}, err
	}
	userID = strings.TrimSpace(userID)
	targetID = strings.TrimSpace(targetID)
	if userID == "" || targetID == "" || kind == "" {
		return storage.Edge{}, fmt.Errorf("edge key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, user_id, target_id, kind, created_at FROM edges
		 WHERE user_id = ? AND target_id = ? AND kind = ?`,
		userID,
		targetID,
		string(kind),
	)
	edge, err := scanEdge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Edge{}, storage.ErrNotFound
		}
		return storage.Edge{}, fmt.Errorf("get edge: %w", err)
	}
	return edge, nil
}

// DeleteEdge removes one edge by id. Deleting an already-removed edge is not
// an error; the toggle treats it as an applied delete.
func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("edge id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return nil
}

// ListEdges returns edges on target of the given kind, oldest first.
func (s *Store) ListEdges(ctx context.Context, targetID string, kind storage.EdgeKind, limit int) ([]storage.Edge, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" || kind == "" {
		return nil, fmt.Errorf("edge target and kind are required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, user_id, target_id, kind, created_at FROM edges
		 WHERE target_id = ? AND kind = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		targetID,
		string(kind),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	edges := make([]storage.Edge, 0, limit)
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("list edges: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return edges, nil
}

// CountEdges returns the live cardinality of the edge set for (target, kind).
func (s *Store) CountEdges(ctx context.Context, targetID string, kind storage.EdgeKind) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" || kind == "" {
		return 0, fmt.Errorf("edge target and kind are required")
	}

	var count int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM edges WHERE target_id = ? AND kind = ?`,
		targetID,
		string(kind),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return count, nil
}

// --- comments ---

// PutComment inserts one comment.
func (s *Store) PutComment(ctx context.Context, comment storage.Comment) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(comment.ID) == "" {
		return fmt.Errorf("comment id is required")
	}
	if strings.TrimSpace(comment.TargetID) == "" {
		return fmt.Errorf("comment target id is required")
	}
	if strings.TrimSpace(comment.UserID) == "" {
		return fmt.Errorf("comment user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO comments (id, target_id, user_id, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.TargetID,
		comment.UserID,
		comment.Text,
		toMillis(comment.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put comment: %w", err)
	}
	return nil
}

func scanComment(row interface{ Scan(...any) error }) (storage.Comment, error) {
	var comment storage.Comment
	var createdAt int64
	if err := row.Scan(&comment.ID, &comment.TargetID, &comment.UserID, &comment.Text, &createdAt); err != nil {
		return storage.Comment{}, err
	}
	comment.CreatedAt = fromMillis(createdAt)
	return comment, nil
}

// GetComment returns one comment by id.
func (s *Store) GetComment(ctx context.Context, id string) (storage.Comment, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Comment{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Comment{}, fmt.Errorf("comment id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT id, target_id, user_id, text, created_at FROM comments WHERE id = ?`, id)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Comment{}, storage.ErrNotFound
		}
		return storage.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes one comment by id.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("comment id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListComments returns comments on target, oldest first.
func (s *Store) ListComments(ctx context.Context, targetID string, limit int) ([]storage.Comment, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, fmt.Errorf("comment target id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, target_id, user_id, text, created_at FROM comments
		 WHERE target_id = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		targetID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]storage.Comment, 0, limit)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CountComments returns the live number of comments on target.
func (s *Store) CountComments(ctx context.Context, targetID string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return 0, fmt.Errorf("comment target id is required")
	}

	var count int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE target_id = ?`, targetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// --- follows ---

// InsertFollow inserts one follow edge; duplicates surface as
// ErrAlreadyExists via the (follower, followee) unique index.
func (s *Store) InsertFollow(ctx context.Context, follow storage.Follow) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(follow.ID) == "" {
		return fmt.Errorf("follow id is required")
	}
	if strings.TrimSpace(follow.FollowerID) == "" {
		return fmt.Errorf("follower id is required")
	}
	if strings.TrimSpace(follow.FolloweeID) == "" {
		return fmt.Errorf("followee id is required")
	}
	if follow.FollowerID == follow.FolloweeID {
		return fmt.Errorf("followee id must differ from follower id")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO follows (id, follower_id, followee_id, created_at) VALUES (?, ?, ?, ?)`,
		follow.ID,
		follow.FollowerID,
		follow.FolloweeID,
		toMillis(follow.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

func scanFollow(row interface{ Scan(...any) error }) (storage.Follow, error) {
	var follow storage.Follow
	var createdAt int64
	if err := row.Scan(&follow.ID, &follow.FollowerID, &follow.FolloweeID, &createdAt); err != nil {
		return storage.Follow{}, err
	}
	follow.CreatedAt = fromMillis(createdAt)
	return follow, nil
}

// GetFollow returns the active follow edge for (follower, followee).
func (s *Store) GetFollow(ctx context.Context, followerID, followeeID string) (storage.Follow, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Follow{}, err
	}
	followerID = strings.TrimSpace(followerID)
	followeeID = strings.TrimSpace(followeeID)
	if followerID == "" || followeeID == "" {
		return storage.Follow{}, fmt.Errorf("follow key is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, follower_id, followee_id, created_at FROM follows
		 WHERE follower_id = ? AND followee_id = ?`,
		followerID,
		followeeID,
	)
	follow, err := scanFollow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Follow{}, storage.ErrNotFound
		}
		return storage.Follow{}, fmt.Errorf("get follow: %w", err)
	}
	return follow, nil
}

// DeleteFollow removes one follow edge by id.
func (s *Store) DeleteFollow(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("follow id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM follows WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

func (s *Store) listFollows(ctx context.Context, column, userID string, limit int) ([]storage.Follow, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, follower_id, followee_id, created_at FROM follows
		 WHERE `+column+` = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	follows := make([]storage.Follow, 0, limit)
	for rows.Next() {
		follow, err := scanFollow(rows)
		if err != nil {
			return nil, fmt.Errorf("list follows: %w", err)
		}
		follows = append(follows, follow)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	return follows, nil
}

// ListFollowers returns follow edges pointing at followee, oldest first.
func (s *Store) ListFollowers(ctx context.Context, followeeID string, limit int) ([]storage.Follow, error) {
	return s.listFollows(ctx, "followee_id", followeeID, limit)
}

// ListFollowing returns follow edges created by follower, oldest first.
func (s *Store) ListFollowing(ctx context.Context, followerID string, limit int) ([]storage.Follow, error) {
	return s.listFollows(ctx, "follower_id", followerID, limit)
}

func (s *Store) countFollows(ctx context.Context, column, userID string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	var count int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM follows WHERE `+column+` = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count follows: %w", err)
	}
	return count, nil
}

// CountFollowers returns the live follower count for followee.
func (s *Store) CountFollowers(ctx context.Context, followeeID string) (int64, error) {
	return s.countFollows(ctx, "followee_id", followeeID)
}

// CountFollowing returns the live following count for follower.
func (s *Store) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	return s.countFollows(ctx, "follower_id", followerID)
}
