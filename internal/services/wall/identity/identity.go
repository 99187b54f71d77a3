// Package identity manages account registration, login, and profile state.
package identity

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/louisbranch/openwall/internal/platform/errors"
	"github.com/louisbranch/openwall/internal/platform/id"
	"github.com/louisbranch/openwall/internal/services/wall/storage"
	"github.com/louisbranch/openwall/internal/services/wall/username"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements account lifecycle operations on top of a user store.
type Service struct {
	store storage.UserStore
	now   func() time.Time
	newID func() (string, error)
}

// New creates an identity service backed by store.
func New(store storage.UserStore) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: id.NewID,
	}
}

// NewForTest creates an identity service with injected clock and id source.
func NewForTest(store storage.UserStore, now func() time.Time, newID func() (string, error)) *Service {
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

// RegisterParams carries signup input.
type RegisterParams struct {
	Username   string
	Fullname   string
	Credential string // email address or phone number
	Password   string
}

// ProfilePatch carries the optional profile fields of an update. Nil fields
// are left unchanged.
type ProfilePatch struct {
	Username  *string
	Fullname  *string
	Bio       *string
	AvatarRef *string
}

// normalizePhone strips formatting characters and a leading plus, keeping
// digits only.
func normalizePhone(input string) string {
	var builder strings.Builder
	builder.Grow(len(input))
	for _, ch := range input {
		if ch >= '0' && ch <= '9' {
			builder.WriteRune(ch)
		}
	}
	return builder.String()
}

// classifyCredential splits a raw credential into email or phone form.
func classifyCredential(raw string) (email, phone string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", errors.New(errors.CodeIdentityInvalidCredential, "credential is required")
	}
	if emailPattern.MatchString(raw) {
		return strings.ToLower(raw), "", nil
	}
	digits := normalizePhone(raw)
	if len(digits) < 7 || len(digits) > 15 {
		return "", "", errors.New(errors.CodeIdentityInvalidCredential, "credential must be an email address or phone number")
	}
	return "", digits, nil
}

// checkPasswordPolicy requires at least eight characters spanning upper,
// lower, digit, and symbol classes.
func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return errors.New(errors.CodeIdentityWeakPassword, "password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return errors.New(errors.CodeIdentityWeakPassword, "password must mix upper, lower, digit, and symbol characters")
	}
	return nil
}

// Register validates signup input and creates the account.
func (s *Service) Register(ctx context.Context, params RegisterParams) (storage.User, error) {
	canonical, err := username.Canonicalize(params.Username)
	if err != nil {
		return storage.User{}, errors.Wrap(errors.CodeIdentityInvalidUsername, "invalid username", err)
	}
	fullname := strings.TrimSpace(params.Fullname)
	if fullname == "" {
		return storage.User{}, errors.New(errors.CodeIdentityInvalidFullname, "fullname is required")
	}
	email, phone, err := classifyCredential(params.Credential)
	if err != nil {
		return storage.User{}, err
	}
	if err := checkPasswordPolicy(params.Password); err != nil {
		return storage.User{}, err
	}

	if _, err := s.store.GetUserByUsername(ctx, canonical); err == nil {
		return storage.User{}, errors.New(errors.CodeIdentityUsernameTaken, "username is already taken")
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return storage.User{}, storeErr("lookup username", err)
	}

	credential := email
	if credential == "" {
		credential = phone
	}
	if _, err := s.store.GetUserByLogin(ctx, credential); err == nil {
		return storage.User{}, errors.New(errors.CodeIdentityCredentialTaken, "credential is already registered")
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return storage.User{}, storeErr("lookup credential", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, errors.Wrap(errors.CodeUnknown, "hash password", err)
	}
	userID, err := s.newID()
	if err != nil {
		return storage.User{}, errors.Wrap(errors.CodeUnknown, "generate user id", err)
	}

	now := s.now()
	user := storage.User{
		ID:           userID,
		Username:     canonical,
		Fullname:     fullname,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.PutUser(ctx, user); err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			// A racing signup won the unique index. Re-check the username to
			// report which field collided.
			if _, lookupErr := s.store.GetUserByUsername(ctx, canonical); lookupErr == nil {
				return storage.User{}, errors.New(errors.CodeIdentityUsernameTaken, "username is already taken")
			}
			return storage.User{}, errors.New(errors.CodeIdentityCredentialTaken, "credential is already registered")
		}
		return storage.User{}, storeErr("store user", err)
	}
	return user, nil
}

// Authenticate resolves login (username, email, or phone) and verifies the
// password. Wrong login and wrong password are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, login, password string) (storage.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return storage.User{}, errors.New(errors.CodeIdentityWrongLogin, "login and password are required")
	}

	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.User{}, errors.New(errors.CodeIdentityWrongLogin, "wrong login or password")
		}
		return storage.User{}, storeErr("lookup login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return storage.User{}, errors.New(errors.CodeIdentityWrongLogin, "wrong login or password")
	}
	return user, nil
}

// Resolve returns the account for a session user id. A missing account maps
// to SESSION_USER_MISSING so stale tokens fail closed.
func (s *Service) Resolve(ctx context.Context, userID string) (storage.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.User{}, errors.New(errors.CodeSessionUserMissing, "session user no longer exists")
		}
		return storage.User{}, storeErr("resolve session user", err)
	}
	return user, nil
}

// GetByUsername returns the account with the given username.
func (s *Service) GetByUsername(ctx context.Context, name string) (storage.User, error) {
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

// List returns registered accounts, oldest first.
func (s *Service) List(ctx context.Context, limit int) ([]storage.User, error) {
	if limit <= 0 {
		limit = 50
	}
	users, err := s.store.ListUsers(ctx, limit)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// UpdateProfile applies a partial profile update to the account.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (storage.User, error) {
	user, err := s.Resolve(ctx, userID)
	if err != nil {
		return storage.User{}, err
	}

	if patch.Username != nil {
		canonical, err := username.Canonicalize(*patch.Username)
		if err != nil {
			return storage.User{}, errors.Wrap(errors.CodeIdentityInvalidUsername, "invalid username", err)
		}
		if canonical != user.Username {
			if _, err := s.store.GetUserByUsername(ctx, canonical); err == nil {
				return storage.User{}, errors.New(errors.CodeIdentityUsernameTaken, "username is already taken")
			} else if !stderrors.Is(err, storage.ErrNotFound) {
				return storage.User{}, storeErr("lookup username", err)
			}
			user.Username = canonical
		}
	}
	if patch.Fullname != nil {
		fullname := strings.TrimSpace(*patch.Fullname)
		if fullname == "" {
			return storage.User{}, errors.New(errors.CodeIdentityInvalidFullname, "fullname cannot be empty")
		}
		user.Fullname = fullname
	}
	if patch.Bio != nil {
		user.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.AvatarRef != nil {
		user.AvatarRef = strings.TrimSpace(*patch.AvatarRef)
	}
	user.UpdatedAt = s.now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.User{}, errors.New(errors.CodeSessionUserMissing, "session user no longer exists")
		}
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return storage.User{}, errors.New(errors.CodeIdentityUsernameTaken, "username is already taken")
		}
		return storage.User{}, storeErr("update user", err)
	}
	return user, nil
}
