package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/openwall/internal/services/wall/engagement"
	"github.com/louisbranch/openwall/internal/services/wall/identity"
	"github.com/louisbranch/openwall/internal/services/wall/storage/sqlite"
	"github.com/louisbranch/openwall/internal/services/wall/token"
)

type testAPI struct {
	handler http.Handler
	tokens  *token.Issuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "wall.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := token.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	server := New(identity.New(store), engagement.New(store), tokens)
	return &testAPI{handler: server.Handler(), tokens: tokens}
}

func (api *testAPI) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	api.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decodeBody(t, recorder, &body)
	return body.Error.Code
}

func (api *testAPI) signup(t *testing.T, username, credential string) {
	t.Helper()
	recorder := api.do(t, http.MethodPost, "/auth/signup", "", signupRequest{
		Username:   username,
		Fullname:   "User " + username,
		Credential: credential,
		Password:   "Aa1!aaaa",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", username, recorder.Code, recorder.Body.String())
	}
}

func (api *testAPI) signin(t *testing.T, login string) string {
	t.Helper()
	recorder := api.do(t, http.MethodPost, "/auth/signin", "", signinRequest{Login: login, Password: "Aa1!aaaa"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("signin %s: status %d body %s", login, recorder.Code, recorder.Body.String())
	}
	var resp signinResponse
	decodeBody(t, recorder, &resp)
	if resp.Token == "" {
		t.Fatal("expected session token")
	}
	return resp.Token
}

func (api *testAPI) createPost(t *testing.T, bearer string) string {
	t.Helper()
	recorder := api.do(t, http.MethodPost, "/content", bearer, createContentRequest{
		Kind:        "post",
		Description: "a post",
		ImageRef:    "img.png",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", recorder.Code, recorder.Body.String())
	}
	var view engagement.ContentView
	decodeBody(t, recorder, &view)
	return view.ID
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)
	recorder := api.do(t, http.MethodGet, "/up", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestSignupScenario(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/auth/signup", "", signupRequest{
		Username:   "alice",
		Fullname:   "Alice Example",
		Credential: "a@b.com",
		Password:   "Aa1!aaaa",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", recorder.Code, recorder.Body.String())
	}
	if strings.Contains(recorder.Body.String(), "Aa1!aaaa") || strings.Contains(recorder.Body.String(), "hash") {
		t.Fatal("signup response must not leak password material")
	}

	dup := api.do(t, http.MethodPost, "/auth/signup", "", signupRequest{
		Username:   "alice",
		Fullname:   "Other Alice",
		Credential: "other@b.com",
		Password:   "Aa1!aaaa",
	})
	if dup.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", dup.Code)
	}
	if errorCode(t, dup) != "IDENTITY_USERNAME_TAKEN" {
		t.Fatalf("unexpected error code for duplicate username")
	}
}

func TestSignupShortUsername(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/auth/signup", "", signupRequest{
		Username:   "ab",
		Fullname:   "Ab Example",
		Credential: "a@b.com",
		Password:   "Aa1!aaaa",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 for two-character username, got %d body %s", recorder.Code, recorder.Body.String())
	}

	bearer := api.signin(t, "ab")
	me := api.do(t, http.MethodGet, "/auth/me", bearer, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d", me.Code)
	}
}

func TestSigninWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")

	recorder := api.do(t, http.MethodPost, "/auth/signin", "", signinRequest{Login: "alice", Password: "Wrong1!a"})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestAuthMe(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	bearer := api.signin(t, "alice")

	recorder := api.do(t, http.MethodGet, "/auth/me", bearer, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", recorder.Code, recorder.Body.String())
	}
	var me struct {
		Username string `json:"username"`
	}
	decodeBody(t, recorder, &me)
	if me.Username != "alice" {
		t.Fatalf("expected alice, got %q", me.Username)
	}
}

func TestAuthRejections(t *testing.T) {
	api := newTestAPI(t)

	if recorder := api.do(t, http.MethodGet, "/auth/me", "", nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", recorder.Code)
	}
	if recorder := api.do(t, http.MethodGet, "/auth/me", "garbage", nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", recorder.Code)
	}

	// A well-signed token for an account that does not exist is forbidden,
	// not unauthenticated.
	ghost, err := api.tokens.Issue("no-such-user")
	if err != nil {
		t.Fatalf("issue ghost token: %v", err)
	}
	recorder := api.do(t, http.MethodGet, "/auth/me", ghost, nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing session user, got %d", recorder.Code)
	}
	if errorCode(t, recorder) != "SESSION_USER_MISSING" {
		t.Fatal("expected SESSION_USER_MISSING code")
	}
}

func TestLikeToggleAlternates(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	bearer := api.signin(t, "alice")
	postID := api.createPost(t, bearer)

	for i, want := range []bool{true, false, true} {
		recorder := api.do(t, http.MethodPost, "/content/"+postID+"/like", bearer, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("toggle %d: status %d", i, recorder.Code)
		}
		var resp toggleResponse
		decodeBody(t, recorder, &resp)
		if resp.Active != want {
			t.Fatalf("toggle %d: expected active=%v, got %v", i, want, resp.Active)
		}
	}
}

func TestLikeMissingContent(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	bearer := api.signin(t, "alice")

	recorder := api.do(t, http.MethodPost, "/content/missing/like", bearer, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestContentOwnershipOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	api.signup(t, "bob", "b@b.com")
	aliceToken := api.signin(t, "alice")
	bobToken := api.signin(t, "bob")
	postID := api.createPost(t, aliceToken)

	update := contentPatchRequest{}
	description := "hacked"
	update.Description = &description
	recorder := api.do(t, http.MethodPut, "/content/"+postID, bobToken, update)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner update, got %d", recorder.Code)
	}
	recorder = api.do(t, http.MethodDelete, "/content/"+postID, bobToken, nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner delete, got %d", recorder.Code)
	}
	recorder = api.do(t, http.MethodDelete, "/content/"+postID, aliceToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner delete, got %d", recorder.Code)
	}
	recorder = api.do(t, http.MethodGet, "/content/"+postID, "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", recorder.Code)
	}
}

func TestCommentFlow(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	api.signup(t, "bob", "b@b.com")
	aliceToken := api.signin(t, "alice")
	bobToken := api.signin(t, "bob")
	postID := api.createPost(t, aliceToken)

	recorder := api.do(t, http.MethodPost, "/content/"+postID+"/comments", bobToken, commentRequest{Text: "nice"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", recorder.Code, recorder.Body.String())
	}
	var comment engagement.CommentView
	decodeBody(t, recorder, &comment)
	if comment.User.Username != "bob" {
		t.Fatalf("expected populated creator, got %+v", comment.User)
	}

	recorder = api.do(t, http.MethodDelete, "/content/"+postID+"/comments/"+comment.ID, aliceToken, nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator delete, got %d", recorder.Code)
	}
	recorder = api.do(t, http.MethodDelete, "/content/"+postID+"/comments/"+comment.ID, bobToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for creator delete, got %d", recorder.Code)
	}

	recorder = api.do(t, http.MethodPost, "/content/"+postID+"/comments", bobToken, commentRequest{Text: "  "})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank comment, got %d", recorder.Code)
	}
}

func TestFollowAndProfile(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	api.signup(t, "bob", "b@b.com")
	bobToken := api.signin(t, "bob")

	recorder := api.do(t, http.MethodPost, "/users/alice/follow", bobToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var resp toggleResponse
	decodeBody(t, recorder, &resp)
	if !resp.Active {
		t.Fatal("expected follow active")
	}

	recorder = api.do(t, http.MethodGet, "/users/alice", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var profile engagement.ProfileView
	decodeBody(t, recorder, &profile)
	if profile.FollowerCount != 1 || len(profile.Followers) != 1 || profile.Followers[0].Username != "bob" {
		t.Fatalf("expected bob as follower, got %+v", profile)
	}

	selfFollow := api.do(t, http.MethodPost, "/users/bob/follow", bobToken, nil)
	if selfFollow.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-follow, got %d", selfFollow.Code)
	}
}

func TestProfileUnknownUser(t *testing.T) {
	api := newTestAPI(t)
	recorder := api.do(t, http.MethodGet, "/users/ghost", "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestWallFlow(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	api.signup(t, "bob", "b@b.com")
	bobToken := api.signin(t, "bob")

	recorder := api.do(t, http.MethodPost, "/walls/alice", bobToken, wallMessageRequest{Body: "happy birthday"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", recorder.Code, recorder.Body.String())
	}
	var message engagement.ContentView
	decodeBody(t, recorder, &message)

	recorder = api.do(t, http.MethodGet, "/walls/alice", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var wall []engagement.ContentView
	decodeBody(t, recorder, &wall)
	if len(wall) != 1 || wall[0].Author.Username != "bob" {
		t.Fatalf("expected one wall message from bob, got %+v", wall)
	}

	recorder = api.do(t, http.MethodDelete, "/walls/alice/messages/"+message.ID, bobToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for author delete, got %d", recorder.Code)
	}

	if recorder := api.do(t, http.MethodGet, "/walls/ghost", "", nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown wall, got %d", recorder.Code)
	}
}

func TestListUsersDirectory(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	api.signup(t, "bob", "b@b.com")

	recorder := api.do(t, http.MethodGet, "/users", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var users []publicProfile
	decodeBody(t, recorder, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestListContentByKindAndAuthor(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	bearer := api.signin(t, "alice")
	api.createPost(t, bearer)

	recorder := api.do(t, http.MethodGet, "/content?kind=post", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var views []engagement.ContentView
	decodeBody(t, recorder, &views)
	if len(views) != 1 {
		t.Fatalf("expected 1 post, got %d", len(views))
	}

	if recorder := api.do(t, http.MethodGet, "/content?kind=poll", "", nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad kind, got %d", recorder.Code)
	}
	if recorder := api.do(t, http.MethodGet, "/content?author=ghost", "", nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown author, got %d", recorder.Code)
	}
}

func TestUpdateProfileOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "alice", "a@b.com")
	bearer := api.signin(t, "alice")

	bio := "hello there"
	recorder := api.do(t, http.MethodPatch, "/users/me", bearer, profilePatchRequest{Bio: &bio})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", recorder.Code, recorder.Body.String())
	}
	var view identityView
	decodeBody(t, recorder, &view)
	if view.Bio != "hello there" {
		t.Fatalf("expected updated bio, got %q", view.Bio)
	}
}
