package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMatchesByCode(t *testing.T) {
	base := New(CodeNotFound, "post not found")
	other := New(CodeNotFound, "user not found")
	if !stderrors.Is(base, other) {
		t.Fatal("expected errors with same code to match")
	}
	if stderrors.Is(base, New(CodeForbidden, "nope")) {
		t.Fatal("expected different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnavailable, "put user", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found in chain")
	}
	if err.Error() != "put user" {
		t.Fatalf("message = %q, want put user", err.Error())
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeIdentityWeakPassword, "weak"))
	if code := CodeOf(err); code != CodeIdentityWeakPassword {
		t.Fatalf("code = %q, want %q", code, CodeIdentityWeakPassword)
	}
	if code := CodeOf(stderrors.New("plain")); code != CodeUnknown {
		t.Fatalf("code = %q, want %q", code, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeIdentityWeakPassword, http.StatusBadRequest},
		{CodeCommentEmptyText, http.StatusBadRequest},
		{CodeGraphSelfFollow, http.StatusBadRequest},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeIdentityWrongLogin, http.StatusUnauthorized},
		{CodeSessionUserMissing, http.StatusForbidden},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s status = %d, want %d", tc.code, got, tc.want)
		}
	}
}
