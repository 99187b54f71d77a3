package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidArgument represents malformed or unparsable input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Identity errors
	CodeIdentityInvalidCredential Code = "IDENTITY_INVALID_CREDENTIAL_FORMAT"
	CodeIdentityWeakPassword      Code = "IDENTITY_WEAK_PASSWORD"
	CodeIdentityInvalidUsername   Code = "IDENTITY_INVALID_USERNAME"
	CodeIdentityInvalidFullname   Code = "IDENTITY_INVALID_FULLNAME"
	CodeIdentityUsernameTaken     Code = "IDENTITY_USERNAME_TAKEN"
	CodeIdentityCredentialTaken   Code = "IDENTITY_CREDENTIAL_TAKEN"
	CodeIdentityWrongLogin        Code = "IDENTITY_WRONG_LOGIN"

	// Session errors
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeSessionUserMissing Code = "SESSION_USER_MISSING"

	// Authorization errors
	CodeForbidden Code = "FORBIDDEN"

	// Content errors
	CodeContentEmptyDescription Code = "CONTENT_EMPTY_DESCRIPTION"
	CodeContentEmptyImageRef    Code = "CONTENT_EMPTY_IMAGE_REF"
	CodeContentEmptyText        Code = "CONTENT_EMPTY_TEXT"
	CodeContentInvalidKind      Code = "CONTENT_INVALID_KIND"

	// Engagement errors
	CodeCommentEmptyText Code = "COMMENT_EMPTY_TEXT"

	// Graph errors
	CodeGraphSelfFollow Code = "GRAPH_SELF_FOLLOW"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"

	// Uniqueness violations not absorbed by toggle semantics
	CodeConflict Code = "CONFLICT"

	// Infrastructure errors
	CodeTimeout     Code = "TIMEOUT"
	CodeUnavailable Code = "STORE_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, malformed input
	case CodeInvalidArgument,
		CodeIdentityInvalidCredential,
		CodeIdentityWeakPassword,
		CodeIdentityInvalidUsername,
		CodeIdentityInvalidFullname,
		CodeIdentityUsernameTaken,
		CodeIdentityCredentialTaken,
		CodeContentEmptyDescription,
		CodeContentEmptyImageRef,
		CodeContentEmptyText,
		CodeContentInvalidKind,
		CodeCommentEmptyText,
		CodeGraphSelfFollow:
		return http.StatusBadRequest

	// Unauthenticated - missing or invalid credential
	case CodeUnauthenticated,
		CodeIdentityWrongLogin:
		return http.StatusUnauthorized

	// Forbidden - authenticated but not authorized
	case CodeForbidden,
		CodeSessionUserMissing:
		return http.StatusForbidden

	// Not found - referenced entity or edge absent
	case CodeNotFound:
		return http.StatusNotFound

	case CodeConflict:
		return http.StatusConflict

	case CodeTimeout:
		return http.StatusGatewayTimeout

	case CodeUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
