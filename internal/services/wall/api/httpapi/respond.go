package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"

	"github.com/louisbranch/openwall/internal/platform/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps a domain error to its HTTP status. Uncoded errors never
// leak internals to the client.
func writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	message := "internal error"
	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		message = domainErr.Message
	}
	if code == errors.CodeUnknown {
		log.Printf("internal error: %v", err)
		message = "internal error"
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Error: errorDetail{Code: string(code), Message: message}})
}

func decodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "malformed request body", err)
	}
	return nil
}
