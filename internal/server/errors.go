package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sandeep066/aceInterview/internal/domain"
)

type errorEnvelope struct {
	Error *domain.APIError `json:"error"`
}

// toAPIError maps err onto the caller-visible error taxonomy. Anything that
// is not already an APIError becomes an opaque server error.
func toAPIError(err error) *domain.APIError {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return domain.ErrServer("internal server error").WithCause(err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	AddError(r.Context(), err)
	writeJSON(w, apiErr.HTTPStatusCode(), errorEnvelope{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func malformedBody(err error) *domain.APIError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domain.ErrInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)).
			WithCode(domain.ErrorCodeMalformedBody).
			WithStatusCode(http.StatusRequestEntityTooLarge)
	}
	return domain.ErrInvalidRequest("malformed JSON body: " + err.Error()).
		WithCode(domain.ErrorCodeMalformedBody)
}

// decodeJSON decodes the request body into dst. An empty body decodes to
// the zero value.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return malformedBody(err)
	}
	return nil
}
