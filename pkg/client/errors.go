package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/naveenspark/arena/pkg/domain"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the domain sentinel matching the server code, falling back
// to the status code, so errors.Is works the same for REST and socket paths.
func (e *HTTPError) Unwrap() error {
	if err := domain.ErrorForCode(e.Code); err != nil {
		return err
	}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrAuthRequired
	case http.StatusNotFound:
		return domain.ErrRoomNotFound
	}
	return nil
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
