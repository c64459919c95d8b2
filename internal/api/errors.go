package api

import (
	"errors"
	"fmt"
)

// ErrNotFound matches a 404 from the service.
var ErrNotFound = errors.New("api: not found")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: status %d", e.Code)
	}
	return fmt.Sprintf("api: status %d: %s", e.Code, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == 404
}
