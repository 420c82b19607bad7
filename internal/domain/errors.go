package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced resource is absent
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates a malformed or oversized request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized indicates a missing or invalid credential
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller has no rights over the target resource
	ErrForbidden = errors.New("forbidden")
)

// DuplicateError reports an upload that collides with an existing document.
type DuplicateError struct {
	Match *DuplicateMatch
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate document: %s match with %q", e.Match.MatchType, e.Match.Title)
}
