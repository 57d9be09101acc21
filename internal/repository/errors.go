package repository

import (
	"errors"
	"fmt"
)

var (
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrInvalidResponse    = errors.New("invalid response from backend")
)

type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// UpstreamError is a non-2xx answer from the remote backend. Message is the
// backend's own "message" field, empty when it sent none.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

func IsNotFoundError(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == 404
	}
	return false
}

func IsConnectionError(err error) bool {
	return errors.Is(err, ErrBackendUnreachable)
}
