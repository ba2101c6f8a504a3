package customer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies where resolution failed.
type ErrorKind string

const (
	KindSecretUnavailable ErrorKind = "secret_unavailable"
	KindConnectionFailed  ErrorKind = "connection_failed"
	KindQueryFailed       ErrorKind = "query_failed"
)

// ResolveError is returned by Resolve for every downstream failure. The
// underlying error is kept for logs and never rendered to callers.
type ResolveError struct {
	Kind ErrorKind
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve customer: %s: %v", e.Kind, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

func newResolveError(kind ErrorKind, err error) *ResolveError {
	return &ResolveError{Kind: kind, Err: err}
}

// KindOf returns the ErrorKind carried by err, or "" if err is not a ResolveError.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
