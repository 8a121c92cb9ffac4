// Package asset loads the viewer's model, texture set and environment from
// local paths or http(s) URLs.
package asset

import (
	"errors"
	"fmt"
)

// Kind separates failures the viewer can degrade around from those that abort
// initialization.
type Kind int

const (
	KindRecoverable Kind = iota
	KindFatal
)

func (k Kind) String() string {
	if k == KindFatal {
		return "fatal"
	}
	return "recoverable"
}

// Error carries the failed resource and the underlying cause.
type Error struct {
	Kind     Kind
	Resource string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s asset %q: %v", e.Kind, e.Resource, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Recoverable(resource string, err error) error {
	return &Error{Kind: KindRecoverable, Resource: resource, Err: err}
}

func Fatal(resource string, err error) error {
	return &Error{Kind: KindFatal, Resource: resource, Err: err}
}

// IsFatal reports whether err wraps a fatal asset error.
func IsFatal(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindFatal
}
