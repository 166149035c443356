package catalog

import (
	"errors"
	"fmt"
)

// ResourceError reports that the backing data source could not be read.
type ResourceError struct {
	// Source is the path or DSN that was requested.
	Source string
	Err    error
}

func (e *ResourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog source %s unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("catalog source %s unavailable", e.Source)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// FormatError reports catalog entries that do not fit the Event shape.
//
// Index is the zero-based entry position, or -1 when the failure is not
// attributable to a single entry (e.g. the document itself is not a list).
type FormatError struct {
	Source  string
	Index   int
	Field   string
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	prefix := "catalog"
	if e.Source != "" {
		prefix = e.Source
	}
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("%s: entry %d: %s: %s", prefix, e.Index, e.Field, msg)
	case e.Index >= 0:
		return fmt.Sprintf("%s: entry %d: %s", prefix, e.Index, msg)
	default:
		return fmt.Sprintf("%s: %s", prefix, msg)
	}
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsResourceError reports whether err wraps a *ResourceError.
func IsResourceError(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}

// IsFormatError reports whether err wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func entryError(index int, field, message string) *FormatError {
	return &FormatError{Index: index, Field: field, Message: message}
}
