package recdb

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeMismatchError describes an access whose requested type differs from
// the type actually stored (in a cell, or declared for a field). It is
// emitted through the diagnostics path; the operation itself just fails.
type TypeMismatchError struct {
	Field     string
	Requested reflect.Type
	Stored    reflect.Type
}

func typeMismatchErrf(field string, requested, stored reflect.Type) *TypeMismatchError {
	return &TypeMismatchError{Field: field, Requested: requested, Stored: stored}
}

func (e *TypeMismatchError) Error() string {
	var buf strings.Builder
	buf.WriteString("type mismatch")
	if e.Field != "" {
		buf.WriteString(" on field ")
		buf.WriteString(e.Field)
	}
	fmt.Fprintf(&buf, ": requested %v, stored %v", e.Requested, e.Stored)
	return buf.String()
}

// FieldError describes a failed field operation: an undeclared field, a
// duplicate declaration, or an operation through an invalidated ref.
type FieldError struct {
	Field string
	Msg   string
	Err   error
}

func fieldErrf(field string, err error, format string, args ...any) error {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func (e *FieldError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Field)
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
