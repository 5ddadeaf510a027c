package lims

import (
	"fmt"

	"github.com/CognitoIQ/go-clarity/nsmap"
)

// An UnknownNamespaceError is returned for tags whose prefix is not in
// the namespace table.
type UnknownNamespaceError = nsmap.UnknownNamespaceError

// A MissingValueError is returned when a required element or
// attribute is absent from a document.
type MissingValueError struct {
	Kind  string
	Field string
}

func (e *MissingValueError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("lims: missing value for %s", e.Field)
	}
	return fmt.Sprintf("lims: %s has no value for %s", e.Kind, e.Field)
}

// A TypeMismatchError is returned when a value written to a field
// does not fit the field's recorded type.
type TypeMismatchError struct {
	Field string
	Type  string
	Value interface{}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("lims: %s field %q requires a %s value, got %T", e.Type, e.Field, e.Type, e.Value)
}

// An UnsupportedTypeError is returned when no field type can be
// inferred for a value.
type UnsupportedTypeError struct {
	Field string
	Value interface{}
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("lims: cannot store a value of type %T in field %q", e.Value, e.Field)
}

// An UnsupportedOperationError is returned when an operation is not
// available for a field or resource.
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("lims: %s: %s", e.Op, e.Reason)
}

// A KeyNotFoundError is returned when deleting an absent key from a
// dictionary projection.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("lims: key %q not found", e.Key)
}

// An InvalidKeyError is returned for keys a dictionary cannot store.
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("lims: invalid key %q: %s", e.Key, e.Reason)
}

// An IndexError is returned for list positions out of range.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("lims: index %d out of range [0:%d]", e.Index, e.Len)
}

// A MalformedValueError is returned when element text cannot be
// decoded as the type it claims to hold.
type MalformedValueError struct {
	Field string
	Text  string
	Err   error
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("lims: malformed value %q for %s: %v", e.Text, e.Field, e.Err)
}

func (e *MalformedValueError) Unwrap() error { return e.Err }
