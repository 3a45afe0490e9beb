package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by read-side lookups for missing rows.
var ErrNotFound = errors.New("not found")

// ErrSubmissionInFlight means another request holds the same idempotency key.
var ErrSubmissionInFlight = errors.New("submission with this idempotency key is already in progress")

// DecodeError reports a malformed encoded image payload.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError reports an object store write failure.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError reports a relational store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError reports a malformed submission. It is raised before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

const (
	KindDecode      = "decode_error"
	KindStorage     = "storage_error"
	KindPersistence = "persistence_error"
	KindValidation  = "validation_error"
	KindInternal    = "internal_error"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var (
		de *DecodeError
		se *StorageError
		pe *PersistenceError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &de):
		return KindDecode
	case errors.As(err, &se):
		return KindStorage
	case errors.As(err, &pe):
		return KindPersistence
	default:
		return KindInternal
	}
}
