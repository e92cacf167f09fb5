package service

import (
	"errors"
	"fmt"

	"roombook/internal/database"
)

// ValidationError rejects a malformed request before any read.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// ConflictError rejects a request whose occurrences overlap an existing
// booking. Reported as a typed error so callers can present a friendly
// message instead of a failure.
type ConflictError struct {
	RoomID string
}

func (e *ConflictError) Error() string {
	if e.RoomID == "" {
		return "conflict: no room is free for the requested window"
	}
	return fmt.Sprintf("conflict: room %s is already booked in the requested window", e.RoomID)
}

// NotFoundError reports an operation against a room or series that does not
// exist. Delete treats absence as success; Edit treats it as failure.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// StoreError wraps a persistence failure. The core logs it and never retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is a booking conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a missing room or series.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// mapStoreErr translates the store's sentinel errors into the service
// taxonomy; anything else becomes a StoreError.
func mapStoreErr(op, roomID, kind, id string, err error) error {
	switch {
	case errors.Is(err, database.ErrConflict):
		return &ConflictError{RoomID: roomID}
	case errors.Is(err, database.ErrNotFound):
		return &NotFoundError{Kind: kind, ID: id}
	default:
		return storeErr(op, err)
	}
}
