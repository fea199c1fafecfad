package orlok

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNestedTransaction is returned when a unit of work is opened
	// while another one is already active on the same handle. Nesting is
	// rejected deterministically; there are no savepoints.
	ErrNestedTransaction = errors.New("nested transaction")
)

// ConstraintKind names the class of constraint a backend reported.
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
)

// ConstraintError reports a uniqueness or foreign-key breach propagated
// from a backend. It is never retried by the engine.
type ConstraintError struct {
	Kind  ConstraintKind
	Table string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint violation on %s: %v", e.Kind, e.Table, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// NewConstraintError creates a constraint error.
func NewConstraintError(err error, kind ConstraintKind, table string) *ConstraintError {
	return &ConstraintError{Kind: kind, Table: table, Err: err}
}

// ConnectivityError reports a transport or backend failure.
type ConnectivityError struct {
	Operation string
	Err       error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity error during %s: %v", e.Operation, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// NewConnectivityError creates a connectivity error.
func NewConnectivityError(err error, operation string) *ConnectivityError {
	return &ConnectivityError{Operation: operation, Err: err}
}

// UsageError reports a call that violates the engine's contract, such as
// GetForUpdate outside an active transaction. It is raised before any
// backend work happens.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return "usage error: " + e.Message }

// NewUsageError creates a usage error.
func NewUsageError(message string) *UsageError {
	return &UsageError{Message: message}
}

// FilterFieldError reports a filter referencing a field absent from the
// entity mapping.
type FilterFieldError struct {
	Field string
	Table string
}

func (e *FilterFieldError) Error() string {
	return fmt.Sprintf("filter references unknown field %q of %s", e.Field, e.Table)
}

// NewFilterFieldError creates a filter field error.
func NewFilterFieldError(field, table string) *FilterFieldError {
	return &FilterFieldError{Field: field, Table: table}
}

// FilterTypeError reports an operator applied to an operand whose kind is
// incompatible with the field's declared kind.
type FilterTypeError struct {
	Field string
	Op    Operator
	Want  Kind
	Got   Kind
}

func (e *FilterTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cannot compare %s with %s", e.Want, e.Got)
	}
	return fmt.Sprintf("operator %s on field %q: want %s, got %s", e.Op, e.Field, e.Want, e.Got)
}

// NewFilterTypeError creates a filter type error.
func NewFilterTypeError(field string, op Operator, want, got Kind) *FilterTypeError {
	return &FilterTypeError{Field: field, Op: op, Want: want, Got: got}
}

// SerializationError reports a load mapping that could not reconstruct an
// entity from a record.
type SerializationError struct {
	Table string
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot load entity from %s record: %v", e.Table, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// NewSerializationError creates a serialization error.
func NewSerializationError(err error, table string) *SerializationError {
	return &SerializationError{Table: table, Err: err}
}

// Error checking helpers.

// IsConstraintError checks if an error is a constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e)
}

// IsConnectivityError checks if an error is a connectivity error.
func IsConnectivityError(err error) bool {
	var e *ConnectivityError
	return errors.As(err, &e)
}

// IsUsageError checks if an error is a usage error.
func IsUsageError(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

// IsNestedTransactionError checks if an error reports transaction nesting.
func IsNestedTransactionError(err error) bool {
	return errors.Is(err, ErrNestedTransaction)
}

// IsFilterFieldError checks if an error is a filter field error.
func IsFilterFieldError(err error) bool {
	var e *FilterFieldError
	return errors.As(err, &e)
}

// IsFilterTypeError checks if an error is a filter type error.
func IsFilterTypeError(err error) bool {
	var e *FilterTypeError
	return errors.As(err, &e)
}

// IsSerializationError checks if an error is a serialization error.
func IsSerializationError(err error) bool {
	var e *SerializationError
	return errors.As(err, &e)
}
