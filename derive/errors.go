package derive

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	// ErrCapabilityMissing is wrapped by every *CapabilityError.
	ErrCapabilityMissing = errors.New("pure clone capability missing")

	// ErrConflict is wrapped by every *ConflictError.
	ErrConflict = errors.New("conflicting PureClone declaration")

	// ErrBadUnion reports a sealed interface that cannot be derived as a union.
	ErrBadUnion = errors.New("malformed pureclone union")

	// ErrUnknownType reports a -type name missing from the package.
	ErrUnknownType = errors.New("unknown type")

	// ErrLoad wraps loader diagnostics.
	ErrLoad = errors.New("failed to load packages")

	// ErrStale is returned in check mode when generated output is out of date.
	ErrStale = errors.New("generated output is stale")
)

// CapabilityError names a field whose type cannot be pure-cloned.
type CapabilityError struct {
	Pos       token.Position
	Type      string // derived type, package-qualified
	Field     string // empty for non-struct types
	FieldType string
	Reason    string
}

func (e *CapabilityError) Error() string {
	subject := e.Type
	if e.Field != "" {
		subject += "." + e.Field
	}
	return fmt.Sprintf("%s: %s (%s): %s: %s", e.Pos, subject, e.FieldType, ErrCapabilityMissing, e.Reason)
}

func (e *CapabilityError) Unwrap() error { return ErrCapabilityMissing }

// ConflictError reports a derived type that already declares PureClone, or
// has a field by that name.
type ConflictError struct {
	Pos  token.Position
	Type string
	What string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", e.Pos, e.Type, ErrConflict, e.What)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
