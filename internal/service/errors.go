package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Handlers map kinds to HTTP statuses.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is the typed failure every service operation returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message, so a wrapped copy of a sentinel
// still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Not found.
var (
	ErrBookNotFound        = newError(KindNotFound, "book not found")
	ErrMemberNotFound      = newError(KindNotFound, "member not found")
	ErrLoanNotFound        = newError(KindNotFound, "transaction not found")
	ErrReservationNotFound = newError(KindNotFound, "reservation not found")
	ErrQueryNotFound       = newError(KindNotFound, "query not found")
)

// Conflicts.
var (
	ErrBookUnavailable        = newError(KindConflict, "book is not available")
	ErrDuplicateLoan          = newError(KindConflict, "member already has this book issued")
	ErrLoanAlreadyReturned    = newError(KindConflict, "book already returned")
	ErrBookCurrentlyAvailable = newError(KindConflict, "book is currently available, issue it directly")
	ErrDuplicateReservation   = newError(KindConflict, "book already reserved by this member")
	ErrReservationNotActive   = newError(KindConflict, "reservation is not active")
	ErrEmailTaken             = newError(KindConflict, "email already registered")
	ErrISBNTaken              = newError(KindConflict, "a book with this ISBN already exists")
	ErrBookHasActiveLoans     = newError(KindConflict, "cannot delete book with active loans")
	ErrBookHasHistory         = newError(KindConflict, "cannot delete book with loan history")
	ErrMemberHasActiveLoans   = newError(KindConflict, "cannot delete member with active loans")
	ErrMemberHasHistory       = newError(KindConflict, "cannot delete member with loan history")
	ErrCopiesBelowIssued      = newError(KindConflict, "total copies cannot be less than copies currently issued")
)

// Access.
var (
	ErrInvalidCredentials = newError(KindUnauthorized, "invalid credentials")
	ErrNotOwner           = newError(KindForbidden, "not allowed to act on this resource")
)

// Validation builds a validation failure with a client-facing message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// storage wraps an unexpected repository error.
func storage(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindStorage for untyped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStorage
}
