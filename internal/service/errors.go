package service

import (
	"errors"
	"fmt"

	"github.com/jaysurani18/smart-society/internal/repository"
)

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	KindUnexpected Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	}
	return "unexpected"
}

// Error is a classified failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets sentinel *Errors match by kind and message, so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrInvalidCredentials    = &Error{Kind: KindUnauthenticated, Message: "Invalid email or password"}
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated, Message: "Not authorized"}
	ErrForbidden             = &Error{Kind: KindForbidden, Message: "Access denied"}
	ErrDuplicateEmail        = &Error{Kind: KindDuplicate, Message: "User already exists"}
	ErrInvalidOrExpiredToken = &Error{Kind: KindValidation, Message: "Invalid or expired invite link."}
	ErrAccountNotFound       = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrBillNotFound          = &Error{Kind: KindNotFound, Message: "Bill not found"}
	ErrComplaintNotFound     = &Error{Kind: KindNotFound, Message: "Complaint not found"}
	ErrNoticeNotFound        = &Error{Kind: KindNotFound, Message: "Notice not found"}
	ErrInvalidInput          = &Error{Kind: KindValidation, Message: "Input exceeds the allowed length or range"}
)

// validationError builds a KindValidation error with a client-facing message.
func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// wrapStoreError keeps store-side value rejections (too long, out of range)
// as validation errors and wraps everything else with op.
func wrapStoreError(op string, err error) error {
	if errors.Is(err, repository.ErrInvalidValue) {
		return &Error{Kind: ErrInvalidInput.Kind, Message: ErrInvalidInput.Message, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// KindOf returns the kind of the first *Error in err's chain, KindUnexpected otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
