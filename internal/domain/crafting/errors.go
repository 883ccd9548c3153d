package crafting

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so adapters can render them without
// inspecting storage errors.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindPermissionDenied
	KindInvalidArgument
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindStoreUnavailable:
		return "store_unavailable"
	}
	return "unknown"
}

// Sentinels for errors.Is against an *Error of the matching kind.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Errors the storage layer reports through the Repository port.
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrAccountReferenced   = errors.New("account referenced by an open request")
)

type Error struct {
	Kind      Kind
	Op        string
	RequestID int64
	// Message is safe to show to the member who triggered the operation.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crafting %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("crafting %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindStoreUnavailable:
		return ErrStoreUnavailable
	}
	return nil
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// UserMessage returns the text an adapter should show for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again later."
}

func notFound(op string, id int64) *Error {
	return &Error{
		Kind:      KindNotFound,
		Op:        op,
		RequestID: id,
		Message:   fmt.Sprintf("Crafting request %d not found.", id),
	}
}

func conflict(op string, id int64, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, RequestID: id, Message: fmt.Sprintf(format, args...)}
}

func permissionDenied(op string, id int64, msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Op: op, RequestID: id, Message: msg}
}

func invalidArgument(op string, id int64, msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, RequestID: id, Message: msg}
}

// storeError classifies a repository failure. Anything the storage layer
// could not attribute to a missing row or a rejected value is reported as
// StoreUnavailable.
func storeError(op string, id int64, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Op: op, RequestID: id, Message: fmt.Sprintf("Crafting request %d not found.", id), Err: err}
	case errors.Is(err, ErrConstraintViolation):
		return &Error{Kind: KindInvalidArgument, Op: op, RequestID: id, Message: "The request was rejected by a data constraint.", Err: err}
	}
	return &Error{
		Kind:      KindStoreUnavailable,
		Op:        op,
		RequestID: id,
		Message:   "The crafting board is unavailable right now. Please try again later.",
		Err:       err,
	}
}
