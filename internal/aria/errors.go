package aria

import (
	"errors"
	"fmt"
)

// Kind classifies a core error per the error handling design: Backend
// failures are transient Store/IO problems, Conflict is a unique-key
// collision the pair engine falls through on, Invalid is bad caller input
// that never advances the message counter, and NotFound is an absent
// lookup the pipeline always treats as create-on-write or empty.
type Kind int

const (
	KindBackend Kind = iota
	KindConflict
	KindInvalid
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBackend:
		return "backend"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with its Kind so call sites can branch
// on errors.Is/As without string matching.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// BackendError wraps a Store I/O failure.
func BackendError(op string, err error) error { return newErr(KindBackend, op, err) }

// ConflictError wraps a unique-key collision.
func ConflictError(op string, err error) error { return newErr(KindConflict, op, err) }

// InvalidError wraps bad caller input.
func InvalidError(op string, err error) error { return newErr(KindInvalid, op, err) }

// NotFoundError wraps an absent lookup.
func NotFoundError(op string, err error) error { return newErr(KindNotFound, op, err) }

// IsKind reports whether err (or anything it wraps) is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
