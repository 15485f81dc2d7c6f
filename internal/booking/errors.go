package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the front-end can choose how to present it.
type Kind int

const (
	KindUnknown Kind = iota
	// InputIncomplete is a missing selection or field.
	InputIncomplete
	// RuleViolation is a player count or duplicate booking rule.
	RuleViolation
	// NetworkFailure is a failed or unreadable call to the backend.
	NetworkFailure
	// ServerRejection is an error body returned by the backend. Its message
	// is shown verbatim.
	ServerRejection
)

func (k Kind) String() string {
	switch k {
	case InputIncomplete:
		return "input_incomplete"
	case RuleViolation:
		return "rule_violation"
	case NetworkFailure:
		return "network_failure"
	case ServerRejection:
		return "server_rejection"
	default:
		return "unknown"
	}
}

// Retryable reports whether repeating the same action may succeed.
func (k Kind) Retryable() bool {
	return k == NetworkFailure
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == NetworkFailure {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var bookingErr *Error
	if errors.As(err, &bookingErr) {
		return bookingErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the text to show for err. Server rejections are
// returned verbatim; other failures fall back to generic.
func UserMessage(err error, generic string) string {
	var bookingErr *Error
	if !errors.As(err, &bookingErr) {
		return generic
	}
	switch bookingErr.Kind {
	case ServerRejection, InputIncomplete, RuleViolation:
		return bookingErr.Message
	default:
		return generic
	}
}
