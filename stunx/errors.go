package stunx

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates that no matching response arrived within the
	// transaction deadline. Behavior discovery treats this as a signal,
	// not only as a failure, so it must stay distinguishable.
	ErrTimeout = errors.New("stunx: transaction timed out")
)

// NotSupportedError indicates the server's response is missing an attribute
// that RFC 5780 behavior discovery requires (OTHER-ADDRESS or
// XOR-MAPPED-ADDRESS).
type NotSupportedError struct {
	Attr string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("stunx: server does not support %s", e.Attr)
}

// ResponseError is a STUN Binding error response.
type ResponseError struct {
	Code   int
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("stunx: error response %d", e.Code)
	}
	return fmt.Sprintf("stunx: error response %d (%s)", e.Code, e.Reason)
}
