package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind separates failures into the classes callers branch on.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTimeout
	KindConnection
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	default:
		return "other"
	}
}

var (
	ErrNoChoices     = errors.New("no response choices available")
	ErrEmptyMessages = errors.New("no messages to send")
)

// Error is the only error type returned by Client implementations.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("AI service timeout: %v", e.Err)
	case KindConnection:
		return fmt.Sprintf("AI service connection error: %v", e.Err)
	default:
		return fmt.Sprintf("AI service error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is a stable text for the failure kind.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return "The AI took too long to respond. Please try again."
	case KindConnection:
		return "Could not connect to AI service. Please try again."
	default:
		return "The AI service returned an error."
	}
}

// KindOf extracts the failure kind of err; non llm errors are KindOther.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// wrap classifies a transport or API error.
func wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return KindConnection
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnection
	}
	return KindOther
}
