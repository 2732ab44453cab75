// Package errors provides structured error reporting for gpslocation.
//
// Infrastructure failures that cannot be returned to a caller (bridge
// failures inside asynchronous callbacks, malformed native payloads, panics
// in user callbacks) are reported through a process-wide ErrorHandler.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a platform channel or native bridge error.
	KindPlatform
	// KindParsing indicates a native payload could not be decoded.
	KindParsing
	// KindPermission indicates the permission call itself failed, as opposed
	// to the user denying access.
	KindPermission
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindPermission:
		return "permission"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// OpError is a structured error tied to the operation that produced it.
type OpError struct {
	// Op is the operation that failed (e.g., "geolocation.fetch").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the platform channel name, if applicable.
	Channel string
	// RequestID identifies the location request, if applicable.
	RequestID string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *OpError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]", e.Op, e.Kind)
	if e.Channel != "" {
		sb.WriteString(" channel=")
		sb.WriteString(e.Channel)
	}
	if e.RequestID != "" {
		sb.WriteString(" request=")
		sb.WriteString(e.RequestID)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "geolocation.successCallback").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a native payload that did not have the expected shape.
type ParseError struct {
	// Channel is the platform channel that returned the payload.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// ErrorHandler receives errors reported through Report and ReportPanic.
type ErrorHandler interface {
	// HandleError is called when an error is reported.
	HandleError(err *OpError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
