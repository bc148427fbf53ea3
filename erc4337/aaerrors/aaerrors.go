// Package aaerrors defines the error taxonomy the core distinguishes so
// callers can branch on failure kind without parsing message strings.
package aaerrors

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind groups errors by origin: bad caller input, an address that
// couldn't be resolved, an operation a family doesn't support, or a
// failure surfaced by a bundler/public RPC call.
type Kind string

const (
	BadInput            Kind = "bad_input"
	AddressUnavailable   Kind = "address_unavailable"
	UnsupportedOperation Kind = "unsupported_operation"
	BundlerRPC           Kind = "bundler_rpc"
	PublicRPC            Kind = "public_rpc"
	Validation           Kind = "validation"
)

// Error is the concrete type returned for every taxonomy kind. Context
// fields are optional and only populated when relevant to the kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// RPC-specific context (BundlerRPC / PublicRPC)
	Code   int
	Data   any
	AACode string // e.g. "AA23", extracted from the RPC message when present

	// Codec-specific context (Validation)
	Selector string
	Expected int
	Actual   int
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.AACode != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.AACode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func BadInputf(format string, args ...any) *Error {
	return &Error{Kind: BadInput, Message: fmt.Sprintf(format, args...)}
}

func AddressUnavailablef(format string, args ...any) *Error {
	return &Error{Kind: AddressUnavailable, Message: fmt.Sprintf(format, args...)}
}

func UnsupportedOperationf(format string, args ...any) *Error {
	return &Error{Kind: UnsupportedOperation, Message: fmt.Sprintf(format, args...)}
}

func Validationf(selector string, format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...), Selector: selector}
}

var aaCodePattern = regexp.MustCompile(`AA\d+`)

// NewBundlerRPCError wraps a bundler RPC failure, extracting the AA error
// code from the payload when present (e.g. "AA21 didn't pay prefund").
func NewBundlerRPCError(operation string, code int, message string, data any) *Error {
	return &Error{
		Kind:    BundlerRPC,
		Message: fmt.Sprintf("bundler RPC error in %s: %s", operation, message),
		Code:    code,
		Data:    data,
		AACode:  aaCodePattern.FindString(message),
	}
}

func NewPublicRPCError(operation string, code int, message string, data any) *Error {
	return &Error{
		Kind:    PublicRPC,
		Message: fmt.Sprintf("public RPC error in %s: %s", operation, message),
		Code:    code,
		Data:    data,
	}
}

// Is supports errors.Is(err, SomeKind)-style checks against a bare Kind
// by comparing the Kind field of *Error values.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
