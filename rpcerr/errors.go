// Package rpcerr defines the error kinds surfaced to zmrpc callers.
//
// Every error a Client or Service hands back to user code is one of the
// kinds below, wrapped with context via fmt.Errorf's %w so errors.Is and
// errors.As keep working through the call stack.
package rpcerr

import "fmt"

// Kind classifies an error the way spec §7 does: configuration mistakes,
// transport failures, timeouts, remote-side failures, decode failures, and
// unregistered-procedure lookups.
type Kind int

const (
	KindConfiguration Kind = iota
	KindTransport
	KindTimeout
	KindRemote
	KindDecode
	KindUnregistered
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindRemote:
		return "remote"
	case KindDecode:
		return "decode"
	case KindUnregistered:
		return "unregistered"
	default:
		return "unknown"
	}
}

// Error is a zmrpc error carrying its Kind alongside the usual message/cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zmrpc: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("zmrpc: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &rpcerr.Error{Kind: rpcerr.KindTimeout}) etc.
// match by Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Configuration reports a misconfiguration: reserved-name registration,
// wrong argument types on Call, or calling Call before bind/connect.
func Configuration(format string, args ...any) *Error {
	return newf(KindConfiguration, format, args...)
}

// Transport reports a socket-level failure (closed while waiting, dial
// failure, etc).
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Msg: "transport closed", Err: err}
}

// Timeout reports a pending-result expiry.
func Timeout(reqID string, after string) *Error {
	return newf(KindTimeout, "request %s timed out after %s", reqID, after)
}

// RemoteError wraps the {ename, evalue, traceback} triple a service sent
// back in a FAIL reply. Its string form is "ename: evalue", matching
// spec §7.
type RemoteError struct {
	EName     string
	EValue    string
	Traceback string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.EName, e.EValue)
}

// Remote wraps a RemoteError descriptor as a *Error of KindRemote so
// callers can errors.As both the Kind-level *Error and the *RemoteError
// for the structured fields.
func Remote(desc *RemoteError) *Error {
	return &Error{Kind: KindRemote, Msg: desc.Error(), Err: desc}
}

// NewRemoteError builds a RemoteError a handler can return directly, so the
// FAIL reply's ename is the caller's choice instead of a Go type name. A
// handler wanting the client to observe ename=="ValueError" returns
// rpcerr.NewRemoteError("ValueError", "some message").
func NewRemoteError(ename, evalue string) *RemoteError {
	return &RemoteError{EName: ename, EValue: evalue}
}

// ExceptionName lets an error type report its own wire-level exception name
// instead of falling back to its Go type name. Implement this on a handler's
// existing error type when returning a *RemoteError directly isn't
// convenient — toRemoteDescriptor checks it before falling back to %T.
type ExceptionName interface {
	ExceptionName() string
}

// Decode reports malformed frames that could not be parsed into a request
// or reply.
func Decode(err error) *Error {
	return &Error{Kind: KindDecode, Msg: "malformed frame", Err: err}
}

// Unregistered reports a call to a procedure name with no registry entry.
func Unregistered(name string) *Error {
	return &Error{
		Kind: KindUnregistered,
		Msg:  fmt.Sprintf("Unregistered procedure '%s'", name),
		Err:  &RemoteError{EName: "NotImplementedError", EValue: fmt.Sprintf("Unregistered procedure '%s'", name)},
	}
}
