package rpcservice

import (
	"fmt"
	"runtime/debug"

	"zmrpc/message"
	"zmrpc/rpcerr"
)

// toRemoteDescriptor turns any error a procedure, generator step, or
// dispatch path raised into the {ename, evalue, traceback} triple spec
// §4.5 step 6 puts on the wire. A *rpcerr.RemoteError produced by
// rpcerr.Unregistered, rpcerr.NewRemoteError, or forwarded from elsewhere
// keeps its original fields; an error implementing rpcerr.ExceptionName
// supplies its own ename over a plain error's Go type name; anything else
// is reported under its Go type name, carrying a captured stack the way
// the original service.py attaches traceback.format_exc().
func toRemoteDescriptor(err error) *message.RemoteErrorDescriptor {
	if rpcErr, ok := err.(*rpcerr.Error); ok {
		if remote, ok := rpcErr.Err.(*rpcerr.RemoteError); ok {
			return &message.RemoteErrorDescriptor{
				EName: remote.EName, EValue: remote.EValue, Traceback: remote.Traceback,
			}
		}
	}
	if remote, ok := err.(*rpcerr.RemoteError); ok {
		return &message.RemoteErrorDescriptor{
			EName: remote.EName, EValue: remote.EValue, Traceback: remote.Traceback,
		}
	}
	if named, ok := err.(rpcerr.ExceptionName); ok {
		return &message.RemoteErrorDescriptor{
			EName:     named.ExceptionName(),
			EValue:    err.Error(),
			Traceback: string(debug.Stack()),
		}
	}
	return &message.RemoteErrorDescriptor{
		EName:     fmt.Sprintf("%T", err),
		EValue:    err.Error(),
		Traceback: string(debug.Stack()),
	}
}
