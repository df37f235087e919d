package middleware

import (
	"context"
	"time"

	"zmrpc/message"
	"zmrpc/rpcerr"
)

// Deadline enforces a maximum duration for a single procedure dispatch on
// the service side, the way the teacher's TimeOutMiddleware does for a
// single RPC call.
//
// This is distinct from the client-side pending-result timeout in
// rpcclient — that one frees client resources after no reply arrives.
// Deadline protects the service itself from a runaway handler holding a
// worker goroutine forever; the handler goroutine is NOT cancelled when
// the deadline fires (it keeps running in the background), so a handler
// that wants true cancellation must check ctx.Done() itself.
func Deadline(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.RequestDescriptor) *Outcome {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan *Outcome, 1) // buffered: don't leak the goroutine if the deadline fires first
			go func() {
				done <- next(ctx, req)
			}()

			select {
			case outcome := <-done:
				return outcome
			case <-ctx.Done():
				return &Outcome{Err: rpcerr.Timeout(req.ReqID.String(), timeout.String())}
			}
		}
	}
}
