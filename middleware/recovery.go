package middleware

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"zmrpc/message"
	"zmrpc/rpcerr"
)

// Recovery converts a panic inside a handler or any inner middleware into
// a FAIL outcome instead of taking down the whole service goroutine.
//
// The teacher has no equivalent: its handlers ran in a single blocking
// request/response loop where a panic would already have unwound to
// os.Exit territory. zmrpc dispatches each request on its own goroutine
// (rpcservice), so an unrecovered panic there would crash the process —
// Recovery belongs at the outermost position of the chain.
func Recovery(logger *zap.SugaredLogger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.RequestDescriptor) (outcome *Outcome) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorw("recovered panic in procedure dispatch",
						"proc_name", req.ProcName, "req_id", req.ReqID.String(), "panic", r)
					outcome = &Outcome{Err: rpcerr.Remote(&rpcerr.RemoteError{
						EName:  "PanicError",
						EValue: fmt.Sprintf("%v", r),
					})}
				}
			}()
			return next(ctx, req)
		}
	}
}
