package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"zmrpc/message"
)

// Logging records the procedure name, request id, duration and any error
// for each dispatched call, the way the teacher's LoggingMiddleware does
// with log.Printf — generalized to zap's structured fields so req_id and
// proc_name survive as queryable fields instead of a format string.
func Logging(logger *zap.SugaredLogger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.RequestDescriptor) *Outcome {
			start := time.Now()
			outcome := next(ctx, req)
			fields := []any{
				"proc_name", req.ProcName,
				"req_id", req.ReqID.String(),
				"duration", time.Since(start),
			}
			if outcome.Err != nil {
				logger.Errorw("rpc call failed", append(fields, "error", outcome.Err)...)
			} else {
				logger.Debugw("rpc call completed", fields...)
			}
			return outcome
		}
	}
}
