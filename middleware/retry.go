package middleware

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"zmrpc/message"
	"zmrpc/rpcerr"
)

// Retry re-dispatches a procedure up to maxRetries times with exponential
// backoff when it fails with a transient error (deadline or transport
// kind), the way the teacher's RetryMiddleware does for "timeout"/
// "connection refused" substring matches — generalized to match on
// rpcerr.Kind instead of parsing error strings.
//
// Only meaningful in front of idempotent procedures: a retried call may
// run the handler more than once.
func Retry(maxRetries int, baseDelay time.Duration, logger *zap.SugaredLogger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.RequestDescriptor) *Outcome {
			outcome := next(ctx, req)
			for attempt := 0; attempt < maxRetries; attempt++ {
				if outcome.Err == nil || !isRetryable(outcome.Err) {
					return outcome
				}
				logger.Warnw("retrying procedure dispatch",
					"proc_name", req.ProcName, "attempt", attempt+1, "error", outcome.Err)
				time.Sleep(baseDelay * (1 << attempt))
				outcome = next(ctx, req)
			}
			return outcome
		}
	}
}

func isRetryable(err error) bool {
	var rpcErr *rpcerr.Error
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Kind == rpcerr.KindTimeout || rpcErr.Kind == rpcerr.KindTransport
}
