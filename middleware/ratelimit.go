package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"zmrpc/message"
	"zmrpc/rpcerr"
)

// RateLimit applies a token-bucket limiter per the teacher's
// RateLimitMiddleware: tokens refill at r per second up to burst, and a
// request that finds the bucket empty is rejected as a configuration
// error rather than ever reaching the procedure.
//
// The limiter must be created in the outer closure (once per middleware
// construction), not per request — otherwise every call would see a
// fresh, full bucket and rate limiting would be a no-op.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.RequestDescriptor) *Outcome {
			if !limiter.Allow() {
				return &Outcome{Err: rpcerr.Configuration("rate limit exceeded for %s", req.ProcName)}
			}
			return next(ctx, req)
		}
	}
}
