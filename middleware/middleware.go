// Package middleware implements the onion-model chain that wraps
// procedure dispatch in zmrpc's service core (spec §5.7, an ambient
// concern layered on top of component F).
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
//
// Each middleware can:
//   - Do pre-processing (before calling next)
//   - Call next(ctx, req) to pass to the next layer
//   - Do post-processing (after next returns)
//   - Short-circuit by returning early without calling next (e.g., rate limiting)
package middleware

import (
	"context"

	"zmrpc/message"
	"zmrpc/registry"
)

// Outcome is what procedure dispatch produced, before the service core
// turns it into an OK/FAIL/YIELD wire reply. Exactly one of Value, Gen or
// Err is meaningful.
type Outcome struct {
	Value any
	Gen   registry.Generator // non-nil for a streaming procedure
	Err   error
}

// HandlerFunc is the function signature for request handlers. The
// business handler (procedure dispatch) and every middleware-wrapped
// handler share this signature.
type HandlerFunc func(ctx context.Context, req *message.RequestDescriptor) *Outcome

// Middleware takes a handler and returns a new handler that wraps it —
// the decorator pattern.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into a single middleware, built
// right to left so the first middleware in the list is the outermost
// layer (executed first on request, last on response).
//
//	chain := Chain(Recovery(), Logging(logger), RateLimit(10, 20))
//	handler := chain(businessHandler)
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
