// Package remote implements component G: a dotted-attribute-access proxy
// over a Client, grounded on original_source/netcall/utils.py's
// RemoteMethod.__getattr__ chain. Go has no __getattr__, so the dotted
// path is built explicitly via Attr instead of falling out of attribute
// lookup, and a terminal Call joins the accumulated path with "." before
// invoking (spec §4.6).
package remote

import (
	"context"
	"strings"
	"time"
)

// caller is the subset of rpcclient.Client that Remote needs. Remote
// depends on this instead of the concrete type so it can be driven by a
// fake in tests without spinning up a real socket.
type caller interface {
	Call(ctx context.Context, procName string, args []any, kwargs map[string]any, ignore bool, timeout time.Duration) (any, error)
}

// Remote is a handle rooted at path (possibly empty). It never touches
// the network itself — it only accumulates path segments and delegates
// the eventual call to its Client.
type Remote struct {
	client caller
	path   []string
}

// New returns a Remote rooted at the client with no path segments yet.
func New(client caller) *Remote {
	return &Remote{client: client}
}

// Attr appends name to the dotted path, returning a new Remote — exactly
// like a fresh RemoteMethod in the original's __getattr__. Remote values
// are immutable so one root can be shared across goroutines and attribute
// chains without aliasing.
func (r *Remote) Attr(name string) *Remote {
	next := make([]string, len(r.path), len(r.path)+1)
	copy(next, r.path)
	next = append(next, name)
	return &Remote{client: r.client, path: next}
}

// Path returns the dotted procedure name this handle currently names.
func (r *Remote) Path() string {
	return strings.Join(r.path, ".")
}

// Call invokes the accumulated dotted path as a procedure name. It never
// consults the service first — any syntactically valid path is callable,
// making service-side namespaces (spec §4.3) transparent here (spec
// §4.6).
func (r *Remote) Call(ctx context.Context, args []any, kwargs map[string]any, ignore bool, timeout time.Duration) (any, error) {
	return r.client.Call(ctx, r.Path(), args, kwargs, ignore, timeout)
}
