// Package registry implements component D: the service-side procedure
// table. It maps a (possibly dotted) procedure name to a callable,
// supports binding an object's exported methods under a namespace prefix,
// and refuses to ever expose a framework-reserved verb (spec §4.3).
package registry

import (
	"fmt"
	"reflect"
	"strings"

	"zmrpc/rpcerr"
)

// Proc is the signature every registered procedure must have:
// (args, kwargs) -> (value | Generator, error). A Generator return value
// switches the call into streaming mode (see rpcservice).
type Proc func(args []any, kwargs map[string]any) (any, error)

// ErrStopIteration is returned by Generator.Send/Throw/Close to signal
// normal end-of-iteration. The service's generator driver turns it into a
// plain OK reply with an empty payload, which ends the stream; the client
// iterator also accepts a FAIL with ename="StopIteration" as end-of-iteration.
var ErrStopIteration = fmt.Errorf("StopIteration")

// Generator is the interface a Proc's return value must implement to be
// treated as a streaming procedure. It mirrors a Python generator's
// send/throw/close trio (spec §9, "Generators as cross-network
// iterators").
type Generator interface {
	// Send advances the generator, delivering v as the result of the
	// generator's last `yield` expression. Returns the next yielded
	// value, or ErrStopIteration when the generator returns normally.
	Send(v any) (any, error)
	// Throw injects an exception into the generator at its suspension
	// point, named by ename/evalue. The service passes both strings
	// through exactly as the client sent them; it resolves no exception
	// class, so interpreting the name is up to the Generator itself.
	Throw(ename, evalue string) (any, error)
	// Close terminates the generator early.
	Close() error
}

// reserved is the bit-exact set of names a procedure table must never
// contain (spec §4.3). Exposed as a slice (not just a lookup function)
// so tests can enumerate it, per the design notes in spec §9.
var reserved = []string{
	"register", "register_object", "proc", "task", "start", "stop",
	"serve", "reset", "connect", "bind", "bind_ports",
	"YIELD_SEND", "YIELD_THROW", "YIELD_CLOSE",
}

func isReserved(name string) bool {
	for _, r := range reserved {
		if r == name {
			return true
		}
	}
	return false
}

// Reserved returns a copy of the reserved-name set.
func Reserved() []string {
	out := make([]string, len(reserved))
	copy(out, reserved)
	return out
}

// Registry is the procedure table. Zero value is usable.
type Registry struct {
	procs map[string]Proc
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{procs: make(map[string]Proc)}
}

// Register adds a single callable under name. name must be non-empty: an
// empty name is rejected with a configuration error, and no name is ever
// derived from the callable itself.
func (r *Registry) Register(name string, proc Proc) error {
	if name == "" {
		return rpcerr.Configuration("register requires a name")
	}
	if isReserved(name) {
		return rpcerr.Configuration("%q is a reserved name and cannot be registered", name)
	}
	if r.procs == nil {
		r.procs = make(map[string]Proc)
	}
	r.procs[name] = proc
	return nil
}

// RegisterObject scans obj's exported methods via reflection and adds
// each one — except private (leading "_"), names in restricted, and
// reserved names (skipped silently, not an error) — to the table under
// "<namespace>.<method>", or bare "<method>" if namespace is empty.
// Dotted namespaces are literal prefixes: register_object(obj,
// namespace="a.b.c") places "a.b.c.value" as a single key, not a nested
// table (spec §4.3).
func (r *Registry) RegisterObject(obj any, namespace string, restricted []string) error {
	if r.procs == nil {
		r.procs = make(map[string]Proc)
	}
	restrictedSet := make(map[string]bool, len(restricted))
	for _, name := range restricted {
		restrictedSet[name] = true
	}

	val := reflect.ValueOf(obj)
	typ := val.Type()

	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		name := m.Name
		if strings.HasPrefix(name, "_") {
			continue
		}
		if isReserved(name) || restrictedSet[name] {
			continue
		}
		method := val.Method(i)
		proc, ok := adaptMethod(method)
		if !ok {
			continue
		}
		key := name
		if namespace != "" {
			key = namespace + "." + name
		}
		r.procs[key] = proc
	}
	return nil
}

// adaptMethod wraps a reflected bound method of signature
// func(args []any, kwargs map[string]any) (any, error) — the only shape
// RegisterObject accepts — into a Proc. Methods with any other signature
// are skipped (ok=false), mirroring the teacher's service.RegisterMethods
// filtering unrecognized signatures rather than failing registration.
func adaptMethod(method reflect.Value) (Proc, bool) {
	if direct, ok := method.Interface().(func([]any, map[string]any) (any, error)); ok {
		return direct, true
	}
	mtyp := method.Type()
	if mtyp.NumIn() != 2 || mtyp.NumOut() != 2 {
		return nil, false
	}
	if mtyp.In(0) != reflect.TypeOf([]any(nil)) || mtyp.In(1) != reflect.TypeOf(map[string]any(nil)) {
		return nil, false
	}
	errType := reflect.TypeOf((*error)(nil)).Elem()
	if !mtyp.Out(1).Implements(errType) {
		return nil, false
	}
	return func(args []any, kwargs map[string]any) (any, error) {
		results := method.Call([]reflect.Value{reflect.ValueOf(args), reflect.ValueOf(kwargs)})
		var err error
		if e, ok := results[1].Interface().(error); ok {
			err = e
		}
		return results[0].Interface(), err
	}, true
}

// Lookup resolves a procedure name. ok is false if no entry exists.
func (r *Registry) Lookup(name string) (Proc, bool) {
	if r.procs == nil {
		return nil, false
	}
	proc, ok := r.procs[name]
	return proc, ok
}

// Names returns every registered procedure name. Order is unspecified.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.procs))
	for name := range r.procs {
		names = append(names, name)
	}
	return names
}
