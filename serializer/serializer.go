// Package serializer implements component A: encoding and decoding of
// argument tuples, keyword mappings and results to and from the opaque
// byte frames carried on the wire (spec §4.1).
//
// Two serializers ship: JSON (jsoniter, for interoperability with
// non-Go peers) and Binary (msgpack, the fast native format). Both sides
// of a conversation must agree on one out of band; zmrpc performs no
// negotiation.
package serializer

// Serializer encodes/decodes the argument and result payloads carried in
// request and reply frames. Implementations must be safe for concurrent
// use — a single Serializer is shared by every in-flight call.
type Serializer interface {
	// SerializeArgsKwargs encodes a positional argument sequence and a
	// keyword mapping into one or more byte frames, in wire order.
	SerializeArgsKwargs(args []any, kwargs map[string]any) ([][]byte, error)

	// DeserializeArgsKwargs is the inverse of SerializeArgsKwargs. A
	// decode failure here is attached to the request descriptor and
	// surfaced to the caller as a FAIL reply, never panics.
	DeserializeArgsKwargs(frames [][]byte) ([]any, map[string]any, error)

	// SerializeResult encodes a single return value.
	SerializeResult(v any) ([][]byte, error)

	// DeserializeResult is the inverse of SerializeResult.
	DeserializeResult(frames [][]byte) (any, error)
}
