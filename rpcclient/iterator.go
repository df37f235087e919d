package rpcclient

import (
	"context"
	"fmt"

	"zmrpc/message"
	"zmrpc/protocol"
	"zmrpc/registry"
	"zmrpc/rpcerr"
)

// Iterator is the client-side half of a streaming procedure: the value
// Call returns when the service answers with a YIELD instead of a plain
// OK (spec §4.4). Each operation sends a new frame carrying the same
// req_id and blocks for the service's next YIELD/OK/FAIL, mirroring a
// Python generator's next/send/throw/close.
type Iterator struct {
	client *Client
	reqID  message.ReqID
	pr     *pendingResult
	done   bool
}

// Next advances the generator exactly like Send(nil) — spec §4.4: "the
// client's first command MUST be YIELD_SEND(None)", and every later Next
// is equivalent to sending no new value.
func (it *Iterator) Next(ctx context.Context) (any, error) {
	return it.Send(ctx, nil)
}

// Send delivers v as the result of the generator's suspended yield
// expression and returns the next produced value, or
// registry.ErrStopIteration when the generator has returned.
func (it *Iterator) Send(ctx context.Context, v any) (any, error) {
	if it.done {
		return nil, registry.ErrStopIteration
	}
	argsFrames, err := it.client.ser.SerializeArgsKwargs([]any{v}, nil)
	if err != nil {
		return nil, rpcerr.Decode(err)
	}
	frames := protocol.BuildYieldSend(nil, it.reqID, argsFrames)
	return it.roundTrip(ctx, frames)
}

// Throw injects a named exception at the generator's suspension point.
func (it *Iterator) Throw(ctx context.Context, ename, evalue string) (any, error) {
	if it.done {
		return nil, registry.ErrStopIteration
	}
	frames := protocol.BuildYieldThrow(nil, it.reqID, []byte(ename), []byte(evalue))
	return it.roundTrip(ctx, frames)
}

// Close terminates the generator early. A StopIteration-shaped FAIL is
// treated as normal (already-closed) completion, not an error.
func (it *Iterator) Close(ctx context.Context) error {
	if it.done {
		return nil
	}
	frames := protocol.BuildYieldClose(nil, it.reqID)
	_, err := it.roundTrip(ctx, frames)
	if err == registry.ErrStopIteration {
		return nil
	}
	return err
}

func (it *Iterator) roundTrip(ctx context.Context, frames [][]byte) (any, error) {
	if err := it.client.send(frames); err != nil {
		it.done = true
		return nil, err
	}

	select {
	case msg := <-it.pr.stream:
		return it.handle(msg)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (it *Iterator) handle(msg resultMsg) (any, error) {
	switch msg.kind {
	case kindYield:
		return msg.value, nil
	case kindOK:
		it.done = true
		return nil, registry.ErrStopIteration
	case kindFail:
		it.done = true
		if rpcErr, ok := msg.err.(*rpcerr.Error); ok {
			if remote, ok := rpcErr.Err.(*rpcerr.RemoteError); ok && remote.EName == "StopIteration" {
				return nil, registry.ErrStopIteration
			}
		}
		return nil, msg.err
	default:
		it.done = true
		return nil, rpcerr.Decode(fmt.Errorf("unexpected stream result kind %d", msg.kind))
	}
}
