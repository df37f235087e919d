package rpcclient

import (
	"context"
	"testing"
	"time"

	zmq4 "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/require"

	"zmrpc/rpcerr"
)

func newTestContext(t *testing.T) *zmq4.Context {
	ctx, err := zmq4.NewContext()
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Term() })
	return ctx
}

// bindDeafRouter binds a ROUTER socket at url and leaves it unread, just
// so DEALER Connect over inproc has a live peer to attach to — libzmq
// requires the inproc bind side to exist before connect, unlike tcp.
func bindDeafRouter(t *testing.T, ctx *zmq4.Context, url string) {
	t.Helper()
	router, err := ctx.NewSocket(zmq4.ROUTER)
	require.NoError(t, err)
	require.NoError(t, router.Bind(url))
	t.Cleanup(func() { router.Close() })
}

func TestCallBeforeReadyFails(t *testing.T) {
	c, err := New(newTestContext(t))
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "any.proc", nil, nil, false, 0)
	require.Error(t, err)

	var rpcErr *rpcerr.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, rpcerr.KindConfiguration, rpcErr.Kind)
}

func TestCallIgnoreReturnsImmediately(t *testing.T) {
	ctx := newTestContext(t)
	bindDeafRouter(t, ctx, "inproc://zmrpc-client-ignore-test")

	c, err := New(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Connect("inproc://zmrpc-client-ignore-test"))
	defer c.Shutdown()

	val, err := c.Call(context.Background(), "noop", []any{1}, nil, true, 0)
	require.NoError(t, err)
	require.Nil(t, val)
}

func TestCallTimesOutWithNoService(t *testing.T) {
	ctx := newTestContext(t)
	bindDeafRouter(t, ctx, "inproc://zmrpc-client-timeout-test-target-missing")

	c, err := New(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Connect("inproc://zmrpc-client-timeout-test-target-missing"))
	defer c.Shutdown()

	_, err = c.Call(context.Background(), "any.proc", nil, nil, false, 30*time.Millisecond)
	require.Error(t, err)

	var rpcErr *rpcerr.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, rpcerr.KindTimeout, rpcErr.Kind)
}

func TestShutdownIsIdempotent(t *testing.T) {
	ctx := newTestContext(t)
	bindDeafRouter(t, ctx, "inproc://zmrpc-client-shutdown-test")

	c, err := New(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Connect("inproc://zmrpc-client-shutdown-test"))

	require.NoError(t, c.Shutdown())
	require.NoError(t, c.Shutdown())
}
