package transport

import (
	"strconv"
	"testing"

	zmq4 "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *zmq4.Context {
	ctx, err := zmq4.NewContext()
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Term() })
	return ctx
}

func TestEndpointBindEphemeralPort(t *testing.T) {
	ctx := newTestContext(t)
	ep, err := New(ctx, zmq4.ROUTER)
	require.NoError(t, err)
	t.Cleanup(func() { ep.Close() })

	ports, err := ep.Bind("tcp://127.0.0.1:0")
	require.NoError(t, err)
	require.Len(t, ports, 1)
	require.NotZero(t, ports[0])
	require.Equal(t, []string{"tcp://127.0.0.1:0"}, ep.BoundURLs())
}

func TestEndpointConnectRecordsURLs(t *testing.T) {
	ctx := newTestContext(t)
	router, err := New(ctx, zmq4.ROUTER)
	require.NoError(t, err)
	t.Cleanup(func() { router.Close() })
	ports, err := router.Bind("tcp://127.0.0.1:0")
	require.NoError(t, err)

	dealer, err := New(ctx, zmq4.DEALER)
	require.NoError(t, err)
	t.Cleanup(func() { dealer.Close() })

	connectURL := fmtEndpoint("127.0.0.1", ports[0])
	require.NoError(t, dealer.Connect(connectURL))
	require.Equal(t, []string{connectURL}, dealer.ConnectedURLs())
}

func TestEndpointResetPreservesConfiguration(t *testing.T) {
	ctx := newTestContext(t)
	ep, err := New(ctx, zmq4.ROUTER)
	require.NoError(t, err)
	t.Cleanup(func() { ep.Close() })

	_, err = ep.Bind("tcp://127.0.0.1:0")
	require.NoError(t, err)
	before := ep.BoundURLs()

	require.NoError(t, ep.Reset())
	require.Equal(t, before, ep.BoundURLs())
}

func fmtEndpoint(host string, port int) string {
	return "tcp://" + host + ":" + strconv.Itoa(port)
}
