// Package rpcclient implements component E: the RPC client. A single
// DEALER Endpoint is shared by every caller; one reader goroutine owns the
// receive side and demultiplexes replies to per-request pendingResults by
// req_id, the way the teacher's client_transport.go routes responses by
// sequence number onto per-request channels — generalized from a plain
// request/response channel to the OK/FAIL/first-YIELD/timeout union a
// streaming-capable call needs (spec §4.4, §5).
package rpcclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	zmq4 "github.com/pebbe/zmq4"
	"go.uber.org/zap"

	"zmrpc/message"
	"zmrpc/protocol"
	"zmrpc/rpcerr"
	"zmrpc/serializer"
	"zmrpc/transport"
)

// Client is the RPC client core. Safe for concurrent Call from many
// goroutines; there is exactly one reader goroutine per Client, matching
// spec §5's "EXACTLY ONE reader task owns the receive side."
type Client struct {
	endpoint *transport.Endpoint
	ser      serializer.Serializer
	logger   *zap.SugaredLogger

	sendMu sync.Mutex // serializes writes to the socket (spec §5: "a complete multipart frame is sent atomically")

	mu      sync.Mutex
	pending map[message.ReqID]*pendingResult
	ready   bool
	closed  bool

	readerDone chan struct{}
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithSerializer overrides the default JSON serializer.
func WithSerializer(s serializer.Serializer) Option {
	return func(c *Client) { c.ser = s }
}

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client around a fresh DEALER endpoint on ctx. The client
// is not ready until Bind, BindPorts or Connect is called.
func New(ctx *zmq4.Context, opts ...Option) (*Client, error) {
	ep, err := transport.New(ctx, zmq4.DEALER)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: %w", err)
	}
	c := &Client{
		endpoint: ep,
		ser:      serializer.JSON{},
		logger:   zap.NewNop().Sugar(),
		pending:  make(map[message.ReqID]*pendingResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Bind, BindPorts and Connect configure the endpoint and flip the client
// into the ready state, starting the reader goroutine on first use (spec
// §4.4: "each must eventually set the 'ready' signal").
func (c *Client) Bind(urls ...string) ([]int, error) {
	ports, err := c.endpoint.Bind(urls...)
	if err != nil {
		return nil, err
	}
	c.markReady()
	return ports, nil
}

func (c *Client) BindPorts(ip string, ports []int) ([]int, error) {
	got, err := c.endpoint.BindPorts(ip, ports)
	if err != nil {
		return nil, err
	}
	c.markReady()
	return got, nil
}

func (c *Client) Connect(urls ...string) error {
	if err := c.endpoint.Connect(urls...); err != nil {
		return err
	}
	c.markReady()
	return nil
}

func (c *Client) markReady() {
	c.mu.Lock()
	alreadyReady := c.ready
	c.ready = true
	c.mu.Unlock()
	if !alreadyReady {
		c.readerDone = make(chan struct{})
		go c.readLoop()
	}
}

func (c *Client) isReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready && !c.closed
}

// Call invokes a remote procedure and waits for its terminal reply.
//
// On success the return value is either the deserialized result, or an
// *Iterator when the service answers with a stream (spec §4.4: "If the
// terminal state is 'first YIELD': return a streaming iterator"). ignore
// suppresses the service's reply entirely and Call returns (nil, nil) as
// soon as the frame is sent. timeout <= 0 means wait forever.
func (c *Client) Call(ctx context.Context, procName string, args []any, kwargs map[string]any, ignore bool, timeout time.Duration) (any, error) {
	if !c.isReady() {
		return nil, rpcerr.Configuration("bind or connect must be called first")
	}

	argsFrames, err := c.ser.SerializeArgsKwargs(args, kwargs)
	if err != nil {
		return nil, rpcerr.Decode(err)
	}

	reqID := message.NewReqID()
	frames := protocol.BuildRequest(nil, reqID, procName, argsFrames, ignore)

	if ignore {
		if err := c.send(frames); err != nil {
			return nil, err
		}
		return nil, nil
	}

	pr := newPendingResult(reqID)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, rpcerr.Transport(fmt.Errorf("client is shut down"))
	}
	c.pending[reqID] = pr
	c.mu.Unlock()

	if timeout > 0 {
		pr.timer = time.AfterFunc(timeout, func() { c.timeoutPending(reqID) })
	}

	if err := c.send(frames); err != nil {
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
		if pr.timer != nil {
			pr.timer.Stop()
		}
		return nil, err
	}

	select {
	case msg := <-pr.first:
		return c.resolveFirst(reqID, pr, msg)
	case <-ctx.Done():
		c.timeoutPending(reqID)
		return nil, ctx.Err()
	}
}

func (c *Client) resolveFirst(reqID message.ReqID, pr *pendingResult, msg resultMsg) (any, error) {
	switch msg.kind {
	case kindOK:
		return msg.value, nil
	case kindFail:
		return nil, msg.err
	case kindTimeout:
		return nil, msg.err
	case kindYield:
		return &Iterator{client: c, reqID: reqID, pr: pr}, nil
	default:
		return nil, fmt.Errorf("rpcclient: unexpected result kind %d", msg.kind)
	}
}

func (c *Client) send(frames [][]byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	parts := make([]interface{}, len(frames))
	for i, f := range frames {
		parts[i] = f
	}
	if _, err := c.endpoint.Socket().SendMessage(parts...); err != nil {
		return rpcerr.Transport(err)
	}
	return nil
}

// readLoop is the single reader task (spec §5). It runs until Shutdown
// closes the endpoint, at which point RecvMessageBytes returns an error
// and the loop notifies every still-pending caller.
func (c *Client) readLoop() {
	defer close(c.readerDone)
	for {
		frames, err := c.endpoint.Socket().RecvMessageBytes(0)
		if err != nil {
			c.drainPendingOnClose(err)
			return
		}

		reply, ok := protocol.ParseReply(frames)
		if !ok || reply.Tag == message.TagACK {
			continue
		}

		msg := c.decodeReply(reply)
		c.deliverReply(reply.ReqID, msg)
	}
}

func (c *Client) decodeReply(reply *protocol.ParsedReply) resultMsg {
	switch reply.Tag {
	case message.TagOK:
		if len(reply.Payload) == 0 {
			return resultMsg{kind: kindOK, value: nil}
		}
		v, err := c.ser.DeserializeResult(reply.Payload)
		if err != nil {
			return resultMsg{kind: kindFail, err: rpcerr.Decode(err)}
		}
		return resultMsg{kind: kindOK, value: v}
	case message.TagFAIL:
		desc, err := protocol.DecodeRemoteError(reply.Payload)
		if err != nil {
			return resultMsg{kind: kindFail, err: rpcerr.Decode(err)}
		}
		return resultMsg{kind: kindFail, err: rpcerr.Remote(&rpcerr.RemoteError{
			EName: desc.EName, EValue: desc.EValue, Traceback: desc.Traceback,
		})}
	case message.TagYIELD:
		if len(reply.Payload) == 0 {
			return resultMsg{kind: kindYield, value: nil}
		}
		v, err := c.ser.DeserializeResult(reply.Payload)
		if err != nil {
			return resultMsg{kind: kindFail, err: rpcerr.Decode(err)}
		}
		return resultMsg{kind: kindYield, value: v}
	default:
		return resultMsg{kind: kindFail, err: rpcerr.Decode(fmt.Errorf("unexpected reply tag %q", reply.Tag))}
	}
}

// deliverReply routes one decoded reply to the pendingResult it belongs
// to, per spec §4.4 step 5. Map access and the streaming-flag check are
// both done under c.mu so timeoutPending can never race this decision.
func (c *Client) deliverReply(reqID message.ReqID, msg resultMsg) {
	c.mu.Lock()
	pr, ok := c.pending[reqID]
	if !ok {
		c.mu.Unlock()
		return // orphan reply: no pending caller, drop it (spec §4.4 step 4)
	}

	wasStreaming := pr.streaming
	becomesStreaming := !wasStreaming && msg.kind == kindYield
	terminal := msg.kind == kindOK || msg.kind == kindFail
	if becomesStreaming {
		pr.streaming = true
	}
	if terminal {
		delete(c.pending, reqID)
	}
	c.mu.Unlock()

	if pr.timer != nil {
		pr.timer.Stop()
	}

	switch {
	case becomesStreaming:
		pr.first <- resultMsg{kind: kindYield}
	case wasStreaming:
		pr.stream <- msg
	default:
		pr.first <- msg
	}
}

// timeoutPending is the one-shot timer callback. If the pending entry is
// already gone (resolved by readLoop) or has already become a stream, it
// does nothing — best-effort cancellation per spec §5.
func (c *Client) timeoutPending(reqID message.ReqID) {
	c.mu.Lock()
	pr, ok := c.pending[reqID]
	if ok {
		if pr.streaming {
			ok = false
		} else {
			delete(c.pending, reqID)
		}
	}
	c.mu.Unlock()

	if ok {
		pr.first <- resultMsg{kind: kindTimeout, err: rpcerr.Timeout(reqID.String(), "")}
	}
}

func (c *Client) drainPendingOnClose(cause error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[message.ReqID]*pendingResult)
	c.mu.Unlock()

	err := rpcerr.Transport(cause)
	for _, pr := range pending {
		if pr.timer != nil {
			pr.timer.Stop()
		}
		msg := resultMsg{kind: kindFail, err: err}
		if pr.streaming {
			select {
			case pr.stream <- msg:
			default:
			}
		} else {
			select {
			case pr.first <- msg:
			default:
			}
		}
	}
}

// Shutdown marks the client not-ready, closes the socket to wake the
// reader, and waits for it to exit. Idempotent and safe to call
// concurrently with in-flight Calls (spec §4.4, §5).
func (c *Client) Shutdown() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.ready = false
	readerDone := c.readerDone
	c.mu.Unlock()

	err := c.endpoint.Close()
	if readerDone != nil {
		<-readerDone
	}
	return err
}
