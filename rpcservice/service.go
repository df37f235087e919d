// Package rpcservice implements component F: the RPC service. One ROUTER
// Endpoint is shared by the accept loop and every request/generator-driver
// goroutine it spawns, the way the teacher's server.go shares one
// net.Listener and a per-connection write mutex across handleConn and its
// handleRequest goroutines — generalized from "one goroutine per TCP
// connection" to "one goroutine per inbound multipart message," since a
// ROUTER socket multiplexes every peer over a single socket already.
package rpcservice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zmq4 "github.com/pebbe/zmq4"
	"go.uber.org/zap"

	"zmrpc/message"
	"zmrpc/middleware"
	"zmrpc/protocol"
	"zmrpc/registry"
	"zmrpc/rpcerr"
	"zmrpc/serializer"
	"zmrpc/transport"
)

// pollInterval bounds how long Stop takes to notice the running flag
// flipped to false — the accept loop polls instead of blocking forever on
// Recv so it can "leave listen mode" without closing the socket out from
// under any in-flight reply.
const pollInterval = 200 * time.Millisecond

// Service is the RPC service core.
type Service struct {
	endpoint  *transport.Endpoint
	ser       serializer.Serializer
	reg       *registry.Registry
	logger    *zap.SugaredLogger
	serviceID []byte

	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc

	sendMu sync.Mutex
	wg     sync.WaitGroup
	gens   *activeGenerators

	mu        sync.Mutex
	running   bool
	serveDone chan struct{}
}

// Option configures a Service at construction time.
type Option func(*Service)

func WithSerializer(s serializer.Serializer) Option {
	return func(svc *Service) { svc.ser = s }
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(svc *Service) { svc.logger = logger }
}

// New creates a Service around a fresh ROUTER endpoint on ctx, dispatching
// to reg. The service is not listening until Start is called.
func New(ctx *zmq4.Context, reg *registry.Registry, opts ...Option) (*Service, error) {
	ep, err := transport.New(ctx, zmq4.ROUTER)
	if err != nil {
		return nil, err
	}
	s := &Service{
		endpoint:  ep,
		ser:       serializer.JSON{},
		reg:       reg,
		logger:    zap.NewNop().Sugar(),
		serviceID: []byte(uuid.New().String()),
		gens:      newActiveGenerators(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Use registers a middleware. Middlewares run in the order added, the
// first one being the outermost layer (spec §5.7, teacher's middleware
// chain).
func (s *Service) Use(mw middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

func (s *Service) Bind(urls ...string) ([]int, error) { return s.endpoint.Bind(urls...) }
func (s *Service) BindPorts(ip string, ports []int) ([]int, error) {
	return s.endpoint.BindPorts(ip, ports)
}
func (s *Service) Connect(urls ...string) error { return s.endpoint.Connect(urls...) }

// Start enters listen mode and launches the accept loop; it does not
// block (spec §4.5).
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.handler = middleware.Chain(s.middlewares...)(s.dispatch)
	s.serveDone = make(chan struct{})
	go s.acceptLoop(s.serveDone)
}

// Serve blocks until the accept loop exits — after Stop, or after a
// socket-level error.
func (s *Service) Serve() {
	s.mu.Lock()
	done := s.serveDone
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop leaves listen mode, letting in-flight handlers finish; it does not
// close the socket (spec §4.5: "shutdown: stop and close the socket" is
// the separate, final step). Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Shutdown stops the accept loop, waits for in-flight work to drain (or
// the deadline to pass), and closes the socket.
func (s *Service) Shutdown(drain time.Duration) error {
	s.Stop()
	s.Serve()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drain):
		s.logger.Warnw("shutdown: in-flight work did not drain before deadline")
	}
	return s.endpoint.Close()
}

func (s *Service) acceptLoop(done chan struct{}) {
	defer close(done)
	poller := zmq4.NewPoller()
	poller.Add(s.endpoint.Socket(), zmq4.POLLIN)

	for {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if !running {
			return
		}

		polled, err := poller.Poll(pollInterval)
		if err != nil {
			s.logger.Errorw("poll failed, leaving accept loop", "error", err)
			return
		}
		if len(polled) == 0 {
			continue
		}

		frames, err := s.endpoint.Socket().RecvMessageBytes(0)
		if err != nil {
			s.logger.Errorw("recv failed, leaving accept loop", "error", err)
			return
		}

		s.wg.Add(1)
		go s.handleFrames(frames)
	}
}

// handleFrames is the per-request worker the teacher's handleRequest maps
// to; ordering of replies across requests is deliberately not preserved
// (spec §5).
func (s *Service) handleFrames(frames [][]byte) {
	defer s.wg.Done()

	parsed, ok := protocol.ParseRequest(frames)
	if !ok {
		return // spec §4.5 step 1: no req_id to address, drop silently
	}

	s.sendFrames(protocol.BuildAck(parsed.Route, parsed.ReqID, s.serviceID))

	if parsed.IsYieldCommand() {
		s.dispatchYieldCommand(parsed)
		return
	}

	s.handleCall(parsed)
}

func (s *Service) handleCall(parsed *protocol.ParsedRequest) {
	args, kwargs, err := s.ser.DeserializeArgsKwargs(parsed.ArgsFrames)
	desc := &message.RequestDescriptor{
		Route:      parsed.Route,
		ReqID:      parsed.ReqID,
		ProcName:   parsed.ProcName,
		Args:       args,
		Kwargs:     kwargs,
		Ignore:     parsed.Ignore,
		ParseError: err,
	}

	outcome := s.handler(context.Background(), desc)

	switch {
	case outcome.Err != nil:
		if !desc.Ignore {
			s.sendFail(desc.Route, desc.ReqID, outcome.Err)
		}
	case outcome.Gen != nil:
		if !desc.Ignore {
			s.wg.Add(1)
			go s.runGeneratorDriver(desc.Route, desc.ReqID, outcome.Gen)
		}
	default:
		if !desc.Ignore {
			s.sendOK(desc.Route, desc.ReqID, outcome.Value)
		}
	}
}

// dispatch is the innermost handler the middleware chain wraps: registry
// lookup and procedure invocation (spec §4.5 steps 4-8).
func (s *Service) dispatch(ctx context.Context, req *message.RequestDescriptor) *middleware.Outcome {
	if req.ParseError != nil {
		return &middleware.Outcome{Err: rpcerr.Decode(req.ParseError)}
	}

	proc, ok := s.reg.Lookup(req.ProcName)
	if !ok {
		return &middleware.Outcome{Err: rpcerr.Unregistered(req.ProcName)}
	}

	value, err := proc(req.Args, req.Kwargs)
	if err != nil {
		return &middleware.Outcome{Err: err}
	}
	if gen, ok := value.(registry.Generator); ok {
		return &middleware.Outcome{Gen: gen}
	}
	return &middleware.Outcome{Value: value}
}

func (s *Service) sendFrames(frames [][]byte) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	parts := make([]interface{}, len(frames))
	for i, f := range frames {
		parts[i] = f
	}
	if _, err := s.endpoint.Socket().SendMessage(parts...); err != nil {
		s.logger.Errorw("failed to send reply", "error", err)
	}
}

func (s *Service) sendOK(route [][]byte, reqID message.ReqID, value any) {
	payload, err := s.ser.SerializeResult(value)
	if err != nil {
		s.sendFail(route, reqID, rpcerr.Decode(err))
		return
	}
	s.sendFrames(protocol.BuildReply(route, reqID, message.TagOK, payload))
}

func (s *Service) sendYield(route [][]byte, reqID message.ReqID, value any) {
	payload, err := s.ser.SerializeResult(value)
	if err != nil {
		s.sendFail(route, reqID, rpcerr.Decode(err))
		return
	}
	s.sendFrames(protocol.BuildReply(route, reqID, message.TagYIELD, payload))
}

func (s *Service) sendFail(route [][]byte, reqID message.ReqID, err error) {
	s.sendFrames(protocol.BuildReply(route, reqID, message.TagFAIL, protocol.EncodeRemoteError(toRemoteDescriptor(err))))
}
