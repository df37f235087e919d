// Package transport implements component C: an Endpoint owning one ZeroMQ
// ROUTER or DEALER socket, tracking the URLs it is bound or connected to,
// and supporting Reset (close the socket and recreate it against the same
// URLs) so a Client or Service can recover from a dead socket without
// losing its configuration.
//
// Endpoints never reach for a process-wide default context: every Endpoint
// is constructed against an explicit *zmq4.Context, the way the teacher's
// transports are constructed against an explicit net.Conn.
package transport

import (
	"fmt"
	"strings"
	"sync"

	zmq4 "github.com/pebbe/zmq4"
)

// Endpoint wraps a single zmq4 socket plus the bind/connect history needed
// to recreate it after Reset.
type Endpoint struct {
	mu         sync.Mutex
	ctx        *zmq4.Context
	socketType zmq4.Type
	socket     *zmq4.Socket
	identity   string
	boundURLs  []string
	connURLs   []string
}

// New creates an Endpoint of the given socket type (zmq4.ROUTER for
// services, zmq4.DEALER for clients) against ctx. The socket is created
// immediately but neither bound nor connected.
func New(ctx *zmq4.Context, socketType zmq4.Type) (*Endpoint, error) {
	socket, err := ctx.NewSocket(socketType)
	if err != nil {
		return nil, fmt.Errorf("transport: new socket: %w", err)
	}
	return &Endpoint{ctx: ctx, socketType: socketType, socket: socket}, nil
}

// SetIdentity sets the socket's wire identity before the first Bind or
// Connect. Required for a DEALER socket whose process wants a stable
// route prefix across Reset.
func (e *Endpoint) SetIdentity(identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.identity = identity
	return e.socket.SetIdentity(identity)
}

// Bind binds the socket to each url in turn, returning the bound port for
// any url ending in ":0" (an ephemeral-port request) via the returned
// slice, positionally aligned with urls.
func (e *Endpoint) Bind(urls ...string) ([]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ports := make([]int, len(urls))
	for i, url := range urls {
		if err := e.socket.Bind(url); err != nil {
			return nil, fmt.Errorf("transport: bind %s: %w", url, err)
		}
		if strings.HasSuffix(url, ":0") {
			last, err := e.socket.GetLastEndpoint()
			if err == nil {
				ports[i] = parsePort(last)
			}
		}
		e.boundURLs = append(e.boundURLs, url)
	}
	return ports, nil
}

// BindPorts binds to ip:port for each port in ports; port 0 requests an
// ephemeral port, returned in the result slice at the same index.
func (e *Endpoint) BindPorts(ip string, ports []int) ([]int, error) {
	urls := make([]string, len(ports))
	for i, p := range ports {
		urls[i] = fmt.Sprintf("tcp://%s:%d", ip, p)
	}
	return e.Bind(urls...)
}

// Connect connects the socket to each url. Multiple Connect calls add
// endpoints; a DEALER socket fair-queues outgoing requests across all of
// them — this is the whole load-balancing story (spec §4.4).
func (e *Endpoint) Connect(urls ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, url := range urls {
		if err := e.socket.Connect(url); err != nil {
			return fmt.Errorf("transport: connect %s: %w", url, err)
		}
		e.connURLs = append(e.connURLs, url)
	}
	return nil
}

// Reset closes the current socket and recreates it, rebinding and
// reconnecting to every URL previously passed to Bind/Connect. Used to
// recover after a transport-level error without losing configuration.
func (e *Endpoint) Reset() error {
	e.mu.Lock()
	boundURLs := append([]string(nil), e.boundURLs...)
	connURLs := append([]string(nil), e.connURLs...)
	identity := e.identity
	socketType := e.socketType
	ctx := e.ctx
	if e.socket != nil {
		e.socket.Close()
	}
	e.mu.Unlock()

	socket, err := ctx.NewSocket(socketType)
	if err != nil {
		return fmt.Errorf("transport: reset: new socket: %w", err)
	}
	if identity != "" {
		if err := socket.SetIdentity(identity); err != nil {
			return fmt.Errorf("transport: reset: set identity: %w", err)
		}
	}

	e.mu.Lock()
	e.socket = socket
	e.boundURLs = nil
	e.connURLs = nil
	e.mu.Unlock()

	if len(boundURLs) > 0 {
		if _, err := e.Bind(boundURLs...); err != nil {
			return err
		}
	}
	if len(connURLs) > 0 {
		if err := e.Connect(connURLs...); err != nil {
			return err
		}
	}
	return nil
}

// Socket returns the underlying zmq4 socket. Callers must respect the
// single-reader / serialized-writer discipline from spec §5 themselves;
// Endpoint does not arbitrate concurrent use.
func (e *Endpoint) Socket() *zmq4.Socket {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.socket
}

// BoundURLs and ConnectedURLs report the endpoint's current configuration.
func (e *Endpoint) BoundURLs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.boundURLs...)
}

func (e *Endpoint) ConnectedURLs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.connURLs...)
}

// Close shuts down the socket for good; the Endpoint cannot be reused
// after Close (construct a new one instead).
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.socket == nil {
		return nil
	}
	err := e.socket.Close()
	e.socket = nil
	return err
}

// parsePort extracts the trailing :port from a zmq "last endpoint" string
// such as "tcp://0.0.0.0:54321".
func parsePort(endpoint string) int {
	idx := strings.LastIndex(endpoint, ":")
	if idx < 0 {
		return 0
	}
	var port int
	fmt.Sscanf(endpoint[idx+1:], "%d", &port)
	return port
}
