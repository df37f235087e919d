// Package loadbalance narrows a discovered instance list down to a
// connect set, consumed through Select as a zmrpc/discovery.Selector.
// There is no per-call routing here — a connected DEALER socket already
// fair-queues every outbound request across whatever it's connected to,
// so these strategies run once, before Connect, not on every RPC.
//
// Three strategies are implemented:
//   - RoundRobin:      Stateless services, equal-capacity instances
//   - WeightedRandom:  Heterogeneous instances (different CPU/memory)
//   - ConsistentHash:  Stateful services requiring cache affinity
package loadbalance

import "zmrpc/discovery"

// Balancer picks instances out of a candidate list. Select repeatedly
// calls Pick to build a connect set from a ServiceInstance list; nothing
// in zmrpc calls Pick per RPC.
type Balancer interface {
	// Pick selects one instance from the available list. Must be
	// goroutine-safe: Select may call it concurrently from more than one
	// caller building a connect set.
	Pick(instances []discovery.ServiceInstance) (*discovery.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
