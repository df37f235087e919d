// Package discovery is an OPTIONAL add-on layered above the RPC core: it
// lets a client discover additional DEALER endpoints worth connecting to,
// and optionally narrow that list through a Selector before connecting,
// but it never picks among already-connected endpoints at call time. That
// remains the ROUTER/DEALER transport's job — a connected DEALER socket
// fair-queues outgoing requests across every endpoint it's connected to.
// Treating discovery as a per-call routing layer would duplicate that
// fair-queuing and is an explicit non-goal.
//
// Grounded on the teacher's registry/etcd_registry.go, generalized from
// "the one and only way clients find servers" to "an optional source of
// extra Connect targets" — the core works perfectly well with a client
// given a fixed list of URLs and no discovery package at all.
package discovery

// ServiceInstance describes one advertised endpoint. Weight and Version
// are carried as metadata for a Selector (for example one built by
// zmrpc/loadbalance.Select) to filter or rank on before ConnectAll
// connects — the core transport ignores both fields.
type ServiceInstance struct {
	Addr    string
	Weight  int
	Version string
}

// Registry is the interface for service registration and lookup.
// Implementations include EtcdRegistry (production) and any
// test double that satisfies this interface.
type Registry interface {
	// Register adds a service instance to the registry with a TTL lease.
	// The instance is removed automatically if KeepAlive stops (e.g. the
	// advertising process crashed).
	Register(serviceName string, instance ServiceInstance, ttl int64) error

	// Deregister removes a service instance. Call during graceful
	// shutdown, before the advertising process stops accepting requests.
	Deregister(serviceName string, addr string) error

	// Discover returns every instance currently registered for serviceName.
	Discover(serviceName string) ([]ServiceInstance, error)

	// Watch returns a channel that emits the updated instance list
	// whenever serviceName's registrations change.
	Watch(serviceName string) <-chan []ServiceInstance
}

// connector is the subset of rpcclient.Client that ConnectAll needs. Kept
// as a local interface (rather than importing zmrpc/rpcclient's concrete
// type) purely to keep this package's test doubles simple; rpcclient.Client
// satisfies it without any changes on that side.
type connector interface {
	Connect(urls ...string) error
}

// Selector narrows a discovered instance list before ConnectAll connects to
// it. zmrpc/loadbalance.Select builds one of these from a Balancer, so a
// caller wanting a ranked or filtered connect set (instead of "connect to
// everything") passes loadbalance.Select(balancer, n) here. Selector is a
// plain function type, not a loadbalance import, so discovery never depends
// on loadbalance — loadbalance already depends on this package for
// ServiceInstance, and a reverse edge would only create an import cycle for
// no behavioral benefit.
type Selector func(instances []ServiceInstance) ([]ServiceInstance, error)

// ConnectAll connects client to every instance's address, translated to a
// tcp:// URL, after running instances through selector if one is given.
// With no selector this is the default connect policy: connect to
// everything discovery reports and let DEALER fair-queue across all of
// them.
func ConnectAll(client connector, instances []ServiceInstance, selector ...Selector) error {
	if len(selector) > 0 && selector[0] != nil {
		filtered, err := selector[0](instances)
		if err != nil {
			return err
		}
		instances = filtered
	}

	urls := make([]string, len(instances))
	for i, inst := range instances {
		urls[i] = "tcp://" + inst.Addr
	}
	if len(urls) == 0 {
		return nil
	}
	return client.Connect(urls...)
}
