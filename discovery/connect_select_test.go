package discovery_test

import (
	"testing"

	"zmrpc/discovery"
	"zmrpc/loadbalance"
)

type fakeConnector struct {
	gotURLs []string
}

func (f *fakeConnector) Connect(urls ...string) error {
	f.gotURLs = append(f.gotURLs, urls...)
	return nil
}

// TestConnectAllAppliesLoadbalanceSelector exercises the real wiring
// between discovery and loadbalance: a Balancer narrows a discovered
// instance list down to n entries before ConnectAll dials them.
func TestConnectAllAppliesLoadbalanceSelector(t *testing.T) {
	instances := []discovery.ServiceInstance{
		{Addr: "10.0.0.1:9000"},
		{Addr: "10.0.0.2:9000"},
		{Addr: "10.0.0.3:9000"},
	}

	fc := &fakeConnector{}
	selector := loadbalance.Select(&loadbalance.RoundRobinBalancer{}, 2)

	if err := discovery.ConnectAll(fc, instances, selector); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fc.gotURLs) != 2 {
		t.Fatalf("expected 2 urls after selecting down to 2 instances, got %d: %v", len(fc.gotURLs), fc.gotURLs)
	}
	for _, u := range fc.gotURLs {
		if u[:6] != "tcp://" {
			t.Fatalf("expected a tcp:// url, got %s", u)
		}
	}
}

func TestConnectAllWithNoSelectorConnectsEverything(t *testing.T) {
	instances := []discovery.ServiceInstance{
		{Addr: "10.0.0.1:9000"},
		{Addr: "10.0.0.2:9000"},
	}

	fc := &fakeConnector{}
	if err := discovery.ConnectAll(fc, instances); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.gotURLs) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(fc.gotURLs), fc.gotURLs)
	}
}
