package discovery

import "testing"

type fakeConnector struct {
	gotURLs []string
	err     error
}

func (f *fakeConnector) Connect(urls ...string) error {
	f.gotURLs = append(f.gotURLs, urls...)
	return f.err
}

func TestConnectAllTranslatesAddrsToTCPURLs(t *testing.T) {
	fc := &fakeConnector{}
	instances := []ServiceInstance{
		{Addr: "127.0.0.1:8001"},
		{Addr: "127.0.0.1:8002"},
	}

	if err := ConnectAll(fc, instances); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"tcp://127.0.0.1:8001", "tcp://127.0.0.1:8002"}
	if len(fc.gotURLs) != len(want) {
		t.Fatalf("expected %d urls, got %d: %v", len(want), len(fc.gotURLs), fc.gotURLs)
	}
	for i, u := range want {
		if fc.gotURLs[i] != u {
			t.Fatalf("url %d: expected %s, got %s", i, u, fc.gotURLs[i])
		}
	}
}

func TestConnectAllNoInstancesIsNoop(t *testing.T) {
	fc := &fakeConnector{}
	if err := ConnectAll(fc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.gotURLs) != 0 {
		t.Fatalf("expected no Connect call, got %v", fc.gotURLs)
	}
}
