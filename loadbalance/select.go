package loadbalance

import "zmrpc/discovery"

// Select adapts a Balancer into a zmrpc/discovery.Selector: a function
// discovery.ConnectAll runs over a discovered instance list before
// connecting. It repeatedly calls b.Pick to narrow instances down to at
// most n distinct entries, deduplicating by address. It stops after
// 10*len(instances) picks, so a balancer that keeps landing on the same
// instances (a WeightedRandomBalancer whose other weights are zero, for
// example) can't spin forever; it then returns the fewer distinct
// instances it found.
//
// n <= 0, or n >= len(instances), is treated as "take everything" and
// skips balancing entirely — there is nothing to narrow.
func Select(b Balancer, n int) discovery.Selector {
	return func(instances []discovery.ServiceInstance) ([]discovery.ServiceInstance, error) {
		if n <= 0 || n >= len(instances) {
			return instances, nil
		}

		seen := make(map[string]bool, n)
		picked := make([]discovery.ServiceInstance, 0, n)
		maxPicks := 10 * len(instances)
		for tries := 0; tries < maxPicks && len(picked) < n && len(seen) < len(instances); tries++ {
			inst, err := b.Pick(instances)
			if err != nil {
				return nil, err
			}
			if seen[inst.Addr] {
				continue
			}
			seen[inst.Addr] = true
			picked = append(picked, *inst)
		}
		return picked, nil
	}
}
