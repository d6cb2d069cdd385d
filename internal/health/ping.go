package health

import "context"

// HealthPinger is implemented by store adapters that can cheaply probe their
// backing database. A nil return means the dependency is reachable; the
// probe must respect ctx so a hung database cannot stall the checker loop.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
