package admin

import (
	"fmt"
	"sync"
)

// Registry maps stable route identifiers to registered descriptors. It is
// owned by the service instance and passed to handlers explicitly; there is
// no package-level registry.
//
// Registration normally happens single-threaded at startup; the lock exists
// so late registration stays safe against the many concurrent readers of an
// in-flight request load.
type Registry struct {
	mu      sync.RWMutex
	byRoute map[string]*Descriptor
	byModel map[string][]*Descriptor
	order   []string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byRoute: make(map[string]*Descriptor),
		byModel: make(map[string][]*Descriptor),
	}
}

// Register stores the descriptor and assigns its route id: the descriptor
// name, with an incrementing numeric suffix appended until unique
// ("UserAdmin", "UserAdmin1", ...). The id is assigned once and never
// reused for a different descriptor within the process lifetime.
func (r *Registry) Register(d *Descriptor) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	routeID := d.Name
	for counter := 1; ; counter++ {
		if _, taken := r.byRoute[routeID]; !taken {
			break
		}
		routeID = fmt.Sprintf("%s%d", d.Name, counter)
	}
	d.routeID = routeID

	r.byRoute[routeID] = d
	r.byModel[d.Model] = append(r.byModel[d.Model], d)
	r.order = append(r.order, routeID)
	return routeID
}

// Resolve returns the descriptor registered under routeID.
func (r *Registry) Resolve(routeID string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byRoute[routeID]
	return d, ok
}

// ForModel returns every descriptor registered for the given model name.
func (r *Registry) ForModel(model string) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.byModel[model]))
	copy(out, r.byModel[model])
	return out
}

// All returns descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.order))
	for _, routeID := range r.order {
		out = append(out, r.byRoute[routeID])
	}
	return out
}
