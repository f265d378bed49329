// Package strategy defines the Strategy contract the simulator drives, and a
// Registry for looking up implementations by name. Strategies own their state
// as instance fields, constructed once per run; the engine supplies only the
// current snapshot.
package strategy

import (
	"sort"
	"time"

	"tradebench/internal/domain"
)

// Snapshot is the market view handed to a strategy once per timestamp: every
// tick observed at that timestamp keyed by pair string, plus the active fee
// rate so strategies can account for costs.
type Snapshot struct {
	Timestamp time.Time
	Fee       float64
	Ticks     map[string]domain.Tick
}

// Strategy is the decision callback invoked by the simulator. OnData returns
// zero or more orders to apply in the returned sequence; a nil slice means no
// action. OnData must not retain or mutate the snapshot or balances.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// OnData is called once per tick group with the current market snapshot
	// and a copy of the current balances.
	OnData(snap Snapshot, balances domain.Balances) ([]domain.Order, error)
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
