package strategy

import (
	"sort"
	"time"

	"tradebench/internal/domain"
)

// Compile-time interface check.
var _ Strategy = (*Replay)(nil)

// TimedOrder is an order pinned to the timestamp at which it was originally
// emitted.
type TimedOrder struct {
	Timestamp time.Time
	Order     domain.Order
}

// Replay re-emits a recorded trade log at the matching timestamps. Running a
// data set through Replay with the trades journaled by a previous run
// reproduces that run, which is how recorded submissions are scored.
type Replay struct {
	byTime map[int64][]domain.Order
}

// NewReplay builds a Replay strategy from recorded orders. Orders sharing a
// timestamp keep their relative sequence.
func NewReplay(orders []TimedOrder) *Replay {
	sorted := make([]TimedOrder, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	byTime := make(map[int64][]domain.Order)
	for _, o := range sorted {
		key := o.Timestamp.UnixMilli()
		byTime[key] = append(byTime[key], o.Order)
	}
	return &Replay{byTime: byTime}
}

// Name returns "replay".
func (r *Replay) Name() string { return "replay" }

// OnData returns the recorded orders for the snapshot's timestamp, if any.
func (r *Replay) OnData(snap Snapshot, _ domain.Balances) ([]domain.Order, error) {
	return r.byTime[snap.Timestamp.UnixMilli()], nil
}
