package routing

import (
	"errors"
	"fmt"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/lifecycle"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

// ErrTooFewStops means the slot had fewer than two routable stops, so
// there is nothing to order.
var ErrTooFewStops = errors.New("routing: fewer than two routable stops")

// PartialApplyError reports an apply that died partway. Stops before
// Applied carry the new order, the rest keep whatever they had.
type PartialApplyError struct {
	Applied int
	Total   int
	Err     error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("routing: applied %d of %d stops: %v", e.Applied, e.Total, e.Err)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}

// Proposal is an ordering suggestion. Nothing is written until Apply.
type Proposal struct {
	OrderedJobs    []*store.Job
	Skipped        []*store.Job
	TotalDistanceM int
	TotalDurationS int
	Changed        bool
}

// Optimizer asks a Provider for the best visiting order of one slot's
// jobs and writes it back on demand.
type Optimizer struct {
	db       *store.DB
	provider Provider
	origin   Waypoint
}

func NewOptimizer(db *store.DB, provider Provider, origin Waypoint) *Optimizer {
	return &Optimizer{db: db, provider: provider, origin: origin}
}

// Optimize builds a proposal for the given slot jobs. Jobs without an
// address and jobs already closed are left out of the plan and reported
// in Skipped. Fewer than two routable stops returns ErrTooFewStops.
func (o *Optimizer) Optimize(jobs []*store.Job) (*Proposal, error) {
	var candidates []*store.Job
	var skipped []*store.Job
	for _, j := range jobs {
		if j.Address == "" || lifecycle.Terminal(j.Status) {
			skipped = append(skipped, j)
			continue
		}
		candidates = append(candidates, j)
	}
	if len(candidates) < 2 {
		return nil, ErrTooFewStops
	}

	stops := make([]Waypoint, len(candidates))
	for i, j := range candidates {
		stops[i] = Waypoint{Label: j.PublicRef, Address: j.Address}
	}
	plan, err := o.provider.OptimizeWaypoints(o.origin, stops)
	if err != nil {
		return nil, fmt.Errorf("routing: optimize: %w", err)
	}
	if len(plan.Order) != len(candidates) {
		return nil, fmt.Errorf("routing: planner returned %d positions for %d stops", len(plan.Order), len(candidates))
	}

	ordered := make([]*store.Job, len(candidates))
	seen := make(map[int]bool, len(plan.Order))
	for pos, idx := range plan.Order {
		if idx < 0 || idx >= len(candidates) || seen[idx] {
			return nil, fmt.Errorf("routing: planner order is not a permutation: %v", plan.Order)
		}
		seen[idx] = true
		ordered[pos] = candidates[idx]
	}

	return &Proposal{
		OrderedJobs:    ordered,
		Skipped:        skipped,
		TotalDistanceM: plan.TotalDistanceM,
		TotalDurationS: plan.TotalDurationS,
		Changed:        changed(ordered),
	}, nil
}

// Apply writes the proposal's sequence as route_order 1..n. Writes run
// stop by stop, a failure stops there and reports how far it got via
// *PartialApplyError. A proposal that matches the stored order is a
// no-op.
func (o *Optimizer) Apply(p *Proposal) error {
	if !p.Changed {
		return nil
	}
	for i, j := range p.OrderedJobs {
		if err := o.db.SetJobRouteOrder(j.ID, i+1); err != nil {
			return &PartialApplyError{Applied: i, Total: len(p.OrderedJobs), Err: err}
		}
	}
	return nil
}

// changed reports whether the proposal differs from the route order the
// jobs already carry. Any stop without a stored order counts as a
// change.
func changed(ordered []*store.Job) bool {
	for i, j := range ordered {
		if j.RouteOrder == nil || *j.RouteOrder != i+1 {
			return true
		}
	}
	return false
}
