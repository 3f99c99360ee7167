// Package history tracks enforcement load along a trajectory of subset
// states. The cost of a transition is the total load change across all
// interfaces, and the accumulated action over a history is monotone: each
// step adds a nonnegative amount.
package history

import (
	"math"

	"goadmit/domain/system"
)

// TransitionCost is the total enforcement load change between two states:
// the sum over interfaces of |E_i(to) − E_i(from)|. It is zero iff the two
// states carry identical load at every interface, and symmetric in its
// arguments.
func TransitionCost(sys *system.System, from, to system.Subset) (float64, error) {
	loadsFrom, err := sys.EvaluateAll(from)
	if err != nil {
		return 0, err
	}
	loadsTo, err := sys.EvaluateAll(to)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for i := range loadsFrom {
		total += math.Abs(loadsTo[i] - loadsFrom[i])
	}
	return total, nil
}

// History is a trajectory of subset states over one system, carrying the
// accumulated action: the running sum of transition costs. The action never
// decreases, which makes it usable as an intrinsic clock over the
// trajectory.
type History struct {
	sys    *system.System
	states []system.Subset
	action float64
}

// New starts a history at the given initial state.
func New(sys *system.System, initial system.Subset) (*History, error) {
	// Validate the initial state up front so Append never sees a bad base.
	if _, err := sys.EvaluateAll(initial); err != nil {
		return nil, err
	}
	return &History{sys: sys, states: []system.Subset{initial}}, nil
}

// Append advances the history to the next state and returns the cost of
// the step. On error the history is unchanged.
func (h *History) Append(next system.Subset) (float64, error) {
	step, err := TransitionCost(h.sys, h.Current(), next)
	if err != nil {
		return 0, err
	}
	h.states = append(h.states, next)
	h.action += step
	return step, nil
}

// Current returns the latest state.
func (h *History) Current() system.Subset {
	return h.states[len(h.states)-1]
}

// Action returns the accumulated action over the trajectory so far.
func (h *History) Action() float64 {
	return h.action
}

// Steps returns the number of transitions taken.
func (h *History) Steps() int {
	return len(h.states) - 1
}

// States returns the full trajectory, initial state first.
func (h *History) States() []system.Subset {
	out := make([]system.Subset, len(h.states))
	copy(out, h.states)
	return out
}

// MinimumActionQuantum is the smallest strictly positive marginal cost
// across all interfaces: the least action any single-distinction transition
// can cost. Returns 0 when every marginal cost is zero.
func MinimumActionQuantum(sys *system.System) float64 {
	quantum := math.Inf(1)
	for _, itf := range sys.Interfaces() {
		table, err := sys.CostTable(itf.ID)
		if err != nil {
			continue
		}
		for i := 0; i < sys.Size(); i++ {
			if eps := table.Marginal(i); eps > 0 {
				quantum = math.Min(quantum, eps)
			}
		}
	}
	if math.IsInf(quantum, 1) {
		return 0
	}
	return quantum
}
