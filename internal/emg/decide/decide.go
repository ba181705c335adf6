// Package decide converts a noisy stream of per-window gesture labels into
// a stable, debounced gesture signal. A label must dominate the recent
// history by majority vote before it is accepted as the active gesture,
// which filters frame-level classifier noise into a clean symbolic stream.
package decide

import "fmt"

// Gesture is a symbolic classifier label, e.g. "Fist" or "Rest".
type Gesture string

// ChangeFunc is invoked with the new label each time the active gesture
// changes. It typically hands the label to a transport dispatcher; its
// error is surfaced to the Observe caller but never rolls back smoother
// state.
type ChangeFunc func(Gesture) error

// Smoother holds a fixed-capacity history of observed labels and the
// current active gesture. Votes are cast only once the history is full, so
// a sparse early history cannot fire spurious events; a tie among the most
// frequent labels is a documented no-op that preserves the previous active
// gesture.
type Smoother struct {
	history   []Gesture
	cursor    int
	fill      int
	active    Gesture
	hasActive bool
	onChange  ChangeFunc
}

// NewSmoother builds a Smoother with the given history capacity. onChange
// may be nil when the caller polls Active instead of reacting to events.
func NewSmoother(capacity int, onChange ChangeFunc) (*Smoother, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("decide: history capacity must be >= 1, got %d", capacity)
	}
	return &Smoother{
		history:  make([]Gesture, capacity),
		onChange: onChange,
	}, nil
}

// Observe appends a label to the history (evicting the oldest at capacity)
// and recomputes the majority vote. When a unique most-frequent label
// exists and differs from the active gesture, the active gesture is
// updated and the change callback fires; its error is returned. No vote is
// cast (and so no event can fire) before the history has received capacity
// observations; the earliest possible event is on the capacity-th call.
// Observe performs no I/O itself and holds no locks shared with the
// capture path.
func (s *Smoother) Observe(label Gesture) (changed bool, err error) {
	s.history[s.cursor] = label
	s.cursor = (s.cursor + 1) % len(s.history)
	if s.fill < len(s.history) {
		s.fill++
	}

	winner, ok := s.vote()
	if !ok {
		return false, nil
	}
	if s.hasActive && winner == s.active {
		return false, nil
	}
	s.active = winner
	s.hasActive = true
	if s.onChange != nil {
		err = s.onChange(winner)
	}
	return true, err
}

// vote returns the unique most frequent label over a full history. It
// reports false before the history fills and on a tie; candidate order is
// first appearance in the history, which makes the winner deterministic.
func (s *Smoother) vote() (Gesture, bool) {
	if s.fill < len(s.history) {
		return "", false
	}

	counts := make(map[Gesture]int, s.fill)
	order := make([]Gesture, 0, s.fill)
	for _, g := range s.History() {
		if _, seen := counts[g]; !seen {
			order = append(order, g)
		}
		counts[g]++
	}

	var winner Gesture
	best := 0
	tied := false
	for _, g := range order {
		switch {
		case counts[g] > best:
			winner, best, tied = g, counts[g], false
		case counts[g] == best:
			tied = true
		}
	}
	if tied {
		return "", false
	}
	return winner, true
}

// Active returns the current active gesture; ok is false until the first
// accepted vote.
func (s *Smoother) Active() (Gesture, bool) {
	return s.active, s.hasActive
}

// History returns the buffered labels in chronological order.
func (s *Smoother) History() []Gesture {
	out := make([]Gesture, 0, s.fill)
	start := 0
	if s.fill == len(s.history) {
		start = s.cursor
	}
	for i := 0; i < s.fill; i++ {
		out = append(out, s.history[(start+i)%len(s.history)])
	}
	return out
}

// Capacity returns the fixed history capacity.
func (s *Smoother) Capacity() int { return len(s.history) }
