// Package sequence provides the monotonic id source behind trade ids.
package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic ids. Deterministic: restarting
// from the last issued value reproduces the same id stream.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer that will issue start+1 first.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next id.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued id.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
