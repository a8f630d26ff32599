package store

import "sync"

// Subscription is one live query handle. Delivery and cancellation contend
// on the same mutex, so once Cancel returns no further snapshot callback
// can fire, even if a change notification was already in flight.
//
// Cancel must not be called from inside the snapshot callback itself.
type Subscription struct {
	mu         sync.Mutex
	closed     bool
	delivered  bool
	lastV      uint64
	onSnapshot func([]Record)
	detach     func()
}

// deliver hands a snapshot to the consumer unless the subscription has been
// canceled or an equal/newer snapshot was already delivered. The version
// guard keeps the initial synchronous delivery from racing the fanout
// worker into an older-after-newer inversion.
func (s *Subscription) deliver(records []Record, v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.delivered && v <= s.lastV {
		return
	}
	s.delivered = true
	s.lastV = v
	s.onSnapshot(records)
}

// Cancel detaches the live query. It blocks until any in-flight delivery
// has finished, so the no-callback-after-cancel guarantee is absolute.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.detach != nil {
		s.detach()
	}
}
