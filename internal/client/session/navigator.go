package session

import "sync"

// Navigator records the current location. Push never blocks; whoever
// renders picks the new location up from Current or Changed.
type Navigator struct {
	mu      sync.Mutex
	current string
	changed chan struct{}
}

func NewNavigator(start string) *Navigator {
	return &Navigator{current: start, changed: make(chan struct{}, 1)}
}

func (n *Navigator) Push(location string) {
	n.mu.Lock()
	if n.current == location {
		n.mu.Unlock()
		return
	}
	n.current = location
	n.mu.Unlock()

	select {
	case n.changed <- struct{}{}:
	default:
	}
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Changed is signalled, coalesced, after every Push that moved.
func (n *Navigator) Changed() <-chan struct{} {
	return n.changed
}
