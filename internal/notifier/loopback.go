package notifier

import (
	"context"
	"sync"
)

// LoopbackNotifier is the single-process ChangeNotifier: callbacks run
// synchronously in the publisher's goroutine. Used in standalone mode and
// in tests, where all observers live in one process.
type LoopbackNotifier struct {
	mu         sync.RWMutex
	nextID     int
	onSlots    map[int]func()
	onBookings map[int]func()
}

func NewLoopbackNotifier() *LoopbackNotifier {
	return &LoopbackNotifier{
		onSlots:    make(map[int]func()),
		onBookings: make(map[int]func()),
	}
}

func (n *LoopbackNotifier) SlotsChanged(ctx context.Context) error {
	for _, cb := range n.snapshot(n.onSlots) {
		cb()
	}
	return nil
}

func (n *LoopbackNotifier) BookingsChanged(ctx context.Context) error {
	for _, cb := range n.snapshot(n.onBookings) {
		cb()
	}
	return nil
}

func (n *LoopbackNotifier) Subscribe(ctx context.Context, onSlotsChanged, onBookingsChanged func()) (func(), error) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.onSlots[id] = onSlotsChanged
	n.onBookings[id] = onBookingsChanged
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.onSlots, id)
		delete(n.onBookings, id)
		n.mu.Unlock()
	}, nil
}

func (n *LoopbackNotifier) snapshot(m map[int]func()) []func() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	callbacks := make([]func(), 0, len(m))
	for _, cb := range m {
		callbacks = append(callbacks, cb)
	}
	return callbacks
}
