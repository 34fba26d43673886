package store

import (
	"sync"

	"github.com/jpalmerr/buildbar"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Statuses are keyed by monitor URL. Subscribers receive transitions via
// buffered channels; sends are non-blocking, so a full subscriber drops the
// transition rather than blocking the update path.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[string]buildbar.BuildStatus
	order    []string

	subMu       sync.RWMutex
	subscribers map[chan Transition]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses:    make(map[string]buildbar.BuildStatus),
		subscribers: make(map[chan Transition]struct{}),
	}
}

// Update records status under its monitor URL.
//
// A transition is reported when the monitor is new or its displayed status
// differs from the previous one. A new build with the same status, e.g.
// complete followed by complete, is not a transition.
func (m *MemoryStore) Update(status buildbar.BuildStatus) (Transition, bool) {
	key := status.Monitor.URL()

	m.mu.Lock()
	prev, seen := m.statuses[key]
	if !seen {
		m.order = append(m.order, key)
	}
	m.statuses[key] = status
	m.mu.Unlock()

	if seen && prev.Status == status.Status {
		return Transition{}, false
	}

	t := Transition{
		Key:     key,
		Name:    status.Name,
		To:      status.Status,
		Started: status.Started,
		First:   !seen,
	}
	if seen {
		t.From = prev.Status
	}

	m.notifySubscribers(t)
	return t, true
}

// GetAll returns a snapshot of the latest statuses in first-seen order.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) GetAll() []buildbar.BuildStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]buildbar.BuildStatus, 0, len(m.order))
	for _, key := range m.order {
		results = append(results, m.statuses[key])
	}
	return results
}

// Subscribe creates a new subscription and returns a channel for receiving
// transitions.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Transition {
	ch := make(chan Transition, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Transition) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends t to all active subscribers without blocking.
func (m *MemoryStore) notifySubscribers(t Transition) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- t:
		default:
			// subscriber is slow, drop the transition
		}
	}
}
