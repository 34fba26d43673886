package store

import (
	"time"

	"github.com/jpalmerr/buildbar"
)

// Transition is a change in the status of one monitor between two
// collections.
type Transition struct {
	// Key identifies the monitor, normally its URL.
	Key string

	// Name is the repository name from the latest collection.
	Name string

	// From is the previous status. It is the zero Status when First is set.
	From buildbar.Status

	// To is the newly collected status.
	To buildbar.Status

	// Started is the start time of the build behind To.
	Started time.Time

	// First is set when the monitor had no previous status.
	First bool
}

// Store defines the interface for tracking statuses and subscribing to
// transitions.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update records status and reports the transition, if any. A monitor
	// seen for the first time always yields a transition with First set.
	// Subscribers are notified of every transition.
	Update(status buildbar.BuildStatus) (Transition, bool)

	// GetAll returns the latest status of every monitor, in the order the
	// monitors were first seen.
	GetAll() []buildbar.BuildStatus

	// Subscribe returns a channel that receives transitions.
	// The returned channel has a buffer; slow consumers may miss transitions.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Transition

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Transition)
}
