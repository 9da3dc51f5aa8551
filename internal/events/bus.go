// Package events carries fire-and-forget domain notifications between
// otherwise decoupled subsystems: the checklist store announces item
// toggles so the completion-history recorder can snapshot today, and
// the reset scheduler announces tier resets so the UI can reload.
package events

import (
	"sync"

	"github.com/nhle/lifeos/internal/model"
)

// Event is a marker interface for bus payloads.
type Event interface{ isEvent() }

// ItemToggled is published by the checklist store whenever an item's
// completed flag flips.
type ItemToggled struct {
	ID        string
	Frequency model.Frequency
	Completed bool
}

// TierReset is published after a checklist tier reset runs.
type TierReset struct {
	Frequency model.Frequency
}

func (ItemToggled) isEvent() {}
func (TierReset) isEvent()   {}

// Bus is a buffered fan-out channel. Delivery is best-effort: a slow
// subscriber drops events rather than blocking the publisher, matching
// the last-wins semantics of the UI signals it carries.
type Bus struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers ev to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drop if the subscriber is full to avoid blocking the publisher
		}
	}
}

// Close closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
