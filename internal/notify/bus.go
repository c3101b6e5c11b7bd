// Package notify implements the in-process change-notification bus.
// The synchronized data service emits exactly one event per successful
// write; UI layers subscribe for reactive refresh.
package notify

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Entity tags an event with the record it concerns.
type Entity string

const (
	EntityDNA      Entity = "dna"
	EntityBriefing Entity = "briefing"
	EntityAssets   Entity = "assets"
	EntityPolling  Entity = "polling"
	EntityIntel    Entity = "intel"
	EntityTasks    Entity = "tasks"
	EntitySocial   Entity = "social"
)

// Event is one change notification.
type Event struct {
	Entity Entity
	// Detail carries optional context, e.g. the label of a completed task.
	Detail string
	// Seq is a monotonically increasing sequence number for ordering.
	Seq uint64
	At  time.Time
}

// Bus dispatches events to subscribers. Emit never blocks: a subscriber
// that falls behind its channel buffer misses events rather than stalling
// writers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	seq         atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel receiving future events. The channel is
// buffered so emitters are never blocked.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	if ch == nil {
		return
	}
	target := reflect.ValueOf(ch).Pointer()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if reflect.ValueOf(sub).Pointer() == target {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Emit dispatches an event for entity to every subscriber.
// Safe to call from any goroutine.
func (b *Bus) Emit(entity Entity, detail string) {
	ev := Event{
		Entity: entity,
		Detail: detail,
		Seq:    b.seq.Add(1),
		At:     time.Now(),
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- ev:
		default:
			// Subscriber buffer full; drop rather than block the writer.
		}
	}
}

// Close closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}
