package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MailboxSize bounds the per-subscription queue of undelivered
// notifications. When the mailbox is full the oldest pending
// notification is dropped; producers never block.
const MailboxSize = 64

// Event is an application notification fanned out to every live
// subscriber of its topic group.
type Event struct {
	Topic      string    `json:"topic"`
	Kind       string    `json:"kind"`
	SubjectKey string    `json:"subjectKey"`
	ActorKey   string    `json:"actorKey"`
	At         time.Time `json:"at"`
}

// FilterFunc lets a subscription rewrite or suppress an event before
// delivery. Returning ok=false drops the event for this subscriber
// only (used to avoid echoing a client's own action back to itself).
type FilterFunc func(Event) (Event, bool)

type subscriber struct {
	id     uuid.UUID
	groups map[string]struct{}
	filter FilterFunc

	// mu serializes enqueue against close: a broadcast in flight while
	// the subscription is torn down must never send into a closed
	// mailbox.
	mu      sync.Mutex
	mailbox chan Event
	closed  bool
}

// Hub is the in-process topic registry: group name to live subscriber
// set. Registration and fan-out hold the lock only to snapshot the
// group; delivery is non-blocking per subscriber.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a subscription under the given groups and returns
// its mailbox. The subscription is deregistered automatically when ctx
// is canceled; the mailbox channel is closed at that point.
func (h *Hub) Subscribe(ctx context.Context, groups []string, filter FilterFunc) <-chan Event {
	sub := &subscriber{
		id:      uuid.New(),
		groups:  make(map[string]struct{}, len(groups)),
		mailbox: make(chan Event, MailboxSize),
		filter:  filter,
	}

	h.mu.Lock()
	for _, g := range groups {
		sub.groups[g] = struct{}{}
		if h.groups[g] == nil {
			h.groups[g] = make(map[*subscriber]struct{})
		}
		h.groups[g][sub] = struct{}{}
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(sub)
	}()

	return sub.mailbox
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	for g := range sub.groups {
		if set, ok := h.groups[g]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.groups, g)
			}
		}
	}
	h.mu.Unlock()

	// Broadcast may have snapshotted this subscriber before it left the
	// group; close only once no enqueue is mid-flight.
	sub.mu.Lock()
	sub.closed = true
	close(sub.mailbox)
	sub.mu.Unlock()
}

// Broadcast delivers ev to every subscriber of its topic group. The
// call never blocks on a slow subscriber: a full mailbox drops the
// oldest undelivered event to make room.
func (h *Hub) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	set := h.groups[ev.Topic]
	subs := make([]*subscriber, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		out := ev
		if sub.filter != nil {
			var ok bool
			if out, ok = sub.filter(ev); !ok {
				continue
			}
		}
		sub.enqueue(out)
	}
}

func (sub *subscriber) enqueue(ev Event) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	select {
	case sub.mailbox <- ev:
		return
	default:
	}
	// Full: drop the oldest pending notification and retry once. If a
	// concurrent reader raced us, the second send may still fail; the
	// event is lost, which the bounded-lossy contract allows.
	select {
	case <-sub.mailbox:
	default:
	}
	select {
	case sub.mailbox <- ev:
	default:
	}
}

// SubscriberCount reports live subscriptions in a group.
func (h *Hub) SubscriberCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
