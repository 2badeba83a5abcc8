// Package feed keeps the bounded, newest-first activity and notification lists.
package feed

import (
	"sync"
	"time"

	"github.com/and161185/neverland-admin/internal/ids"
	"github.com/and161185/neverland-admin/internal/model"
)

// Default capacities.
const (
	ActivityCap     = 100
	NotificationCap = 50
)

// Bounded is a newest-first list truncated to a fixed capacity.
// It is not safe for concurrent use on its own.
type Bounded[T any] struct {
	cap   int
	items []T
}

// NewBounded returns an empty list holding at most capacity entries.
func NewBounded[T any](capacity int) *Bounded[T] {
	return &Bounded[T]{cap: capacity, items: make([]T, 0, capacity)}
}

// Push prepends v and evicts the oldest entries beyond capacity.
func (b *Bounded[T]) Push(v T) {
	b.items = append(b.items, v)
	copy(b.items[1:], b.items[:len(b.items)-1])
	b.items[0] = v
	if len(b.items) > b.cap {
		clear(b.items[b.cap:])
		b.items = b.items[:b.cap]
	}
}

// Len returns the number of entries.
func (b *Bounded[T]) Len() int { return len(b.items) }

// Snapshot returns a copy, newest first.
func (b *Bounded[T]) Snapshot() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Update applies fn to every entry in place.
func (b *Bounded[T]) Update(fn func(*T)) {
	for i := range b.items {
		fn(&b.items[i])
	}
}

// Reset drops all entries.
func (b *Bounded[T]) Reset() {
	clear(b.items)
	b.items = b.items[:0]
}

// Activity is the administrative activity log.
type Activity struct {
	mu   sync.Mutex
	ids  *ids.Generator
	now  func() time.Time
	list *Bounded[model.ActivityEvent]
}

// NewActivity returns an empty activity log capped at ActivityCap.
func NewActivity(gen *ids.Generator, now func() time.Time) *Activity {
	if now == nil {
		now = time.Now
	}
	return &Activity{ids: gen, now: now, list: NewBounded[model.ActivityEvent](ActivityCap)}
}

// Record appends an event of the given kind.
func (a *Activity) Record(kind, message string) model.ActivityEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	ev := model.ActivityEvent{ID: a.ids.Next(), Kind: kind, Message: message, Timestamp: a.now()}
	a.list.Push(ev)
	return ev
}

// Items returns the events, newest first.
func (a *Activity) Items() []model.ActivityEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.list.Snapshot()
}

// Notifications is the operator notification list.
type Notifications struct {
	mu   sync.Mutex
	ids  *ids.Generator
	now  func() time.Time
	list *Bounded[model.Notification]
}

// NewNotifications returns an empty list capped at NotificationCap.
func NewNotifications(gen *ids.Generator, now func() time.Time) *Notifications {
	if now == nil {
		now = time.Now
	}
	return &Notifications{ids: gen, now: now, list: NewBounded[model.Notification](NotificationCap)}
}

// Push adds an unread notification.
func (n *Notifications) Push(message string) model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	nt := model.Notification{ID: n.ids.Next(), Message: message, Timestamp: n.now()}
	n.list.Push(nt)
	return nt
}

// MarkRead flags the notification with the given id as read.
// Unknown ids and already-read entries are left as they are.
func (n *Notifications) MarkRead(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list.Update(func(nt *model.Notification) {
		if nt.ID == id {
			nt.Read = true
		}
	})
}

// Clear removes every notification.
func (n *Notifications) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list.Reset()
}

// Items returns the notifications, newest first.
func (n *Notifications) Items() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.list.Snapshot()
}

// Unread counts notifications not yet marked read.
func (n *Notifications) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, nt := range n.list.items {
		if !nt.Read {
			c++
		}
	}
	return c
}
