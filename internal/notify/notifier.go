// Package notify delivers transient user-facing notifications. Each
// notification is auto-dismissed after a fixed interval.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notification struct {
	ID      int64
	Message string
	Kind    Kind
}

// Notifier keeps the currently visible notifications and tells listeners
// whenever the visible set changes, including when a notification expires.
type Notifier struct {
	mu        sync.Mutex
	ttl       time.Duration
	nextID    int64
	active    []Notification
	listeners []func([]Notification)

	// afterFunc is swapped out in tests.
	afterFunc func(time.Duration, func()) *time.Timer
}

const DefaultDismissAfter = 3 * time.Second

func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultDismissAfter
	}
	return &Notifier{
		ttl:       ttl,
		afterFunc: time.AfterFunc,
	}
}

// OnChange registers a listener for visible-set changes. The slice passed
// to the listener is a copy.
func (n *Notifier) OnChange(fn func([]Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

func (n *Notifier) Success(message string) {
	n.publish(Notification{Message: message, Kind: KindSuccess})
}

func (n *Notifier) Error(message string) {
	n.publish(Notification{Message: message, Kind: KindError})
}

// Active returns a copy of the currently visible notifications.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot()
}

func (n *Notifier) publish(notification Notification) {
	n.mu.Lock()
	n.nextID++
	notification.ID = n.nextID
	n.active = append(n.active, notification)
	listeners, visible := n.listenersCopy(), n.snapshot()
	n.mu.Unlock()

	n.afterFunc(n.ttl, func() { n.dismiss(notification.ID) })
	fire(listeners, visible)
}

func (n *Notifier) dismiss(id int64) {
	n.mu.Lock()
	kept := n.active[:0]
	for _, item := range n.active {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	n.active = kept
	listeners, visible := n.listenersCopy(), n.snapshot()
	n.mu.Unlock()

	fire(listeners, visible)
}

func (n *Notifier) snapshot() []Notification {
	visible := make([]Notification, len(n.active))
	copy(visible, n.active)
	return visible
}

func (n *Notifier) listenersCopy() []func([]Notification) {
	listeners := make([]func([]Notification), len(n.listeners))
	copy(listeners, n.listeners)
	return listeners
}

func fire(listeners []func([]Notification), visible []Notification) {
	for _, fn := range listeners {
		fn(visible)
	}
}
