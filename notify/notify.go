// Package notify is the user-facing notification channel: fire-and-forget
// categorized messages with caller-supplied deduplication keys so repeated
// denials do not stack up duplicate toasts.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level
	Key     string // deduplication identifier; empty keys are never deduplicated
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// Hub fans notifications out to subscribers. Delivery is best-effort: a full
// subscriber channel drops the notification rather than blocking the caller.
type Hub struct {
	lock sync.Mutex
	subs map[int]chan Notification
	next int
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[int]chan Notification),
		log:  log,
	}
}

var _ Notifier = (*Hub)(nil)

func (h *Hub) Notify(n Notification) {
	h.lock.Lock()
	defer h.lock.Unlock()

	ev := h.log.Info()
	switch n.Level {
	case LevelWarning:
		ev = h.log.Warn()
	case LevelError:
		ev = h.log.Error()
	}
	ev.Str("key", n.Key).Msg(n.Message)

	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribe returns a notification channel and a cancel function that
// unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	h.lock.Lock()
	defer h.lock.Unlock()

	id := h.next
	h.next++
	ch := make(chan Notification, 16)
	h.subs[id] = ch

	return ch, func() {
		h.lock.Lock()
		defer h.lock.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// Deduper suppresses notifications repeating the same Key within the window.
type Deduper struct {
	next    Notifier
	window  time.Duration
	lock    sync.Mutex
	seen    map[string]time.Time
	nowTime func() time.Time
}

var _ Notifier = (*Deduper)(nil)

func NewDeduper(next Notifier, window time.Duration) *Deduper {
	return &Deduper{
		next:    next,
		window:  window,
		seen:    make(map[string]time.Time),
		nowTime: time.Now,
	}
}

// WithNowTime sets the clock (primarily for testing).
func (d *Deduper) WithNowTime(nowFunc func() time.Time) *Deduper {
	d.nowTime = nowFunc
	return d
}

func (d *Deduper) Notify(n Notification) {
	if n.Key == "" {
		d.next.Notify(n)
		return
	}

	d.lock.Lock()
	now := d.nowTime()
	last, ok := d.seen[n.Key]
	if ok && now.Sub(last) < d.window {
		d.lock.Unlock()
		return
	}
	d.seen[n.Key] = now
	d.lock.Unlock()

	d.next.Notify(n)
}

// Reset clears the dedup history, typically on sign-out.
func (d *Deduper) Reset() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.seen = make(map[string]time.Time)
}
