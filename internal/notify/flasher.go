// Package notify implements the single-slot acknowledgment shown after list actions.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = time.Second

// Action labels the acknowledged operation.
type Action string

const (
	ActionCopied             Action = "Copied!"
	ActionSaved              Action = "Saved!"
	ActionDeleted            Action = "Deleted!"
	ActionRemovedFromHistory Action = "Removed from history!"
)

// Notification is the value held by the slot while it is showing.
type Notification struct {
	Action   Action `json:"action"`
	Index    int    `json:"index"`
	HasIndex bool   `json:"has_index"`
}

// At returns a notification bound to a list position.
func At(action Action, index int) Notification {
	return Notification{Action: action, Index: index, HasIndex: true}
}

// Ticket identifies one Flash call; pass Seq back to Expire when its timer fires.
type Ticket struct {
	Seq          uint64
	Notification Notification
	Until        time.Time
}

// State is idle or showing.
type State int

const (
	StateIdle State = iota
	StateShowing
)

func (s State) String() string {
	if s == StateShowing {
		return "showing"
	}
	return "idle"
}

// Flasher holds at most one notification. A newer Flash replaces the current one and
// restarts its lifetime; timers belonging to replaced notifications are ignored.
type Flasher struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seq     uint64
	current *Ticket
}

// New returns a flasher whose notifications live for ttl (DefaultTTL when ttl <= 0).
func New(ttl time.Duration) *Flasher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Flasher{ttl: ttl, now: time.Now}
}

// WithClock swaps the time source, for simulated time in tests.
func (f *Flasher) WithClock(now func() time.Time) *Flasher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
	return f
}

// TTL reports the notification lifetime.
func (f *Flasher) TTL() time.Duration {
	return f.ttl
}

// Flash shows n, replacing whatever was showing.
func (f *Flasher) Flash(n Notification) Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := Ticket{Seq: f.seq, Notification: n, Until: f.now().Add(f.ttl)}
	f.current = &t
	return t
}

// Current returns the showing notification, if any. A notification whose lifetime has
// elapsed reads as idle even before its timer fires.
func (f *Flasher) Current() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Notification{}, false
	}
	if !f.now().Before(f.current.Until) {
		f.current = nil
		return Notification{}, false
	}
	return f.current.Notification, true
}

// State reports idle or showing.
func (f *Flasher) State() State {
	if _, ok := f.Current(); ok {
		return StateShowing
	}
	return StateIdle
}

// Expire clears the slot if seq still identifies the showing notification.
func (f *Flasher) Expire(seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil || f.current.Seq != seq {
		return false
	}
	f.current = nil
	return true
}
