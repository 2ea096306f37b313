// Package captions keeps the session's generated history and the user's saved captions.
package captions

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one caption held by the store. ID stays stable for the life of the entry so
// callers can address it without relying on list positions.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store holds History (newest first) and Saved (insertion order, no duplicates).
type Store struct {
	mu           sync.Mutex
	history      []Entry
	saved        []Entry
	historyLimit int
	now          func() time.Time
	newID        func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithHistoryLimit caps History at n entries, evicting the oldest. Zero or less keeps it unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.historyLimit = n }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) entry(text string) Entry {
	return Entry{ID: s.newID(), Text: text, CreatedAt: s.now()}
}

// RecordGenerated prepends text to History unconditionally.
func (s *Store) RecordGenerated(text string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(text)
	s.history = append([]Entry{e}, s.history...)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
	return e
}

// Save appends text to Saved unless it is empty or already saved. The bool reports
// whether a new entry was added.
func (s *Store) Save(text string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		return Entry{}, false
	}
	for _, e := range s.saved {
		if e.Text == text {
			return e, false
		}
	}
	e := s.entry(text)
	s.saved = append(s.saved, e)
	return e, true
}

// IsSaved reports whether text is already in Saved.
func (s *Store) IsSaved(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.saved {
		if e.Text == text {
			return true
		}
	}
	return false
}

// DeleteSaved removes the saved entry at index. Out-of-range indices are ignored.
func (s *Store) DeleteSaved(index int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeAt(&s.saved, index)
}

// DeleteHistory removes the history entry at index. Out-of-range indices are ignored.
func (s *Store) DeleteHistory(index int) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeAt(&s.history, index)
}

// DeleteSavedByID removes the saved entry with id, returning its former position.
func (s *Store) DeleteSavedByID(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.saved, id)
	_, ok := removeAt(&s.saved, idx)
	return idx, ok
}

// DeleteHistoryByID removes the history entry with id, returning its former position.
func (s *Store) DeleteHistoryByID(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.history, id)
	_, ok := removeAt(&s.history, idx)
	return idx, ok
}

// History returns a copy of the history, newest first.
func (s *Store) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.history...)
}

// Saved returns a copy of the saved captions in the order they were saved.
func (s *Store) Saved() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.saved...)
}

// Texts projects entries onto their caption text.
func Texts(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}

func indexOf(entries []Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(entries *[]Entry, index int) (Entry, bool) {
	list := *entries
	if index < 0 || index >= len(list) {
		return Entry{}, false
	}
	removed := list[index]
	*entries = append(list[:index:index], list[index+1:]...)
	return removed, true
}
