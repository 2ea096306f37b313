// Package session ties the generator, the caption store, the notification slot and the
// clipboard together behind the operations both front ends offer.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/captions"
	"github.com/csheth/captionwizard/internal/clipboard"
	"github.com/csheth/captionwizard/internal/notify"
)

var (
	// ErrIncompleteForm means submission stays disabled until every required field is set.
	ErrIncompleteForm = errors.New("form is incomplete")
	// ErrBusy means a generation is already in flight.
	ErrBusy = errors.New("a caption is already being generated")
	// ErrUnavailable means no completion provider is configured.
	ErrUnavailable = errors.New("no completion provider configured")
)

// Result is the outcome of one generation. Caption always holds the text to display:
// the caption on success, a readable error message otherwise.
type Result struct {
	Caption string          `json:"caption"`
	Entry   *captions.Entry `json:"entry,omitempty"`
	Err     error           `json:"-"`
}

// Failed reports whether the generation ended in an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Deps are the collaborators of a Session. Nil fields get in-memory defaults; a nil
// Generator leaves the session unable to generate.
type Deps struct {
	Generator *caption.Generator
	Store     *captions.Store
	Flasher   *notify.Flasher
	Clipboard clipboard.Writer
	Logger    *zap.Logger
}

// Session owns the state of one user session.
type Session struct {
	gen     *caption.Generator
	store   *captions.Store
	flasher *notify.Flasher
	clip    clipboard.Writer
	logger  *zap.Logger

	busy atomic.Bool

	mu   sync.Mutex
	last Result
}

// New assembles a session from deps.
func New(deps Deps) *Session {
	s := &Session{
		gen:     deps.Generator,
		store:   deps.Store,
		flasher: deps.Flasher,
		clip:    deps.Clipboard,
		logger:  deps.Logger,
	}
	if s.store == nil {
		s.store = captions.NewStore()
	}
	if s.flasher == nil {
		s.flasher = notify.New(notify.DefaultTTL)
	}
	if s.clip == nil {
		s.clip = clipboard.NewMemory(nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Store exposes the caption lists.
func (s *Session) Store() *captions.Store { return s.store }

// Flasher exposes the notification slot.
func (s *Session) Flasher() *notify.Flasher { return s.flasher }

// Available reports whether a completion provider is configured.
func (s *Session) Available() bool { return s.gen != nil }

// ProviderName describes the configured provider, or "" when there is none.
func (s *Session) ProviderName() string {
	if s.gen == nil {
		return ""
	}
	return s.gen.Name()
}

// Busy reports whether a generation is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

// Last returns the most recent generation result.
func (s *Session) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Begin claims the busy flag for form. Every successful Begin must be followed by Finish.
func (s *Session) Begin(form caption.FormState) error {
	if s.gen == nil {
		return ErrUnavailable
	}
	if !form.IsComplete() {
		return ErrIncompleteForm
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

// Finish performs the generation claimed by Begin and releases the busy flag when the
// request settles. Errors are folded into the result's display text.
func (s *Session) Finish(ctx context.Context, form caption.FormState) Result {
	defer s.busy.Store(false)

	text, err := s.gen.Generate(ctx, form)
	var result Result
	if err != nil {
		s.logger.Warn("caption generation failed",
			zap.String("tone", string(form.Tone)),
			zap.String("platform", string(form.Platform)),
			zap.Error(err))
		result = Result{Caption: caption.DisplayText(err), Err: err}
	} else {
		entry := s.store.RecordGenerated(text)
		s.logger.Info("caption generated",
			zap.String("id", entry.ID),
			zap.Int("chars", len(text)),
			zap.Bool("hashtags", form.IncludeHashtags))
		result = Result{Caption: text, Entry: &entry}
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()
	return result
}

// Generate is Begin followed by Finish.
func (s *Session) Generate(ctx context.Context, form caption.FormState) (Result, error) {
	if err := s.Begin(form); err != nil {
		return Result{}, err
	}
	return s.Finish(ctx, form), nil
}

// Save adds text to the saved captions and flashes the acknowledgment. Duplicates and
// empty text are silently ignored but still acknowledged.
func (s *Session) Save(text string) (captions.Entry, bool, notify.Ticket) {
	entry, added := s.store.Save(text)
	return entry, added, s.flasher.Flash(notify.Notification{Action: notify.ActionSaved})
}

// SaveLast saves the most recent successful caption. Error text is never saved.
func (s *Session) SaveLast() (captions.Entry, bool, notify.Ticket) {
	last := s.Last()
	if last.Failed() {
		return s.Save("")
	}
	return s.Save(last.Caption)
}

// Copy places text on the clipboard. Clipboard failures are logged, never returned.
func (s *Session) Copy(text string) notify.Ticket {
	if err := s.clip.WriteAll(text); err != nil {
		s.logger.Warn("clipboard write failed", zap.Error(err))
	}
	return s.flasher.Flash(notify.Notification{Action: notify.ActionCopied})
}

// DeleteSaved removes the saved caption at index; out-of-range indices are a no-op.
func (s *Session) DeleteSaved(index int) (notify.Ticket, bool) {
	if _, ok := s.store.DeleteSaved(index); !ok {
		return notify.Ticket{}, false
	}
	return s.flasher.Flash(notify.At(notify.ActionDeleted, index)), true
}

// DeleteHistory removes the history entry at index; out-of-range indices are a no-op.
func (s *Session) DeleteHistory(index int) (notify.Ticket, bool) {
	if _, ok := s.store.DeleteHistory(index); !ok {
		return notify.Ticket{}, false
	}
	return s.flasher.Flash(notify.At(notify.ActionRemovedFromHistory, index)), true
}

// DeleteSavedByID removes a saved caption by its stable id.
func (s *Session) DeleteSavedByID(id string) (notify.Ticket, bool) {
	idx, ok := s.store.DeleteSavedByID(id)
	if !ok {
		return notify.Ticket{}, false
	}
	return s.flasher.Flash(notify.At(notify.ActionDeleted, idx)), true
}

// DeleteHistoryByID removes a history entry by its stable id.
func (s *Session) DeleteHistoryByID(id string) (notify.Ticket, bool) {
	idx, ok := s.store.DeleteHistoryByID(id)
	if !ok {
		return notify.Ticket{}, false
	}
	return s.flasher.Flash(notify.At(notify.ActionRemovedFromHistory, idx)), true
}
