package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/notify"
	"github.com/csheth/captionwizard/internal/session"
)

const describeTimeout = 45 * time.Second

// generateCaptionJob runs a generation already claimed with session.Begin.
func generateCaptionJob(sess *session.Session, form caption.FormState) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result := sess.Finish(ctx, form)
		return captionResultMsg{result: result}, result.Err
	}
}

func describeJob(load Describer, source string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, describeTimeout)
		defer cancel()
		text, err := load(ctx, source)
		return describeResultMsg{source: source, text: text, err: err}, err
	}
}

// flashExpiryCmd fires once the ticket's notification should disappear.
func flashExpiryCmd(ticket notify.Ticket, ttl time.Duration) tea.Cmd {
	if ticket.Seq == 0 {
		return nil
	}
	seq := ticket.Seq
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// previewLine squeezes text onto one line of at most width runes.
func previewLine(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if width < listPreviewMinWidth {
		width = listPreviewMinWidth
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return strings.TrimSpace(string(runes[:width-1])) + "…"
}

// cycleOption steps through options from the current value; an unset value lands on the
// first option going forward and the last going back.
func cycleOption(options []caption.Option, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, opt := range options {
		if opt.Value == current {
			idx = i
			break
		}
	}
	if idx == -1 {
		if delta < 0 {
			return options[len(options)-1].Value
		}
		return options[0].Value
	}
	idx = (idx + delta + len(options)) % len(options)
	return options[idx].Value
}
