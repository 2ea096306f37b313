package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/captions"
	"github.com/csheth/captionwizard/internal/describe"
	"github.com/csheth/captionwizard/internal/notify"
	"github.com/csheth/captionwizard/internal/session"
)

// Describer loads an image description from a file path or URL.
type Describer func(ctx context.Context, source string) (string, error)

// Config wires runtime options into the TUI program.
type Config struct {
	Session *session.Session
	Logger  *zap.Logger

	// DescribeFrom seeds the description from a text or PDF source at startup.
	DescribeFrom string
	Describer    Describer

	// UnavailableHint explains why generation is disabled when no provider is configured.
	UnavailableHint string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Session == nil {
		config.Session = session.New(session.Deps{})
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Describer == nil {
		config.Describer = describe.Load
	}

	desc := textarea.New()
	desc.Placeholder = descriptionPlaceholder
	desc.CharLimit = descriptionCharLimit
	desc.ShowLineNumbers = false
	desc.SetHeight(3)
	desc.KeyMap.InsertNewline.SetEnabled(false)
	desc.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:      config,
		session:     config.Session,
		logger:      config.Logger,
		jobs:        newJobBus(config.Logger),
		keys:        newKeyMap(),
		help:        help.New(),
		layout:      newPageLayout(),
		pane:        paneForm,
		focus:       fieldDescription,
		description: desc,
		spinner:     spin,
		infoMessage: "Describe your image, then choose a tone, audience and platform.",
	}
	if !m.session.Available() {
		m.errorMessage = "Caption generation is unavailable."
		if config.UnavailableHint != "" {
			m.errorMessage += " " + config.UnavailableHint
		}
	}
	m.applyLayout()
	return m
}

type model struct {
	config  Config
	session *session.Session
	logger  *zap.Logger
	jobs    *jobBus
	keys    keyMap
	help    help.Model
	layout  pageLayout

	pane        pane
	focus       field
	description textarea.Model
	spinner     spinner.Model
	form        caption.FormState

	historyCursor int
	savedCursor   int

	describing   bool
	lastJob      jobSnapshot
	infoMessage  string
	errorMessage string
	helpVisible  bool
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if source := strings.TrimSpace(m.config.DescribeFrom); source != "" {
		m.describing = true
		m.infoMessage = fmt.Sprintf("Reading description from %s…", source)
		cmds = append(cmds, m.spinner.Tick, m.jobs.Start(jobKindDescribe, describeJob(m.config.Describer, source)))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.session.Busy() || m.describing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.lastJob = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		m.lastJob = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case captionResultMsg:
		return m, m.handleCaptionResult(msg.result)
	case describeResultMsg:
		m.describing = false
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Could not read %s: %v", msg.source, msg.err)
			return m, nil
		}
		m.description.SetValue(msg.text)
		m.syncDescription()
		m.infoMessage = fmt.Sprintf("Description loaded from %s.", msg.source)
		return m, nil
	case flashExpiredMsg:
		m.session.Flasher().Expire(msg.seq)
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.applyLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pane == paneForm && m.focus == fieldDescription && m.description.Focused() {
		return m.handleDescriptionKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
		return m, nil
	case key.Matches(msg, m.keys.FormPane):
		m.switchPane(paneForm)
		return m, nil
	case key.Matches(msg, m.keys.HistoryPane):
		m.switchPane(paneHistory)
		return m, nil
	case key.Matches(msg, m.keys.SavedPane):
		m.switchPane(paneSaved)
		return m, nil
	}

	switch m.pane {
	case paneHistory:
		return m, m.handleListKey(msg, paneHistory)
	case paneSaved:
		return m, m.handleListKey(msg, paneSaved)
	default:
		return m, m.handleFormKey(msg)
	}
}

func (m *model) handleDescriptionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyTab, tea.KeyEnter:
		m.setFocus(fieldTone)
		return m, nil
	case tea.KeyShiftTab:
		m.setFocus(fieldGenerate)
		return m, nil
	}
	var cmd tea.Cmd
	m.description, cmd = m.description.Update(msg)
	m.syncDescription()
	return m, cmd
}

func (m *model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus(field((int(m.focus) + 1) % fieldCount))
	case key.Matches(msg, m.keys.Prev):
		m.setFocus(field((int(m.focus) + fieldCount - 1) % fieldCount))
	case key.Matches(msg, m.keys.Left):
		m.cycleFocused(-1)
	case key.Matches(msg, m.keys.Right):
		m.cycleFocused(1)
	case key.Matches(msg, m.keys.Toggle):
		if m.focus == fieldHashtags {
			m.form.IncludeHashtags = !m.form.IncludeHashtags
		}
	case key.Matches(msg, m.keys.Hashtags):
		m.form.IncludeHashtags = !m.form.IncludeHashtags
	case key.Matches(msg, m.keys.Edit):
		m.setFocus(fieldDescription)
	case key.Matches(msg, m.keys.Submit):
		if m.focus == fieldHashtags {
			m.form.IncludeHashtags = !m.form.IncludeHashtags
			return nil
		}
		return m.submit()
	case key.Matches(msg, m.keys.Copy):
		return m.copyCurrent()
	case key.Matches(msg, m.keys.Save):
		return m.saveCurrent()
	}
	return nil
}

func (m *model) handleListKey(msg tea.KeyMsg, p pane) tea.Cmd {
	entries := m.entries(p)
	cursor := m.cursorFor(p)
	switch {
	case key.Matches(msg, m.keys.Back):
		m.switchPane(paneForm)
	case key.Matches(msg, m.keys.Prev):
		if *cursor > 0 {
			*cursor--
		}
	case key.Matches(msg, m.keys.Next):
		if *cursor < len(entries)-1 {
			*cursor++
		}
	case key.Matches(msg, m.keys.Copy):
		if len(entries) == 0 {
			return nil
		}
		return m.flash(m.session.Copy(entries[*cursor].Text))
	case key.Matches(msg, m.keys.Save):
		if p != paneHistory || len(entries) == 0 {
			return nil
		}
		_, _, ticket := m.session.Save(entries[*cursor].Text)
		return m.flash(ticket)
	case key.Matches(msg, m.keys.Delete):
		if len(entries) == 0 {
			return nil
		}
		var (
			ticket notify.Ticket
			ok     bool
		)
		id := entries[*cursor].ID
		if p == paneHistory {
			ticket, ok = m.session.DeleteHistoryByID(id)
		} else {
			ticket, ok = m.session.DeleteSavedByID(id)
		}
		if !ok {
			return nil
		}
		if remaining := len(m.entries(p)); *cursor >= remaining && *cursor > 0 {
			*cursor = remaining - 1
		}
		return m.flash(ticket)
	}
	return nil
}

func (m *model) submit() tea.Cmd {
	m.syncDescription()
	form := m.form
	if err := m.session.Begin(form); err != nil {
		switch {
		case errors.Is(err, session.ErrIncompleteForm):
			m.errorMessage = "Fill in the description, tone, audience and platform first."
		case errors.Is(err, session.ErrBusy):
			m.infoMessage = "Still generating the previous caption…"
		case errors.Is(err, session.ErrUnavailable):
			m.errorMessage = "Caption generation is unavailable. " + m.config.UnavailableHint
		default:
			m.errorMessage = err.Error()
		}
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Generating caption…"
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindGenerate, generateCaptionJob(m.session, form)))
}

func (m *model) handleCaptionResult(result session.Result) tea.Cmd {
	if result.Failed() {
		m.errorMessage = ""
		m.infoMessage = "Generation failed. Adjust the form or press enter to retry."
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Caption ready. Press c to copy or s to save."
	m.historyCursor = 0
	return nil
}

func (m *model) copyCurrent() tea.Cmd {
	last := m.session.Last()
	if last.Caption == "" || last.Failed() {
		m.infoMessage = "Nothing to copy yet."
		return nil
	}
	return m.flash(m.session.Copy(last.Caption))
}

func (m *model) saveCurrent() tea.Cmd {
	last := m.session.Last()
	if last.Caption == "" || last.Failed() {
		m.infoMessage = "Generate a caption before saving."
		return nil
	}
	_, _, ticket := m.session.SaveLast()
	return m.flash(ticket)
}

func (m *model) flash(ticket notify.Ticket) tea.Cmd {
	return flashExpiryCmd(ticket, m.session.Flasher().TTL())
}

func (m *model) entries(p pane) []captions.Entry {
	if p == paneSaved {
		return m.session.Store().Saved()
	}
	return m.session.Store().History()
}

func (m *model) cursorFor(p pane) *int {
	if p == paneSaved {
		return &m.savedCursor
	}
	return &m.historyCursor
}

func (m *model) switchPane(p pane) {
	m.pane = p
	if p != paneForm {
		m.description.Blur()
		if cursor := m.cursorFor(p); *cursor >= len(m.entries(p)) {
			*cursor = 0
		}
		return
	}
	if m.focus == fieldDescription {
		m.description.Focus()
	}
}

func (m *model) setFocus(f field) {
	m.focus = f
	if f == fieldDescription {
		m.description.Focus()
		return
	}
	m.description.Blur()
}

func (m *model) cycleFocused(delta int) {
	switch m.focus {
	case fieldTone:
		m.form.Tone = caption.Tone(cycleOption(caption.Tones, string(m.form.Tone), delta))
	case fieldAudience:
		m.form.Audience = caption.Audience(cycleOption(caption.Audiences, string(m.form.Audience), delta))
	case fieldPlatform:
		m.form.Platform = caption.Platform(cycleOption(caption.Platforms, string(m.form.Platform), delta))
	case fieldHashtags:
		m.form.IncludeHashtags = !m.form.IncludeHashtags
	}
}

func (m *model) syncDescription() {
	m.form.Description = m.description.Value()
}

func (m *model) generateEnabled() bool {
	return m.session.Available() && m.form.IsComplete() && !m.session.Busy()
}

func (m *model) applyLayout() {
	m.description.SetWidth(m.layout.contentWidth)
	m.help.Width = m.layout.windowWidth
}
