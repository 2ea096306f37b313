package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/captionwizard/internal/caption"
	"github.com/csheth/captionwizard/internal/captions"
)

func (m *model) View() string {
	var body string
	switch m.pane {
	case paneHistory:
		body = m.listView(paneHistory, "Caption History", "No captions generated yet.")
	case paneSaved:
		body = m.listView(paneSaved, "Saved Captions", "No saved captions yet. Press s on a caption to keep it.")
	default:
		body = joinNonEmpty([]string{m.formView(), m.resultView()})
	}
	return joinNonEmpty([]string{
		m.heroView(),
		m.tabsView(),
		body,
		m.statusView(),
		m.footerView(),
	})
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render(heroTitle)
	meta := taglineStyle.Render(heroTagline)
	if name := m.session.ProviderName(); name != "" {
		meta = lipgloss.JoinVertical(lipgloss.Left, meta, helperStyle.Render("Model: "+name))
	}
	return heroBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, meta))
}

func (m *model) tabsView() string {
	counts := map[pane]int{
		paneHistory: len(m.session.Store().History()),
		paneSaved:   len(m.session.Store().Saved()),
	}
	tabs := make([]string, 0, 3)
	for i, p := range []pane{paneForm, paneHistory, paneSaved} {
		label := fmt.Sprintf("%d %s", i+1, p)
		if p != paneForm {
			label = fmt.Sprintf("%s (%d)", label, counts[p])
		}
		style := tabStyle
		if p == m.pane {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) formView() string {
	rows := []string{
		m.fieldLabel(fieldDescription, "Image description"),
		m.description.View(),
		m.selectorRow(fieldTone, "Tone", caption.Tones, string(m.form.Tone), "Select a tone"),
		m.selectorRow(fieldAudience, "Audience", caption.Audiences, string(m.form.Audience), "Select an audience"),
		m.selectorRow(fieldPlatform, "Platform", caption.Platforms, string(m.form.Platform), "Select a platform"),
		m.hashtagRow(),
		m.generateButton(),
	}
	return strings.Join(rows, "\n")
}

func (m *model) fieldLabel(f field, label string) string {
	if m.pane == paneForm && m.focus == f {
		return focusedLabelStyle.Render("▸ " + label)
	}
	return labelStyle.Render("  " + label)
}

func (m *model) selectorRow(f field, label string, options []caption.Option, value, placeholder string) string {
	shown := placeholderStyle.Render(placeholder)
	if value != "" {
		shown = valueStyle.Render(caption.Label(options, value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.fieldLabel(f, fmt.Sprintf("%-10s", label)),
		helperStyle.Render("‹ "), shown, helperStyle.Render(" ›"))
}

func (m *model) hashtagRow() string {
	box := "[ ]"
	if m.form.IncludeHashtags {
		box = "[x]"
	}
	return m.fieldLabel(fieldHashtags, box+" Include hashtags")
}

func (m *model) generateButton() string {
	label := "Generate Caption"
	if m.session.Busy() {
		label = m.spinner.View() + " Generating…"
	}
	style := buttonDisabledStyle
	if m.generateEnabled() {
		style = buttonStyle
		if m.focus == fieldGenerate && m.pane == paneForm {
			style = buttonFocusedStyle
		}
	}
	return "  " + style.Render(label)
}

func (m *model) resultView() string {
	last := m.session.Last()
	if last.Caption == "" {
		return ""
	}
	text := wordwrap.String(last.Caption, m.layout.contentWidth-4)
	if last.Failed() {
		return resultBoxStyle.Render(errorStyle.Render(text))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("Generated Caption"),
		captionStyle.Render(text),
		helperStyle.Render("c copy • s save"),
	)
	return resultBoxStyle.Render(body)
}

func (m *model) listView(p pane, title, empty string) string {
	entries := m.entries(p)
	header := sectionHeaderStyle.Render(title)
	if len(entries) == 0 {
		return joinNonEmpty([]string{header, helperStyle.Render(empty)})
	}
	cursor := *m.cursorFor(p)
	start, end := m.layout.listWindow(len(entries), cursor)
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		lines = append(lines, m.listRow(entries[i], i, i == cursor))
	}
	hint := "↑/↓ select • c copy • d delete • esc back"
	if p == paneHistory {
		hint = "↑/↓ select • c copy • s save • d remove • esc back"
	}
	return joinNonEmpty([]string{header, strings.Join(lines, "\n"), helperStyle.Render(hint)})
}

func (m *model) listRow(entry captions.Entry, index int, current bool) string {
	prefix := fmt.Sprintf("%2d. ", index+1)
	text := previewLine(entry.Text, m.layout.contentWidth-len(prefix)-2)
	if current {
		return currentLineStyle.Render("▸ " + prefix + text)
	}
	return "  " + prefix + text
}

func (m *model) statusView() string {
	if n, ok := m.session.Flasher().Current(); ok {
		return noticeStyle.Render(string(n.Action))
	}
	parts := []string{}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.session.Busy() || m.describing {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	return strings.Join(parts, "\n")
}

func (m *model) footerView() string {
	stats := []string{
		fmt.Sprintf("Pane %s", m.pane),
		fmt.Sprintf("History %d", len(m.session.Store().History())),
		fmt.Sprintf("Saved %d", len(m.session.Store().Saved())),
	}
	switch {
	case m.session.Busy():
		stats = append(stats, "LLM working…")
	case m.lastJob.Status == jobStatusFailed && m.lastJob.Kind == jobKindGenerate:
		stats = append(stats, "Last request failed")
	}
	return joinNonEmpty([]string{
		statusBarStyle.Render(strings.Join(stats, "  •  ")),
		m.help.View(m.keys),
	})
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#b48ead")
	heroTextColor          = lipgloss.Color("#f4ecff")
	heroSecondaryTextColor = lipgloss.Color("#d8b4fe")

	heroTitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	heroBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Padding(0, 2)
	taglineStyle        = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	tabStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 2)
	activeTabStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#d8b4fe")).Padding(0, 2)
	labelStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	focusedLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	valueStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	placeholderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	buttonStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 2)
	buttonFocusedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 2)
	buttonDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("236")).Padding(0, 2)
	resultBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	captionStyle        = lipgloss.NewStyle().Foreground(heroTextColor)
	noticeStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a3be8c"))
	statusBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	currentLineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
)
