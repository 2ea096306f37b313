package tui

import (
	"github.com/csheth/captionwizard/internal/session"
)

type pane int

const (
	paneForm pane = iota
	paneHistory
	paneSaved
)

func (p pane) String() string {
	switch p {
	case paneHistory:
		return "History"
	case paneSaved:
		return "Saved"
	default:
		return "Form"
	}
}

type field int

const (
	fieldDescription field = iota
	fieldTone
	fieldAudience
	fieldPlatform
	fieldHashtags
	fieldGenerate
)

const fieldCount = int(fieldGenerate) + 1

const heroTitle = "Caption Wizard"

const heroTagline = "Describe a photo, pick a vibe, get a caption."

const (
	descriptionPlaceholder = "Describe your image here…"
	descriptionCharLimit   = 600
	minContentWidth        = 40
	contentHorizontalPad   = 4
	listPreviewMinWidth    = 20
)

type captionResultMsg struct {
	result session.Result
}

type describeResultMsg struct {
	source string
	text   string
	err    error
}

type flashExpiredMsg struct {
	seq uint64
}
