// Package caption holds the form model, the prompt builder and the generator that turns
// a completed form into a caption.
package caption

import (
	"errors"
	"fmt"
	"strings"
)

// Tone, Audience and Platform are the enumerated selections of the form.
type (
	Tone     string
	Audience string
	Platform string
)

// Option pairs a wire value with the label shown in menus.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Tones = []Option{
	{"witty", "Witty"},
	{"funny", "Funny"},
	{"inspirational", "Inspirational"},
	{"serious", "Serious"},
	{"casual", "Casual"},
	{"professional", "Professional"},
	{"sarcastic", "Sarcastic"},
	{"emotional", "Emotional"},
}

var Audiences = []Option{
	{"general", "General Audience"},
	{"teenagers", "Teenagers (13-19)"},
	{"young-adults", "Young Adults (20-29)"},
	{"parents", "Parents"},
	{"professionals", "Professionals (30-50)"},
	{"seniors", "Seniors (60+)"},
	{"fitness-enthusiasts", "Fitness Enthusiasts"},
	{"couples", "Couples"},
}

var Platforms = []Option{
	{"instagram", "Instagram"},
	{"twitter", "Twitter"},
	{"linkedin", "LinkedIn"},
	{"facebook", "Facebook"},
	{"youtube", "YouTube"},
}

// Label returns the menu label for value, or value itself when unknown.
func Label(options []Option, value string) string {
	for _, opt := range options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func known(options []Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// FormState is everything the user picked before asking for a caption.
type FormState struct {
	Description     string   `json:"description"`
	Tone            Tone     `json:"tone"`
	Audience        Audience `json:"audience"`
	Platform        Platform `json:"platform"`
	IncludeHashtags bool     `json:"include_hashtags"`
}

// IsComplete reports whether description, tone, audience and platform are all set.
// IncludeHashtags never affects completeness.
func (f FormState) IsComplete() bool {
	return f.Description != "" && f.Tone != "" && f.Audience != "" && f.Platform != ""
}

// ErrIncomplete is returned by Validate when a required field is empty.
var ErrIncomplete = errors.New("form is incomplete")

// Validate checks completeness and that every selection is one of the known options.
func (f FormState) Validate() error {
	if !f.IsComplete() {
		var missing []string
		if f.Description == "" {
			missing = append(missing, "description")
		}
		if f.Tone == "" {
			missing = append(missing, "tone")
		}
		if f.Audience == "" {
			missing = append(missing, "audience")
		}
		if f.Platform == "" {
			missing = append(missing, "platform")
		}
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	if !known(Tones, string(f.Tone)) {
		return fmt.Errorf("unknown tone %q", f.Tone)
	}
	if !known(Audiences, string(f.Audience)) {
		return fmt.Errorf("unknown audience %q", f.Audience)
	}
	if !known(Platforms, string(f.Platform)) {
		return fmt.Errorf("unknown platform %q", f.Platform)
	}
	return nil
}
