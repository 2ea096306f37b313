package caption

import (
	"regexp"
	"strings"
)

var hashtagRe = regexp.MustCompile(`\s*#[\p{L}\p{N}_]*`)

// StripHashtags removes every #word token together with the whitespace before it.
func StripHashtags(text string) string {
	return strings.TrimSpace(hashtagRe.ReplaceAllString(text, ""))
}

// Normalize trims the model output and, when hashtags were not requested, strips any the
// model produced anyway.
func Normalize(raw string, includeHashtags bool) string {
	text := strings.TrimSpace(raw)
	if includeHashtags {
		return text
	}
	return StripHashtags(text)
}
