package caption

import (
	"fmt"
	"strings"

	"github.com/csheth/captionwizard/internal/llm"
)

const (
	withHashtagsInstruction    = "Include 2 relevant hashtags at the end of the caption."
	withoutHashtagsInstruction = "Do not include any hashtags in the caption."
)

const systemRole = "You are a skilled social media manager, expert in creating engaging captions for various platforms. " +
	"Your task is to generate captions based on image descriptions, considering the specified tone, target audience, and platform. " +
	"You should not always include everything from the description, but rather focus on creating an appealing caption that fits the given parameters."

// HashtagInstruction picks one of the two fixed hashtag phrases.
func HashtagInstruction(includeHashtags bool) string {
	if includeHashtags {
		return withHashtagsInstruction
	}
	return withoutHashtagsInstruction
}

// BuildPrompt renders the form into the system and user instructions. The description
// is interpolated as-is; it travels as a JSON string value.
func BuildPrompt(form FormState) llm.Prompt {
	hashtags := HashtagInstruction(form.IncludeHashtags)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s caption for %s targeting %s.\n", form.Tone, form.Platform, form.Audience)
	fmt.Fprintf(&b, "The image description is: \"%s\".\n", form.Description)
	b.WriteString("Remember, it's not always necessary to include everything from the description.\n")
	b.WriteString("Focus on creating an engaging caption that matches the tone and appeals to the target audience.\n")
	b.WriteString("Don't explain what type of caption you just provided, don't explain yourself.\n")
	fmt.Fprintf(&b, "Just provide the best caption. If you don't understand \"%s\" then just provide caption according to other inputs.\n", form.Description)
	b.WriteString(hashtags)
	b.WriteRune('\n')
	b.WriteString("The caption should be concise, ideally within 1-2 sentences")
	if form.IncludeHashtags {
		b.WriteString(", followed by hashtags")
	}
	b.WriteRune('.')

	return llm.Prompt{
		System: systemRole + " " + hashtags,
		User:   b.String(),
	}
}
