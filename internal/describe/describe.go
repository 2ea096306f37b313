// Package describe seeds the image description from a text or PDF file, local or remote.
package describe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DefaultLimit caps the description length in runes.
const DefaultLimit = 600

const maxTextBytes = 1 << 20

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// ErrUnsupported is returned for sources that are neither text nor PDF.
var ErrUnsupported = errors.New("unsupported description source")

// Loader reads description sources. The zero value uses a default HTTP client.
type Loader struct {
	HTTPClient *http.Client
	Limit      int
}

// Load reads source with a default Loader.
func Load(ctx context.Context, source string) (string, error) {
	return Loader{}.Load(ctx, source)
}

// Load returns the whitespace-normalized text of source, clipped to the loader's limit.
// Sources starting with http:// or https:// are downloaded through the on-disk cache.
func (l Loader) Load(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsupported)
	}

	local := source
	if isRemote(source) {
		cache, err := newRemoteCache(l.HTTPClient)
		if err != nil {
			return "", err
		}
		local, err = cache.Fetch(ctx, source)
		if err != nil {
			return "", err
		}
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(local)); ext {
	case ".pdf":
		text, err = pdfText(local)
	case ".txt", ".md", ".text", "":
		text, err = plainText(local)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return "", err
	}

	limit := l.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return clipText(normalizeWhitespace(text), limit), nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func plainText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open description: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read description: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not UTF-8 text", ErrUnsupported, filepath.Base(path))
	}
	return string(data), nil
}

func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func normalizeWhitespace(s string) string {
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// clipText keeps at most limit runes without splitting a word, unless the only boundary
// sits in the first half of the window.
func clipText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit])
	if runes[limit] == ' ' {
		return cut
	}
	if idx := strings.LastIndex(cut, " "); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
