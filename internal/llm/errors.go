package llm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RequestFailedError reports a non-2xx answer from the completion endpoint.
type RequestFailedError struct {
	Status int
	Body   string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, message: %s", e.Status, e.Body)
}

// TransportError reports a network failure or an unreadable response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

var errNoChoices = errors.New("completion response contained no choices")

const maxErrorBodyBytes = 64 << 10

// errorBody keeps the payload of a non-2xx response. The SDKs only expose it when it
// decodes as JSON, so gateway HTML pages and plain text would otherwise be lost.
type errorBody struct {
	data []byte
}

// capture buffers resp's body and hands the SDK a fresh reader over the same bytes.
func (b *errorBody) capture(resp *http.Response) {
	if resp == nil || resp.Body == nil || resp.StatusCode < http.StatusBadRequest {
		return
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	b.data = data
}

// requestFailed prefers the raw body as received, then the SDK's decoded JSON, then
// the status text for empty answers.
func (b *errorBody) requestFailed(status int, rawJSON string) *RequestFailedError {
	body := strings.TrimSpace(string(b.data))
	if body == "" {
		body = strings.TrimSpace(rawJSON)
	}
	if body == "" {
		body = http.StatusText(status)
	}
	return &RequestFailedError{Status: status, Body: body}
}
