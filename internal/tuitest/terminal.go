package tuitest

import (
	"bytes"
	"io"
)

// terminalReplies answers the capability queries bubbletea and lipgloss send on startup;
// without a reply they block until their own timeout.
var terminalReplies = []struct {
	query []byte
	reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderKeepTail  = 64
)

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, responderMaxBuffer)}
}

// Process scans chunk for queries, including ones split across reads.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > responderMaxBuffer {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-responderKeepTail:]...)
	}
}

// answerNext replies to the earliest pending query in the buffer.
func (tr *terminalResponder) answerNext() bool {
	first, match := -1, -1
	for i, entry := range terminalReplies {
		idx := bytes.Index(tr.buf, entry.query)
		if idx >= 0 && (first == -1 || idx < first) {
			first, match = idx, i
		}
	}
	if match == -1 {
		return false
	}
	entry := terminalReplies[match]
	tr.buf = tr.buf[first+len(entry.query):]
	_, _ = tr.w.Write(entry.reply)
	return true
}
