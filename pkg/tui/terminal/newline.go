// ABOUTME: NewlineWriter translates bare "\n" into "\r\n" for terminals in raw mode.
// ABOUTME: Raw mode disables output post-processing, so a lone LF would not return the carriage.

package terminal

import (
	"bytes"
	"io"
)

// NewlineWriter wraps w and rewrites every "\n" not already preceded by
// "\r" into "\r\n". A CR at the end of one Write is remembered so a "\r\n"
// split across two writes is not doubled.
type NewlineWriter struct {
	w      io.Writer
	lastCR bool
}

// NewNewlineWriter returns a NewlineWriter on w.
func NewNewlineWriter(w io.Writer) *NewlineWriter {
	return &NewlineWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers see
// their own byte count, not the expanded one.
func (nw *NewlineWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var out bytes.Buffer
	out.Grow(len(p) + bytes.Count(p, []byte{'\n'}))
	prevCR := nw.lastCR
	for _, b := range p {
		if b == '\n' && !prevCR {
			out.WriteByte('\r')
		}
		out.WriteByte(b)
		prevCR = b == '\r'
	}
	if _, err := nw.w.Write(out.Bytes()); err != nil {
		return 0, err
	}
	nw.lastCR = prevCR
	return len(p), nil
}

// Flush forwards to the wrapped writer when it buffers output.
func (nw *NewlineWriter) Flush() error {
	if f, ok := nw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
