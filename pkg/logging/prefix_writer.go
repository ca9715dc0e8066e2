package logging

import (
	"bytes"
	"io"
)

// PrefixWriter writes prefix before every complete line. Incomplete trailing
// data is held until its newline arrives.
type PrefixWriter struct {
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.pending = append(pw.pending, p...)

	for {
		i := bytes.IndexByte(pw.pending, '\n')
		if i < 0 {
			break
		}
		line := pw.pending[:i+1]

		if _, err := pw.writer.Write(append(append([]byte(nil), pw.prefix...), line...)); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[i+1:]
	}

	// Release the consumed prefix of the backing array.
	if len(pw.pending) == 0 {
		pw.pending = nil
	}

	return len(p), nil
}
