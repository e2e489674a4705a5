package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// WriteJSON serializes v to w as JSON.
// If pretty is true, uses indentation; otherwise single-line.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// LineWriter writes one compact JSON document per line. It is safe for
// concurrent use, so several producers can share one stream.
type LineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewLineWriter returns a LineWriter over w.
func NewLineWriter(w io.Writer) *LineWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &LineWriter{enc: enc}
}

// Write encodes v as a single line.
func (l *LineWriter) Write(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
