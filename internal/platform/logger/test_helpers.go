package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Capture collects JSON log output for assertions. It is safe for use by
// concurrent handlers.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCapture returns a debug-level JSON logger writing into a new Capture.
func NewCapture(t *testing.T) (*slog.Logger, *Capture) {
	t.Helper()
	c := &Capture{}
	return slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})), c
}

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything logged so far.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Entries decodes every logged line.
func (c *Capture) Entries(t *testing.T) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(c.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Find returns the first entry whose message is msg, failing the test when
// there is none.
func (c *Capture) Find(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, e := range c.Entries(t) {
		if e[slog.MessageKey] == msg {
			return e
		}
	}
	t.Fatalf("no log entry %q in:\n%s", msg, c.String())
	return nil
}
