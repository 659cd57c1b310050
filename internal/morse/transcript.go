package morse

import (
	"strings"
	"sync"
)

// DefaultDisplayLimit is the transcript bound of the full-width display.
// Compact displays use 30.
const DefaultDisplayLimit = 50

// Placeholder renders spaces and unused display cells.
const Placeholder = '_'

// Transcript is a bounded, chronological record of the most recent symbols.
// Appending past the limit drops symbols from the front; order is never
// rearranged. Safe for concurrent use: remote signals arrive on the transport
// goroutine while local taps come from the UI.
type Transcript struct {
	mu    sync.Mutex
	runes []rune
	limit int
}

// NewTranscript creates a transcript bounded to limit symbols. A limit of
// zero or less falls back to DefaultDisplayLimit.
func NewTranscript(limit int) *Transcript {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	return &Transcript{limit: limit}
}

// Append adds a symbol and truncates from the front past the bound.
func (t *Transcript) Append(s Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runes = append(t.runes, []rune(string(s))...)
	if n := len(t.runes); n > t.limit {
		t.runes = t.runes[n-t.limit:]
	}
}

// Len returns the number of symbols currently held.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.runes)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runes = t.runes[:0]
}

// String returns the raw symbols, oldest first.
func (t *Transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.runes)
}

// Render formats the transcript for a display of the given width: spaces show
// as the placeholder and the line is left-padded with it up to the width.
func (t *Transcript) Render(width int) string {
	t.mu.Lock()
	out := strings.ReplaceAll(string(t.runes), string(Space), string(Placeholder))
	t.mu.Unlock()

	if pad := width - len([]rune(out)); pad > 0 {
		out = strings.Repeat(string(Placeholder), pad) + out
	}
	return out
}
