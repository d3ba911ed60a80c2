package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/types"
)

// Filter selects which entries a view shows. Filtering hides, it never
// discards: the buffer keeps everything and a filter switch brings
// hidden entries back.
type Filter string

// filters
const (
	FilterAll      Filter = "all"
	FilterInfo     Filter = "info"
	FilterWarn     Filter = "warn"
	FilterError    Filter = "error"
	FilterChat     Filter = "chat"
	FilterSessions Filter = "sessions" // join and leave combined
)

func (f Filter) matches(t types.LogType) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterSessions:
		return t == types.LogJoin || t == types.LogLeave
	default:
		return string(f) == string(t)
	}
}

// Buffer is the bounded in-memory store of recent console lines with
// two synchronized views: the full console and a compact preview.
// Both evict oldest-first, independently of each other.
type Buffer struct {
	sync.RWMutex
	cap        int
	previewCap int
	entries    []types.LogEntry
	preview    []types.LogEntry

	filter Filter

	searchTerm string
	matches    []int
	current    int

	autoScroll bool
	atBottom   bool
	pending    int
}

// NewBuffer .
func NewBuffer(cap, previewCap int) *Buffer {
	if cap <= 0 {
		cap = common.LogBufferCap
	}
	if previewCap <= 0 {
		previewCap = common.LogPreviewCap
	}
	return &Buffer{
		cap:        cap,
		previewCap: previewCap,
		filter:     FilterAll,
		autoScroll: true,
		atBottom:   true,
	}
}

// Append classifies and stores a line, evicting the oldest entry from
// either view at capacity. Returns true when a view following the tail
// should scroll, false when a "new logs" indicator should show instead.
func (b *Buffer) Append(timestamp time.Time, message string) bool {
	entry := types.LogEntry{
		Timestamp: timestamp,
		Message:   message,
		Type:      Classify(message),
	}

	b.Lock()
	defer b.Unlock()

	if len(b.entries) >= b.cap {
		evict := len(b.entries) - b.cap + 1
		b.entries = append(b.entries[:0], b.entries[evict:]...)
		b.shiftMatches(evict)
	}
	b.entries = append(b.entries, entry)

	if len(b.preview) >= b.previewCap {
		evict := len(b.preview) - b.previewCap + 1
		b.preview = append(b.preview[:0], b.preview[evict:]...)
	}
	b.preview = append(b.preview, entry)

	if b.searchTerm != "" && containsFold(message, b.searchTerm) {
		b.matches = append(b.matches, len(b.entries)-1)
	}

	if b.autoScroll && b.atBottom {
		return true
	}
	// the indicator counts lines arriving out of view, a reader parked
	// at the tail sees them regardless of the auto-scroll toggle
	if !b.atBottom {
		b.pending++
	}
	return false
}

// shiftMatches rebases match indexes after evicting `evict` entries
func (b *Buffer) shiftMatches(evict int) {
	if b.searchTerm == "" {
		return
	}
	kept := b.matches[:0]
	dropped := 0
	for _, idx := range b.matches {
		if idx-evict >= 0 {
			kept = append(kept, idx-evict)
		} else {
			dropped++
		}
	}
	b.matches = kept
	b.current -= dropped
	if b.current < 0 {
		b.current = 0
	}
}

// Entries returns a copy of the full buffer regardless of filter
func (b *Buffer) Entries() []types.LogEntry {
	b.RLock()
	defer b.RUnlock()
	out := make([]types.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Visible returns the entries the current filter shows, in order
func (b *Buffer) Visible() []types.LogEntry {
	b.RLock()
	defer b.RUnlock()
	out := make([]types.LogEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		if b.filter.matches(entry.Type) {
			out = append(out, entry)
		}
	}
	return out
}

// Preview returns the compact preview view
func (b *Buffer) Preview() []types.LogEntry {
	b.RLock()
	defer b.RUnlock()
	out := make([]types.LogEntry, len(b.preview))
	copy(out, b.preview)
	return out
}

// SetFilter switches the visible subset without touching stored entries
func (b *Buffer) SetFilter(f Filter) {
	b.Lock()
	defer b.Unlock()
	b.filter = f
}

// CurrentFilter .
func (b *Buffer) CurrentFilter() Filter {
	b.RLock()
	defer b.RUnlock()
	return b.filter
}

// Search marks all entries whose message contains term, case
// insensitive, and resets the current match to the first. An empty term
// clears all match state.
func (b *Buffer) Search(term string) int {
	b.Lock()
	defer b.Unlock()

	b.searchTerm = term
	b.matches = nil
	b.current = 0
	if term == "" {
		return 0
	}
	for i, entry := range b.entries {
		if containsFold(entry.Message, term) {
			b.matches = append(b.matches, i)
		}
	}
	return len(b.matches)
}

// MatchCount .
func (b *Buffer) MatchCount() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.matches)
}

// CurrentMatch returns the buffer index of the current match, -1 when
// there is none
func (b *Buffer) CurrentMatch() int {
	b.RLock()
	defer b.RUnlock()
	if len(b.matches) == 0 {
		return -1
	}
	return b.matches[b.current]
}

// NextMatch advances to the next match, wrapping past the last
func (b *Buffer) NextMatch() int {
	b.Lock()
	defer b.Unlock()
	if len(b.matches) == 0 {
		return -1
	}
	b.current = (b.current + 1) % len(b.matches)
	return b.matches[b.current]
}

// PrevMatch steps back to the previous match, wrapping before the first
func (b *Buffer) PrevMatch() int {
	b.Lock()
	defer b.Unlock()
	if len(b.matches) == 0 {
		return -1
	}
	b.current = (b.current - 1 + len(b.matches)) % len(b.matches)
	return b.matches[b.current]
}

// SetAutoScroll toggles follow-the-tail behavior
func (b *Buffer) SetAutoScroll(on bool) {
	b.Lock()
	defer b.Unlock()
	b.autoScroll = on
}

// ReportScroll tells the buffer where the consumer's view sits. A view
// within ScrollBottomThreshold of the bottom still counts as at the
// bottom, so appends keep following the tail. Reaching the bottom clears
// the pending indicator.
func (b *Buffer) ReportScroll(distanceFromBottom int) {
	b.Lock()
	defer b.Unlock()
	b.atBottom = distanceFromBottom <= common.ScrollBottomThreshold
	if b.atBottom {
		b.pending = 0
	}
}

// PendingCount is how many lines arrived while the view was scrolled up
func (b *Buffer) PendingCount() int {
	b.RLock()
	defer b.RUnlock()
	return b.pending
}

// Export writes the full buffer, not just the visible subset, as flat
// timestamped lines
func (b *Buffer) Export(w io.Writer) error {
	b.RLock()
	defer b.RUnlock()
	for _, entry := range b.entries {
		line := fmt.Sprintf("[%s] [%s] %s\n",
			entry.Timestamp.Format(common.DateTimeFormat),
			strings.ToUpper(string(entry.Type)),
			entry.Message,
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Len .
func (b *Buffer) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.entries)
}
