package console

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/craftops/console-agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(b *Buffer, n int) {
	for i := 1; i <= n; i++ {
		b.Append(time.Now(), fmt.Sprintf("line #%d", i))
	}
}

func TestBufferEviction(t *testing.T) {
	b := NewBuffer(1000, 50)
	fill(b, 1005)

	entries := b.Entries()
	require.Len(t, entries, 1000)
	assert.Equal(t, "line #6", entries[0].Message)
	assert.Equal(t, "line #1005", entries[999].Message)

	preview := b.Preview()
	require.Len(t, preview, 50)
	assert.Equal(t, "line #956", preview[0].Message)
	assert.Equal(t, "line #1005", preview[49].Message)
}

func TestFilterNonDestructive(t *testing.T) {
	b := NewBuffer(100, 10)
	b.Append(time.Now(), "INFO: starting")
	b.Append(time.Now(), "WARN: look out")
	b.Append(time.Now(), "ERROR: it broke")
	b.Append(time.Now(), "<Steve> hi")

	original := b.Entries()

	b.SetFilter(FilterError)
	visible := b.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "ERROR: it broke", visible[0].Message)

	b.SetFilter(FilterAll)
	assert.Equal(t, original, b.Visible())
	assert.Equal(t, original, b.Entries())
}

func TestFilterSessions(t *testing.T) {
	b := NewBuffer(100, 10)
	b.Append(time.Now(), "Steve joined the game")
	b.Append(time.Now(), "chat is fine")
	b.Append(time.Now(), "Steve left the game")

	b.SetFilter(FilterSessions)
	visible := b.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, types.LogJoin, visible[0].Type)
	assert.Equal(t, types.LogLeave, visible[1].Type)
}

func TestSearchWraparound(t *testing.T) {
	b := NewBuffer(100, 10)
	b.Append(time.Now(), "find me here")
	b.Append(time.Now(), "nothing")
	b.Append(time.Now(), "FIND ME again")
	b.Append(time.Now(), "also nothing")
	b.Append(time.Now(), "Find Me once more")

	count := b.Search("find me")
	require.Equal(t, 3, count)
	assert.Equal(t, 0, b.CurrentMatch())

	// next M times from match 0 wraps back to match 0
	b.NextMatch()
	b.NextMatch()
	assert.Equal(t, 4, b.CurrentMatch())
	b.NextMatch()
	assert.Equal(t, 0, b.CurrentMatch())

	// previous from match 0 lands on the last match
	assert.Equal(t, 4, b.PrevMatch())

	// empty term clears all match state
	assert.Equal(t, 0, b.Search(""))
	assert.Equal(t, -1, b.CurrentMatch())
	assert.Equal(t, -1, b.NextMatch())
}

func TestSearchSurvivesEviction(t *testing.T) {
	b := NewBuffer(10, 5)
	fill(b, 10)
	require.Equal(t, 10, b.Search("line"))

	// evicts #1, the match indexes rebase
	b.Append(time.Now(), "no match here")
	assert.Equal(t, 9, b.MatchCount())
	assert.Equal(t, 0, b.CurrentMatch())
}

func TestAutoScroll(t *testing.T) {
	b := NewBuffer(100, 10)

	// at the bottom, appends follow the tail
	assert.True(t, b.Append(time.Now(), "one"))
	assert.Equal(t, 0, b.PendingCount())

	// scrolled up, appends surface an indicator instead
	b.ReportScroll(500)
	assert.False(t, b.Append(time.Now(), "two"))
	assert.False(t, b.Append(time.Now(), "three"))
	assert.Equal(t, 2, b.PendingCount())

	// near the bottom counts as at the bottom
	b.ReportScroll(10)
	assert.Equal(t, 0, b.PendingCount())
	assert.True(t, b.Append(time.Now(), "four"))

	// toggle off disables following even at the bottom, but lines the
	// reader can already see don't count as pending
	b.SetAutoScroll(false)
	assert.False(t, b.Append(time.Now(), "five"))
	assert.Equal(t, 0, b.PendingCount())

	b.ReportScroll(500)
	assert.False(t, b.Append(time.Now(), "six"))
	assert.Equal(t, 1, b.PendingCount())
}

func TestExportIgnoresFilter(t *testing.T) {
	b := NewBuffer(100, 10)
	b.Append(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "ERROR: it broke")
	b.Append(time.Date(2024, 3, 1, 12, 0, 1, 0, time.UTC), "all good")
	b.SetFilter(FilterError)

	var buf bytes.Buffer
	require.NoError(t, b.Export(&buf))
	out := buf.String()
	assert.Contains(t, out, "[2024-03-01 12:00:00] [ERROR] ERROR: it broke")
	assert.Contains(t, out, "[2024-03-01 12:00:01] [INFO] all good")
}
