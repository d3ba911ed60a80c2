package notify

import (
	"context"
	"testing"
	"time"

	"github.com/craftops/console-agent/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastLifecycle(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	ID := d.Toast("x", SeverityInfo, 100*time.Millisecond)
	toasts := d.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, ID, toasts[0].ID)
	assert.Equal(t, "x", toasts[0].Message)

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, d.Active())

	// dismissing after the timer fired is a no-op, not a double-remove
	d.Dismiss(ID)
	assert.Empty(t, d.Active())
}

func TestToastStacking(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	// identical messages are not merged
	d.Toast("same", SeverityError, time.Minute)
	d.Toast("same", SeverityError, time.Minute)
	d.Toast("same", SeverityError, time.Minute)
	assert.Len(t, d.Active(), 3)
}

func TestToastDefaultDuration(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	ID := d.Toast("y", SeverityWarning, 0)
	toasts := d.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, ID, toasts[0].ID)
	assert.Equal(t, common.DefaultToastDuration, toasts[0].Duration)
}

func TestConfirmExactlyOnce(t *testing.T) {
	c := newConfirm("t", "m", []Action{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}})

	// only the first resolution lands, the hypothetical second control
	// firing is dropped
	assert.True(t, c.resolve("yes"))
	assert.False(t, c.resolve("no"))
	assert.Equal(t, "yes", <-c.resultC)
}

func TestConfirmFlow(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	resultC := make(chan bool, 1)
	go func() {
		confirmed, err := d.Confirm(context.Background(), "Ban player", "Ban Steve?")
		assert.NoError(t, err)
		resultC <- confirmed
	}()

	var pending []*Confirm
	require.Eventually(t, func() bool {
		pending = d.Pending()
		return len(pending) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "Ban player", pending[0].Title)
	require.NoError(t, d.Resolve(pending[0].ID, "yes"))
	assert.True(t, <-resultC)

	// the pending entry detaches on resolution
	require.Eventually(t, func() bool {
		return len(d.Pending()) == 0
	}, time.Second, 10*time.Millisecond)

	// answering again finds nothing to resolve
	assert.Error(t, d.Resolve(pending[0].ID, "no"))
}

func TestChoose(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	actions := []Action{
		{Label: "Install", Value: "install"},
		{Label: "Update", Value: "update"},
		{Label: "Reinstall", Value: "reinstall"},
	}

	resultC := make(chan string, 1)
	go func() {
		value, err := d.Choose(context.Background(), "Plugin", "Pick one", actions)
		assert.NoError(t, err)
		resultC <- value
	}()

	var pending []*Confirm
	require.Eventually(t, func() bool {
		pending = d.Pending()
		return len(pending) == 1
	}, time.Second, 10*time.Millisecond)

	// an answer outside the offered actions is rejected
	assert.ErrorIs(t, d.Resolve(pending[0].ID, "bogus"), common.ErrUnknownAction)

	require.NoError(t, d.Resolve(pending[0].ID, "update"))
	assert.Equal(t, "update", <-resultC)
}

func TestConfirmCanceledContext(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Confirm(ctx, "t", "m")
	assert.ErrorIs(t, err, context.Canceled)
}
