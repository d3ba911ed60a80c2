package console

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/craftops/console-agent/notify"
	"github.com/craftops/console-agent/transport"
	"github.com/craftops/console-agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsoleManager(t *testing.T) (*Manager, *notify.Dispatcher) {
	config := &types.Config{}
	config.Panel.Endpoint = "http://127.0.0.1:1"
	config.Panel.Token = "secret"
	config.Panel.WSPath = "/ws"
	config.Console.BufferSize = 100
	config.Console.PreviewSize = 10

	trans, err := transport.New(config)
	require.NoError(t, err)
	notifier := notify.NewDispatcher()
	return NewManager(config, trans, notifier), notifier
}

func TestHandleLogEvent(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	payload, _ := json.Marshal(types.LogEvent{
		Message:   "Steve joined the game",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	m.handleLog(payload)

	entries := m.Buffer().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, types.LogJoin, entries[0].Type)
}

func TestHandleLogBatch(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	payload, _ := json.Marshal(types.LogBatchEvent{Logs: []types.LogEvent{
		{Message: "one"},
		{Message: "two"},
		{Message: "three"},
	}})
	m.handleLogBatch(payload)

	assert.Equal(t, 3, m.Buffer().Len())
}

func TestMalformedEventIsDropped(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	m.handleLog([]byte(`{"message": 42`))
	assert.Equal(t, 0, m.Buffer().Len())
	assert.Empty(t, notifier.Active())
}

func TestCommandErrorToasts(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	payload, _ := json.Marshal(types.CommandError{Command: "whitelist", Error: "unknown command"})
	m.handleCommandError(payload)

	toasts := notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.SeverityError, toasts[0].Severity)
	assert.Equal(t, "unknown command", toasts[0].Message)
}

func TestNotificationEventToasts(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	payload, _ := json.Marshal(types.NotificationEvent{
		Message:  "backup finished",
		Severity: "success",
		Duration: 1000,
	})
	m.handleNotification(payload)

	toasts := notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.SeveritySuccess, toasts[0].Severity)
	assert.Equal(t, time.Second, toasts[0].Duration)
}

func TestUnknownSeverityFallsBackToInfo(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	payload, _ := json.Marshal(types.NotificationEvent{Message: "hi", Severity: "chartreuse"})
	m.handleNotification(payload)

	toasts := notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.SeverityInfo, toasts[0].Severity)
}

func TestDisconnectToastsWarning(t *testing.T) {
	m, notifier := newTestConsoleManager(t)
	defer notifier.Stop()

	m.handleStateChange(types.StateDisconnected)

	toasts := notifier.Active()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.SeverityWarning, toasts[0].Severity)
}
