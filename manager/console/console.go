package console

import (
	"context"
	"encoding/json"
	"time"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/metric"
	"github.com/craftops/console-agent/notify"
	"github.com/craftops/console-agent/transport"
	"github.com/craftops/console-agent/types"

	log "github.com/sirupsen/logrus"
)

// Manager wires the transport's console events into the log buffer and
// the notification dispatcher
type Manager struct {
	config    *types.Config
	buffer    *Buffer
	transport *transport.Transport
	notifier  *notify.Dispatcher
}

// NewManager subscribes to the console event stream. Handlers stay
// registered for the session, replays after a reconnect only append
// again, which the bounded buffer absorbs.
func NewManager(config *types.Config, t *transport.Transport, notifier *notify.Dispatcher) *Manager {
	m := &Manager{
		config:    config,
		buffer:    NewBuffer(config.Console.BufferSize, config.Console.PreviewSize),
		transport: t,
		notifier:  notifier,
	}

	t.On(common.EventLog, m.handleLog)
	t.On(common.EventLogBatch, m.handleLogBatch)
	t.On(common.EventCommandResult, m.handleCommandResult)
	t.On(common.EventCommandError, m.handleCommandError)
	t.On(common.EventNotification, m.handleNotification)
	t.On(common.EventToast, m.handleNotification)
	t.On(common.EventError, m.handleTransportError)
	t.OnStateChange(m.handleStateChange)

	return m
}

// Buffer exposes the log buffer to consumers
func (m *Manager) Buffer() *Buffer {
	return m.buffer
}

// Run blocks until ctx is done, the event handlers do the actual work
func (m *Manager) Run(ctx context.Context) error {
	<-ctx.Done()
	log.Info("[ConsoleManager] exiting")
	return nil
}

// Execute sends a console command over the duplex channel
func (m *Manager) Execute(command string) error {
	return m.transport.Send("command", map[string]string{"command": command})
}

func (m *Manager) appendLine(ev types.LogEvent) {
	timestamp := time.Now()
	if ev.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, ev.Timestamp); err == nil {
			timestamp = ts
		}
	}
	m.buffer.Append(timestamp, ev.Message)
	if mc := metric.GetClient(); mc != nil {
		mc.LogsReceived.Inc()
	}
}

func (m *Manager) handleLog(payload json.RawMessage) {
	var ev types.LogEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Debugf("[ConsoleManager] malformed log event: %v", err)
		return
	}
	m.appendLine(ev)
}

func (m *Manager) handleLogBatch(payload json.RawMessage) {
	var batch types.LogBatchEvent
	if err := json.Unmarshal(payload, &batch); err != nil {
		log.Debugf("[ConsoleManager] malformed log batch: %v", err)
		return
	}
	for _, ev := range batch.Logs {
		m.appendLine(ev)
	}
}

func (m *Manager) handleCommandResult(payload json.RawMessage) {
	var result types.CommandResult
	if err := json.Unmarshal(payload, &result); err != nil {
		log.Debugf("[ConsoleManager] malformed command result: %v", err)
		return
	}
	m.buffer.Append(time.Now(), result.Output)
}

func (m *Manager) handleCommandError(payload json.RawMessage) {
	var cmdErr types.CommandError
	if err := json.Unmarshal(payload, &cmdErr); err != nil {
		log.Debugf("[ConsoleManager] malformed command error: %v", err)
		return
	}
	message := cmdErr.Error
	if message == "" {
		message = "command failed"
	}
	m.notifier.Toast(message, notify.SeverityError, 0)
}

func (m *Manager) handleNotification(payload json.RawMessage) {
	var ev types.NotificationEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Debugf("[ConsoleManager] malformed notification: %v", err)
		return
	}
	severity := notify.Severity(ev.Severity)
	if !severity.Valid() {
		severity = notify.SeverityInfo
	}
	m.notifier.Toast(ev.Message, severity, time.Duration(ev.Duration)*time.Millisecond)
}

func (m *Manager) handleTransportError(payload json.RawMessage) {
	message := "connection error"
	var ev struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &ev); err == nil && ev.Message != "" {
		message = ev.Message
	}
	m.notifier.Toast(message, notify.SeverityError, 0)
}

func (m *Manager) handleStateChange(state types.ConnectionState) {
	mc := metric.GetClient()
	switch state {
	case types.StateConnected:
		if mc != nil {
			mc.Connected.Set(1)
			mc.Reconnects.Inc()
		}
	case types.StateDisconnected:
		if mc != nil {
			mc.Connected.Set(0)
		}
		m.notifier.Toast("lost connection to server", notify.SeverityWarning, 0)
	}
}
