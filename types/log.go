package types

import "time"

// LogType is the derived classification of a console line
type LogType string

// log types, in classification precedence order
const (
	LogError LogType = "error"
	LogWarn  LogType = "warn"
	LogJoin  LogType = "join"
	LogLeave LogType = "leave"
	LogChat  LogType = "chat"
	LogInfo  LogType = "info"
)

// LogEntry is one console line, immutable once created
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
}

// LogEvent is the payload of a "log" websocket event
type LogEvent struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// LogBatchEvent is the payload of a "logs" websocket event
type LogBatchEvent struct {
	Logs []LogEvent `json:"logs"`
}

// CommandResult is the payload of a "command-result" websocket event
type CommandResult struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// CommandError is the payload of a "command-error" websocket event
type CommandError struct {
	Command string `json:"command"`
	Error   string `json:"error"`
}

// NotificationEvent is the payload of "notification" and
// "toast-notification" websocket events
type NotificationEvent struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Duration int    `json:"duration"`
}
