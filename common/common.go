package common

import "time"

const (
	// LogBufferCap is the retention cap of the full console buffer
	LogBufferCap = 1000
	// LogPreviewCap is the cap of the compact preview view
	LogPreviewCap = 50

	// JobListLimit bounds the job snapshot fetched per poll tick
	JobListLimit = 20
	// RecentJobs is how many jobs the recent view keeps
	RecentJobs = 10

	// DefaultToastDuration is how long a toast stays up when the caller
	// does not pick a duration
	DefaultToastDuration = 5 * time.Second

	// ScrollBottomThreshold is the distance from the bottom, in pixels,
	// within which a view still counts as "at the bottom"
	ScrollBottomThreshold = 40

	DateTimeFormat = "2006-01-02 15:04:05"

	// events pushed over the websocket
	EventLog           = "log"
	EventLogBatch      = "logs"
	EventCommandResult = "command-result"
	EventCommandError  = "command-error"
	EventConnect       = "connect"
	EventDisconnect    = "disconnect"
	EventError         = "error"
	EventNotification  = "notification"
	EventToast         = "toast-notification"

	// CSRFHeader carries the panel CSRF token on mutating requests
	CSRFHeader = "X-CSRF-Token"
	// CSRFTokenTTL is how long a fetched CSRF token is reused before
	// a fresh one is requested
	CSRFTokenTTL = 30 * time.Minute
)
