package notify

import (
	"context"
	"sync"
	"time"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/metric"
	"github.com/craftops/console-agent/utils"

	log "github.com/sirupsen/logrus"
)

// Severity of a toast
type Severity string

// severities
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Toast is a transient notification. It has no persisted record, it is
// created, shown and removed once its duration elapses.
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Severity  Severity      `json:"severity"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Dispatcher owns all transient notifications and pending confirmations
type Dispatcher struct {
	sync.Mutex
	toasts   map[string]*Toast
	order    []string
	timers   map[string]*time.Timer
	confirms map[string]*Confirm
}

// NewDispatcher .
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		toasts:   map[string]*Toast{},
		timers:   map[string]*time.Timer{},
		confirms: map[string]*Confirm{},
	}
}

// Toast shows a notification, scheduling its removal after duration.
// Every call stacks a new toast, identical messages are not merged.
func (d *Dispatcher) Toast(message string, severity Severity, duration time.Duration) string {
	if duration <= 0 {
		duration = common.DefaultToastDuration
	}

	d.Lock()
	defer d.Unlock()

	ID := utils.RandomString(8)
	d.toasts[ID] = &Toast{
		ID:        ID,
		Message:   message,
		Severity:  severity,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	d.order = append(d.order, ID)
	d.timers[ID] = time.AfterFunc(duration, func() { d.Dismiss(ID) })

	if mc := metric.GetClient(); mc != nil {
		mc.ToastsShown.WithLabelValues(string(severity)).Inc()
	}
	log.Debugf("[notify] toast %s shown: %s %s", ID, severity, message)
	return ID
}

// Dismiss removes a toast. Removing twice is a no-op, the auto-dismiss
// timer and an explicit dismissal never double-remove.
func (d *Dispatcher) Dismiss(ID string) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.toasts[ID]; !ok {
		return
	}
	if timer, ok := d.timers[ID]; ok {
		timer.Stop()
		delete(d.timers, ID)
	}
	delete(d.toasts, ID)
	for i, id := range d.order {
		if id == ID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Active returns the currently visible toasts in creation order
func (d *Dispatcher) Active() []Toast {
	d.Lock()
	defer d.Unlock()

	toasts := make([]Toast, 0, len(d.order))
	for _, id := range d.order {
		if t, ok := d.toasts[id]; ok {
			toasts = append(toasts, *t)
		}
	}
	return toasts
}

// Stop cancels all pending dismiss timers, used on teardown
func (d *Dispatcher) Stop() {
	d.Lock()
	defer d.Unlock()

	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
	for _, c := range d.confirms {
		c.resolve(c.fallback())
	}
}

// Confirm blocks until the user answers yes or no, or ctx is done
func (d *Dispatcher) Confirm(ctx context.Context, title, message string) (bool, error) {
	value, err := d.Choose(ctx, title, message, []Action{
		{Label: "Yes", Value: "yes"},
		{Label: "No", Value: "no"},
	})
	if err != nil {
		return false, err
	}
	return value == "yes", nil
}

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}
