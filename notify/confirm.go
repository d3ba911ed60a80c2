package notify

import (
	"context"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/utils"

	log "github.com/sirupsen/logrus"
)

// Action is one choice offered by a confirmation
type Action struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Confirm is a pending confirmation. It resolves exactly once: the first
// Resolve wins, later answers get ErrConfirmResolved, and the pending
// entry is detached on resolution so stale handlers cannot pile up.
type Confirm struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Actions []Action `json:"actions"`

	resultC chan string
	done    chan struct{}
}

func newConfirm(title, message string, actions []Action) *Confirm {
	return &Confirm{
		ID:      utils.RandomString(8),
		Title:   title,
		Message: message,
		Actions: actions,
		resultC: make(chan string, 1),
		done:    make(chan struct{}),
	}
}

// resolve delivers the value once, all later calls are dropped
func (c *Confirm) resolve(value string) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.resultC <- value:
		close(c.done)
		return true
	default:
		return false
	}
}

// fallback is the value used when the dispatcher shuts down with the
// confirmation still open
func (c *Confirm) fallback() string {
	if len(c.Actions) == 0 {
		return ""
	}
	return c.Actions[len(c.Actions)-1].Value
}

// Choose shows an N-ary confirmation and blocks the calling flow until
// one action is taken. Only the caller blocks, timers and pollers keep
// running underneath.
func (d *Dispatcher) Choose(ctx context.Context, title, message string, actions []Action) (string, error) {
	c := newConfirm(title, message, actions)

	d.Lock()
	d.confirms[c.ID] = c
	d.Unlock()

	log.Debugf("[notify] confirm %s opened: %s", c.ID, title)

	defer func() {
		d.Lock()
		delete(d.confirms, c.ID)
		d.Unlock()
	}()

	select {
	case value := <-c.resultC:
		return value, nil
	case <-ctx.Done():
		c.resolve("")
		return "", ctx.Err()
	}
}

// Resolve answers a pending confirmation by id
func (d *Dispatcher) Resolve(ID, value string) error {
	d.Lock()
	c, ok := d.confirms[ID]
	d.Unlock()

	if !ok {
		return common.ErrConfirmNotFound
	}
	for _, action := range c.Actions {
		if action.Value == value {
			if !c.resolve(value) {
				return common.ErrConfirmResolved
			}
			log.Debugf("[notify] confirm %s resolved: %s", ID, value)
			return nil
		}
	}
	return common.ErrUnknownAction
}

// Pending lists open confirmations
func (d *Dispatcher) Pending() []*Confirm {
	d.Lock()
	defer d.Unlock()

	confirms := make([]*Confirm, 0, len(d.confirms))
	for _, c := range d.confirms {
		confirms = append(confirms, c)
	}
	return confirms
}
