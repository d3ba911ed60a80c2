package transport

import (
	"context"
	"time"

	"github.com/craftops/console-agent/utils"

	log "github.com/sirupsen/logrus"
)

// Poller repeats a fetch on a fixed interval. Ticks are independent: a
// slow or failed tick never blocks or skips the next one, overlapping
// in-flight fetches are tolerated because consumers reconcile from full
// snapshots.
type Poller struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       func(ctx context.Context) error
}

// NewPoller builds a poller. A positive timeout bounds each tick so a
// hung request delays only its own tick's result.
func NewPoller(name string, interval, timeout time.Duration, fn func(ctx context.Context) error) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		timeout:  timeout,
		fn:       fn,
	}
}

// Run fires an immediate first tick, then ticks on the interval until
// ctx is done. Tick failures are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) {
	log.Infof("[poller] %s starts, interval %v", p.name, p.interval)
	defer log.Infof("[poller] %s stops", p.name)

	p.fire(ctx)

	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			p.fire(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) fire(ctx context.Context) {
	go func() {
		var err error
		if p.timeout > 0 {
			utils.WithTimeout(ctx, p.timeout, func(ctx context.Context) {
				err = p.fn(ctx)
			})
		} else {
			err = p.fn(ctx)
		}
		if err != nil {
			log.Errorf("[poller] %s tick failed: %v", p.name, err)
		}
	}()
}
