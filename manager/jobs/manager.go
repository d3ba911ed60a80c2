package jobs

import (
	"context"
	"sync"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/metric"
	"github.com/craftops/console-agent/notify"
	"github.com/craftops/console-agent/transport"
	"github.com/craftops/console-agent/types"

	log "github.com/sirupsen/logrus"
)

// API is what the manager needs from the panel client
type API interface {
	Jobs(ctx context.Context, limit int) ([]*types.Job, error)
	SubmitJob(ctx context.Context, action types.JobAction, target string, options map[string]interface{}) (string, error)
	CancelJob(ctx context.Context, ID string) error
}

// Manager polls the panel's job list and reconciles local state from
// each snapshot. Replacement is wholesale, never a diff, so a missed
// update between polls cannot cause drift and a replayed snapshot is a
// no-op.
type Manager struct {
	sync.RWMutex
	config   *types.Config
	api      API
	notifier *notify.Dispatcher

	jobs []*types.Job
}

// NewManager .
func NewManager(config *types.Config, api API, notifier *notify.Dispatcher) *Manager {
	return &Manager{
		config:   config,
		api:      api,
		notifier: notifier,
	}
}

// Run polls until ctx is done. The poller is the page-lifetime timer,
// stopping it on teardown is what keeps timers from leaking.
func (m *Manager) Run(ctx context.Context) error {
	poller := transport.NewPoller("jobs", m.config.GetJobPollInterval(), m.config.GetConnectionTimeout(), m.tick)
	poller.Run(ctx)
	log.Info("[JobManager] exiting")
	return nil
}

// tick fetches the bounded snapshot and replaces the job list. A failed
// tick keeps the possibly stale list, stale-but-present beats
// flicker-to-empty.
func (m *Manager) tick(ctx context.Context) error {
	snapshot, err := m.api.Jobs(ctx, m.config.Poll.JobLimit)
	if err != nil {
		if mc := metric.GetClient(); mc != nil {
			mc.PollFailures.WithLabelValues("jobs").Inc()
		}
		return err
	}

	m.Lock()
	m.jobs = snapshot
	m.Unlock()

	if mc := metric.GetClient(); mc != nil {
		mc.JobsActive.Set(float64(len(m.Active())))
	}
	return nil
}

// Active returns jobs with status queued or running
func (m *Manager) Active() []*types.Job {
	m.RLock()
	defer m.RUnlock()

	active := []*types.Job{}
	for _, job := range m.jobs {
		if job.Status.Active() {
			active = append(active, job)
		}
	}
	return active
}

// Recent returns the most recent jobs regardless of status, limit <= 0
// means the dashboard default
func (m *Manager) Recent(limit int) []*types.Job {
	m.RLock()
	defer m.RUnlock()

	n := limit
	if n <= 0 {
		n = common.RecentJobs
	}
	if len(m.jobs) < n {
		n = len(m.jobs)
	}
	recent := make([]*types.Job, n)
	copy(recent, m.jobs[:n])
	return recent
}

// Get looks up a job from the last snapshot
func (m *Manager) Get(ID string) (*types.Job, error) {
	m.RLock()
	defer m.RUnlock()

	for _, job := range m.jobs {
		if job.ID == ID {
			return job, nil
		}
	}
	return nil, common.ErrJobNotFound
}

// Submit starts an asynchronous operation. On success the job id is
// pollable on the next tick, there is no local placeholder: a failed
// submission must not leave a phantom job behind.
func (m *Manager) Submit(ctx context.Context, action types.JobAction, target string, options map[string]interface{}) (string, error) {
	ID, err := m.api.SubmitJob(ctx, action, target, options)
	if err != nil {
		log.Errorf("[JobManager] submit %s %s failed: %v", action, target, err)
		m.notifier.Toast(failureMessage(err), notify.SeverityError, 0)
		return "", err
	}

	log.Infof("[JobManager] job %s submitted: %s %s", ID, action, target)
	m.notifier.Toast("job submitted", notify.SeveritySuccess, 0)
	return ID, nil
}

// Cancel asks for confirmation, then requests the cancel. Only queued
// or running jobs can be cancelled.
func (m *Manager) Cancel(ctx context.Context, ID string) error {
	job, err := m.Get(ID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return common.ErrJobTerminal
	}

	confirmed, err := m.notifier.Confirm(ctx, "Cancel job",
		"Cancel "+string(job.Action)+" of "+job.Target+"?")
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := m.api.CancelJob(ctx, ID); err != nil {
		log.Errorf("[JobManager] cancel %s failed: %v", ID, err)
		m.notifier.Toast(failureMessage(err), notify.SeverityError, 0)
		return err
	}
	return nil
}

func failureMessage(err error) string {
	if err == nil {
		return "request failed"
	}
	return err.Error()
}
