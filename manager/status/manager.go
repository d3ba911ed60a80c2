package status

import (
	"context"
	"sync"

	"github.com/craftops/console-agent/metric"
	"github.com/craftops/console-agent/transport"
	"github.com/craftops/console-agent/types"

	log "github.com/sirupsen/logrus"
)

// API is what the manager needs from the panel client
type API interface {
	Status(ctx context.Context) (*types.ServerStatus, error)
	Players(ctx context.Context) ([]types.Player, error)
	Backups(ctx context.Context) ([]types.Backup, error)
}

// Manager polls the coarser resources: server status, players and
// backups. Each tick replaces the kept snapshot; failed ticks keep the
// stale one so consumers always see the last known data. Load-style
// failures are logged, never toasted, a failing 5s poll must not spam
// notifications.
type Manager struct {
	sync.RWMutex
	config *types.Config
	api    API

	status  *types.ServerStatus
	players []types.Player
	backups []types.Backup
}

// NewManager .
func NewManager(config *types.Config, api API) *Manager {
	return &Manager{
		config: config,
		api:    api,
	}
}

// Run polls until ctx is done
func (m *Manager) Run(ctx context.Context) error {
	poller := transport.NewPoller("status", m.config.GetStatusPollInterval(), m.config.GetConnectionTimeout(), m.tick)
	poller.Run(ctx)
	log.Info("[StatusManager] exiting")
	return nil
}

func (m *Manager) tick(ctx context.Context) error {
	status, err := m.api.Status(ctx)
	if err != nil {
		if mc := metric.GetClient(); mc != nil {
			mc.PollFailures.WithLabelValues("status").Inc()
		}
		return err
	}

	players, err := m.api.Players(ctx)
	if err != nil {
		// keep the fresh status, stale players
		log.Debugf("[StatusManager] players fetch failed: %v", err)
		players = nil
	}
	backups, err := m.api.Backups(ctx)
	if err != nil {
		log.Debugf("[StatusManager] backups fetch failed: %v", err)
		backups = nil
	}

	m.Lock()
	m.status = status
	if players != nil {
		m.players = players
	}
	if backups != nil {
		m.backups = backups
	}
	m.Unlock()

	if mc := metric.GetClient(); mc != nil {
		mc.PlayersOnline.Set(float64(status.PlayersOnline))
		mc.ServerTPS.Set(status.TPS)
		mc.Record("players_online", float64(status.PlayersOnline))
		mc.Record("tps", status.TPS)
		mc.Record("memory_used", float64(status.MemoryUsed))
	}
	return nil
}

// Status returns the last known server status, nil before the first
// successful tick
func (m *Manager) Status() *types.ServerStatus {
	m.RLock()
	defer m.RUnlock()
	if m.status == nil {
		return nil
	}
	status := *m.status
	return &status
}

// Players returns the last known player list
func (m *Manager) Players() []types.Player {
	m.RLock()
	defer m.RUnlock()
	players := make([]types.Player, len(m.players))
	copy(players, m.players)
	return players
}

// Backups returns the last known backup list
func (m *Manager) Backups() []types.Backup {
	m.RLock()
	defer m.RUnlock()
	backups := make([]types.Backup, len(m.backups))
	copy(backups, m.backups)
	return backups
}
