package status

import (
	"context"
	"errors"
	"testing"

	"github.com/craftops/console-agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	status     *types.ServerStatus
	statusErr  error
	players    []types.Player
	playersErr error
	backups    []types.Backup
	backupsErr error
}

func (f *fakeAPI) Status(ctx context.Context) (*types.ServerStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeAPI) Players(ctx context.Context) ([]types.Player, error) {
	return f.players, f.playersErr
}

func (f *fakeAPI) Backups(ctx context.Context) ([]types.Backup, error) {
	return f.backups, f.backupsErr
}

func newTestManager(api *fakeAPI) *Manager {
	config := &types.Config{}
	config.Poll.StatusInterval = 5
	return NewManager(config, api)
}

func TestTickReplacesSnapshots(t *testing.T) {
	api := &fakeAPI{
		status:  &types.ServerStatus{Online: true, PlayersOnline: 2, TPS: 19.8, MaxPlayers: 20},
		players: []types.Player{{Name: "Steve", Online: true}},
		backups: []types.Backup{{ID: "b1", Name: "daily"}},
	}
	m := newTestManager(api)

	require.Nil(t, m.Status())

	require.NoError(t, m.tick(context.Background()))
	status := m.Status()
	require.NotNil(t, status)
	assert.True(t, status.Online)
	assert.Len(t, m.Players(), 1)
	assert.Len(t, m.Backups(), 1)
}

func TestFailedTickKeepsStaleData(t *testing.T) {
	api := &fakeAPI{
		status:  &types.ServerStatus{Online: true, PlayersOnline: 2},
		players: []types.Player{{Name: "Steve"}},
	}
	m := newTestManager(api)
	require.NoError(t, m.tick(context.Background()))

	api.statusErr = errors.New("panel down")
	assert.Error(t, m.tick(context.Background()))

	// last known data survives the failed tick
	require.NotNil(t, m.Status())
	assert.True(t, m.Status().Online)
	assert.Len(t, m.Players(), 1)
}

func TestPartialFailureKeepsFreshStatus(t *testing.T) {
	api := &fakeAPI{
		status:  &types.ServerStatus{Online: true, PlayersOnline: 1},
		players: []types.Player{{Name: "Steve"}},
	}
	m := newTestManager(api)
	require.NoError(t, m.tick(context.Background()))

	api.status = &types.ServerStatus{Online: true, PlayersOnline: 5}
	api.playersErr = errors.New("timeout")
	require.NoError(t, m.tick(context.Background()))

	assert.Equal(t, 5, m.Status().PlayersOnline)
	// players list stays stale rather than flickering to empty
	assert.Len(t, m.Players(), 1)
}
