package types

import "encoding/json"

// defaults applied when the panel omits optional fields
const (
	DefaultTPS        = 20.0
	DefaultMaxPlayers = 20
)

// ServerStatus is a point-in-time snapshot of the game server
type ServerStatus struct {
	Online        bool    `json:"online"`
	Version       string  `json:"version"`
	PlayersOnline int     `json:"playersOnline"`
	MaxPlayers    int     `json:"maxPlayers"`
	TPS           float64 `json:"tps"`
	MemoryUsed    int64   `json:"memoryUsed"`
	MemoryMax     int64   `json:"memoryMax"`
	UptimeSeconds int64   `json:"uptime"`
}

// UnmarshalJSON tolerates missing optional fields, filling the defaults
// the panel UI assumes
func (s *ServerStatus) UnmarshalJSON(data []byte) error {
	type alias ServerStatus
	aux := struct {
		*alias
		MaxPlayers *int     `json:"maxPlayers"`
		TPS        *float64 `json:"tps"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.MaxPlayers = DefaultMaxPlayers
	if aux.MaxPlayers != nil {
		s.MaxPlayers = *aux.MaxPlayers
	}
	s.TPS = DefaultTPS
	if aux.TPS != nil {
		s.TPS = *aux.TPS
	}
	return nil
}

// Player is an online player as the panel reports it
type Player struct {
	Name     string `json:"name"`
	UUID     string `json:"uuid"`
	Online   bool   `json:"online"`
	PlayTime int64  `json:"playTime"`
	LastSeen string `json:"lastSeen"`
}

// Backup is one backup archive known to the panel
type Backup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size"`
	CreatedAt string `json:"createdAt"`
}

// ConnectionState tracks the websocket channel
type ConnectionState string

// connection states
const (
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
)
