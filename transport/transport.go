package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/craftops/console-agent/common"
	"github.com/craftops/console-agent/types"
	"github.com/craftops/console-agent/utils"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Handler consumes one websocket event payload. Handlers are invoked in
// registration order, on the transport's read goroutine.
type Handler func(payload json.RawMessage)

// StateListener observes connection state changes
type StateListener func(state types.ConnectionState)

// envelope is the wire shape of a pushed event
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Transport keeps one duplex channel to the panel alive and fans events
// out to subscribers. Reconnects are automatic with exponential backoff;
// consumers are expected to be idempotent to replays after a reconnect.
type Transport struct {
	sync.RWMutex
	config *types.Config
	wsURL  string
	header http.Header

	conn           *websocket.Conn
	state          types.ConnectionState
	handlers       map[string][]Handler
	stateListeners []StateListener

	reconnects int64
}

// New creates a transport. Initial state is connecting, or disconnected
// when no token is configured.
func New(config *types.Config) (*Transport, error) {
	wsURL, err := websocketURL(config)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	state := types.StateConnecting
	if config.Panel.Token != "" {
		header.Set("Authorization", "Bearer "+config.Panel.Token)
	} else {
		state = types.StateDisconnected
	}

	return &Transport{
		config:   config,
		wsURL:    wsURL,
		header:   header,
		state:    state,
		handlers: map[string][]Handler{},
	}, nil
}

func websocketURL(config *types.Config) (string, error) {
	u, err := url.Parse(config.Panel.Endpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + config.Panel.WSPath
	return u.String(), nil
}

// On registers a handler for an event, multiple handlers per event are
// allowed. There is no unsubscribe, subscribers live for the session.
func (t *Transport) On(event string, h Handler) {
	t.Lock()
	defer t.Unlock()
	t.handlers[event] = append(t.handlers[event], h)
}

// OnStateChange registers a connection state listener
func (t *Transport) OnStateChange(l StateListener) {
	t.Lock()
	defer t.Unlock()
	t.stateListeners = append(t.stateListeners, l)
}

// State returns the current connection state
func (t *Transport) State() types.ConnectionState {
	t.RLock()
	defer t.RUnlock()
	return t.state
}

// Reconnects returns how many times the channel has been reestablished
func (t *Transport) Reconnects() int64 {
	t.RLock()
	defer t.RUnlock()
	return t.reconnects
}

func (t *Transport) setState(state types.ConnectionState) {
	t.Lock()
	if t.state == state {
		t.Unlock()
		return
	}
	t.state = state
	listeners := make([]StateListener, len(t.stateListeners))
	copy(listeners, t.stateListeners)
	t.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func (t *Transport) dispatch(event string, payload json.RawMessage) {
	t.RLock()
	handlers := make([]Handler, len(t.handlers[event]))
	copy(handlers, t.handlers[event])
	t.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

// Send pushes an event to the panel, e.g. a console command
func (t *Transport) Send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	t.Lock()
	defer t.Unlock()
	if t.conn == nil {
		return common.ErrNotConnected
	}
	return t.conn.WriteJSON(envelope{Event: event, Data: data})
}

// Run keeps the channel connected until ctx is done. Connection failures
// surface through the state listeners and the "disconnect" event, never
// through the return value.
func (t *Transport) Run(ctx context.Context) error {
	if t.config.Panel.Token == "" {
		log.Warn("[transport] no token configured, staying disconnected")
		<-ctx.Done()
		return nil
	}

	for {
		if err := t.connect(ctx); err != nil {
			log.Errorf("[transport] connect failed: %v, will retry", err)
		} else {
			t.readPump(ctx)
		}

		t.teardown()
		t.setState(types.StateDisconnected)
		t.dispatch(common.EventDisconnect, nil)

		select {
		case <-ctx.Done():
			log.Info("[transport] exiting")
			return nil
		case <-time.After(t.config.GetConnectionTimeout()):
		}
		t.setState(types.StateConnecting)
	}
}

// connect dials with backoff, a burst of quick failures grows the wait
func (t *Transport) connect(ctx context.Context) error {
	return utils.BackoffRetry(ctx, 5, func() error {
		dialer := &websocket.Dialer{HandshakeTimeout: t.config.GetConnectionTimeout()}
		conn, resp, err := dialer.DialContext(ctx, t.wsURL, t.header)
		if err != nil {
			return err
		}
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		t.Lock()
		t.conn = conn
		t.reconnects++
		t.Unlock()

		t.setState(types.StateConnected)
		t.dispatch(common.EventConnect, nil)
		log.Infof("[transport] connected to %s", t.wsURL)
		return nil
	})
}

// readPump delivers inbound events until the connection breaks or ctx
// is canceled
func (t *Transport) readPump(ctx context.Context) {
	t.RLock()
	conn := t.conn
	t.RUnlock()
	if conn == nil {
		return
	}

	// ReadJSON does not honor ctx, closing the conn is the only way to
	// unblock it. The watcher is tied to this connection's lifetime so
	// reconnects don't accumulate them.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return
			}
			// a malformed frame also lands here, the reconnect loop
			// resubscribes us to the stream
			log.Errorf("[transport] read failed: %v", err)
			return
		}
		if env.Event == "" {
			log.Debug("[transport] dropping frame without event name")
			continue
		}
		t.dispatch(env.Event, env.Data)
	}
}

func (t *Transport) teardown() {
	t.Lock()
	defer t.Unlock()
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
}
