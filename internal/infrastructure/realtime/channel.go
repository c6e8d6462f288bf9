package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/logger"
	"github.com/synk/client/internal/infrastructure/metrics"
	"github.com/synk/client/internal/ports"
)

// State is the channel connection state
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Channel is a reconnecting websocket client scoped to the authenticated
// user's identity. An unexpected close schedules reconnection with
// exponential backoff; an intentional Disconnect does not. Listener
// lifecycle is owned by subscribers, not the channel.
type Channel struct {
	baseURL  string
	cfg      config.RealtimeConfig
	identity ports.TokenSource
	logger   *logger.Logger
	metrics  *metrics.Metrics

	mu          sync.Mutex
	conn        *websocket.Conn
	state       State
	intentional bool
	attempts    int
	timer       *time.Timer
	listeners   map[Kind]map[uintptr]Handler
}

// NewChannel creates a realtime channel. The metrics set may be nil.
func NewChannel(cfg config.RealtimeConfig, identity ports.TokenSource, appLogger *logger.Logger, m *metrics.Metrics) *Channel {
	return &Channel{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		cfg:       cfg,
		identity:  identity,
		logger:    appLogger.WithComponent("realtime"),
		metrics:   m,
		listeners: map[Kind]map[uintptr]Handler{},
	}
}

// Connect opens the channel. It is a no-op when already connecting or
// connected. Without a known user identity the channel stays disconnected.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	user, err := c.identity.CurrentUser(ctx)
	if err != nil || user == nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		c.logger.Warn("Cannot connect: user not authenticated")
		return entities.ErrNotAuthenticated
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	url := fmt.Sprintf("%s/ws/%s/", c.baseURL, user.ID)

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		intentional := c.intentional
		c.mu.Unlock()
		c.logger.Warnw("Websocket dial failed", "error", err, "url", url)
		if !intentional {
			c.scheduleReconnect()
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.intentional = false
	c.mu.Unlock()

	c.logger.Infow("Connected to realtime channel", "user_id", user.ID)
	go c.readLoop(conn)
	return nil
}

// Disconnect marks the close as intentional and closes the transport.
// Registered listeners are kept.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.intentional = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.logger.Info("Disconnected from realtime channel")
}

// On registers a listener for an event kind. Registering the same function
// twice keeps a single registration.
func (c *Channel) On(kind Kind, h Handler) {
	if h == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.listeners[kind]
	if !ok {
		set = map[uintptr]Handler{}
		c.listeners[kind] = set
	}
	set[handlerKey(h)] = h
}

// Off removes a listener. A nil handler removes every listener for the kind.
func (c *Channel) Off(kind Kind, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == nil {
		delete(c.listeners, kind)
		return
	}
	if set, ok := c.listeners[kind]; ok {
		delete(set, handlerKey(h))
	}
}

// IsConnected reports whether the transport is open
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected
}

// State returns the current connection state
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.logger.Warnw("Failed to parse realtime frame", "error", err)
			continue
		}

		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env Envelope) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.listeners[env.Event]))
	for _, h := range c.listeners[env.Event] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RealtimeEventsTotal.WithLabelValues(string(env.Event)).Inc()
	}
	c.logger.LogRealtimeEvent(string(env.Event), "")

	for _, h := range handlers {
		h(env.Data)
	}
}

func (c *Channel) handleClose(conn *websocket.Conn, err error) {
	c.mu.Lock()
	// A stale read loop from a previous connection must not disturb the
	// current one
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	intentional := c.intentional
	c.mu.Unlock()

	if intentional {
		return
	}

	c.logger.Warnw("Realtime connection closed unexpectedly", "error", err)
	c.scheduleReconnect()
}

func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intentional {
		return
	}
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.logger.Errorw("Max reconnection attempts reached, giving up",
			"attempts", c.attempts)
		return
	}

	c.attempts++
	delay := c.cfg.ReconnectBackoffBase << (c.attempts - 1)
	if max := c.cfg.ReconnectBackoffMax; max > 0 && delay > max {
		delay = max
	}

	if c.metrics != nil {
		c.metrics.RealtimeReconnects.Inc()
	}
	c.logger.LogReconnect(c.attempts, float64(delay.Milliseconds()))

	c.timer = time.AfterFunc(delay, func() {
		_ = c.Connect(context.Background())
	})
}

func handlerKey(h Handler) uintptr {
	return reflect.ValueOf(h).Pointer()
}
