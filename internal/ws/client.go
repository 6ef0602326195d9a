package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout         = 10 * time.Second
	wsReadLimit          = 4096
	clientSendBuffer     = 256
	maxConnLifetime      = 4 * time.Hour
	credentialRefresh    = 15 * time.Minute
	credentialRefreshMax = 10 * time.Second
	pingInterval         = 30 * time.Second
	pingTimeout          = 10 * time.Second
	maxMissedPongs       = int32(2)
)

// Revalidator re-checks the credential a client connected with.
type Revalidator func(ctx context.Context) error

// Client wraps a single WebSocket connection managed by the Hub.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Logger
	Actor       string
	revalidate  Revalidator
	tables      atomic.Pointer[map[string]bool]
	closeOnce   sync.Once
	connectedAt time.Time
}

// NewClient creates a Client for conn. revalidate may be nil.
func NewClient(hub *Hub, conn *websocket.Conn, actor string, revalidate Revalidator) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log,
		Actor:       actor,
		revalidate:  revalidate,
		connectedAt: time.Now(),
	}
}

// closeSend safely closes the send channel exactly once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// wants reports whether events for table should reach this client.
func (c *Client) wants(table string) bool {
	tables := c.tables.Load()
	if tables == nil || len(*tables) == 0 {
		return true
	}
	return (*tables)[table]
}

func (c *Client) setTables(names []string) {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	c.tables.Store(&m)
}

// ReadPump reads messages from the WebSocket connection until it closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		_, msgBytes, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.WithField("status", websocket.CloseStatus(err)).Debug("feed client disconnected")
			}

			return
		}

		c.handleMessage(msgBytes)
	}
}

// handleMessage processes a subscribe request.
func (c *Client) handleMessage(msgBytes []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(msgBytes, &msg); err != nil || msg.Type != "subscribe" {
		return
	}

	c.setTables(msg.Tables)

	if c.hub.ReplayEvents(c, msg.LastEventID) {
		return
	}

	resetMsg, err := json.Marshal(ResetMsg{
		Type:   "reset",
		Reason: "requested events no longer available, reload from the audit log",
	})
	if err != nil {
		return
	}
	select {
	case c.send <- resetMsg:
	default:
	}
}

// sendPing sends a WebSocket ping and tracks missed pongs.
// Returns true if the connection should be closed.
func (c *Client) sendPing(ctx context.Context, missedPongs *atomic.Int32) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := c.conn.Ping(pingCtx)
	cancel()

	if err != nil {
		return missedPongs.Add(1) >= maxMissedPongs
	}

	missedPongs.Store(0)

	return false
}

// WritePump writes queued messages to the connection. It enforces a maximum
// connection lifetime and periodically re-validates the credential.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetimeTimer := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetimeTimer.Stop()

	refreshTicker := time.NewTicker(credentialRefresh)
	defer refreshTicker.Stop()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	var missedPongs atomic.Int32

	for {
		select {
		case <-pingTicker.C:
			if c.sendPing(ctx, &missedPongs) {
				c.log.Debug("closing feed client: missed pongs")
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()

			if err != nil {
				c.log.WithError(err).Debug("feed write failed")
				return
			}
		case <-refreshTicker.C:
			if !c.refresh(ctx) {
				return
			}
		case <-lifetimeTimer.C:
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort
			return
		}
	}
}

// refresh re-validates the credential. It returns false if the connection
// should close.
func (c *Client) refresh(ctx context.Context) bool {
	if c.revalidate == nil {
		return true
	}

	refreshCtx, cancel := context.WithTimeout(ctx, credentialRefreshMax)
	err := c.revalidate(refreshCtx)
	cancel()

	if err != nil {
		c.log.WithField("actor", c.Actor).Info("closing feed client: credential no longer valid")
		c.conn.Close(websocket.StatusPolicyViolation, "authentication expired") //nolint:errcheck // best-effort
		return false
	}

	return true
}
