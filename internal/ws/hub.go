// Package ws streams committed audit records to WebSocket subscribers.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/metrics"
	"github.com/courtsec/courtsec/internal/models"
)

// Hub channel buffer sizes and connection caps.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
	maxClients      = 500
	maxPerActor     = 10
)

// maxBroadcastPayload bounds a single event. Audit records carry whole rows,
// so this is larger than a notification would need.
const maxBroadcastPayload = 64 << 10

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// broadcast is sent through the broadcast channel to the Run goroutine.
type broadcast struct {
	table string
	msg   []byte
}

// Hub manages subscribers and fans out audit events.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	actorCount map[string]int
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	seq        atomic.Uint64
	log        *logrus.Logger
	buffer     *EventBuffer
	now        func() time.Time
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		actorCount: make(map[string]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan broadcast, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		now:        time.Now,
	}
}

// Run starts the hub event loop. It exits when Shutdown is called or ctx is
// cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return

		case <-h.shutdown:
			h.drainClients()
			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
			}
			h.log.WithField("total", len(h.clients)).Debug("feed subscriber left")

		case b := <-h.broadcast:
			for client := range h.clients {
				if !client.wants(b.table) {
					continue
				}
				select {
				case client.send <- b.msg:
				default:
					// Slow consumer; it can reconnect and replay.
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) add(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("feed connection limit reached, dropping client")
		client.closeSend()
		return
	}
	if h.actorCount[client.Actor] >= maxPerActor {
		h.log.WithField("actor", client.Actor).Warn("per-actor feed limit reached, dropping client")
		client.closeSend()
		return
	}

	h.clients[client] = true
	h.actorCount[client.Actor]++
	h.setCount()
	h.log.WithFields(logrus.Fields{"actor": client.Actor, "total": len(h.clients)}).Info("feed subscriber joined")
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()
	h.actorCount[client.Actor]--
	if h.actorCount[client.Actor] <= 0 {
		delete(h.actorCount, client.Actor)
	}
	h.setCount()
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.FeedSubscribers.Set(float64(len(h.clients)))
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// PublishAudit assigns the record a sequence ID, buffers it for replay and
// broadcasts it. It never blocks the caller.
func (h *Hub) PublishAudit(rec *models.AuditRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal audit record")
		return
	}

	evt := Event{
		Type:  EventAudit,
		ID:    h.seq.Add(1),
		Table: rec.TableName,
		Data:  data,
		Time:  h.now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"table":        rec.TableName,
			"primary_key":  rec.PrimaryKey,
			"payload_size": len(msg),
		}).Warn("dropping oversized feed event")
		return
	}

	h.buffer.Append(&evt)

	select {
	case h.broadcast <- broadcast{table: rec.TableName, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Shutdown drains subscribers and stops Run. It blocks until drain completes.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients sends a shutdown frame to every client and waits for buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining feed subscribers")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

wait:
	for {
		drained := true
		for client := range h.clients {
			if len(client.send) > 0 {
				drained = false
				break
			}
		}
		if drained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("feed drain timeout, closing remaining clients")
			break wait
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.actorCount = make(map[string]int)
	h.setCount()
}

// ReplayEvents queues buffered events after lastEventID for the client.
// It returns false if the requested ID is older than the buffer.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID()
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest-1 {
		return false
	}

	for _, evt := range h.buffer.Since(lastEventID) {
		if !client.wants(evt.Table) {
			continue
		}
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		select {
		case client.send <- msg:
		default:
			return true // channel full, stop replay
		}
	}
	return true
}
