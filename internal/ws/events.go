package ws

import (
	"encoding/json"
	"time"
)

// EventAudit is the event type carrying one committed audit record.
const EventAudit = "audit"

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type  string          `json:"type"`
	ID    uint64          `json:"id"`
	Table string          `json:"table,omitempty"`
	Data  json.RawMessage `json:"data"`
	Time  time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client to choose tables and request replay of
// events after LastEventID. An empty Tables list means every table.
type SubscribeMsg struct {
	Type        string   `json:"type"`
	LastEventID uint64   `json:"last_event_id"`
	Tables      []string `json:"tables"`
}

// ResetMsg tells the client to reload from the audit API because the
// requested events are no longer buffered.
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
