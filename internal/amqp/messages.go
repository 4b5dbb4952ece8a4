package amqp

import (
	"encoding/json"
	"time"
)

// SyncRequestMessage asks the sync worker to run a bank sync. It carries no
// payload beyond the reason: the worker reads the access URL and lookback
// from its own configuration, so a stale message can never replay old
// state.
type SyncRequestMessage struct {
	Reason      string    `json:"reason"` // "manual", "scheduled"
	RequestedAt time.Time `json:"requested_at"`
}

const (
	ReasonManual    = "manual"
	ReasonScheduled = "scheduled"
)

// NewSyncRequestMessage creates a sync request with the given reason.
func NewSyncRequestMessage(reason string) *SyncRequestMessage {
	return &SyncRequestMessage{
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SyncRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncRequestMessageFromJSON creates a message from JSON bytes.
func SyncRequestMessageFromJSON(data []byte) (*SyncRequestMessage, error) {
	var msg SyncRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
