package amqp

import (
	"encoding/json"
	"time"
)

// SyncMessage is the lightweight notification published after a local write.
// It carries only the entity name, id and version; the worker fetches the
// full row from the local database before writing it to the remote store.
type SyncMessage struct {
	Entity    string    `json:"entity"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Deleted   bool      `json:"deleted,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage creates an upsert notification.
func NewSyncMessage(entity string, id, version int64) *SyncMessage {
	return &SyncMessage{
		Entity:    entity,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a delete notification.
func NewDeleteMessage(entity string, id int64) *SyncMessage {
	return &SyncMessage{
		Entity:    entity,
		ID:        id,
		Deleted:   true,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
