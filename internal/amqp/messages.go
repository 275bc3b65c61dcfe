package amqp

import (
	"encoding/json"
	"time"
)

// DataChangedMessage tells other processes sharing the same store that a
// collection was modified. Like the in-process signal it carries no record
// data; receivers reload from the store.
type DataChangedMessage struct {
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDataChangedMessage creates a message stamped with the current time.
func NewDataChangedMessage(origin string) *DataChangedMessage {
	return &DataChangedMessage{
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DataChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DataChangedMessageFromJSON decodes a message.
func DataChangedMessageFromJSON(data []byte) (*DataChangedMessage, error) {
	var msg DataChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
