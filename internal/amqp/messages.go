package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEvent is published after every ledger mutation. It carries only
// the username, id and action; consumers fetch the transaction itself from
// storage when they need it.
type TransactionEvent struct {
	Username  string    `json:"username"`
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(username string, id int64, action string) *TransactionEvent {
	return &TransactionEvent{
		Username:  username,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON serializes the event for publishing.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON deserializes a consumed message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
