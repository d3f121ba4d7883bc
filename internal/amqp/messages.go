package amqp

import (
	"encoding/json"
	"time"
)

// ClassifyMessage asks the worker to categorize one transaction. It carries
// only the id; the worker fetches the full row from the database.
type ClassifyMessage struct {
	TransactionID string    `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewClassifyMessage(transactionID string) *ClassifyMessage {
	return &ClassifyMessage{
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *ClassifyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ClassifyMessageFromJSON(data []byte) (*ClassifyMessage, error) {
	var msg ClassifyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
