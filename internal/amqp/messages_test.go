package amqp

import (
	"testing"
)

func TestClassifyMessageRoundTrip(t *testing.T) {
	msg := NewClassifyMessage("tx-123")
	if msg.Timestamp.IsZero() {
		t.Error("NewClassifyMessage should stamp the message")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := ClassifyMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ClassifyMessageFromJSON: %v", err)
	}
	if decoded.TransactionID != "tx-123" {
		t.Errorf("TransactionID = %q, want tx-123", decoded.TransactionID)
	}
}

func TestClassifyMessageFromJSONMalformed(t *testing.T) {
	if _, err := ClassifyMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
