// Package events contains the event contract definitions for WebSocket
// communication with datawash clients.
package events

import (
	"time"

	"datawash/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle messages - the primary event types
	MessageTypeDatasetUploaded  MessageType = "dataset:uploaded"
	MessageTypeDatasetProcessed MessageType = "dataset:processed"
	MessageTypeDatasetDeleted   MessageType = "dataset:deleted"

	// Connection messages
	MessageTypeConnection MessageType = "connection"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`       // Unique message ID
	Type      MessageType `json:"type"`               // Message type
	Timestamp time.Time   `json:"timestamp"`          // Message timestamp
	TraceID   string      `json:"trace_id,omitempty"` // Request trace ID
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"` // Message payload
}

// DatasetPayload is the payload of dataset:uploaded and dataset:processed
// messages: the row-free metadata of the dataset involved.
type DatasetPayload struct {
	Dataset domain.DatasetMeta `json:"dataset"`
}

// DatasetDeletedPayload is the payload of dataset:deleted messages.
type DatasetDeletedPayload struct {
	ID int64 `json:"id"`
}

// ConnectionPayload greets a newly registered client.
type ConnectionPayload struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// ErrorPayload carries a broadcast error.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
