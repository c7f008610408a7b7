package websocket

import (
	"time"

	"f1insights/pkg/contracts/domain"
)

// Client message types
const (
	TypeSelect    = "select"
	TypeParams    = "params"
	TypeReset     = "reset"
	TypeHeartbeat = "heartbeat"
)

// Server message types
const (
	TypeConnection = "connection"
	TypeMenu       = "menu"
	TypeView       = "view"
	TypeError      = "error"
	TypeShutdown   = "shutdown"
)

// Error codes carried by error messages
const (
	CodeInvalidMessage   = "INVALID_MESSAGE"
	CodeNoSelection      = "NO_ACTION_SELECTED"
	CodeValidation       = "VALIDATION_FAILED"
	CodeActionNotFound   = "ACTION_NOT_FOUND"
	CodeEntityNotFound   = "ENTITY_NOT_FOUND"
	CodeDatasetNotLoaded = "DATASET_NOT_LOADED"
	CodeTimeout          = "TIMEOUT"
	CodeAnalyticsFailed  = "ANALYTICS_FAILED"
)

// ClientMessage is a message received from the dashboard
type ClientMessage struct {
	Type   string                  `json:"type"`
	Action string                  `json:"action,omitempty"`
	Params *domain.AnalyticsParams `json:"params,omitempty"`
}

// ServerMessage is a message sent to the dashboard
type ServerMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func newMessage(msgType string, data interface{}) *ServerMessage {
	return &ServerMessage{Type: msgType, Data: data, Timestamp: time.Now().UTC()}
}

func newErrorMessage(code, message string, details interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}
