package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/1broseidon/bsptile/internal/tiling"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandGetTree     CommandType = "GET_TREE"
	CommandRetile      CommandType = "RETILE"
	CommandReset       CommandType = "RESET"
	CommandReload      CommandType = "RELOAD"
	CommandSetSplit    CommandType = "SET_SPLIT"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request is one line sent from client to server. ID is echoed in the
// response and in the daemon's logs.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the server's single-line answer to a Request.
type Response struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	tiling.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// MonitorsData is returned by GET_MONITORS.
type MonitorsData struct {
	Monitors []tiling.MonitorView `json:"monitors"`
}

// TreeData is returned by GET_TREE.
type TreeData struct {
	Slots []tiling.SlotSnapshot `json:"slots"`
}

// SetSplitPayload is the payload of SET_SPLIT. An offset <= 0 restores the
// even split.
type SetSplitPayload struct {
	WindowID uint32 `json:"window_id"`
	Offset   int    `json:"offset"`
}

// NewRequest creates a request with a fresh id and an optional payload.
func NewRequest(cmd CommandType, payload interface{}) (*Request, error) {
	req := &Request{ID: uuid.NewString(), Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return req, nil
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("request has no command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
