package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetOutputs   CommandType = "GET_OUTPUTS"
	CommandGetWindows   CommandType = "GET_WINDOWS"
	CommandFixup        CommandType = "FIXUP"
	CommandMapWindow    CommandType = "MAP_WINDOW"
	CommandCloseWindow  CommandType = "CLOSE_WINDOW"
	CommandAddOutput    CommandType = "ADD_OUTPUT"
	CommandRemoveOutput CommandType = "REMOVE_OUTPUT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Outputs         int   `json:"outputs"`
	Windows         int   `json:"windows"`
	Fullscreen      int   `json:"fullscreen"`
	PlacedWindows   int   `json:"placed_windows"`
	PendingBlockers int   `json:"pending_blockers"`
	UptimeSeconds   int64 `json:"uptime_seconds"`
	DaemonRunning   bool  `json:"daemon_running"`
}

// Rect is a rectangle in global logical coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LayerInfo describes one mapped layer surface.
type LayerInfo struct {
	Namespace string `json:"namespace"`
	Layer     string `json:"layer"`
}

// OutputInfo represents information about a single output
type OutputInfo struct {
	Name     string      `json:"name"`
	Geometry Rect        `json:"geometry"`
	Usable   Rect        `json:"usable"`
	Layers   []LayerInfo `json:"layers,omitempty"`
}

// OutputsData represents the data returned by GET_OUTPUTS
type OutputsData struct {
	Outputs []OutputInfo `json:"outputs"`
}

// WindowInfo represents one mapped window.
type WindowInfo struct {
	ID        uint32   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Geometry  Rect     `json:"geometry"`
	Activated bool     `json:"activated"`
	Ordinal   int      `json:"ordinal"`
	Outputs   []string `json:"outputs,omitempty"`
}

// WindowsData represents the data returned by GET_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// FixupData lists the windows FIXUP re-placed.
type FixupData struct {
	Moved []uint32 `json:"moved"`
}

// MapWindowPayload represents the payload for MAP_WINDOW. The pointer
// defaults to the daemon's last known position.
type MapWindowPayload struct {
	Title    string   `json:"title,omitempty"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	PointerX *float64 `json:"pointer_x,omitempty"`
	PointerY *float64 `json:"pointer_y,omitempty"`
}

// CloseWindowPayload represents the payload for CLOSE_WINDOW
type CloseWindowPayload struct {
	ID uint32 `json:"id"`
}

// AddOutputPayload represents the payload for ADD_OUTPUT
type AddOutputPayload struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RemoveOutputPayload represents the payload for REMOVE_OUTPUT
type RemoveOutputPayload struct {
	Name string `json:"name"`
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
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
