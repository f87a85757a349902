package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/wlshell/internal/runtimepath"
)

// DefaultTimeout bounds a whole request/response exchange.
const DefaultTimeout = 5 * time.Second

// Client talks to a running daemon. Each call dials a fresh connection.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket. A socket path that
// cannot be resolved surfaces as a connection error on the first call.
func NewClient() *Client {
	socketPath, _ := runtimepath.SocketPath()
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: DefaultTimeout}
}

// roundTrip writes one request line and reads one response line.
func (c *Client) roundTrip(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	// Encode terminates the value with a newline, which frames the request.
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", req.Command, err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Command, err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends cmd with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.roundTrip(req)
	if err != nil || out == nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

func query[T any](c *Client, cmd CommandType, payload any) (*T, error) {
	var out T
	if err := c.call(cmd, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

func (c *Client) GetStatus() (*StatusData, error) {
	return query[StatusData](c, CommandGetStatus, nil)
}

// GetOutputs returns output geometry, usable areas and layer surfaces.
func (c *Client) GetOutputs() (*OutputsData, error) {
	return query[OutputsData](c, CommandGetOutputs, nil)
}

// GetWindows returns the mapped windows in stacking order.
func (c *Client) GetWindows() (*WindowsData, error) {
	return query[WindowsData](c, CommandGetWindows, nil)
}

// Fixup re-anchors outputs and re-places orphaned windows.
func (c *Client) Fixup() (*FixupData, error) {
	return query[FixupData](c, CommandFixup, nil)
}

// MapWindow creates, commits and places a window.
func (c *Client) MapWindow(p MapWindowPayload) (*WindowInfo, error) {
	return query[WindowInfo](c, CommandMapWindow, p)
}

func (c *Client) CloseWindow(id uint32) error {
	return c.call(CommandCloseWindow, CloseWindowPayload{ID: id}, nil)
}

// AddOutput hot-plugs an output, or resizes one with the same name.
func (c *Client) AddOutput(p AddOutputPayload) (*OutputInfo, error) {
	return query[OutputInfo](c, CommandAddOutput, p)
}

func (c *Client) RemoveOutput(name string) error {
	return c.call(CommandRemoveOutput, RemoveOutputPayload{Name: name}, nil)
}

// Ping checks that the daemon answers a status request.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
