package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/bsptile/internal/runtimepath"
	"github.com/1broseidon/bsptile/internal/tiling"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at path.
func NewClientAt(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.ID != "" && resp.ID != req.ID {
		return nil, fmt.Errorf("response id %s does not match request %s", resp.ID, req.ID)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) do(cmd CommandType, payload, out interface{}) error {
	req, err := NewRequest(cmd, payload)
	if err != nil {
		return err
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.do(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() ([]tiling.MonitorView, error) {
	var data MonitorsData
	if err := c.do(CommandGetMonitors, nil, &data); err != nil {
		return nil, err
	}
	return data.Monitors, nil
}

// GetTree retrieves a snapshot of every slot's tree.
func (c *Client) GetTree() ([]tiling.SlotSnapshot, error) {
	var data TreeData
	if err := c.do(CommandGetTree, nil, &data); err != nil {
		return nil, err
	}
	return data.Slots, nil
}

func (c *Client) Retile() error {
	return c.do(CommandRetile, nil, nil)
}

func (c *Client) Reset() error {
	return c.do(CommandReset, nil, nil)
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() error {
	return c.do(CommandReload, nil, nil)
}

// SetSplit pins the split above window to offset pixels.
func (c *Client) SetSplit(window uint32, offset int) error {
	return c.do(CommandSetSplit, SetSplitPayload{WindowID: window, Offset: offset}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
