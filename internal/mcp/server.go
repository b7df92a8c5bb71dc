package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/bsptile/internal/ipc"
	"github.com/1broseidon/bsptile/internal/logging"
	"github.com/1broseidon/bsptile/internal/tiling"
)

const (
	ServerName    = "bsptile"
	ServerVersion = "0.1.0"
)

// Daemon is the running tiler as seen through its IPC socket.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetTree() ([]tiling.SlotSnapshot, error)
	Retile() error
	Reset() error
	SetSplit(window uint32, offset int) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server exposes the layout of a running daemon as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards every tool to d.
func NewServer(d Daemon, logger *slog.Logger) *Server {
	s := &Server{
		daemon: d,
		logger: logging.Or(logger),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_slots",
		Description: "List every tiled monitor/desktop pair with its work area and the windows tiled there, in layout order.",
	}, s.handleListSlots)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tree",
		Description: "Show the binary space partition tree of each slot: containers with their split direction and optional fixed offset, tiles with their window, and the rectangle of every node.",
	}, s.handleGetTree)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "retile",
		Description: "Move every window on the current desktop back into its tile.",
	}, s.handleRetile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reset",
		Description: "Rebuild every tree on the current desktop from scratch in window-manager order, discarding manual arrangement and split offsets.",
	}, s.handleReset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_split",
		Description: "Move the split line directly above a tiled window so that the first side is offset pixels wide (side by side) or tall (stacked). Offset 0 restores the even split.",
	}, s.handleSetSplit)
}
