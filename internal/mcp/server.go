// Package mcp exposes the running shell daemon to MCP clients. Every tool
// is a thin wrapper over one IPC request.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wlshell/internal/ipc"
)

const (
	ServerName    = "wlshell"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetOutputs() (*ipc.OutputsData, error)
	GetWindows() (*ipc.WindowsData, error)
	Fixup() (*ipc.FixupData, error)
	MapWindow(p ipc.MapWindowPayload) (*ipc.WindowInfo, error)
	CloseWindow(id uint32) error
	AddOutput(p ipc.AddOutputPayload) (*ipc.OutputInfo, error)
	RemoveOutput(name string) error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for the shell daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcpServer: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		}, nil),
		daemon: daemon,
		logger: logger,
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session over t. Used by tests.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report daemon status: output and window counts, fullscreen holders, windows with a remembered placement cell and surfaces waiting on commit blockers.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_outputs",
		Description: "List outputs with their geometry in global coordinates, the usable area left after exclusive layer surfaces, and the layer surfaces mapped on them.",
	}, s.handleListOutputs)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List mapped windows with their global geometry, activation state, placement ordinal and the outputs they overlap.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "fixup_positions",
		Description: "Line outputs up left to right, re-arrange their layer surfaces and re-place every window that no longer overlaps a usable area. Returns the IDs of the windows that moved.",
	}, s.handleFixupPositions)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "map_window",
		Description: "Map a new toplevel window of the given size. It is placed on the output under the pointer: the first window is centred and later ones follow the spiral around the centre. Optionally move the pointer first.",
	}, s.handleMapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Destroy a window's surface. Its placement cell and fullscreen state are released.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_output",
		Description: "Hot-plug an output, or resize it if the name already exists, then re-place stranded windows.",
	}, s.handleAddOutput)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_output",
		Description: "Unplug an output. Its layer surfaces are destroyed and the windows it stranded are re-placed.",
	}, s.handleRemoveOutput)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Outputs:         status.Outputs,
		Windows:         status.Windows,
		Fullscreen:      status.Fullscreen,
		PlacedWindows:   status.PlacedWindows,
		PendingBlockers: status.PendingBlockers,
		UptimeSeconds:   status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListOutputs(_ context.Context, _ *mcpsdk.CallToolRequest, args ListOutputsInput) (*mcpsdk.CallToolResult, ListOutputsOutput, error) {
	data, err := s.daemon.GetOutputs()
	if err != nil {
		return nil, ListOutputsOutput{}, err
	}

	out := ListOutputsOutput{Outputs: []ipc.OutputInfo{}}
	for _, o := range data.Outputs {
		if args.Name != "" && o.Name != args.Name {
			continue
		}
		out.Outputs = append(out.Outputs, o)
	}
	if args.Name != "" && len(out.Outputs) == 0 {
		return nil, ListOutputsOutput{}, fmt.Errorf("no output named %q", args.Name)
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.GetWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{Windows: []ipc.WindowInfo{}}
	for _, w := range data.Windows {
		if args.Output != "" && !onOutput(w, args.Output) {
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	return nil, out, nil
}

func onOutput(w ipc.WindowInfo, name string) bool {
	for _, o := range w.Outputs {
		if o == name {
			return true
		}
	}
	return false
}

func (s *Server) handleFixupPositions(_ context.Context, _ *mcpsdk.CallToolRequest, _ FixupPositionsInput) (*mcpsdk.CallToolResult, FixupPositionsOutput, error) {
	data, err := s.daemon.Fixup()
	if err != nil {
		return nil, FixupPositionsOutput{}, err
	}
	moved := data.Moved
	if moved == nil {
		moved = []uint32{}
	}
	if len(moved) > 0 {
		s.logger.Info("windows re-placed", "count", len(moved))
	}
	return nil, FixupPositionsOutput{Moved: moved}, nil
}

func (s *Server) handleMapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MapWindowInput) (*mcpsdk.CallToolResult, MapWindowOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, MapWindowOutput{}, fmt.Errorf("width and height must be positive, got %dx%d", args.Width, args.Height)
	}
	w, err := s.daemon.MapWindow(ipc.MapWindowPayload{
		Title:    args.Title,
		Width:    args.Width,
		Height:   args.Height,
		PointerX: args.PointerX,
		PointerY: args.PointerY,
	})
	if err != nil {
		return nil, MapWindowOutput{}, err
	}
	s.logger.Info("window mapped", "id", w.ID, "title", w.Title)
	return nil, MapWindowOutput{Window: *w}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if err := s.daemon.CloseWindow(args.ID); err != nil {
		return nil, CloseWindowOutput{}, err
	}
	return nil, CloseWindowOutput{ID: args.ID, Closed: true}, nil
}

func (s *Server) handleAddOutput(_ context.Context, _ *mcpsdk.CallToolRequest, args AddOutputInput) (*mcpsdk.CallToolResult, AddOutputOutput, error) {
	if args.Name == "" {
		return nil, AddOutputOutput{}, fmt.Errorf("name is required")
	}
	o, err := s.daemon.AddOutput(ipc.AddOutputPayload{
		Name:   args.Name,
		Width:  args.Width,
		Height: args.Height,
	})
	if err != nil {
		return nil, AddOutputOutput{}, err
	}
	return nil, AddOutputOutput{Output: *o}, nil
}

func (s *Server) handleRemoveOutput(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveOutputInput) (*mcpsdk.CallToolResult, RemoveOutputOutput, error) {
	if args.Name == "" {
		return nil, RemoveOutputOutput{}, fmt.Errorf("name is required")
	}
	if err := s.daemon.RemoveOutput(args.Name); err != nil {
		return nil, RemoveOutputOutput{}, err
	}
	return nil, RemoveOutputOutput{Name: args.Name, Removed: true}, nil
}
