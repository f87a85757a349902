package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Handler executes commands against the compositor state. Its methods are
// only called through the server's Exec function.
type Handler interface {
	Status() StatusData
	Outputs() OutputsData
	Windows() WindowsData
	Fixup() FixupData
	MapWindow(p MapWindowPayload) (WindowInfo, error)
	CloseWindow(p CloseWindowPayload) error
	AddOutput(p AddOutputPayload) (OutputInfo, error)
	RemoveOutput(p RemoveOutputPayload) error
	Reload() error
}

// ServerConfig holds configuration for the server.
type ServerConfig struct {
	SocketPath string
	Handler    Handler
	// Exec runs fn on the goroutine owning the handler's state. Nil runs
	// it on the connection goroutine.
	Exec    func(ctx context.Context, fn func()) error
	Timeout time.Duration
	Logger  *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	exec         func(ctx context.Context, fn func()) error
	timeout      time.Duration
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	exec := cfg.Exec
	if exec == nil {
		exec = func(_ context.Context, fn func()) error {
			fn()
			return nil
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(cfg.SocketPath)

	return &Server{
		socketPath: cfg.SocketPath,
		handler:    cfg.Handler,
		exec:       exec,
		timeout:    timeout,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Uptime reports how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var resp *Response
	if err := s.exec(ctx, func() { resp = s.handleCommand(req) }); err != nil {
		s.sendError(conn, fmt.Sprintf("Failed to run %s: %v", req.Command, err))
		return
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandReload:
		if err := s.handler.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		return ok(nil)
	case CommandGetStatus:
		status := s.handler.Status()
		status.UptimeSeconds = int64(s.Uptime().Seconds())
		status.DaemonRunning = true
		return ok(status)
	case CommandGetOutputs:
		return ok(s.handler.Outputs())
	case CommandGetWindows:
		return ok(s.handler.Windows())
	case CommandFixup:
		return ok(s.handler.Fixup())
	case CommandMapWindow:
		var p MapWindowPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid map payload: %v", err))
		}
		if p.Width <= 0 || p.Height <= 0 {
			return NewErrorResponse("width and height must be positive")
		}
		info, err := s.handler.MapWindow(p)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to map window: %v", err))
		}
		return ok(info)
	case CommandCloseWindow:
		var p CloseWindowPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
		}
		if err := s.handler.CloseWindow(p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to close window: %v", err))
		}
		return ok(nil)
	case CommandAddOutput:
		var p AddOutputPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid output payload: %v", err))
		}
		if p.Name == "" {
			return NewErrorResponse("name is required")
		}
		if p.Width <= 0 || p.Height <= 0 {
			return NewErrorResponse("width and height must be positive")
		}
		info, err := s.handler.AddOutput(p)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to add output: %v", err))
		}
		return ok(info)
	case CommandRemoveOutput:
		var p RemoveOutputPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid output payload: %v", err))
		}
		if err := s.handler.RemoveOutput(p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to remove output: %v", err))
		}
		return ok(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
