package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/bsptile/internal/logging"
	"github.com/1broseidon/bsptile/internal/tiling"
)

const requestTimeout = 10 * time.Second

// Handler executes commands on behalf of the server. Implementations run the
// work on the layout goroutine and wait for it.
type Handler interface {
	Status(ctx context.Context) (tiling.Status, error)
	Monitors(ctx context.Context) ([]tiling.MonitorView, error)
	Tree(ctx context.Context) ([]tiling.SlotSnapshot, error)
	Retile(ctx context.Context) error
	Reset(ctx context.Context) error
	Reload(ctx context.Context) error
	SetSplit(ctx context.Context, window uint32, offset int) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	startTime  time.Time

	listener     net.Listener
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server that will listen on socketPath.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logging.Or(logger),
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections. A stale socket left by a
// previous daemon is removed; a live one is an error.
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("another daemon is listening on %s", s.socketPath)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener

	s.logger.Info("ipc: listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() {
				return
			}
			s.logger.Warn("ipc: accept failed", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) stopping() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection serves exactly one request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc: read failed", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("invalid request: %v", err))
	} else {
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		resp = s.handleCommand(ctx, req)
		cancel()
		resp.ID = req.ID
		s.logger.Debug("ipc: handled", "id", req.ID, "command", req.Command, "status", resp.Status)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("ipc: failed to marshal response", "error", err)
		return
	}
	if _, err := conn.Write(append(respData, '\n')); err != nil {
		s.logger.Warn("ipc: failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		st, err := s.handler.Status(ctx)
		return reply(StatusData{Status: st, UptimeSeconds: int64(time.Since(s.startTime).Seconds())}, err)
	case CommandGetMonitors:
		ms, err := s.handler.Monitors(ctx)
		return reply(MonitorsData{Monitors: ms}, err)
	case CommandGetTree:
		slots, err := s.handler.Tree(ctx)
		return reply(TreeData{Slots: slots}, err)
	case CommandRetile:
		return reply(nil, s.handler.Retile(ctx))
	case CommandReset:
		return reply(nil, s.handler.Reset(ctx))
	case CommandReload:
		s.logger.Info("ipc: reload requested", "id", req.ID)
		return reply(nil, s.handler.Reload(ctx))
	case CommandSetSplit:
		var p SetSplitPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid %s payload: %v", req.Command, err))
		}
		if p.WindowID == 0 {
			return NewErrorResponse("window_id is required")
		}
		return reply(nil, s.handler.SetSplit(ctx, p.WindowID, p.Offset))
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func reply(data interface{}, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
	s.logger.Info("ipc: stopped")
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}
