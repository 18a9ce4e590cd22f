// Package server exposes the supervisor over a websocket chat endpoint,
// alongside Prometheus metrics and a health probe.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/memory"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the chat server.
type Options struct {
	// Addr is the listen address (default ":8080").
	Addr string
	// MetricsPath serves Prometheus metrics (default "/metrics").
	MetricsPath string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// ChatRequest is one inbound websocket frame.
type ChatRequest struct {
	Content string `json:"content"`
}

// ChatResponse is one outbound websocket frame.
type ChatResponse struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	SessionID string                 `json:"session_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Server serves chat sessions over websockets. Each connection gets its
// own session ID and transcript in the store.
type Server struct {
	agent    fitkit.Agent
	store    memory.Store
	logger   *slog.Logger
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates a chat server around agent, persisting transcripts to store.
func New(agent fitkit.Agent, store memory.Store, opts Options) (*Server, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent is required")
	}
	if store == nil {
		return nil, fmt.Errorf("transcript store is required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		agent:  agent,
		store:  store,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle(opts.MetricsPath, promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe serves until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("chat server listening", "addr", s.httpSrv.Addr, "agent", s.agent.Name())
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// handleChat upgrades the connection and runs the per-session chat loop.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := memory.NewSessionID()
	s.logger.Info("chat session started", "session_id", sessionID, "remote", r.RemoteAddr)

	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("chat session aborted", "session_id", sessionID, "error", err)
			}
			return
		}
		if req.Content == "" {
			s.writeError(conn, sessionID, "empty message")
			continue
		}

		response := s.respond(r.Context(), sessionID, req.Content)
		if err := conn.WriteJSON(response); err != nil {
			s.logger.Warn("failed to write chat response", "session_id", sessionID, "error", err)
			return
		}
	}
}

// respond runs one turn: store the user message, invoke the agent, store
// and return its reply.
func (s *Server) respond(ctx context.Context, sessionID, content string) ChatResponse {
	userMsg := fitkit.NewMessage("user", content)
	if err := s.store.Append(ctx, sessionID, userMsg); err != nil {
		s.logger.Warn("failed to store user message", "session_id", sessionID, "error", err)
	}

	reply, err := s.agent.Process(ctx, userMsg)
	if err != nil {
		s.logger.Error("agent failed", "session_id", sessionID, "error", err)
		return ChatResponse{
			Role:      "assistant",
			SessionID: sessionID,
			Error:     err.Error(),
		}
	}

	if err := s.store.Append(ctx, sessionID, reply); err != nil {
		s.logger.Warn("failed to store reply", "session_id", sessionID, "error", err)
	}

	return ChatResponse{
		Role:      reply.Role,
		Content:   reply.Content,
		SessionID: sessionID,
		Metadata:  reply.Metadata,
	}
}

func (s *Server) writeError(conn *websocket.Conn, sessionID, message string) {
	_ = conn.WriteJSON(ChatResponse{
		Role:      "assistant",
		SessionID: sessionID,
		Error:     message,
	})
}
