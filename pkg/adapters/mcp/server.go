// Package mcp exposes fortune sessions as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/aretw0/fatefinder/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultWaitTimeout bounds how long submit_fortune waits for the outcome.
const DefaultWaitTimeout = 15 * time.Second

const savedResultURI = "fatefinder://result"

// StateResponse is returned by every session tool.
type StateResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"Session the state belongs to"`
	State     domain.Snapshot `json:"state" jsonschema_description:"Current navigation state"`
	Message   string          `json:"message,omitempty" jsonschema_description:"Localised summary for the user"`
}

// SavedResultResponse is returned by get_saved_result.
type SavedResultResponse struct {
	Found  bool                  `json:"found"`
	Result *domain.FortuneResult `json:"result,omitempty"`
}

// Server wraps the session registry and exposes it as an MCP Server.
type Server struct {
	sessions    *session.Manager
	store       ports.ResultStore
	localizer   *i18n.Localizer
	logger      *slog.Logger
	waitTimeout time.Duration
	mcpServer   *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocalizer sets the language of tool messages.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(s *Server) {
		s.localizer = l
	}
}

// WithWaitTimeout bounds how long submit_fortune blocks when asked to wait.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, store ports.ResultStore, opts ...Option) *Server {
	s := &Server{
		sessions:    sessions,
		store:       store,
		logger:      logging.NewNop(),
		waitTimeout: DefaultWaitTimeout,
		mcpServer:   server.NewMCPServer("fatefinder-mcp", strings.TrimSpace(fatefinder.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.localizer == nil {
		s.localizer = i18n.MustLoad().Localizer()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_session"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Open a new fortune session on the home screen."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("start_input",
		mcp.WithDescription("Move a session from the home screen to the input form."),
		sessionIDParam(),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartInput))

	s.mcpServer.AddTool(mcp.NewTool("submit_fortune",
		mcp.WithDescription("Submit the profile and ask the fortune API which prefecture suits the person."),
		sessionIDParam(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Person's name")),
		mcp.WithString("birthday", mcp.Required(), mcp.Description("Birthday as YYYY-MM-DD")),
		mcp.WithString("blood_type", mcp.Required(), mcp.Description("Blood type"), mcp.Enum("A", "B", "AB", "O")),
		mcp.WithString("today", mcp.Description("Today's date as YYYY-MM-DD (defaults to the current date)")),
		mcp.WithBoolean("wait", mcp.Description("Wait for the result or error screen (default true)")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("restart",
		mcp.WithDescription("Go back from the result screen to the input form."),
		sessionIDParam(),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleRestart))

	s.mcpServer.AddTool(mcp.NewTool("retry",
		mcp.WithDescription("Go back from the error screen to the home screen."),
		sessionIDParam(),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleRetry))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Read the current navigation state of a session."),
		sessionIDParam(),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("get_saved_result",
		mcp.WithDescription("Read the most recently saved fortune result."),
		mcp.WithOutputSchema[SavedResultResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetSavedResult))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(savedResultURI, "Saved Fortune Result",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		res, err := s.store.Load(ctx, domain.SavedResultsKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load saved result: %w", err)
		}
		jsonBytes, _ := json.Marshal(res)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      savedResultURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) session(args map[string]any) (*fatefinder.Session, error) {
	var p struct {
		SessionID string `mapstructure:"session_id"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if p.SessionID == "" {
		return nil, errors.New("session_id is required")
	}
	return s.sessions.Get(p.SessionID)
}

// reply converts an action outcome into a tool response. Domain errors are
// reported in the message, not as tool failures, so the agent sees the state.
func (s *Server) reply(sess *fatefinder.Session, snap domain.Snapshot, err error) (StateResponse, error) {
	if errors.Is(err, domain.ErrSessionClosed) {
		return StateResponse{}, fmt.Errorf("%s", s.localizer.Error(err))
	}
	resp := StateResponse{SessionID: sess.ID(), State: snap}
	switch {
	case err != nil:
		resp.Message = s.localizer.Error(err)
	default:
		resp.Message = s.describe(snap)
	}
	return resp, nil
}

// describe summarises the screen in the configured language.
func (s *Server) describe(snap domain.Snapshot) string {
	l := s.localizer
	switch snap.Screen {
	case domain.ScreenHome:
		return l.T(i18n.HomeLead)
	case domain.ScreenInput:
		return l.T(i18n.InputHeading)
	case domain.ScreenLoading:
		return l.T(i18n.LoadingMessage)
	case domain.ScreenResult:
		msg := l.T(i18n.ResultHeading)
		if snap.LastResult != nil {
			msg += ": " + snap.LastResult.Name
		}
		if snap.PersistError != "" {
			msg += " (" + l.T(i18n.ResultPersistFailed) + ")"
		}
		return msg
	case domain.ScreenError:
		return l.T(i18n.ErrorMessage)
	}
	return ""
}

func (s *Server) handleStartSession(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (StateResponse, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return StateResponse{}, err
	}
	snap, err := sess.Snapshot(ctx)
	s.logger.Info("MCP: session started", "session_id", sess.ID())
	return s.reply(sess, snap, err)
}

func (s *Server) handleStartInput(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	snap, err := sess.StartInput(ctx)
	return s.reply(sess, snap, err)
}

func (s *Server) handleRestart(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	snap, err := sess.Restart(ctx)
	return s.reply(sess, snap, err)
}

func (s *Server) handleRetry(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	snap, err := sess.Retry(ctx)
	return s.reply(sess, snap, err)
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	snap, err := sess.Snapshot(ctx)
	return s.reply(sess, snap, err)
}

func (s *Server) handleGetSavedResult(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (SavedResultResponse, error) {
	res, err := s.store.Load(ctx, domain.SavedResultsKey)
	if errors.Is(err, domain.ErrResultNotFound) {
		return SavedResultResponse{}, nil
	}
	if err != nil {
		return SavedResultResponse{}, fmt.Errorf("load saved result: %w", err)
	}
	return SavedResultResponse{Found: true, Result: res}, nil
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}

	var p submitArgs
	if err := decodeArgs(args, &p); err != nil {
		return StateResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	wait := p.Wait == nil || *p.Wait

	updates, cancel := sess.Subscribe()
	defer cancel()

	snap, err := sess.Submit(ctx, p.Form)
	if err != nil || !wait {
		return s.reply(sess, snap, err)
	}

	timeout := time.NewTimer(s.waitTimeout)
	defer timeout.Stop()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return s.reply(sess, snap, domain.ErrSessionClosed)
			}
			snap = u
			if u.Screen == domain.ScreenResult || u.Screen == domain.ScreenError {
				return s.reply(sess, u, nil)
			}
		case <-timeout.C:
			return s.reply(sess, snap, nil)
		case <-ctx.Done():
			return StateResponse{}, ctx.Err()
		}
	}
}
