// Package tools hosts the filesystem operations as MCP tools.
//
// Every tool takes a typed argument struct (its JSON schema is inferred from
// the struct tags) and returns a result carrying success and message fields.
// Handlers never return Go errors: a failed operation is a result with
// success=false, flagged IsError on the wire.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/fsops"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/logger"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/search"
)

// ServerName is the implementation name announced during initialization.
const ServerName = "fileagent"

// Server is the MCP tool host.
type Server struct {
	cfg      *config.Config
	engine   *search.Engine
	ops      *fsops.Ops
	log      logger.Logger
	userHome string
	workDir  string
	now      func() time.Time
	mcp      *mcp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithUserHome sets the directory quick_search resolves its common
// directories against. Defaults to the current user's home.
func WithUserHome(dir string) Option {
	return func(s *Server) {
		s.userHome = dir
	}
}

// WithWorkDir sets where relative tool paths resolve. Defaults to
// cfg.ResolveWorkDir().
func WithWorkDir(dir string) Option {
	return func(s *Server) {
		s.workDir = dir
	}
}

// WithClock injects the time source shared by the engine and the file
// operations.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer builds the tool host and registers every tool.
func NewServer(cfg *config.Config, fs afero.Fs, log logger.Logger, version string, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		log: logger.OrNoOp(log),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.userHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			s.userHome = home
		}
	}
	if s.workDir == "" {
		if wd, err := cfg.ResolveWorkDir(); err == nil {
			s.workDir = wd
		}
	}

	s.engine = search.NewEngine(fs, search.WithClock(s.now))
	s.ops = fsops.New(fs, fsops.WithWorkDir(s.workDir), fsops.WithClock(s.now))
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	s.registerSearchTools()
	s.registerFileTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Serve runs the host on transport until the client disconnects or ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	s.log.LogInfo(fmt.Sprintf("tool host serving (work dir %s)", s.workDir))
	if err := s.mcp.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve tools: %w", err)
	}
	return nil
}

// status converts a result's success flag into the error reported to the
// logger and the IsError flag.
func status(success bool, message string) error {
	if success {
		return nil
	}
	return errors.New(message)
}

// register adds a tool whose handler cannot fail at the Go level. The
// structured output is also sent as JSON text for clients that ignore
// structured content.
func register[In, Out any](s *Server, tool *mcp.Tool, run func(ctx context.Context, in In) (Out, error)) {
	mcp.AddTool(s.mcp, tool, func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := s.now()
		out, failure := run(ctx, in)
		s.log.LogToolCall(tool.Name, s.now().Sub(start), failure)

		text, err := json.Marshal(out)
		if err != nil {
			text = []byte(fmt.Sprintf(`{"success":false,"message":%q}`, err.Error()))
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
			IsError: failure != nil,
		}, out, nil
	})
}
