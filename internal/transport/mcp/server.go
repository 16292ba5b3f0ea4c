package mcp

import (
	"context"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/pkg/log"
)

// Server exposes the memory service as MCP tools over stdio.
type Server struct {
	svc *memory.Service
	mcp *server.MCPServer
	in  io.Reader
	out io.Writer

	done chan struct{}
}

type Option func(*Server)

// WithIO replaces stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

func NewServer(svc *memory.Service, opts ...Option) *Server {
	s := &Server{
		svc:  svc,
		in:   os.Stdin,
		out:  os.Stdout,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		core.TuskName,
		core.TuskVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(storeTool(), s.handleStore)
	s.mcp.AddTool(queryTool(), s.handleQuery)
	s.mcp.AddTool(feedbackTool(), s.handleFeedback)
	s.mcp.AddTool(relateTool(), s.handleRelate)
	s.mcp.AddTool(relatedTool(), s.handleRelated)
	s.mcp.AddTool(pruneTool(), s.handlePrune)
	s.mcp.AddTool(healthTool(), s.handleHealth)
}

// Start serves until ctx is cancelled or stdin is closed.
func (s *Server) Start(ctx context.Context) error {
	defer close(s.done)
	ctx = log.WithComponent(ctx, "mcp")
	log.FromCtx(ctx).Info().Msg("serving memory tools over stdio")

	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, s.in, s.out); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Done is closed once Start has returned.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
