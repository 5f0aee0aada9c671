// Package mcp provides an MCP (Model Context Protocol) server that lets
// agents ask the CENACE assistant and browse its conversations, solutions
// and tickets.
package mcp

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

// Backend is the part of the backend API the tools use.
type Backend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatStream, error)
	NewConversation(ctx context.Context, userID, title string) (string, error)
	Conversations(ctx context.Context, userID string) ([]backend.Conversation, error)
	Solutions(ctx context.Context, userID string) ([]backend.Solution, error)
	Tickets(ctx context.Context) ([]backend.Ticket, error)
}

type Config struct {
	// Backend answers the tool calls
	Backend Backend

	// UserID is used when a tool call names no user
	UserID string

	// K and Filter are the retrieval defaults of the ask tool
	K      int
	Filter string

	// APIBase prefixes document links in citations
	APIBase string

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the CENACE tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cenace",
			Version: utils.BuildVersion(),
		},
		&mcp.ServerOptions{},
	)
	s.mcpServer = mcpServer

	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	if c.Noop {
		return s, nil
	}

	if c.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        askToolName,
		Description: askDescription,
	}, s.handleAsk)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listConversationsToolName,
		Description: listConversationsDescription,
	}, s.handleListConversations)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listSolutionsToolName,
		Description: listSolutionsDescription,
	}, s.handleListSolutions)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listTicketsToolName,
		Description: listTicketsDescription,
	}, s.handleListTickets)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves MCP over stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) userID(input string) (string, error) {
	if input != "" {
		return input, nil
	}
	if s.config.UserID != "" {
		return s.config.UserID, nil
	}
	return "", errors.New("user_id is required: pass it or log in with `cenace login`")
}

func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
