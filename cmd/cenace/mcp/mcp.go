// Package mcpcmder provides the mcp command, which exposes the CENACE
// assistant as MCP tools.
package mcpcmder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
	"github.com/anmerino-pnd/proyectoCenace/pkg/mcp"
)

const mcpLongDesc string = `Serve the CENACE assistant as an MCP (Model Context Protocol) server.

By default the server speaks MCP over stdin/stdout, which is how agents
launch local tools. With --http it serves the streamable HTTP transport on
the given address instead.

Tools:
  ask                  Ask a question and get the answer with its citations
  list_conversations   List the conversations of a user
  list_solutions       List the solutions of a user
  list_tickets         List the tickets

Tools that need a user default to the one signed in with "cenace login".

Examples:
  cenace mcp
  cenace mcp --http :8090 --filter documentos`

const mcpShortDesc string = "Serve the CENACE assistant over MCP"

type mcpCommander struct {
	endpoint string
	timeout  string
	k        uint
	filter   string
	httpAddr string

	env *clientenv.Env
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd, config.ChatFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &cmder.timeout)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagK, &cmder.k)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagFilter, &cmder.filter)
	cmd.Flags().StringVar(&cmder.httpAddr, "http", "", "Serve the streamable HTTP transport on this address instead of stdio")

	return cmd
}

func (c *mcpCommander) run(ctx context.Context) error {
	server, err := mcp.NewServer(mcp.Config{
		Backend: c.env.Client,
		UserID:  c.env.Session.UserID(),
		K:       int(c.env.Config.Chat.K),
		Filter:  c.env.Config.Chat.Filter,
		APIBase: c.env.Config.Client.APIEndpoint,
		Logger:  c.env.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.httpAddr == "" {
		c.env.Logger.Debug("serving MCP over stdio")
		return server.Run(ctx)
	}
	return c.serveHTTP(ctx, server)
}

func (c *mcpCommander) serveHTTP(ctx context.Context, server *mcp.Server) error {
	httpServer := &http.Server{
		Addr:              c.httpAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	fmt.Fprintf(os.Stderr, "MCP server listening on %s\n", c.httpAddr)
	c.env.Logger.Info("starting MCP server", zap.String("listen", c.httpAddr))

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("MCP server error: %w", err)
	case <-ctx.Done():
		c.env.Logger.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
