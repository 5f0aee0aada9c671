package mcp_test

import (
	"context"
	"io"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	cenacelogger "github.com/anmerino-pnd/proyectoCenace/pkg/logger"
	"github.com/anmerino-pnd/proyectoCenace/pkg/mcp"
)

type ticketsOnly struct {
	tickets []backend.Ticket
}

func (t *ticketsOnly) Chat(context.Context, backend.ChatRequest) (*backend.ChatStream, error) {
	return &backend.ChatStream{ReadCloser: io.NopCloser(strings.NewReader(""))}, nil
}

func (t *ticketsOnly) NewConversation(context.Context, string, string) (string, error) {
	return "c1", nil
}

func (t *ticketsOnly) Conversations(context.Context, string) ([]backend.Conversation, error) {
	return nil, nil
}

func (t *ticketsOnly) Solutions(context.Context, string) ([]backend.Solution, error) {
	return nil, nil
}

func (t *ticketsOnly) Tickets(context.Context) ([]backend.Ticket, error) {
	return t.tickets, nil
}

var _ = Describe("MCP Server", func() {
	Describe("NewServer", func() {
		It("returns an error when the backend is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: cenacelogger.OrNop(nil)})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("backend is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Backend: &ticketsOnly{}})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates an empty server in noop mode", func() {
			server, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	It("serves the tools to a connected client", func() {
		ctx := context.Background()
		server, err := mcp.NewServer(mcp.Config{
			Backend: &ticketsOnly{tickets: []backend.Ticket{{Reference: "t1", Title: "Falla UPS"}}},
			Logger:  cenacelogger.OrNop(nil),
		})
		Expect(err).NotTo(HaveOccurred())

		serverTransport, clientTransport := sdk.NewInMemoryTransports()
		serverSession, err := server.Connect(ctx, serverTransport)
		Expect(err).NotTo(HaveOccurred())
		defer serverSession.Close()

		client := sdk.NewClient(&sdk.Implementation{Name: "test", Version: "v0.0.1"}, nil)
		session, err := client.Connect(ctx, clientTransport, nil)
		Expect(err).NotTo(HaveOccurred())
		defer session.Close()

		tools, err := session.ListTools(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(tools.Tools))
		for _, t := range tools.Tools {
			names = append(names, t.Name)
		}
		Expect(names).To(ConsistOf("ask", "list_conversations", "list_solutions", "list_tickets"))

		res, err := session.CallTool(ctx, &sdk.CallToolParams{
			Name:      "list_tickets",
			Arguments: map[string]any{},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeFalse())
		Expect(res.Content).To(HaveLen(1))
		text, ok := res.Content[0].(*sdk.TextContent)
		Expect(ok).To(BeTrue())
		Expect(text.Text).To(ContainSubstring(`"title":"Falla UPS"`))
	})
})
