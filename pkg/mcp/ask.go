package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/references"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

var (
	askToolName    = "ask"
	askDescription = "Ask the CENACE assistant a question. The answer is grounded on the documents, liked solutions and tickets of the knowledge base and comes with its references."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Query          string `json:"query" jsonschema:"the question to ask"`
	UserID         string `json:"user_id,omitempty" jsonschema:"user asking; defaults to the logged in user"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to continue; a new one is created when empty"`
	K              int    `json:"k,omitempty" jsonschema:"number of passages to retrieve (default: 10)"`
	Filter         string `json:"filter,omitempty" jsonschema:"collection to search: documentos, tickets, soluciones or None"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	ConversationID string                `json:"conversation_id"`
	MessageID      string                `json:"message_id,omitempty"`
	Answer         string                `json:"answer"`
	Degraded       bool                  `json:"degraded"`
	References     []references.Citation `json:"references"`
}

// handleAsk sends a question and waits for the sealed answer.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	if input.Query == "" {
		return toolError("query is required"), AskOutput{}, nil
	}
	userID, err := s.userID(input.UserID)
	if err != nil {
		return toolError(err.Error()), AskOutput{}, nil
	}

	k := input.K
	if k <= 0 {
		k = s.config.K
	}
	filter := input.Filter
	if filter == "" {
		filter = s.config.Filter
	}

	logger.Debug("MCP ask request",
		zap.String("user_id", userID),
		zap.String("conversation_id", input.ConversationID),
		zap.Int("k", k),
		zap.String("filter", filter),
	)

	conversationID := input.ConversationID
	if conversationID == "" {
		conversationID, err = s.config.Backend.NewConversation(ctx, userID, utils.Truncate(input.Query, 40))
		if err != nil {
			logger.Error("failed to create conversation", zap.Error(err))
			return toolError(fmt.Sprintf("Failed to create conversation: %v", err)), AskOutput{}, nil
		}
	}

	stream, err := s.config.Backend.Chat(ctx, backend.ChatRequest{
		UserID:         userID,
		ConversationID: conversationID,
		Query:          input.Query,
		K:              k,
		FilterMetadata: backend.FilterFor(filter),
	})
	if err != nil {
		logger.Error("chat request failed", zap.Error(err))
		return toolError(fmt.Sprintf("Error: %v", err)), AskOutput{}, nil
	}
	defer stream.Close()

	msg, err := chatstream.ReadStream(ctx, stream, chatstream.New(chatstream.WithLogger(logger)), nil)
	if err != nil {
		logger.Error("failed to read answer", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to read answer: %v", err)), AskOutput{}, nil
	}

	output := AskOutput{
		ConversationID: conversationID,
		MessageID:      msg.MessageID,
		Answer:         msg.RawText,
		Degraded:       !msg.HasID(),
		References:     []references.Citation{},
	}
	if msg.Metadata != nil {
		output.References = append(output.References, references.DescribeAll(msg.Metadata.References, s.config.APIBase)...)
	}

	return textResult(output, logger)
}

// textResult serializes the structured output as JSON for the text field;
// tools returning structured content also return it as a TextContent block.
func textResult[T any](output T, logger *zap.Logger) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal tool output", zap.Error(err))
		var zero T
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
