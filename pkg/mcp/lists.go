package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

var (
	listConversationsToolName    = "list_conversations"
	listConversationsDescription = "List the conversations of a user, most recent first."

	listSolutionsToolName    = "list_solutions"
	listSolutionsDescription = "List the answers a user liked, which the assistant reuses as solutions."

	listTicketsToolName    = "list_tickets"
	listTicketsDescription = "List the support tickets, with their linked conversation when one exists."
)

const previewLength = 200

// UserInput selects the user whose items are listed.
type UserInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"user whose items to list; defaults to the logged in user"`
}

type ConversationItem struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
}

type ConversationsOutput struct {
	UserID        string             `json:"user_id"`
	Conversations []ConversationItem `json:"conversations"`
	Count         int                `json:"count"`
}

type SolutionItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type SolutionsOutput struct {
	UserID    string         `json:"user_id"`
	Solutions []SolutionItem `json:"solutions"`
	Count     int            `json:"count"`
}

// TicketsInput has no arguments.
type TicketsInput struct{}

type TicketItem struct {
	Reference      string `json:"reference"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Categories     string `json:"categories,omitempty"`
	Solved         bool   `json:"solved"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type TicketsOutput struct {
	Tickets []TicketItem `json:"tickets"`
	Count   int          `json:"count"`
}

func (s *Server) handleListConversations(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, ConversationsOutput, error) {
	logger := s.config.Logger

	userID, err := s.userID(input.UserID)
	if err != nil {
		return toolError(err.Error()), ConversationsOutput{}, nil
	}

	conversations, err := s.config.Backend.Conversations(ctx, userID)
	if err != nil {
		logger.Error("failed to list conversations", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to list conversations: %v", err)), ConversationsOutput{}, nil
	}

	output := ConversationsOutput{UserID: userID, Conversations: make([]ConversationItem, 0, len(conversations))}
	for _, c := range conversations {
		output.Conversations = append(output.Conversations, ConversationItem{
			ConversationID: c.ConversationID,
			Title:          c.DisplayTitle(),
		})
	}
	output.Count = len(output.Conversations)
	return textResult(output, logger)
}

func (s *Server) handleListSolutions(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, SolutionsOutput, error) {
	logger := s.config.Logger

	userID, err := s.userID(input.UserID)
	if err != nil {
		return toolError(err.Error()), SolutionsOutput{}, nil
	}

	solutions, err := s.config.Backend.Solutions(ctx, userID)
	if err != nil {
		logger.Error("failed to list solutions", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to list solutions: %v", err)), SolutionsOutput{}, nil
	}

	output := SolutionsOutput{UserID: userID, Solutions: make([]SolutionItem, 0, len(solutions))}
	for _, sol := range solutions {
		output.Solutions = append(output.Solutions, SolutionItem{
			ID:       sol.ID,
			Question: sol.Question,
			Answer:   utils.Truncate(sol.Answer, previewLength),
		})
	}
	output.Count = len(output.Solutions)
	return textResult(output, logger)
}

func (s *Server) handleListTickets(ctx context.Context, _ *mcp.CallToolRequest, _ TicketsInput) (*mcp.CallToolResult, TicketsOutput, error) {
	logger := s.config.Logger

	tickets, err := s.config.Backend.Tickets(ctx)
	if err != nil {
		logger.Error("failed to list tickets", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to list tickets: %v", err)), TicketsOutput{}, nil
	}

	output := TicketsOutput{Tickets: make([]TicketItem, 0, len(tickets))}
	for _, t := range tickets {
		output.Tickets = append(output.Tickets, TicketItem{
			Reference:      t.Reference,
			Title:          t.Title,
			Description:    utils.Truncate(t.Description, previewLength),
			Categories:     string(t.Categories),
			Solved:         t.IsSolved,
			ConversationID: t.SolutionID,
		})
	}
	output.Count = len(output.Tickets)
	return textResult(output, logger)
}
