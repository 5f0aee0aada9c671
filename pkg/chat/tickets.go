package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
)

// AlertNoUserTicket is shown when a ticket is brought to chat while signed out.
const AlertNoUserTicket = "Por favor, ingresa tu nombre de usuario para comenzar un chat."

// TicketPrompt is the first question sent in a conversation opened from a
// ticket.
func TicketPrompt(t backend.Ticket) string {
	return fmt.Sprintf("Solo quiero que leas la información y entiendas el contexto de lo que está sucediendo, comprender el problema y entender lo que pasa.\n"+
		"Contexto del ticket:\n\"\"\"\nTítulo: %s\nDescripción: %s\n\"\"\"\n", t.Title, t.Description)
}

// BringTicketToConversation opens the conversation linked to ticket. A
// ticket without one gets a new conversation titled after it, linked back
// through the ticket's solucion_id, and seeded with TicketPrompt. The
// returned message is the answer to that prompt; it is empty when an
// existing conversation was opened.
func (c *Controller) BringTicketToConversation(ctx context.Context, ticket backend.Ticket) (chatstream.Message, error) {
	userID := c.session.UserID()
	if userID == "" {
		c.view.Alert(AlertNoUserTicket)
		return chatstream.Message{}, session.ErrNoUser
	}

	if ticket.SolutionID != "" {
		return chatstream.Message{}, c.LoadHistory(ctx, ticket.SolutionID)
	}

	conversationID, err := c.backend.NewConversation(ctx, userID, ticket.Title)
	if err != nil {
		return chatstream.Message{}, fmt.Errorf("creating conversation for ticket %s: %w", ticket.Reference, err)
	}

	err = c.backend.UpdateTicket(ctx, ticket.Reference, map[string]any{"solucion_id": conversationID})
	if err != nil {
		return chatstream.Message{}, fmt.Errorf("linking ticket %s to conversation %s: %w", ticket.Reference, conversationID, err)
	}
	c.logger.Debug("ticket linked",
		zap.String("ticket", ticket.Reference),
		zap.String("conversation_id", conversationID),
	)

	if _, err := c.Conversations(ctx); err != nil {
		c.logger.Debug("could not refresh conversations", zap.Error(err))
	}
	if err := c.LoadHistory(ctx, conversationID); err != nil {
		return chatstream.Message{}, err
	}
	return c.SendMessage(ctx, TicketPrompt(ticket))
}
