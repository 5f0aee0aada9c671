package mockbackend

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
)

type metadataPatch struct {
	NewMetadata map[string]any `json:"new_metadata"`
}

type newConversationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

type conversationRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) findConversationLocked(userID, conversationID string) *conversation {
	for _, conv := range s.conversations[userID] {
		if conv.id == conversationID {
			return conv
		}
	}
	return nil
}

// handleHistory returns the messages of a conversation. Unknown
// conversations have no messages.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := []backend.HistoryMessage{}
	if conv := s.findConversationLocked(c.Params("user"), c.Params("conversation")); conv != nil {
		messages = append(messages, conv.messages...)
	}
	return c.JSON(messages)
}

func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findConversationLocked(c.Params("user"), c.Params("conversation"))
	if conv == nil {
		return errorJSON(c, fiber.StatusNotFound, "conversation not found")
	}
	conv.messages = nil
	return ok(c)
}

// handleUpdateMessage merges new_metadata into a stored answer. Only the
// "disable" flag is understood.
func (s *Server) handleUpdateMessage(c *fiber.Ctx) error {
	var patch metadataPatch
	if err := c.BodyParser(&patch); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	for _, conv := range s.conversations[c.Params("user")] {
		for i := range conv.messages {
			msg := &conv.messages[i]
			if msg.ID != id {
				continue
			}
			if msg.Metadata == nil {
				msg.Metadata = &chatstream.Metadata{}
			}
			if disable, isBool := patch.NewMetadata["disable"].(bool); isBool {
				msg.Metadata.Disable = disable
			}
			return ok(c)
		}
	}
	return errorJSON(c, fiber.StatusNotFound, "message not found")
}

func (s *Server) handleConversations(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []backend.Conversation{}
	for _, conv := range s.conversations[c.Params("user")] {
		out = append(out, backend.Conversation{ConversationID: conv.id, Title: conv.title})
	}
	return c.JSON(out)
}

func (s *Server) handleNewConversation(c *fiber.Ctx) error {
	var req newConversationRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "user_id is required")
	}

	conv := &conversation{id: uuid.NewString(), title: req.Title}

	s.mu.Lock()
	s.conversations[req.UserID] = append([]*conversation{conv}, s.conversations[req.UserID]...)
	s.mu.Unlock()

	return c.JSON(fiber.Map{"conversation_id": conv.id})
}

func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	var req conversationRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" || req.ConversationID == "" {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "user_id and conversation_id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	convs := s.conversations[req.UserID]
	for i, conv := range convs {
		if conv.id == req.ConversationID {
			s.conversations[req.UserID] = append(convs[:i:i], convs[i+1:]...)
			return ok(c)
		}
	}
	return errorJSON(c, fiber.StatusNotFound, "conversation not found")
}
