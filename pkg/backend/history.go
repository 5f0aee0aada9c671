package backend

import (
	"context"
	"errors"
	"net/http"
)

// History returns the messages of a conversation in order.
func (c *Client) History(ctx context.Context, userID, conversationID string) ([]HistoryMessage, error) {
	var out []HistoryMessage
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("history", userID, conversationID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearHistory deletes every message of a conversation.
func (c *Client) ClearHistory(ctx context.Context, userID, conversationID string) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("history", userID, conversationID), nil, nil)
}

// UpdateMessageMetadata merges metadata into a stored message.
func (c *Client) UpdateMessageMetadata(ctx context.Context, userID, messageID string, metadata map[string]any) error {
	body := metadataPatch{NewMetadata: metadata}
	return c.doJSON(ctx, http.MethodPatch, c.endpoint("history", userID, "messages", messageID), body, nil)
}

// Conversations lists the conversations of a user.
func (c *Client) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	var out []Conversation
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("conversations", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type newConversationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

type newConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

// NewConversation creates a conversation and returns its id. title may be empty.
func (c *Client) NewConversation(ctx context.Context, userID, title string) (string, error) {
	out := &newConversationResponse{}
	body := newConversationRequest{UserID: userID, Title: title}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("new_conversation"), body, out); err != nil {
		return "", err
	}
	if out.ConversationID == "" {
		return "", errors.New("backend returned no conversation id")
	}
	return out.ConversationID, nil
}

type deleteConversationRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

// DeleteConversation deletes a conversation and its history.
func (c *Client) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	body := deleteConversationRequest{UserID: userID, ConversationID: conversationID}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("delete_conversation"), body, nil)
}
