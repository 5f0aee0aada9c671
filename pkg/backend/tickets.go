package backend

import (
	"context"
	"errors"
	"net/http"
)

// Tickets lists every support ticket.
func (c *Client) Tickets(ctx context.Context) ([]Ticket, error) {
	var out []Ticket
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("tickets"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTicket files a new ticket.
func (c *Client) CreateTicket(ctx context.Context, t NewTicket) error {
	if t.Title == "" || t.Description == "" {
		return errors.New("ticket needs a title and a description")
	}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("tickets"), t, nil)
}

// UpdateTicket merges metadata into a ticket.
func (c *Client) UpdateTicket(ctx context.Context, ref string, metadata map[string]any) error {
	body := metadataPatch{NewMetadata: metadata}
	return c.doJSON(ctx, http.MethodPatch, c.endpoint("tickets", ref), body, nil)
}
