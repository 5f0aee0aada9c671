package backend

import (
	"context"
	"net/http"
)

// Solutions lists the liked answers of a user.
func (c *Client) Solutions(ctx context.Context, userID string) ([]Solution, error) {
	var out []Solution
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("solutions", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessLikedSolutions promotes the liked answers of a user into the
// solutions corpus.
func (c *Client) ProcessLikedSolutions(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("process_liked_solutions", userID), nil, nil)
}

// DeleteSolutions removes solutions by reference id. A solution's reference
// id is the id of the liked message.
func (c *Client) DeleteSolutions(ctx context.Context, refs []string) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("delete_solution"), referenceIDs{ReferenceIDs: refs}, nil)
}
