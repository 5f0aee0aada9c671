package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ChatStream is the body of a successful POST /chat. The caller must close it.
type ChatStream struct {
	io.ReadCloser
	ContentType string
}

// Chat starts a chat request. A non-2xx status is returned as *APIError
// before any of the body is exposed. The stream is bounded only by ctx.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (*ChatStream, error) {
	if chatReq.UserID == "" {
		return nil, errors.New("chat request without user id")
	}
	chatReq.K = NormalizeK(chatReq.K)
	if chatReq.FilterMetadata == nil {
		chatReq.FilterMetadata = map[string]string{}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("chat"), chatReq)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /chat: %w", err)
	}

	c.logger.Debug("chat stream opened",
		zap.Int("status", resp.StatusCode),
		zap.String("conversation_id", chatReq.ConversationID),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}

	return &ChatStream{
		ReadCloser:  resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
