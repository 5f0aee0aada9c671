// Package render turns the Markdown of bot answers into HTML or styled
// terminal output.
package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer renders Markdown. It matches chatstream.Renderer.
type Renderer interface {
	Render(markdown string) (string, error)
}

// HTML renders GitHub flavored Markdown to HTML. Raw HTML in the input is
// omitted since answers come from a model.
type HTML struct {
	md goldmark.Markdown
}

func NewHTML() *HTML {
	return &HTML{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)}
}

func (h *HTML) Render(markdown string) (string, error) {
	var out bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &out); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return out.String(), nil
}

// Terminal renders Markdown for terminal display using glamour.
type Terminal struct {
	mu sync.Mutex
	r  *glamour.TermRenderer
}

// NewTerminal creates a terminal renderer. style is "auto" or a glamour
// standard style name such as "dark", "light" or "notty".
func NewTerminal(style string, width int) (*Terminal, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating terminal renderer: %w", err)
	}
	return &Terminal{r: r}, nil
}

func (t *Terminal) Render(markdown string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.r.Render(markdown)
	if err != nil {
		return markdown, fmt.Errorf("rendering terminal markdown: %w", err)
	}
	return out, nil
}

// Cached memoizes a Renderer. Streaming re-renders a growing answer on
// every chunk, and history reloads render the same answers again.
type Cached struct {
	next  Renderer
	cache *expirable.LRU[string, string]
}

// WithCache wraps next with an expiring LRU. It returns next unchanged when
// size or ttl is not positive.
func WithCache(next Renderer, size int, ttl time.Duration) Renderer {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (c *Cached) Render(markdown string) (string, error) {
	key := cacheKey(markdown)
	if out, ok := c.cache.Get(key); ok {
		return out, nil
	}

	out, err := c.next.Render(markdown)
	if err != nil {
		return out, err
	}
	c.cache.Add(key, out)
	return out, nil
}

func cacheKey(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}
