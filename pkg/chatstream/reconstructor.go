package chatstream

import (
	"html"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Renderer turns Markdown into the display form stored in RenderedHTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(markdown string) (string, error)

func (f RendererFunc) Render(markdown string) (string, error) {
	return f(markdown)
}

// PlainHTML escapes text and turns newlines into <br>. It is used when no
// Renderer is configured or the Renderer fails.
func PlainHTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithRenderer sets the Markdown renderer.
func WithRenderer(r Renderer) Option {
	return func(rc *Reconstructor) {
		rc.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(rc *Reconstructor) {
		if l != nil {
			rc.logger = l
		}
	}
}

// WithMaxPending bounds how many bytes a candidate control payload may
// withhold from RawText.
func WithMaxPending(n int) Option {
	return func(rc *Reconstructor) {
		rc.maxPending = n
	}
}

// Reconstructor accumulates one streamed answer. It is safe for concurrent
// use, although fragments are expected from a single reader.
type Reconstructor struct {
	mu sync.Mutex

	renderer   Renderer
	logger     *zap.Logger
	maxPending int

	scanner *tailScanner
	raw     strings.Builder
	msg     Message
}

// New creates a Reconstructor in the Streaming state.
func New(opts ...Option) *Reconstructor {
	rc := &Reconstructor{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(rc)
	}
	rc.scanner = newTailScanner(rc.maxPending)
	rc.msg.State = Streaming
	return rc
}

// Feed appends a fragment. Fragments that arrive after sealing are ignored.
func (rc *Reconstructor) Feed(fragment string) Update {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.msg.State == Sealed {
		rc.logger.Debug("ignoring fragment after seal", zap.Int("bytes", len(fragment)))
		return Update{Message: rc.msg, Ignored: true}
	}

	text, ctrl := rc.scanner.feed(fragment)
	rc.appendText(text)

	if ctrl == nil {
		return Update{Message: rc.msg, Delta: text}
	}

	rc.seal(ctrl.messageID, ctrl.metadata)
	rc.logger.Debug("message sealed",
		zap.String("message_id", ctrl.messageID),
		zap.Int("references", len(ctrl.metadata.References)),
	)
	return Update{Message: rc.msg, Delta: text, Sealed: true}
}

// Finish marks the end of the stream. Held back text is flushed verbatim
// and, if no control payload was found, the message is sealed without an
// id and with empty metadata. Calling Finish on a sealed message returns it
// unchanged.
func (rc *Reconstructor) Finish() Message {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.msg.State == Sealed {
		return rc.msg
	}

	if tail := rc.scanner.flush(); tail != "" {
		rc.logger.Debug("flushing unterminated payload as text", zap.Int("bytes", len(tail)))
		rc.appendText(tail)
	}

	rc.logger.Warn("stream ended without control payload", zap.Int("bytes", len(rc.msg.RawText)))
	rc.seal("", &Metadata{})
	return rc.msg
}

// Message returns the current snapshot.
func (rc *Reconstructor) Message() Message {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.msg
}

func (rc *Reconstructor) appendText(text string) {
	if text == "" {
		return
	}
	rc.raw.WriteString(text)
	rc.msg.RawText = rc.raw.String()
	rc.msg.RenderedHTML = rc.render(rc.msg.RawText)
}

func (rc *Reconstructor) seal(id string, meta *Metadata) {
	if meta == nil {
		meta = &Metadata{}
	}
	rc.msg.MessageID = id
	rc.msg.Metadata = meta
	rc.msg.State = Sealed
}

func (rc *Reconstructor) render(text string) string {
	if rc.renderer == nil {
		return PlainHTML(text)
	}
	out, err := rc.renderer.Render(text)
	if err != nil {
		rc.logger.Warn("rendering markdown", zap.Error(err))
		return PlainHTML(text)
	}
	return out
}
