// Package chat drives a conversation with the CENACE assistant: it sends
// questions, reconstructs the streamed answers, loads history and keeps the
// liked state of answers in sync with the backend.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
)

// User-facing texts.
const (
	AlertNoUser         = "Por favor, ingresa tu nombre de usuario."
	AlertNoConversation = "No hay conversación activa. Por favor, crea o selecciona una para empezar a chatear."
	MessageSendFailed   = "Hubo un problema al enviar el mensaje. Intenta nuevamente."
)

// ErrEmptyQuery is returned by SendMessage for blank questions.
var ErrEmptyQuery = errors.New("empty query")

// Backend is the part of the backend API the controller uses.
// *backend.Client implements it.
type Backend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatStream, error)
	History(ctx context.Context, userID, conversationID string) ([]backend.HistoryMessage, error)
	ClearHistory(ctx context.Context, userID, conversationID string) error
	UpdateMessageMetadata(ctx context.Context, userID, messageID string, metadata map[string]any) error
	Conversations(ctx context.Context, userID string) ([]backend.Conversation, error)
	NewConversation(ctx context.Context, userID, title string) (string, error)
	DeleteConversation(ctx context.Context, userID, conversationID string) error
	ProcessLikedSolutions(ctx context.Context, userID string) error
	DeleteSolutions(ctx context.Context, refs []string) error
	UpdateTicket(ctx context.Context, ref string, metadata map[string]any) error
}

// View receives transcript changes. Calls may come from any goroutine.
type View interface {
	// Reset clears the shown conversation.
	Reset()
	Append(e Entry)
	Update(e Entry)
	// Alert shows a message outside the transcript.
	Alert(msg string)
}

// ConversationsView is implemented by views that list conversations.
type ConversationsView interface {
	SetConversations(conversations []backend.Conversation)
}

type nopView struct{}

func (nopView) Reset()       {}
func (nopView) Append(Entry) {}
func (nopView) Update(Entry) {}
func (nopView) Alert(string) {}

// Config configures a Controller. Backend and Session are required.
type Config struct {
	Backend  Backend
	Session  *session.Session
	Renderer chatstream.Renderer
	View     View

	// Publisher receives sealed and liked events. Optional.
	Publisher eventstream.Publisher
	Source    eventstream.EventSource

	K          int
	Filter     string
	LikePolicy LikePolicy

	Logger *zap.Logger
}

// Controller is safe for concurrent use; at most one question is answered
// at a time.
type Controller struct {
	backend    Backend
	session    *session.Session
	renderer   chatstream.Renderer
	view       View
	transcript *Transcript
	publisher  eventstream.Publisher
	source     eventstream.EventSource
	likes      *LikeToggler
	logger     *zap.Logger

	mu            sync.Mutex
	k             int
	filter        string
	conversations []backend.Conversation
}

// NewController creates a Controller.
func NewController(c *Config) (*Controller, error) {
	if c.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if c.Session == nil {
		return nil, errors.New("session is required")
	}

	policy, err := ParseLikePolicy(string(c.LikePolicy))
	if err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	view := c.View
	if view == nil {
		view = nopView{}
	}

	ctrl := &Controller{
		backend:    c.Backend,
		session:    c.Session,
		renderer:   c.Renderer,
		view:       view,
		transcript: NewTranscript(),
		publisher:  c.Publisher,
		source:     c.Source,
		logger:     logger,
		k:          backend.NormalizeK(c.K),
		filter:     c.Filter,
	}
	ctrl.likes = &LikeToggler{
		backend:    c.Backend,
		session:    c.Session,
		transcript: ctrl.transcript,
		view:       view,
		publisher:  c.Publisher,
		source:     c.Source,
		policy:     policy,
		logger:     logger,
	}
	return ctrl, nil
}

// Transcript returns the entries of the open conversation.
func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

// Session returns the session the controller acts for.
func (c *Controller) Session() *session.Session {
	return c.session
}

// SetRetrieval changes the number of retrieved chunks and the collection
// filter of subsequent questions.
func (c *Controller) SetRetrieval(k int, filter string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.k = backend.NormalizeK(k)
	c.filter = filter
}

// Retrieval returns the current k and filter.
func (c *Controller) Retrieval() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.k, c.filter
}

// Login signs user in and opens a conversation: the remembered one when it
// still exists, else the most recent one, else a new one.
func (c *Controller) Login(ctx context.Context, user string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		c.view.Alert(AlertNoUser)
		return session.ErrNoUser
	}
	if err := c.session.Login(user); err != nil {
		if errors.Is(err, session.ErrNoUser) {
			return err
		}
		c.logger.Warn("could not persist session", zap.Error(err))
	}

	conversations, err := c.Conversations(ctx)
	if err != nil {
		return err
	}

	current := c.session.ConversationID()
	for _, conv := range conversations {
		if conv.ConversationID == current && current != "" {
			return c.LoadHistory(ctx, current)
		}
	}
	if len(conversations) > 0 {
		return c.LoadHistory(ctx, conversations[0].ConversationID)
	}

	_, err = c.NewConversation(ctx, "")
	return err
}

// Logout signs out and clears the transcript.
func (c *Controller) Logout() error {
	err := c.session.Logout()
	c.reset()
	c.setConversations(nil)
	return err
}

// SendMessage asks query in the open conversation and streams the answer
// into the transcript. While another answer is streaming it returns
// session.ErrBusy without contacting the backend.
func (c *Controller) SendMessage(ctx context.Context, query string) (chatstream.Message, error) {
	userID := c.session.UserID()
	if userID == "" {
		c.view.Alert(AlertNoUser)
		return chatstream.Message{}, session.ErrNoUser
	}
	conversationID := c.session.ConversationID()
	if conversationID == "" {
		c.view.Alert(AlertNoConversation)
		return chatstream.Message{}, session.ErrNoConversation
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return chatstream.Message{}, ErrEmptyQuery
	}

	reqCtx, done, err := c.session.Begin(ctx)
	if err != nil {
		return chatstream.Message{}, err
	}
	defer done()

	// Entries of this request are dropped once another conversation is shown.
	gen := c.transcript.Generation()
	if reqCtx.Err() != nil {
		return chatstream.Message{}, reqCtx.Err()
	}
	c.appendTo(gen, Entry{Role: backend.RoleUser, Text: query, HTML: chatstream.PlainHTML(query)})

	k, filter := c.Retrieval()
	started := time.Now()
	stream, err := c.backend.Chat(reqCtx, backend.ChatRequest{
		UserID:         userID,
		ConversationID: conversationID,
		Query:          query,
		K:              k,
		FilterMetadata: backend.FilterFor(filter),
	})
	if err != nil {
		if reqCtx.Err() == nil {
			c.appendTo(gen, notice(sendErrorText(err)))
		}
		return chatstream.Message{}, fmt.Errorf("sending message: %w", err)
	}
	defer stream.Close()

	msg, err := c.stream(reqCtx, gen, stream)
	if err != nil {
		if reqCtx.Err() == nil {
			c.appendTo(gen, notice(MessageSendFailed))
		}
		return msg, fmt.Errorf("receiving answer: %w", err)
	}

	c.publishSealed(ctx, userID, conversationID, msg, started)

	// The backend titles new conversations after their first question.
	if _, err := c.Conversations(ctx); err != nil {
		c.logger.Debug("could not refresh conversations", zap.Error(err))
	}
	return msg, nil
}

func (c *Controller) stream(ctx context.Context, gen uint64, r io.Reader) (chatstream.Message, error) {
	bot, _ := c.appendTo(gen, Entry{Role: backend.RoleBot, Streaming: true})

	rc := chatstream.New(
		chatstream.WithRenderer(c.renderer),
		chatstream.WithLogger(c.logger),
	)
	msg, err := chatstream.ReadStream(ctx, r, rc, func(u chatstream.Update) {
		if u.Ignored || (u.Delta == "" && !u.Sealed) {
			return
		}
		bot = withMessage(bot, u.Message)
		c.update(bot)
	})

	bot = withMessage(bot, msg)
	bot.Streaming = false
	c.update(bot)
	return msg, err
}

func withMessage(e Entry, msg chatstream.Message) Entry {
	e.Text = msg.RawText
	e.HTML = msg.RenderedHTML
	e.Streaming = !msg.Sealed()
	e.MessageID = msg.MessageID
	if msg.Metadata != nil {
		e.References = msg.Metadata.References
		e.Liked = msg.Metadata.Disable
	}
	return e
}

func sendErrorText(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return "Error: " + apiErr.Error()
	}
	return MessageSendFailed
}

func (c *Controller) publishSealed(ctx context.Context, userID, conversationID string, msg chatstream.Message, started time.Time) {
	if c.publisher == nil {
		return
	}
	event := eventstream.NewSealedEvent(c.source, eventstream.MessageSealed{
		UserID:         userID,
		ConversationID: conversationID,
		MessageID:      msg.MessageID,
		Degraded:       !msg.HasID(),
		TextLength:     len(msg.RawText),
		ReferenceIDs:   msg.Metadata.ReferenceIDs(),
		StartedAt:      started.UTC(),
		CompletedAt:    time.Now().UTC(),
	})
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Debug("dropping sealed event", zap.Error(err))
	}
}

// LoadHistory opens conversationID ("" for the open one) and replaces the
// transcript with its stored messages.
func (c *Controller) LoadHistory(ctx context.Context, conversationID string) error {
	userID := c.session.UserID()
	if userID == "" {
		c.view.Alert(AlertNoUser)
		return session.ErrNoUser
	}
	if conversationID == "" {
		conversationID = c.session.ConversationID()
	}
	if conversationID == "" {
		c.view.Alert(AlertNoConversation)
		return session.ErrNoConversation
	}

	if err := c.session.Use(conversationID); err != nil {
		if errors.Is(err, session.ErrNoUser) {
			return err
		}
		c.logger.Warn("could not persist session", zap.Error(err))
	}
	c.reset()

	messages, err := c.backend.History(ctx, userID, conversationID)
	if err != nil {
		c.append(notice(historyErrorText(err)))
		return fmt.Errorf("loading history of %s: %w", conversationID, err)
	}

	if len(messages) == 0 {
		c.append(notice(Greeting(userID)))
		return nil
	}
	for _, m := range messages {
		c.append(c.historyEntry(m))
	}
	return nil
}

// Greeting is shown for conversations without messages.
func Greeting(userID string) string {
	return fmt.Sprintf("¡Hola %s! ¿En qué puedo ayudarte hoy en esta conversación?", userID)
}

func historyErrorText(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return "Error al cargar historial: " + apiErr.Error()
	}
	return "Error al cargar historial: " + err.Error()
}

func (c *Controller) historyEntry(m backend.HistoryMessage) Entry {
	e := Entry{
		Role:      m.Sender(),
		Text:      m.Content,
		MessageID: m.ID,
	}
	if e.Role == backend.RoleUser {
		e.HTML = chatstream.PlainHTML(m.Content)
		e.MessageID = ""
	} else {
		e.HTML = c.render(m.Content)
	}
	if m.Metadata != nil {
		e.References = m.Metadata.References
		e.Liked = m.Metadata.Disable
	}
	return e
}

func (c *Controller) render(markdown string) string {
	if c.renderer == nil {
		return chatstream.PlainHTML(markdown)
	}
	html, err := c.renderer.Render(markdown)
	if err != nil {
		c.logger.Debug("rendering failed, falling back to plain text", zap.Error(err))
		return chatstream.PlainHTML(markdown)
	}
	return html
}

// ClearHistory deletes the messages of the open conversation.
func (c *Controller) ClearHistory(ctx context.Context) error {
	userID, conversationID, err := c.active()
	if err != nil {
		return err
	}
	if err := c.backend.ClearHistory(ctx, userID, conversationID); err != nil {
		return fmt.Errorf("clearing history of %s: %w", conversationID, err)
	}
	return c.LoadHistory(ctx, conversationID)
}

// Conversations fetches the conversations of the signed-in user.
func (c *Controller) Conversations(ctx context.Context) ([]backend.Conversation, error) {
	userID := c.session.UserID()
	if userID == "" {
		return nil, session.ErrNoUser
	}

	conversations, err := c.backend.Conversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	c.setConversations(conversations)
	return conversations, nil
}

// CachedConversations returns the conversations fetched last.
func (c *Controller) CachedConversations() []backend.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]backend.Conversation, len(c.conversations))
	copy(out, c.conversations)
	return out
}

func (c *Controller) setConversations(conversations []backend.Conversation) {
	c.mu.Lock()
	c.conversations = conversations
	c.mu.Unlock()

	if cv, ok := c.view.(ConversationsView); ok {
		cv.SetConversations(conversations)
	}
}

// NewConversation creates a conversation, opens it and returns its id.
func (c *Controller) NewConversation(ctx context.Context, title string) (string, error) {
	userID := c.session.UserID()
	if userID == "" {
		c.view.Alert(AlertNoUser)
		return "", session.ErrNoUser
	}

	id, err := c.backend.NewConversation(ctx, userID, title)
	if err != nil {
		return "", fmt.Errorf("creating conversation: %w", err)
	}
	c.logger.Debug("conversation created", zap.String("conversation_id", id))

	if _, err := c.Conversations(ctx); err != nil {
		c.logger.Debug("could not refresh conversations", zap.Error(err))
	}
	return id, c.LoadHistory(ctx, id)
}

// DeleteConversation deletes conversationID ("" for the open one). Deleting
// the open conversation starts a new one.
func (c *Controller) DeleteConversation(ctx context.Context, conversationID string) error {
	userID := c.session.UserID()
	if userID == "" {
		c.view.Alert(AlertNoUser)
		return session.ErrNoUser
	}
	current := c.session.ConversationID()
	if conversationID == "" {
		conversationID = current
	}
	if conversationID == "" {
		return session.ErrNoConversation
	}

	if err := c.backend.DeleteConversation(ctx, userID, conversationID); err != nil {
		return fmt.Errorf("deleting conversation %s: %w", conversationID, err)
	}

	if conversationID == current {
		_, err := c.NewConversation(ctx, "")
		return err
	}
	_, err := c.Conversations(ctx)
	return err
}

// Like marks the answer messageID as liked or not liked.
func (c *Controller) Like(ctx context.Context, messageID string, liked bool) error {
	return c.likes.Toggle(ctx, messageID, liked)
}

// Cancel aborts the answer being streamed, if any.
func (c *Controller) Cancel() {
	c.session.Cancel()
}

func (c *Controller) active() (string, string, error) {
	userID := c.session.UserID()
	if userID == "" {
		c.view.Alert(AlertNoUser)
		return "", "", session.ErrNoUser
	}
	conversationID := c.session.ConversationID()
	if conversationID == "" {
		c.view.Alert(AlertNoConversation)
		return "", "", session.ErrNoConversation
	}
	return userID, conversationID, nil
}

func notice(text string) Entry {
	return Entry{
		Role:   backend.RoleBot,
		Text:   text,
		HTML:   chatstream.PlainHTML(text),
		Notice: true,
	}
}

func (c *Controller) reset() {
	c.transcript.Reset()
	c.view.Reset()
}

func (c *Controller) append(e Entry) Entry {
	e = c.transcript.Append(e)
	c.view.Append(e)
	return e
}

func (c *Controller) appendTo(gen uint64, e Entry) (Entry, bool) {
	e, ok := c.transcript.AppendTo(gen, e)
	if ok {
		c.view.Append(e)
	}
	return e, ok
}

func (c *Controller) update(e Entry) {
	if c.transcript.Update(e) {
		c.view.Update(e)
	}
}
