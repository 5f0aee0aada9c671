package chat_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
)

type metadataPatch struct {
	userID    string
	messageID string
	metadata  map[string]any
}

// fakeBackend records every call. chatFn answers /chat; it defaults to a
// sealed "ok" answer.
type fakeBackend struct {
	mu sync.Mutex

	chatFn    func(ctx context.Context, req backend.ChatRequest) (*backend.ChatStream, error)
	chatCalls []backend.ChatRequest

	history    map[string][]backend.HistoryMessage
	historyErr error
	cleared    []string

	conversations []backend.Conversation
	created       []string
	deleted       []string
	nextID        int

	patches          []metadataPatch
	patchErr         error
	processed        int
	deletedSolutions [][]string
	solutionsErr     error

	ticketUpdates map[string]map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		history:       map[string][]backend.HistoryMessage{},
		ticketUpdates: map[string]map[string]any{},
	}
}

func streamOf(body string) *backend.ChatStream {
	return &backend.ChatStream{ReadCloser: io.NopCloser(strings.NewReader(body))}
}

func (f *fakeBackend) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatStream, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, req)
	fn := f.chatFn
	f.mu.Unlock()

	if fn == nil {
		return streamOf(`ok{"final_message_data":{"message_id":"m-ok","metadata":{}}}`), nil
	}
	return fn(ctx, req)
}

func (f *fakeBackend) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chatCalls)
}

func (f *fakeBackend) History(_ context.Context, _, conversationID string) ([]backend.HistoryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history[conversationID], nil
}

func (f *fakeBackend) ClearHistory(_ context.Context, _, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, conversationID)
	delete(f.history, conversationID)
	return nil
}

func (f *fakeBackend) UpdateMessageMetadata(_ context.Context, userID, messageID string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, metadataPatch{userID: userID, messageID: messageID, metadata: metadata})
	return f.patchErr
}

func (f *fakeBackend) Conversations(context.Context, string) ([]backend.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]backend.Conversation, len(f.conversations))
	copy(out, f.conversations)
	return out, nil
}

func (f *fakeBackend) NewConversation(_ context.Context, _, title string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("new-%d", f.nextID)
	f.created = append(f.created, title)
	f.conversations = append([]backend.Conversation{{ConversationID: id, Title: title}}, f.conversations...)
	return id, nil
}

func (f *fakeBackend) DeleteConversation(_ context.Context, _, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, conversationID)
	kept := f.conversations[:0]
	for _, c := range f.conversations {
		if c.ConversationID != conversationID {
			kept = append(kept, c)
		}
	}
	f.conversations = kept
	return nil
}

func (f *fakeBackend) ProcessLikedSolutions(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed++
	return f.solutionsErr
}

func (f *fakeBackend) DeleteSolutions(_ context.Context, refs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSolutions = append(f.deletedSolutions, refs)
	return f.solutionsErr
}

func (f *fakeBackend) UpdateTicket(_ context.Context, ref string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticketUpdates[ref] = metadata
	return nil
}

// recordingView keeps alerts and counts view calls.
type recordingView struct {
	mu            sync.Mutex
	alerts        []string
	resets        int
	appends       int
	updates       []chat.Entry
	conversations []backend.Conversation
}

func (v *recordingView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets++
}

func (v *recordingView) Append(chat.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.appends++
}

func (v *recordingView) Update(e chat.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.updates = append(v.updates, e)
}

func (v *recordingView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, msg)
}

func (v *recordingView) SetConversations(c []backend.Conversation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conversations = c
}

func (v *recordingView) Alerts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e *eventstream.Event) error {
	if e == nil {
		return errors.New("nil event")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []*eventstream.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.Event(nil), p.events...)
}

func botEntries(entries []chat.Entry) []chat.Entry {
	var out []chat.Entry
	for _, e := range entries {
		if e.Role == backend.RoleBot {
			out = append(out, e)
		}
	}
	return out
}
