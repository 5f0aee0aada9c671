// Package session holds the state of one signed-in user: who they are,
// which conversation is open and whether a chat request is in flight.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/dotdir"
)

var (
	// ErrBusy is returned by Begin while another chat request is in flight.
	ErrBusy = errors.New("a response is still being generated")

	// ErrNoUser is returned when an action needs a signed-in user.
	ErrNoUser = errors.New("no user signed in")

	// ErrNoConversation is returned when an action needs an open conversation.
	ErrNoConversation = errors.New("no active conversation")
)

// Store persists session state between runs.
type Store interface {
	LoadSession(overrideDir string) (*dotdir.SessionState, error)
	SaveSession(state *dotdir.SessionState, overrideDir string) error
	ClearSession(overrideDir string) error
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	userID         string
	conversationID string

	// cancel aborts the in-flight chat request; nil when idle.
	cancel   context.CancelFunc
	inflight uint64

	store  Store
	dir    string
	logger *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithStore persists the session in dir through store.
func WithStore(store Store, dir string) Option {
	return func(s *Session) {
		s.store = store
		s.dir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a signed-out session.
func New(opts ...Option) *Session {
	s := &Session{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted user and conversation, if any.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}

	state, err := s.store.LoadSession(s.dir)
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}

	s.mu.Lock()
	s.userID = state.UserID
	s.conversationID = state.ConversationID
	s.mu.Unlock()
	return nil
}

// Login signs userID in. Switching users drops the open conversation and
// aborts any in-flight request.
func (s *Session) Login(userID string) error {
	if userID == "" {
		return ErrNoUser
	}

	s.mu.Lock()
	if s.userID != userID {
		s.abortLocked()
		s.conversationID = ""
	}
	s.userID = userID
	s.mu.Unlock()

	return s.persist()
}

// Logout signs out, aborting any in-flight request.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.abortLocked()
	s.userID = ""
	s.conversationID = ""
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.ClearSession(s.dir)
}

// Use opens a conversation. Switching to a different conversation aborts the
// in-flight request of the previous one.
func (s *Session) Use(conversationID string) error {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return ErrNoUser
	}
	if s.conversationID != conversationID {
		s.abortLocked()
	}
	s.conversationID = conversationID
	s.mu.Unlock()

	return s.persist()
}

// UserID returns the signed-in user, or "".
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// ConversationID returns the open conversation, or "".
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Busy reports whether a chat request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Begin marks the start of a chat request. It fails with ErrBusy when
// another request is in flight; requests are never queued. The returned
// context is cancelled by done, Cancel, Use on another conversation,
// Login as another user and Logout. done must be called exactly once.
func (s *Session) Begin(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == "" {
		return nil, nil, ErrNoUser
	}
	if s.conversationID == "" {
		return nil, nil, ErrNoConversation
	}
	if s.cancel != nil {
		return nil, nil, ErrBusy
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inflight++
	id := s.inflight

	var once sync.Once
	done := func() {
		once.Do(func() {
			cancel()
			s.mu.Lock()
			if s.inflight == id {
				s.cancel = nil
			}
			s.mu.Unlock()
		})
	}
	return reqCtx, done, nil
}

// Cancel aborts the in-flight request, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}

func (s *Session) abortLocked() {
	if s.cancel == nil {
		return
	}
	s.logger.Debug("aborting in-flight chat request")
	s.cancel()
	s.cancel = nil
}

func (s *Session) persist() error {
	if s.store == nil {
		return nil
	}

	s.mu.Lock()
	state := &dotdir.SessionState{UserID: s.userID, ConversationID: s.conversationID}
	s.mu.Unlock()

	return s.store.SaveSession(state, s.dir)
}
