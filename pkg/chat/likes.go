package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
)

// LikePolicy decides what happens to the optimistic like state when the
// backend rejects it.
type LikePolicy string

const (
	// LikeAccept keeps the optimistic state; the failure is only logged.
	LikeAccept LikePolicy = "accept"

	// LikeRollback restores the previous state.
	LikeRollback LikePolicy = "rollback"
)

// ErrNoMessageID is returned when liking an answer the backend never named.
var ErrNoMessageID = errors.New("message has no id")

// ParseLikePolicy parses a configured policy; "" means LikeAccept.
func ParseLikePolicy(s string) (LikePolicy, error) {
	switch LikePolicy(s) {
	case "", LikeAccept:
		return LikeAccept, nil
	case LikeRollback:
		return LikeRollback, nil
	default:
		return "", fmt.Errorf("unknown like policy %q (want accept or rollback)", s)
	}
}

// LikeToggler persists the liked flag of answers and keeps the solutions
// corpus in sync with it.
type LikeToggler struct {
	backend    Backend
	session    *session.Session
	transcript *Transcript
	view       View
	publisher  eventstream.Publisher
	source     eventstream.EventSource
	policy     LikePolicy
	logger     *zap.Logger
}

// Toggle marks messageID as liked or not liked.
//
// The transcript entry, if shown, is updated before the backend is called.
// When the metadata update fails the error is returned and, under
// LikeRollback, the entry gets its previous flag back. Failures to update
// the solutions corpus afterwards are logged only.
func (l *LikeToggler) Toggle(ctx context.Context, messageID string, liked bool) error {
	userID := l.session.UserID()
	if userID == "" {
		l.view.Alert(AlertNoUser)
		return session.ErrNoUser
	}
	if messageID == "" {
		return ErrNoMessageID
	}

	entry, previous, shown := l.transcript.SetLiked(messageID, liked)
	if shown {
		l.view.Update(entry)
	}

	err := l.backend.UpdateMessageMetadata(ctx, userID, messageID, map[string]any{"disable": liked})
	if err != nil {
		l.logger.Warn("could not update like state",
			zap.String("message_id", messageID),
			zap.Bool("liked", liked),
			zap.Error(err),
		)
		if l.policy == LikeRollback && shown {
			if reverted, _, ok := l.transcript.SetLiked(messageID, previous); ok {
				l.view.Update(reverted)
			}
		}
		return fmt.Errorf("updating like state of %s: %w", messageID, err)
	}

	if l.publisher != nil {
		event := eventstream.NewLikedEvent(l.source, eventstream.MessageLiked{
			UserID:    userID,
			MessageID: messageID,
			Liked:     liked,
		})
		if err := l.publisher.Publish(ctx, event); err != nil {
			l.logger.Debug("dropping liked event", zap.Error(err))
		}
	}

	if liked {
		err = l.backend.ProcessLikedSolutions(ctx, userID)
	} else {
		err = l.backend.DeleteSolutions(ctx, []string{messageID})
	}
	if err != nil {
		l.logger.Warn("could not sync solutions",
			zap.String("message_id", messageID),
			zap.Bool("liked", liked),
			zap.Error(err),
		)
	}
	return nil
}
