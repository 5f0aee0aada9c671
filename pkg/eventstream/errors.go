package eventstream

import "errors"

var (
	// ErrNilEvent indicates a nil event was provided to a publisher.
	ErrNilEvent = errors.New("nil event")

	// ErrQueueFull indicates the async pool dropped an event.
	ErrQueueFull = errors.New("event queue full, event dropped")
)
