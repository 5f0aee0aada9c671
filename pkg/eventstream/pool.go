package eventstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	defaultNumWorkers     uint = 2
	defaultQueueSize      uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

// PoolConfig is the configuration of an async publishing pool.
type PoolConfig struct {
	// Publisher receives the events off the queue.
	Publisher Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// Timeout bounds each publish attempt.
	Timeout time.Duration

	Logger *zap.Logger
}

// Pool publishes events asynchronously so a slow or unreachable broker
// never blocks the chat path. Pool is itself a Publisher.
type Pool struct {
	config *PoolConfig
	queue  chan *Event
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a Pool and starts its workers.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("pool needs a publisher")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPublishTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		queue:  make(chan *Event, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits an event. Returns false if the queue is full or the pool
// is closed, in which case the event is dropped.
func (p *Pool) Enqueue(event *Event) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.EventID),
		)
		return true
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.EventID),
		)
		return false
	}
}

// Publish enqueues event without waiting for delivery.
func (p *Pool) Publish(_ context.Context, event *Event) error {
	if event == nil {
		return ErrNilEvent
	}
	if !p.Enqueue(event) {
		return ErrQueueFull
	}
	return nil
}

// Close stops accepting events, waits for queued events to drain and closes
// the underlying publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", zap.Uint("worker_id", id))

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("event worker stopped", zap.Uint("worker_id", id))
}

func (p *Pool) publish(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("publishing event",
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
	)
}
