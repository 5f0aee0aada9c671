package eventstream_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.Event
	err    error
	block  chan struct{}
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, e *eventstream.Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

var _ = Describe("Pool", func() {
	liked := func() *eventstream.Event {
		return eventstream.NewLikedEvent(eventstream.EventSource{}, eventstream.MessageLiked{UserID: "ana"})
	}

	It("delivers queued events before Close returns", func() {
		rec := &recordingPublisher{}
		p, err := eventstream.NewPool(&eventstream.PoolConfig{Publisher: rec})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 5; i++ {
			Expect(p.Publish(context.Background(), liked())).To(Succeed())
		}
		Expect(p.Close()).To(Succeed())

		Expect(rec.count()).To(Equal(5))
		Expect(rec.closed).To(BeTrue())
	})

	It("drops events when the queue is full", func() {
		rec := &recordingPublisher{block: make(chan struct{})}
		p, err := eventstream.NewPool(&eventstream.PoolConfig{Publisher: rec, NumWorkers: 1, QueueSize: 1})
		Expect(err).NotTo(HaveOccurred())

		// One event is held by the blocked worker, one fills the queue.
		Expect(p.Enqueue(liked())).To(BeTrue())
		Eventually(func() bool { return p.Enqueue(liked()) }).Should(BeTrue())
		Expect(p.Publish(context.Background(), liked())).To(MatchError(eventstream.ErrQueueFull))

		close(rec.block)
		Expect(p.Close()).To(Succeed())
		Expect(rec.count()).To(Equal(2))
	})

	It("keeps working when the publisher fails", func() {
		rec := &recordingPublisher{err: errors.New("broker down")}
		p, err := eventstream.NewPool(&eventstream.PoolConfig{Publisher: rec})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Publish(context.Background(), liked())).To(Succeed())
		Expect(p.Publish(context.Background(), liked())).To(Succeed())
		Expect(p.Close()).To(Succeed())
		Expect(rec.count()).To(Equal(2))
	})

	It("rejects events after Close and tolerates double Close", func() {
		p, err := eventstream.NewPool(&eventstream.PoolConfig{Publisher: &recordingPublisher{}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())
		Expect(p.Enqueue(liked())).To(BeFalse())
	})

	It("rejects nil events and missing publishers", func() {
		_, err := eventstream.NewPool(&eventstream.PoolConfig{})
		Expect(err).To(HaveOccurred())

		p, err := eventstream.NewPool(&eventstream.PoolConfig{Publisher: &recordingPublisher{}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(p.Close()).To(Succeed())
	})
})
