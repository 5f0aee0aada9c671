package kafka_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream/kafka"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		w *fakeWriter
		p *kafka.Publisher
	)

	BeforeEach(func() {
		w = &fakeWriter{}
		p = kafka.NewPublisherWithWriter(w, nil)
	})

	It("writes the event as JSON keyed by user", func() {
		event := eventstream.NewSealedEvent(eventstream.EventSource{Client: "cenace"}, eventstream.MessageSealed{
			UserID:         "ana",
			ConversationID: "c1",
			MessageID:      "m1",
			TextLength:     11,
		})
		Expect(p.Publish(context.Background(), event)).To(Succeed())

		Expect(w.messages).To(HaveLen(1))
		msg := w.messages[0]
		Expect(string(msg.Key)).To(Equal("ana"))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte(eventstream.EventTypeMessageSealed)}))

		var got eventstream.Event
		Expect(json.Unmarshal(msg.Value, &got)).To(Succeed())
		Expect(got.EventID).To(Equal(event.EventID))
		Expect(got.Sealed.MessageID).To(Equal("m1"))
	})

	It("rejects nil events", func() {
		Expect(p.Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})

	It("wraps writer errors", func() {
		w.err = errors.New("broker down")
		err := p.Publish(context.Background(), eventstream.NewLikedEvent(eventstream.EventSource{}, eventstream.MessageLiked{UserID: "ana"}))
		Expect(err).To(MatchError(ContainSubstring("broker down")))
	})

	It("closes the writer", func() {
		Expect(p.Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})

	It("validates its configuration", func() {
		_, err := kafka.NewPublisher(kafka.Config{Topic: "t"})
		Expect(err).To(HaveOccurred())
		_, err = kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).To(HaveOccurred())
	})
})
