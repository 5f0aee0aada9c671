package chat_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
)

var _ = Describe("Likes", func() {
	var (
		ctx       context.Context
		fake      *fakeBackend
		view      *recordingView
		publisher *recordingPublisher
		sess      *session.Session
	)

	newController := func(policy chat.LikePolicy) *chat.Controller {
		ctrl, err := chat.NewController(&chat.Config{
			Backend:    fake,
			Session:    sess,
			View:       view,
			Publisher:  publisher,
			LikePolicy: policy,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(sess.Login("ana")).To(Succeed())
		fake.history["c1"] = []backend.HistoryMessage{
			{Role: "user", Content: "hola"},
			{ID: "m1", Role: "bot", Content: "respuesta"},
		}
		Expect(ctrl.LoadHistory(ctx, "c1")).To(Succeed())
		return ctrl
	}

	liked := func(ctrl *chat.Controller) bool {
		e, ok := ctrl.Transcript().Find("m1")
		Expect(ok).To(BeTrue())
		return e.Liked
	}

	BeforeEach(func() {
		ctx = context.Background()
		fake = newFakeBackend()
		view = &recordingView{}
		publisher = &recordingPublisher{}
		sess = session.New()
	})

	It("persists a like and promotes the answer to the solutions", func() {
		ctrl := newController(chat.LikeAccept)

		Expect(ctrl.Like(ctx, "m1", true)).To(Succeed())
		Expect(liked(ctrl)).To(BeTrue())

		Expect(fake.patches).To(HaveLen(1))
		Expect(fake.patches[0].userID).To(Equal("ana"))
		Expect(fake.patches[0].messageID).To(Equal("m1"))
		Expect(fake.patches[0].metadata).To(Equal(map[string]any{"disable": true}))
		Expect(fake.processed).To(Equal(1))
		Expect(fake.deletedSolutions).To(BeEmpty())

		events := publisher.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].EventType).To(Equal(eventstream.EventTypeMessageLiked))
		Expect(events[0].Liked.Liked).To(BeTrue())
	})

	It("removes the solution when the like is withdrawn", func() {
		ctrl := newController(chat.LikeAccept)

		Expect(ctrl.Like(ctx, "m1", false)).To(Succeed())
		Expect(fake.patches[0].metadata).To(Equal(map[string]any{"disable": false}))
		Expect(fake.deletedSolutions).To(Equal([][]string{{"m1"}}))
		Expect(fake.processed).To(BeZero())
	})

	It("updates the view before the backend answers", func() {
		ctrl := newController(chat.LikeAccept)
		fake.patchErr = errors.New("down")

		Expect(ctrl.Like(ctx, "m1", true)).NotTo(Succeed())
		Expect(view.updates).NotTo(BeEmpty())
		Expect(view.updates[0].MessageID).To(Equal("m1"))
		Expect(view.updates[0].Liked).To(BeTrue())
	})

	It("keeps the optimistic state when the policy is accept", func() {
		ctrl := newController(chat.LikeAccept)
		fake.patchErr = &backend.APIError{StatusCode: 500, Detail: "boom"}

		err := ctrl.Like(ctx, "m1", true)
		Expect(backend.IsStatus(err, 500)).To(BeTrue())
		Expect(liked(ctrl)).To(BeTrue())
		Expect(fake.processed).To(BeZero())
		Expect(publisher.Events()).To(BeEmpty())
	})

	It("restores the previous state when the policy is rollback", func() {
		ctrl := newController(chat.LikeRollback)
		fake.patchErr = errors.New("down")

		Expect(ctrl.Like(ctx, "m1", true)).NotTo(Succeed())
		Expect(liked(ctrl)).To(BeFalse())
		Expect(view.updates).To(HaveLen(2))
		Expect(view.updates[1].Liked).To(BeFalse())
	})

	It("only logs failures to sync the solutions", func() {
		ctrl := newController(chat.LikeRollback)
		fake.solutionsErr = errors.New("down")

		Expect(ctrl.Like(ctx, "m1", true)).To(Succeed())
		Expect(liked(ctrl)).To(BeTrue())
	})

	It("likes answers that are not shown", func() {
		ctrl := newController(chat.LikeAccept)

		Expect(ctrl.Like(ctx, "m-old", true)).To(Succeed())
		Expect(fake.patches[0].messageID).To(Equal("m-old"))
		Expect(view.updates).To(BeEmpty())
	})

	It("requires a signed-in user and a message id", func() {
		ctrl := newController(chat.LikeAccept)

		Expect(ctrl.Like(ctx, "", true)).To(MatchError(chat.ErrNoMessageID))

		Expect(sess.Logout()).To(Succeed())
		Expect(ctrl.Like(ctx, "m1", true)).To(MatchError(session.ErrNoUser))
		Expect(fake.patches).To(BeEmpty())
	})

	It("alerts when nobody is signed in", func() {
		ctrl := newController(chat.LikeAccept)
		Expect(sess.Logout()).To(Succeed())

		Expect(ctrl.Like(ctx, "m1", true)).To(MatchError(session.ErrNoUser))
		Expect(view.Alerts()).To(ContainElement(chat.AlertNoUser))
		Expect(liked(ctrl)).To(BeFalse())
	})

	Describe("ParseLikePolicy", func() {
		It("defaults to accept", func() {
			p, err := chat.ParseLikePolicy("")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(chat.LikeAccept))

			p, err = chat.ParseLikePolicy("rollback")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(chat.LikeRollback))

			_, err = chat.ParseLikePolicy("never")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Transcript", func() {
	It("never reuses sequence numbers across resets", func() {
		t := chat.NewTranscript()
		first := t.Append(chat.Entry{Text: "a"})
		t.Reset()
		second := t.Append(chat.Entry{Text: "b"})

		Expect(second.Seq).To(BeNumerically(">", first.Seq))
		Expect(t.Update(first)).To(BeFalse())
		Expect(t.Entries()).To(HaveLen(1))
	})

	It("drops appends for a previous generation", func() {
		t := chat.NewTranscript()
		gen := t.Generation()
		_, ok := t.AppendTo(gen, chat.Entry{Text: "a"})
		Expect(ok).To(BeTrue())

		t.Reset()
		_, ok = t.AppendTo(gen, chat.Entry{Text: "b"})
		Expect(ok).To(BeFalse())
		Expect(t.Len()).To(BeZero())
	})
})
