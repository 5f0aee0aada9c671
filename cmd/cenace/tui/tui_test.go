package tuicmder

import (
	"context"
	"errors"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
)

var _ = Describe("TUI model", func() {
	var m model

	update := func(msg bubbletea.Msg) bubbletea.Cmd {
		next, cmd := m.Update(msg)
		m = next.(model)
		return cmd
	}

	BeforeEach(func() {
		ctrl, err := chat.NewController(&chat.Config{
			Backend: backend.NewClient("http://127.0.0.1:1"),
			Session: session.New(),
		})
		Expect(err).NotTo(HaveOccurred())

		m = newModel(context.Background(), ctrl, nil, "http://localhost:8000", "ana")
		update(bubbletea.WindowSizeMsg{Width: 80, Height: 30})
	})

	It("sizes the transcript to the window", func() {
		Expect(m.transcript.Width).To(Equal(80))
		Expect(m.transcript.Height).To(Equal(30 - inputHeight - chromeHeight))
	})

	It("shows streamed text as it grows and the answer id once sealed", func() {
		update(entryAppendedMsg{entry: chat.Entry{Seq: 1, Role: backend.RoleUser, Text: "¿Qué es una UPS?"}})
		update(entryAppendedMsg{entry: chat.Entry{Seq: 2, Role: backend.RoleBot, Streaming: true}})
		update(entryUpdatedMsg{entry: chat.Entry{Seq: 2, Role: backend.RoleBot, Text: "Una fuente", Streaming: true}})

		Expect(m.renderEntries()).To(ContainSubstring("¿Qué es una UPS?"))
		Expect(m.renderEntries()).To(ContainSubstring("Una fuente"))
		Expect(m.renderEntries()).NotTo(ContainSubstring("m-42"))

		update(entryUpdatedMsg{entry: chat.Entry{
			Seq:       2,
			Role:      backend.RoleBot,
			Text:      "Una fuente ininterrumpible.",
			MessageID: "m-42",
			References: []chatstream.Reference{{
				Reference: "r1",
				Metadata:  chatstream.ReferenceMetadata{Collection: "documentos", Filename: "manual.pdf", Title: "Manual"},
			}},
		}})

		out := m.renderEntries()
		Expect(out).To(ContainSubstring("ininterrumpible"))
		Expect(out).To(ContainSubstring("m-42"))
		Expect(out).To(ContainSubstring("Documento 1"))
	})

	It("clears the transcript on reset", func() {
		update(entryAppendedMsg{entry: chat.Entry{Seq: 1, Role: backend.RoleUser, Text: "hola"}})
		update(resetMsg{})
		Expect(m.entries).To(BeEmpty())
	})

	It("does not send blank questions", func() {
		cmd := update(bubbletea.KeyMsg{Type: bubbletea.KeyEnter})
		Expect(cmd).To(BeNil())
		Expect(m.busy).To(BeFalse())
	})

	It("sends the typed question once", func() {
		m.input.SetValue("¿Cómo reinicio la UPS?")
		cmd := update(bubbletea.KeyMsg{Type: bubbletea.KeyEnter})
		Expect(cmd).NotTo(BeNil())
		Expect(m.busy).To(BeTrue())
		Expect(m.input.Value()).To(BeEmpty())

		m.input.SetValue("otra")
		Expect(update(bubbletea.KeyMsg{Type: bubbletea.KeyEnter})).To(BeNil())

		update(sendDoneMsg{err: errors.New("500: boom")})
		Expect(m.busy).To(BeFalse())
		Expect(m.status).To(Equal("500: boom"))
	})

	It("ignores cancelled answers in the status line", func() {
		update(sendDoneMsg{err: context.Canceled})
		Expect(m.status).To(BeEmpty())
	})

	It("reports when there is no answer to like", func() {
		cmd := update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlL})
		Expect(cmd).To(BeNil())
		Expect(m.status).To(Equal("no answer to mark yet"))
	})

	It("cycles the retrieval filter", func() {
		update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlF})
		_, filter := m.ctrl.Retrieval()
		Expect(filter).To(Equal("documentos"))

		for range 3 {
			update(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlF})
		}
		_, filter = m.ctrl.Retrieval()
		Expect(filter).To(Equal("None"))
	})

	It("shows alerts in the status line", func() {
		update(alertMsg{text: chat.AlertNoConversation})
		Expect(m.View()).To(ContainSubstring(chat.AlertNoConversation))
	})

	It("names the open conversation in the header", func() {
		Expect(m.ctrl.Session().Login("ana")).To(Succeed())
		Expect(m.ctrl.Session().Use("c1")).To(Succeed())
		update(conversationsMsg{conversations: []backend.Conversation{{ConversationID: "c1", Title: "Relés"}}})
		Expect(m.header()).To(ContainSubstring("Relés"))
	})

	It("stays on the only conversation", func() {
		Expect(m.ctrl.Session().Login("ana")).To(Succeed())
		Expect(m.ctrl.Session().Use("c1")).To(Succeed())
		update(conversationsMsg{conversations: []backend.Conversation{{ConversationID: "c1"}}})
		Expect(update(bubbletea.KeyMsg{Type: bubbletea.KeyTab})).To(BeNil())
	})
})
