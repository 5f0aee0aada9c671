package chatstream_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
)

const wrappedControl = `{"final_message_data":{"message_id":"m1","metadata":{"references":[],"disable":false}}}`

func feedAll(rc *chatstream.Reconstructor, fragments ...string) []chatstream.Update {
	updates := make([]chatstream.Update, 0, len(fragments))
	for _, f := range fragments {
		updates = append(updates, rc.Feed(f))
	}
	return updates
}

func countSealed(updates []chatstream.Update) int {
	n := 0
	for _, u := range updates {
		if u.Sealed {
			n++
		}
	}
	return n
}

var _ = Describe("Reconstructor", func() {
	Describe("control payload extraction", func() {
		It("seals on a wrapped payload fused to the text", func() {
			rc := chatstream.New()
			updates := feedAll(rc, "Hello ", "world", wrappedControl)

			msg := rc.Message()
			Expect(msg.Sealed()).To(BeTrue())
			Expect(msg.RawText).To(Equal("Hello world"))
			Expect(msg.MessageID).To(Equal("m1"))
			Expect(msg.Metadata).NotTo(BeNil())
			Expect(msg.Metadata.Disable).To(BeFalse())
			Expect(countSealed(updates)).To(Equal(1))
			Expect(updates[2].Sealed).To(BeTrue())
		})

		It("seals on a standalone bare payload", func() {
			rc := chatstream.New()
			feedAll(rc, "answer text", `{"message_id":"m2","metadata":{"disable":true}}`)

			msg := rc.Message()
			Expect(msg.Sealed()).To(BeTrue())
			Expect(msg.RawText).To(Equal("answer text"))
			Expect(msg.MessageID).To(Equal("m2"))
			Expect(msg.Metadata.Disable).To(BeTrue())
		})

		It("seals when the payload shares a fragment with the last text", func() {
			rc := chatstream.New()
			feedAll(rc, "Hola ", "mundo"+wrappedControl+"\n")

			msg := rc.Message()
			Expect(msg.Sealed()).To(BeTrue())
			Expect(msg.RawText).To(Equal("Hola mundo"))
			Expect(msg.MessageID).To(Equal("m1"))
		})

		It("seals for every split point of a fused payload", func() {
			full := "Hello world" + wrappedControl
			for i := 0; i <= len(full); i++ {
				rc := chatstream.New()
				first := rc.Feed(full[:i])
				second := rc.Feed(full[i:])

				Expect(strings.HasPrefix(second.Message.RawText, first.Message.RawText)).To(BeTrue(), "split at %d", i)
				msg := rc.Message()
				Expect(msg.Sealed()).To(BeTrue(), "split at %d", i)
				Expect(msg.RawText).To(Equal("Hello world"), "split at %d", i)
				Expect(msg.MessageID).To(Equal("m1"), "split at %d", i)
			}
		})

		It("withholds an incomplete payload from the raw text", func() {
			rc := chatstream.New()
			rc.Feed("Hello world")
			u := rc.Feed(`{"final_message_data":{"message_`)

			Expect(u.Message.RawText).To(Equal("Hello world"))
			Expect(u.Message.Sealed()).To(BeFalse())
		})

		It("decodes references with mixed value types and braces in strings", func() {
			payload := `{"message_id":"m5","metadata":{"references":[{"reference":"r}1","metadata":{"collection":"documentos","filename":"manual.pdf","title":"a \"{b}\" c","page_number":4,"categories":["x","y"]}}]}}`
			rc := chatstream.New()
			feedAll(rc, "Ver manual. ", payload)

			msg := rc.Message()
			Expect(msg.Sealed()).To(BeTrue())
			Expect(msg.RawText).To(Equal("Ver manual. "))
			Expect(msg.Metadata.References).To(HaveLen(1))

			ref := msg.Metadata.References[0]
			Expect(ref.Reference).To(Equal("r}1"))
			Expect(ref.Metadata.Collection).To(Equal("documentos"))
			Expect(ref.Metadata.Filename).To(Equal("manual.pdf"))
			Expect(ref.Metadata.Title).To(Equal(`a "{b}" c`))
			Expect(string(ref.Metadata.PageNumber)).To(Equal("4"))
			Expect(string(ref.Metadata.Categories)).To(Equal("x, y"))
			Expect(msg.Metadata.ReferenceIDs()).To(Equal([]string{"r}1"}))
		})

		It("accepts numeric message ids and missing metadata", func() {
			rc := chatstream.New()
			feedAll(rc, "ok", `{"message_id": 42}`)

			msg := rc.Message()
			Expect(msg.MessageID).To(Equal("42"))
			Expect(msg.Metadata).To(Equal(&chatstream.Metadata{}))
		})
	})

	Describe("text that only looks like a payload", func() {
		It("keeps braces in prose as text", func() {
			rc := chatstream.New()
			u := rc.Feed("usa {x} o {} aquí")

			Expect(u.Message.RawText).To(Equal("usa {x} o {} aquí"))
			Expect(u.Message.Sealed()).To(BeFalse())
		})

		It("does not seal on a payload followed by more text", func() {
			text := `Ejemplo {"message_id":"x","metadata":{}} y sigue`
			rc := chatstream.New()
			u := rc.Feed(text)

			Expect(u.Message.RawText).To(Equal(text))
			Expect(u.Sealed).To(BeFalse())
		})

		It("does not seal on a marker nested inside another object", func() {
			text := `{"data":{"message_id":"m6"}}`
			rc := chatstream.New()
			u := rc.Feed(text)

			Expect(u.Message.RawText).To(Equal(text))
			Expect(u.Sealed).To(BeFalse())
		})

		It("releases candidates larger than the pending limit", func() {
			rc := chatstream.New(chatstream.WithMaxPending(8))
			u := rc.Feed(`{"aaaaaaaaaaaa`)

			Expect(u.Message.RawText).To(Equal(`{"aaaaaaaaaaaa`))
		})
	})

	Describe("malformed payloads", func() {
		It("preserves a closed but unparsable payload verbatim", func() {
			bad := `{"message_id": "m3", "metadata": }`
			rc := chatstream.New()
			u := feedAll(rc, "answer ", bad)[1]

			Expect(u.Message.RawText).To(Equal("answer " + bad))
			Expect(u.Sealed).To(BeFalse())

			msg := rc.Finish()
			Expect(msg.RawText).To(Equal("answer " + bad))
			Expect(msg.Sealed()).To(BeTrue())
			Expect(msg.HasID()).To(BeFalse())
			Expect(msg.Metadata).To(Equal(&chatstream.Metadata{}))
		})

		It("flushes an unterminated payload at stream end", func() {
			partial := `{"final_message_data": {"message_id": "m4"`
			rc := chatstream.New()
			feedAll(rc, "answer ", partial)
			Expect(rc.Message().RawText).To(Equal("answer "))

			msg := rc.Finish()
			Expect(msg.RawText).To(Equal("answer " + partial))
			Expect(msg.Sealed()).To(BeTrue())
			Expect(msg.MessageID).To(BeEmpty())
		})
	})

	Describe("state machine", func() {
		It("grows raw text monotonically when fed byte by byte", func() {
			full := "## Título\n\nPaso 1: revisar {config}.\n" + wrappedControl
			rc := chatstream.New()

			var updates []chatstream.Update
			prev := ""
			for i := 0; i < len(full); i++ {
				u := rc.Feed(full[i : i+1])
				Expect(strings.HasPrefix(u.Message.RawText, prev)).To(BeTrue())
				prev = u.Message.RawText
				updates = append(updates, u)
			}

			Expect(countSealed(updates)).To(Equal(1))
			Expect(rc.Message().RawText).To(Equal("## Título\n\nPaso 1: revisar {config}.\n"))
		})

		It("ignores fragments after sealing", func() {
			rc := chatstream.New()
			rc.Feed("a" + wrappedControl)
			sealed := rc.Message()

			u := rc.Feed("more text")
			Expect(u.Ignored).To(BeTrue())
			Expect(u.Sealed).To(BeFalse())
			Expect(u.Message).To(Equal(sealed))
			Expect(rc.Finish()).To(Equal(sealed))
		})

		It("seals exactly once on stream end without a payload", func() {
			rc := chatstream.New()
			rc.Feed("solo texto")
			first := rc.Finish()
			second := rc.Finish()

			Expect(first.Sealed()).To(BeTrue())
			Expect(second).To(Equal(first))
			Expect(first.State.String()).To(Equal("sealed"))
		})
	})

	Describe("rendering", func() {
		It("renders identical raw text identically", func() {
			renderer := chatstream.RendererFunc(func(md string) (string, error) {
				return "<p>" + md + "</p>", nil
			})

			a := chatstream.New(chatstream.WithRenderer(renderer))
			b := chatstream.New(chatstream.WithRenderer(renderer))
			feedAll(a, "**ho", "la**")
			feedAll(b, "**hola**")

			Expect(a.Message().RawText).To(Equal(b.Message().RawText))
			Expect(a.Message().RenderedHTML).To(Equal(b.Message().RenderedHTML))
			Expect(a.Message().RenderedHTML).To(Equal("<p>**hola**</p>"))
		})

		It("falls back to escaped text without a renderer", func() {
			rc := chatstream.New()
			rc.Feed("a<b\nc")
			Expect(rc.Message().RenderedHTML).To(Equal("a&lt;b<br>c"))
		})

		It("falls back to escaped text when the renderer fails", func() {
			rc := chatstream.New(chatstream.WithRenderer(chatstream.RendererFunc(func(string) (string, error) {
				return "", errors.New("bad markdown")
			})))
			rc.Feed("x & y")
			Expect(rc.Message().RenderedHTML).To(Equal("x &amp; y"))
		})
	})
})
