package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("prints the final mark and returns the function error", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")

			err := cliui.Step(&buf, "Subiendo documentos", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("Subiendo documentos"))
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
		})

		It("prints the success mark", func() {
			var buf bytes.Buffer
			Expect(cliui.Step(&buf, "ok", func() error { return nil })).To(Succeed())
			Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		})
	})

	It("formats durations", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})

	It("formats sizes", func() {
		Expect(cliui.FormatSize(512)).To(Equal("512 B"))
		Expect(cliui.FormatSize(1536)).To(Equal("1.5 KB"))
		Expect(cliui.FormatSize(3 * 1024 * 1024)).To(Equal("3.0 MB"))
	})

	It("treats non-file writers as non-terminals", func() {
		var buf bytes.Buffer
		Expect(cliui.IsTerminal(&buf)).To(BeFalse())
		Expect(cliui.Width(&buf, 80)).To(Equal(80))
	})
})
