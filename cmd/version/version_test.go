package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/anmerino-pnd/proyectoCenace/cmd/version"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

var _ = Describe("version command", func() {
	var out *bytes.Buffer

	run := func(args ...string) {
		cmd := versioncmder.NewVersionCmd()
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(args)
		Expect(cmd.Execute()).To(Succeed())
	}

	BeforeEach(func() {
		origVersion, origSha := utils.Version, utils.Sha
		utils.Version, utils.Sha = "v0.3.0", "abc1234"
		DeferCleanup(func() { utils.Version, utils.Sha = origVersion, origSha })
	})

	It("prints the release and commit", func() {
		run()
		Expect(out.String()).To(ContainSubstring("v0.3.0"))
		Expect(out.String()).To(ContainSubstring("abc1234"))
	})

	It("prints only the release with --short", func() {
		run("--short")
		Expect(out.String()).To(Equal("v0.3.0\n"))
	})

	It("rejects arguments", func() {
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})
		Expect(cmd.Execute()).To(HaveOccurred())
	})
})
