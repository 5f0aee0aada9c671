package cenacecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cenacecmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace"
)

var _ = Describe("cenace root command", func() {
	It("registers every subcommand", func() {
		cmd := cenacecmder.NewCenaceCmd()

		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"config", "login", "logout", "whoami", "chat", "tui",
			"conversations", "history", "like", "unlike",
			"documents", "solutions", "tickets",
			"mcp", "mock-backend", "version",
		))
	})

	It("carries the global flags", func() {
		cmd := cenacecmder.NewCenaceCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
