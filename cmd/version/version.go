// Package versioncmder prints the build metadata of the cenace binary.
package versioncmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

type versionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &versionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the cenace version",
		Long:  "Print the release, commit and build time of this cenace binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the release")

	return cmd
}

func (c *versionCommander) print(w io.Writer) {
	if c.short {
		fmt.Fprintln(w, utils.BuildVersion())
		return
	}

	fmt.Fprintf(w, "%s %s\n", cliui.NameStyle.Render("cenace"), utils.BuildVersion())
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("commit:"), utils.Sha)
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render("built: "), utils.Buildtime)
}
