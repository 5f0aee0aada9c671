// Package documentscmder provides the documents command for managing the
// documents corpus the assistant retrieves from.
package documentscmder

import (
	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

const documentsLongDesc string = `Manage the documents corpus.

Uploaded documents are only retrieved once they are loaded (indexed):
  cenace documents upload manual.pdf guia.docx
  cenace documents load

Use subcommands to list, upload, load, delete or download documents:
  cenace documents list
  cenace documents upload <file>... [--load]
  cenace documents upload --watch <dir> [--load]
  cenace documents load [--collection C] [--force]
  cenace documents delete <reference>...
  cenace documents view <filename> [-o out]`

const documentsShortDesc string = "Manage the documents corpus"

func NewDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   documentsShortDesc,
		Long:    documentsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newViewCmd())

	return cmd
}

type clientCommander struct {
	endpoint string
	timeout  string
	env      *clientenv.Env
}

func (c *clientCommander) register(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &c.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &c.timeout)

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		c.env, err = clientenv.New(cmd)
		return err
	}
}
