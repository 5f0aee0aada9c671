// Package conversationscmder provides the conversations command for listing,
// creating, deleting and switching conversations of the signed-in user.
package conversationscmder

import (
	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

const conversationsLongDesc string = `Manage the conversations of the signed-in user.

Use subcommands to list, create, delete or open conversations:
  cenace conversations list              List conversations, newest first
  cenace conversations new [--title T]   Create and open a conversation
  cenace conversations delete <id>       Delete a conversation
  cenace conversations use <id>          Open a conversation

The open conversation is remembered in the .cenace/ directory; "cenace chat"
continues it.`

const conversationsShortDesc string = "Manage conversations"

func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   conversationsShortDesc,
		Long:    conversationsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newUseCmd())

	return cmd
}

// clientCommander is embedded by every subcommand.
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
