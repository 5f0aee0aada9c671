// Package ticketscmder provides the tickets command for listing and filing
// support tickets and for discussing a ticket with the assistant.
package ticketscmder

import (
	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

const ticketsLongDesc string = `Manage support tickets.

"cenace tickets chat <reference>" opens the conversation linked to a
ticket. A ticket without one gets a new conversation titled after it,
and the assistant is asked to read the ticket first.

Examples:
  cenace tickets list
  cenace tickets list --open
  cenace tickets create --title "Falla en UPS" --description "No enciende"
  cenace tickets chat 3f2a...`

const ticketsShortDesc string = "Manage support tickets"

func NewTicketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: ticketsShortDesc,
		Long:  ticketsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newChatCmd())

	return cmd
}

type clientCommander struct {
	endpoint string
	timeout  string
	env      *clientenv.Env
}

func (c *clientCommander) register(cmd *cobra.Command, flagSets ...config.FlagSet) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &c.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &c.timeout)

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		c.env, err = clientenv.New(cmd, flagSets...)
		return err
	}
}
