package ticketscmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

type chatCommander struct {
	clientCommander
	raw bool
}

func newChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat <reference>",
		Short: "Discuss a ticket with the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context(), args[0])
		},
	}
	cmder.register(cmd, config.ChatFlags)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print answers without Markdown rendering")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, ref string) error {
	if _, err := c.env.RequireUser(); err != nil {
		return err
	}

	tickets, err := c.env.Client.Tickets(ctx)
	if err != nil {
		return fmt.Errorf("listing tickets: %w", err)
	}

	for _, t := range tickets {
		if t.Reference != ref {
			continue
		}
		ctrl, err := c.env.Controller(c.env.TerminalView(os.Stdout, c.raw))
		if err != nil {
			return err
		}
		_, err = ctrl.BringTicketToConversation(ctx, t)
		return err
	}

	return fmt.Errorf("ticket %s not found", ref)
}
