package conversationscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

const deleteLongDesc string = `Delete a conversation and its messages.

Deleting the open conversation opens a new, empty one.`

type deleteCommander struct {
	clientCommander
	id string
}

func newDeleteCmd() *cobra.Command {
	cmder := &deleteCommander{}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Long:  deleteLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.id = args[0]
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}
	cmder.register(cmd)

	return cmd
}

func (c *deleteCommander) run(ctx context.Context) error {
	if _, err := c.env.RequireUser(); err != nil {
		return err
	}

	ctrl, err := c.env.Controller(nil)
	if err != nil {
		return err
	}

	if err := ctrl.DeleteConversation(ctx, c.id); err != nil {
		return err
	}

	fmt.Printf("\n  %s Conversación %s eliminada\n", cliui.SuccessMark, cliui.IDStyle.Render(c.id))
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Conversación abierta:"), cliui.IDStyle.Render(c.env.Session.ConversationID()))
	return nil
}
