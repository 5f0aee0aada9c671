package conversationscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type newCommander struct {
	clientCommander
	title string
}

func newNewCmd() *cobra.Command {
	cmder := &newCommander{}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create and open a conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}
	cmder.register(cmd)
	cmd.Flags().StringVarP(&cmder.title, "title", "t", "", "Conversation title")

	return cmd
}

func (c *newCommander) run(ctx context.Context) error {
	if _, err := c.env.RequireUser(); err != nil {
		return err
	}

	ctrl, err := c.env.Controller(nil)
	if err != nil {
		return err
	}

	id, err := ctrl.NewConversation(ctx, c.title)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Conversación %s creada\n\n", cliui.SuccessMark, cliui.IDStyle.Render(id))
	return nil
}
