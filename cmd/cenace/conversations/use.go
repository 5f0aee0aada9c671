package conversationscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type useCommander struct {
	clientCommander
	id string
}

func newUseCmd() *cobra.Command {
	cmder := &useCommander{}

	cmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Open a conversation",
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

func (c *useCommander) run(ctx context.Context) error {
	user, err := c.env.RequireUser()
	if err != nil {
		return err
	}

	conversations, err := c.env.Client.Conversations(ctx, user)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	for _, conv := range conversations {
		if conv.ConversationID != c.id {
			continue
		}
		if err := c.env.Session.Use(c.id); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Printf("\n  %s Conversación abierta: %s\n\n",
			cliui.SuccessMark,
			cliui.ValueStyle.Render(conv.DisplayTitle()),
		)
		return nil
	}

	return fmt.Errorf("conversation %s not found", c.id)
}
