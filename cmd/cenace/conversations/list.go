package conversationscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type listCommander struct {
	clientCommander
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}
	cmder.register(cmd)

	return cmd
}

func (c *listCommander) run(ctx context.Context) error {
	user, err := c.env.RequireUser()
	if err != nil {
		return err
	}

	conversations, err := c.env.Client.Conversations(ctx, user)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	printConversations(conversations, c.env.Session.ConversationID())
	return nil
}

func printConversations(conversations []backend.Conversation, current string) {
	fmt.Println()
	if len(conversations) == 0 {
		fmt.Printf("  %s No hay conversaciones.\n", cliui.DimStyle.Render("●"))
		fmt.Printf("  Usa 'cenace conversations new' para crear una.\n\n")
		return
	}

	for _, conv := range conversations {
		marker := " "
		if conv.ConversationID == current {
			marker = cliui.SuccessMark
		}
		fmt.Printf("  %s %s  %s\n",
			marker,
			cliui.IDStyle.Render(conv.ConversationID),
			cliui.ValueStyle.Render(conv.DisplayTitle()),
		)
	}
	fmt.Println()
}
