// Package historycmder provides the history command for showing and
// clearing the messages of a conversation.
package historycmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

const historyLongDesc string = `Show or clear the messages of a conversation.

Without an id the open conversation is used. Showing another
conversation also opens it.

Examples:
  cenace history show
  cenace history show 6f1c...
  cenace history clear`

const historyShortDesc string = "Show or clear conversation history"

type historyCommander struct {
	endpoint string
	timeout  string
	raw      bool

	conversationID string
	env            *clientenv.Env
}

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

func newShowCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show the messages of a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cmder.conversationID = args[0]
			}
			defer cmder.env.Close()
			return cmder.show(cmd.Context())
		},
	}
	cmder.register(cmd)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print answers without Markdown rendering")

	return cmd
}

func newClearCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "clear [id]",
		Short: "Delete the messages of a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cmder.conversationID = args[0]
			}
			defer cmder.env.Close()
			return cmder.clear(cmd.Context())
		},
	}
	cmder.register(cmd)

	return cmd
}

func (c *historyCommander) register(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &c.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &c.timeout)

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		var err error
		c.env, err = clientenv.New(cmd, config.ChatFlags)
		return err
	}
}

func (c *historyCommander) show(ctx context.Context) error {
	if _, err := c.env.RequireUser(); err != nil {
		return err
	}

	ctrl, err := c.env.Controller(c.env.TerminalView(os.Stdout, c.raw))
	if err != nil {
		return err
	}
	return ctrl.LoadHistory(ctx, c.conversationID)
}

func (c *historyCommander) clear(ctx context.Context) error {
	if _, err := c.env.RequireUser(); err != nil {
		return err
	}

	ctrl, err := c.env.Controller(nil)
	if err != nil {
		return err
	}
	if c.conversationID != "" {
		if err := ctrl.LoadHistory(ctx, c.conversationID); err != nil {
			return err
		}
	}
	if err := ctrl.ClearHistory(ctx); err != nil {
		return err
	}

	fmt.Printf("\n  %s Historial de %s borrado\n\n",
		cliui.SuccessMark,
		cliui.IDStyle.Render(c.env.Session.ConversationID()),
	)
	return nil
}
