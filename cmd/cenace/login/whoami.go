package logincmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
)

const whoamiLongDesc string = `Show the signed-in user, the open conversation and whether the
backend answers.`

const whoamiShortDesc string = "Show the signed-in user and backend status"

type whoamiCommander struct {
	env *clientenv.Env
}

func NewWhoamiCmd() *cobra.Command {
	cmder := &whoamiCommander{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: whoamiShortDesc,
		Long:  whoamiLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}

	var endpoint, timeout string
	addClientFlags(cmd, &endpoint, &timeout)

	return cmd
}

func (c *whoamiCommander) run(ctx context.Context) error {
	user := c.env.Session.UserID()
	conversation := c.env.Session.ConversationID()

	fmt.Println()
	if user == "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Usuario:"), cliui.DimStyle.Render("<sin sesión>"))
	} else {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Usuario:"), cliui.NameStyle.Render(user))
	}
	if conversation != "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Conversación:"), cliui.IDStyle.Render(conversation))
	}

	endpoint := c.env.Client.BaseURL()
	if _, err := c.env.Client.Ping(ctx); err != nil {
		fmt.Printf("  %s %s %s\n\n", cliui.KeyStyle.Render("Backend:"), endpoint, cliui.FailMark)
		return fmt.Errorf("backend not reachable: %w", err)
	}
	fmt.Printf("  %s %s %s\n\n", cliui.KeyStyle.Render("Backend:"), endpoint, cliui.SuccessMark)
	return nil
}
