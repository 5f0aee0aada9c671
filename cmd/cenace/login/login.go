// Package logincmder provides the login, logout and whoami commands. The
// signed-in user and the open conversation are stored in the .cenace/
// directory and shared by every other command.
package logincmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
)

const loginLongDesc string = `Sign in to the CENACE assistant.

The user name identifies your conversations, liked answers and solutions
on the backend. There is no password: the backend trusts the name.

After signing in the most recent conversation is opened, or a new one is
created when you have none. Other commands (chat, history, like, ...)
act on the signed-in user and the open conversation.

Examples:
  cenace login ana
  cenace login ana --api-endpoint http://cenace.local:8000`

const loginShortDesc string = "Sign in to the CENACE assistant"

type loginCommander struct {
	user string
	env  *clientenv.Env
}

func NewLoginCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:   "login <user>",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.user = args[0]
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}

	var endpoint, timeout string
	addClientFlags(cmd, &endpoint, &timeout)

	return cmd
}

func (c *loginCommander) run(ctx context.Context) error {
	ctrl, err := c.env.Controller(nil)
	if err != nil {
		return err
	}

	fmt.Println()
	err = cliui.Step(os.Stdout, "Iniciando sesión como "+c.user, func() error {
		return ctrl.Login(ctx, c.user)
	})
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}

	c.env.Logger.Debug("signed in",
		zap.String("user", c.env.Session.UserID()),
		zap.String("conversation", c.env.Session.ConversationID()),
	)

	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Usuario:"), cliui.NameStyle.Render(c.env.Session.UserID()))
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Conversación:"), cliui.IDStyle.Render(c.env.Session.ConversationID()))
	return nil
}
