package logincmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
)

const logoutLongDesc string = `Sign out and forget the open conversation.

Nothing is deleted on the backend; signing in again with the same user
name brings your conversations back.`

const logoutShortDesc string = "Sign out of the CENACE assistant"

type logoutCommander struct {
	env *clientenv.Env
}

func NewLogoutCmd() *cobra.Command {
	cmder := &logoutCommander{}

	cmd := &cobra.Command{
		Use:   "logout",
		Short: logoutShortDesc,
		Long:  logoutLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd)
			return err
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run()
		},
	}

	return cmd
}

func (c *logoutCommander) run() error {
	user := c.env.Session.UserID()
	if err := c.env.Session.Logout(); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	if user == "" {
		fmt.Printf("\n  %s No había una sesión iniciada.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}
	fmt.Printf("\n  %s Sesión de %s cerrada\n\n", cliui.SuccessMark, cliui.NameStyle.Render(user))
	return nil
}
