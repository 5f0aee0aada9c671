// Package likecmder provides the like and unlike commands. Liked answers
// are promoted to the solutions corpus by the backend.
package likecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

const likeLongDesc string = `Mark an answer of the open conversation as liked.

Liked answers are stored as solutions and retrieved for later questions.
The message id is printed under every answer by "cenace chat" and
"cenace history show".

Examples:
  cenace like 0b6f...
  cenace unlike 0b6f...`

type likeCommander struct {
	endpoint   string
	timeout    string
	likePolicy string

	liked     bool
	messageID string
	env       *clientenv.Env
}

func NewLikeCmd() *cobra.Command {
	return newCmd("like <message-id>", "Mark an answer as liked", true)
}

func NewUnlikeCmd() *cobra.Command {
	return newCmd("unlike <message-id>", "Remove the like of an answer", false)
}

func newCmd(use, short string, liked bool) *cobra.Command {
	cmder := &likeCommander{liked: liked}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  likeLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd, config.ChatFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.messageID = args[0]
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagLikePolicy, &cmder.likePolicy)

	return cmd
}

func (c *likeCommander) run(ctx context.Context) error {
	if _, err := c.env.RequireUser(); err != nil {
		return err
	}

	ctrl, err := c.env.Controller(nil)
	if err != nil {
		return err
	}
	if err := ctrl.LoadHistory(ctx, ""); err != nil {
		return err
	}
	if _, found := ctrl.Transcript().Find(c.messageID); !found {
		return fmt.Errorf("message %s is not an answer of the open conversation", c.messageID)
	}

	if err := ctrl.Like(ctx, c.messageID, c.liked); err != nil {
		return err
	}

	if c.liked {
		fmt.Printf("\n  %s %s %s\n\n", cliui.LikedMark, cliui.IDStyle.Render(c.messageID), cliui.DimStyle.Render("marcada como útil"))
	} else {
		fmt.Printf("\n  %s %s %s\n\n", cliui.SuccessMark, cliui.IDStyle.Render(c.messageID), cliui.DimStyle.Render("ya no está marcada"))
	}
	return nil
}
