// Package solutionscmder provides the solutions command. Solutions are liked
// answers the backend retrieves alongside documents and tickets.
package solutionscmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

const solutionsLongDesc string = `Manage the solutions of the signed-in user.

A solution is an answer you liked, stored with the question that
preceded it. Liking an answer in "cenace chat" or with "cenace like"
promotes it automatically; "process" promotes every liked answer again.

Examples:
  cenace solutions list
  cenace solutions process
  cenace solutions delete <id>...`

const solutionsShortDesc string = "Manage liked solutions"

// preview is the length of question and answer previews.
const preview = 80

type solutionsCommander struct {
	endpoint string
	timeout  string
	env      *clientenv.Env
}

func NewSolutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solutions",
		Short: solutionsShortDesc,
		Long:  solutionsLongDesc,
	}

	cmd.AddCommand(newSubCmd("list", "List solutions", cobra.NoArgs, (*solutionsCommander).list))
	cmd.AddCommand(newSubCmd("process", "Promote every liked answer to a solution", cobra.NoArgs, (*solutionsCommander).process))
	cmd.AddCommand(newSubCmd("delete <id>...", "Delete solutions", cobra.MinimumNArgs(1), (*solutionsCommander).delete))

	return cmd
}

func newSubCmd(use, short string, args cobra.PositionalArgs, run func(*solutionsCommander, context.Context, []string) error) *cobra.Command {
	cmder := &solutionsCommander{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer cmder.env.Close()
			return run(cmder, cmd.Context(), args)
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

func (c *solutionsCommander) list(ctx context.Context, _ []string) error {
	user, err := c.env.RequireUser()
	if err != nil {
		return err
	}

	solutions, err := c.env.Client.Solutions(ctx, user)
	if err != nil {
		return fmt.Errorf("listing solutions: %w", err)
	}

	fmt.Println()
	if len(solutions) == 0 {
		fmt.Printf("  %s No hay soluciones. Marca respuestas útiles con 'cenace like'.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	for _, sol := range solutions {
		fmt.Printf("  %s %s\n", cliui.LikedMark, cliui.IDStyle.Render(sol.ID))
		fmt.Printf("    %s %s\n", cliui.KeyStyle.Render("P:"), oneLine(sol.Question))
		fmt.Printf("    %s %s\n\n", cliui.KeyStyle.Render("R:"), cliui.DimStyle.Render(oneLine(sol.Answer)))
	}
	return nil
}

func (c *solutionsCommander) process(ctx context.Context, _ []string) error {
	user, err := c.env.RequireUser()
	if err != nil {
		return err
	}

	if err := c.env.Client.ProcessLikedSolutions(ctx, user); err != nil {
		return fmt.Errorf("processing liked solutions: %w", err)
	}

	fmt.Printf("\n  %s Soluciones de %s procesadas\n\n", cliui.SuccessMark, cliui.NameStyle.Render(user))
	return nil
}

func (c *solutionsCommander) delete(ctx context.Context, ids []string) error {
	if err := c.env.Client.DeleteSolutions(ctx, ids); err != nil {
		return fmt.Errorf("deleting solutions: %w", err)
	}

	fmt.Printf("\n  %s %d soluciones eliminadas\n\n", cliui.SuccessMark, len(ids))
	return nil
}

func oneLine(s string) string {
	return utils.Truncate(strings.Join(strings.Fields(s), " "), preview)
}
