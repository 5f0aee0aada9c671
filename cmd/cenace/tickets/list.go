package ticketscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type listCommander struct {
	clientCommander
	open bool
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}
	cmder.register(cmd)
	cmd.Flags().BoolVar(&cmder.open, "open", false, "Only list tickets that are not solved")

	return cmd
}

func (c *listCommander) run(ctx context.Context) error {
	tickets, err := c.env.Client.Tickets(ctx)
	if err != nil {
		return fmt.Errorf("listing tickets: %w", err)
	}

	shown := make([]backend.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if c.open && t.IsSolved {
			continue
		}
		shown = append(shown, t)
	}

	fmt.Println()
	if len(shown) == 0 {
		fmt.Printf("  %s No hay tickets.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	for _, t := range shown {
		mark := cliui.DimStyle.Render("○")
		if t.IsSolved {
			mark = cliui.SuccessMark
		}
		fmt.Printf("  %s %s  %s\n", mark, cliui.IDStyle.Render(t.Reference), cliui.NameStyle.Render(t.Title))
		if t.Categories != "" {
			fmt.Printf("    %s %s\n", cliui.KeyStyle.Render("Categorías:"), string(t.Categories))
		}
		if t.SolutionID != "" {
			fmt.Printf("    %s %s\n", cliui.KeyStyle.Render("Conversación:"), cliui.IDStyle.Render(t.SolutionID))
		}
	}
	fmt.Println()
	return nil
}
