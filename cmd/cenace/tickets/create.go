package ticketscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type createCommander struct {
	clientCommander
	ticket backend.NewTicket
}

func newCreateCmd() *cobra.Command {
	cmder := &createCommander{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}
	cmder.register(cmd)
	cmd.Flags().StringVar(&cmder.ticket.Title, "title", "", "Ticket title")
	cmd.Flags().StringVar(&cmder.ticket.Description, "description", "", "What is happening")
	cmd.Flags().StringVar(&cmder.ticket.Categories, "categories", "", "Comma separated categories")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func (c *createCommander) run(ctx context.Context) error {
	if err := c.env.Client.CreateTicket(ctx, c.ticket); err != nil {
		return fmt.Errorf("creating ticket: %w", err)
	}

	fmt.Printf("\n  %s Ticket %s creado\n\n", cliui.SuccessMark, cliui.NameStyle.Render(c.ticket.Title))
	return nil
}
