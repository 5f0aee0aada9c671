package documentscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type deleteCommander struct {
	clientCommander
}

func newDeleteCmd() *cobra.Command {
	cmder := &deleteCommander{}

	cmd := &cobra.Command{
		Use:   "delete <reference>...",
		Short: "Delete documents by reference id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context(), args)
		},
	}
	cmder.register(cmd)

	return cmd
}

func (c *deleteCommander) run(ctx context.Context, refs []string) error {
	if err := c.env.Client.DeleteDocuments(ctx, refs); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	fmt.Printf("\n  %s %d documentos eliminados\n\n", cliui.SuccessMark, len(refs))
	return nil
}
