package documentscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

type listCommander struct {
	clientCommander
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded documents",
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
	docs, err := c.env.Client.Documents(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	fmt.Println()
	if len(docs) == 0 {
		fmt.Printf("  %s No hay documentos.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	for _, doc := range docs {
		status := cliui.DimStyle.Render("sin indexar")
		if doc.Processed() {
			status = fmt.Sprintf("%s %s", cliui.SuccessMark, cliui.DimStyle.Render(fmt.Sprintf("%d fragmentos", doc.Chunks)))
		}
		fmt.Printf("  %s  %s  %s  %s\n",
			cliui.NameStyle.Render(doc.Filename),
			cliui.IDStyle.Render(doc.Reference),
			cliui.DimStyle.Render(cliui.FormatSize(doc.Size)),
			status,
		)
	}
	fmt.Println()
	return nil
}
