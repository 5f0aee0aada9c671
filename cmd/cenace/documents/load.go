package documentscmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

const loadLongDesc string = `Index uploaded documents so answers can cite them.

Already indexed documents are skipped unless --force is given.`

type loadCommander struct {
	clientCommander
	collection string
	force      bool
}

func newLoadCmd() *cobra.Command {
	cmder := &loadCommander{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Index uploaded documents",
		Long:  loadLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}
	cmder.register(cmd)
	cmd.Flags().StringVar(&cmder.collection, "collection", "documentos", "Collection to index into")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Reindex documents that were already indexed")

	return cmd
}

func (c *loadCommander) run(ctx context.Context) error {
	fmt.Println()

	var loaded *backend.LoadResult
	err := cliui.Step(os.Stdout, "Indexando "+c.collection, func() error {
		var err error
		loaded, err = c.env.Client.LoadDocuments(ctx, c.collection, c.force)
		return err
	})
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	printLoaded(loaded)
	fmt.Println()
	return nil
}
