package documentscmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/docwatch"
)

const uploadLongDesc string = `Upload documents to the corpus.

With --watch the command keeps running and uploads every file created or
changed in the directory. Add --load to index uploads right away.

Examples:
  cenace documents upload manual.pdf guia.docx
  cenace documents upload --load procedimientos/*.pdf
  cenace documents upload --watch ./entrada --load`

type uploadCommander struct {
	clientCommander
	watch      string
	load       bool
	collection string
}

func newUploadCmd() *cobra.Command {
	cmder := &uploadCommander{}

	cmd := &cobra.Command{
		Use:   "upload [file...]",
		Short: "Upload documents",
		Long:  uploadLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer cmder.env.Close()
			if cmder.watch != "" {
				return cmder.runWatch(cmd.Context())
			}
			if len(args) == 0 {
				return errors.New("at least one file or --watch is required")
			}
			return cmder.run(cmd.Context(), args)
		},
	}
	cmder.register(cmd)
	cmd.Flags().StringVarP(&cmder.watch, "watch", "w", "", "Directory to watch for new documents")
	cmd.Flags().BoolVar(&cmder.load, "load", false, "Index the documents after uploading")
	cmd.Flags().StringVar(&cmder.collection, "collection", "documentos", "Collection to index into")

	return cmd
}

func (c *uploadCommander) run(ctx context.Context, paths []string) error {
	fmt.Println()

	var uploaded *backend.UploadResult
	err := cliui.Step(os.Stdout, fmt.Sprintf("Subiendo %d documentos", len(paths)), func() error {
		var err error
		uploaded, err = c.env.Client.UploadDocuments(ctx, paths)
		return err
	})
	if err != nil {
		return fmt.Errorf("uploading documents: %w", err)
	}
	for _, f := range uploaded.Files {
		fmt.Printf("    %s\n", cliui.NameStyle.Render(f.Filename))
	}

	if c.load {
		var loaded *backend.LoadResult
		err := cliui.Step(os.Stdout, "Indexando "+c.collection, func() error {
			var err error
			loaded, err = c.env.Client.LoadDocuments(ctx, c.collection, false)
			return err
		})
		if err != nil {
			return fmt.Errorf("loading documents: %w", err)
		}
		printLoaded(loaded)
	}

	fmt.Println()
	return nil
}

func (c *uploadCommander) runWatch(ctx context.Context) error {
	dir, err := filepath.Abs(c.watch)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", c.watch, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n  %s %s %s\n\n",
		cliui.KeyStyle.Render("Observando"),
		cliui.NameStyle.Render(dir),
		cliui.DimStyle.Render("(Ctrl+C para terminar)"),
	)

	return docwatch.Watch(ctx, &docwatch.Config{
		Dir:        dir,
		Uploader:   c.env.Client,
		Load:       c.load,
		Collection: c.collection,
		Logger:     c.env.Logger,
		OnBatch: func(b docwatch.Batch) {
			if b.Err != nil {
				fmt.Printf("  %s %v\n", cliui.FailMark, b.Err)
				return
			}
			for _, p := range b.Paths {
				fmt.Printf("  %s %s\n", cliui.SuccessMark, cliui.NameStyle.Render(filepath.Base(p)))
			}
			if b.Loaded != nil {
				printLoaded(b.Loaded)
			}
			c.env.Logger.Debug("batch uploaded", zap.Strings("paths", b.Paths))
		},
	})
}

func printLoaded(r *backend.LoadResult) {
	fmt.Printf("    %s\n", cliui.DimStyle.Render(fmt.Sprintf(
		"%d documentos, %d nuevos, %d fragmentos", r.Documents, r.New, r.Chunks)))
}
