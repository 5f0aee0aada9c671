package documentscmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

const viewLongDesc string = `Download an uploaded document.

The document is saved under its own name in the current directory unless
-o names another file. Use "-o -" to write it to stdout.`

type viewCommander struct {
	clientCommander
	output string
}

func newViewCmd() *cobra.Command {
	cmder := &viewCommander{}

	cmd := &cobra.Command{
		Use:   "view <filename>",
		Short: "Download an uploaded document",
		Long:  viewLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd.Context(), args[0])
		},
	}
	cmder.register(cmd)
	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Where to save the document")

	return cmd
}

func (c *viewCommander) run(ctx context.Context, filename string) error {
	body, contentType, err := c.env.Client.ViewDocument(ctx, filename)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", filename, err)
	}
	defer body.Close()

	if c.output == "-" {
		_, err := io.Copy(os.Stdout, body)
		return err
	}

	target := c.output
	if target == "" {
		target = filepath.Base(filename)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	fmt.Printf("\n  %s %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(target),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, %s)", cliui.FormatSize(n), contentType)),
	)
	return nil
}
