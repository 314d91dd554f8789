package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lihaila/pixelperfect"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <input>",
		Short: "Show format, dimensions and orientation of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := pixelperfect.Open(args[0])
			if err != nil {
				return err
			}
			a.log.Debug("opened", "path", args[0], "mime", src.MIME)

			b := src.Image.Bounds()
			rows := []summaryRow{
				{Label: "File", Value: args[0]},
				{Label: "Format", Value: src.MIME},
				{Label: "Dimensions", Value: fmt.Sprintf("%dx%d", b.Dx(), b.Dy())},
				{Label: "Orientation", Value: src.Orientation.String()},
				{Label: "Size", Value: pixelperfect.FormatSize(src.Size)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(rows))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pixelperfect %s\n", pixelperfect.Version)
			return nil
		},
	}
}
