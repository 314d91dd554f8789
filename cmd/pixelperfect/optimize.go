package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Lihaila/pixelperfect"
)

type optimizeFlags struct {
	quality    int
	format     string
	maxWidth   int
	maxHeight  int
	keepAspect bool
	kernel     string
	mirrored   bool
}

func newOptimizeCmd(a *app) *cobra.Command {
	var f optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize [flags] <input> [output]",
		Short: "Re-encode an image and report the size saved",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.apply(cmd, a.cfg.Options())
			if err != nil {
				return err
			}

			input, output := args[0], ""
			if len(args) == 2 {
				output = args[1]
			}
			if output == "" {
				output = pixelperfect.OutputPath(input, opts.Format)
			}

			proc := pixelperfect.NewProcessor(pixelperfect.WithLogger(a.log))
			result, err := proc.ProcessFile(input, output, opts)
			if err != nil {
				return err
			}
			a.log.Info("optimized", "input", input, "output", output,
				"ratio", result.CompressionRatio(), "elapsed", result.Elapsed())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(resultRows(result)))
			fmt.Fprintf(out, "Written to: %s\n", output)
			if result.Format() == pixelperfect.VectorWrapper {
				fmt.Fprintln(out, noteStyle.Render("Note: SVG output embeds a JPEG raster and is not resolution independent."))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&f.quality, "quality", "q", pixelperfect.DefaultQuality, "Lossy quality 1-100 (clamped)")
	flags.StringVarP(&f.format, "format", "f", "jpeg", "Output format: jpeg|png|svg")
	flags.IntVar(&f.maxWidth, "max-width", 0, "Maximum width (0 = no limit)")
	flags.IntVar(&f.maxHeight, "max-height", 0, "Maximum height (0 = no limit)")
	flags.BoolVar(&f.keepAspect, "keep-aspect", true, "Keep the aspect ratio when resizing")
	flags.StringVar(&f.kernel, "kernel", "lanczos", "Resample kernel: lanczos|catmullrom|bicubic|linear")
	flags.BoolVar(&f.mirrored, "mirrored", false, "Apply mirrored EXIF orientations")

	return cmd
}

// apply overrides opts with the flags the user set explicitly.
func (f optimizeFlags) apply(cmd *cobra.Command, opts pixelperfect.Options) (pixelperfect.Options, error) {
	changed := cmd.Flags().Changed

	if changed("quality") {
		opts.Quality = f.quality
	}
	if changed("format") {
		format, ok := pixelperfect.ParseFormat(f.format)
		if !ok {
			return opts, errors.Errorf("unknown format %q (use jpeg, png or svg)", f.format)
		}
		opts.Format = format
	}
	if changed("max-width") {
		opts.MaxWidth = f.maxWidth
	}
	if changed("max-height") {
		opts.MaxHeight = f.maxHeight
	}
	if changed("keep-aspect") {
		opts.MaintainAspectRatio = f.keepAspect
	}
	if changed("kernel") {
		kernel, ok := pixelperfect.ParseKernel(f.kernel)
		if !ok {
			return opts, errors.Errorf("unknown kernel %q (use lanczos, catmullrom, bicubic or linear)", f.kernel)
		}
		opts.Kernel = kernel
	}
	if changed("mirrored") {
		opts.MirroredOrientation = f.mirrored
	}
	return opts, nil
}

func resultRows(r *pixelperfect.Result) []summaryRow {
	orig := r.OriginalDimensions()
	rows := []summaryRow{
		{Label: "Format", Value: r.Format().String()},
		{Label: "Dimensions", Value: fmt.Sprintf("%dx%d -> %dx%d", orig.X, orig.Y, r.Width(), r.Height())},
		{Label: "Original size", Value: pixelperfect.FormatSize(r.OriginalSize())},
		{Label: "Optimized size", Value: pixelperfect.FormatSize(r.OptimizedSize())},
		{Label: "Reduction", Value: fmt.Sprintf("%.1f%%", r.Stats().ReductionPercent())},
	}
	if r.Quality() > 0 {
		rows = append(rows, summaryRow{Label: "Quality", Value: fmt.Sprintf("%d", r.Quality())})
	}
	return rows
}
