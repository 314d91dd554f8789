// Package pixelperfect is an image optimization engine: it takes a decoded
// raster image and a set of target options and produces a re-encoded image
// that trades visual fidelity for size, together with size statistics.
//
// Every call runs the same pipeline:
//
//   - Orientation normalization: EXIF rotations are applied before anything else
//   - Resize: optional width/height bounds, with or without aspect ratio
//   - Encode: JPEG, PNG, or an SVG document wrapping a JPEG raster
//   - Metrics: baseline size, optimized size and the fraction saved
//
// Processing is synchronous and pure: it performs no I/O and keeps no state
// between calls, so a Processor may be shared freely between goroutines.
// Reading sources and persisting results is left to the caller; Decode,
// Open and ProcessFile cover the common cases.
package pixelperfect

import (
	"image"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Processor runs the optimization pipeline against a Codec.
type Processor struct {
	codec  Codec
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithCodec sets the raster codec. The default is ImagingCodec.
func WithCodec(c Codec) ProcessorOption {
	return func(p *Processor) {
		if c != nil {
			p.codec = c
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor returns a Processor configured by opts.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		codec:  ImagingCodec{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultProcessor = NewProcessor()

// Process runs the pipeline with the default Processor.
func Process(img image.Image, orientation Orientation, opts Options) (*Result, error) {
	return defaultProcessor.Process(img, orientation, opts)
}

// Process normalizes orientation, resizes, encodes and measures img.
//
// Out-of-range quality and unknown formats are corrected silently. The only
// errors are ErrNoImage for a missing or empty image and *EncodeError when
// the codec fails. img is never modified.
func (p *Processor) Process(img image.Image, orientation Orientation, opts Options) (*Result, error) {
	start := time.Now()

	if img == nil {
		return nil, ErrNoImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.Wrapf(ErrNoImage, "empty image (%dx%d)", bounds.Dx(), bounds.Dy())
	}

	requested := opts
	opts = opts.sanitized()
	if requested.Format != opts.Format {
		p.logger.Warn("unknown output format, using JPEG", "format", int(requested.Format))
	}
	p.logger.Debug("processing image",
		"width", bounds.Dx(), "height", bounds.Dy(),
		"orientation", orientation.String(), "options", opts.String())

	// Step 1: orientation.
	src := opts.orient(toNRGBARef(img), orientation)
	original := image.Pt(src.Bounds().Dx(), src.Bounds().Dy())
	if orientation.Rotation() != 0 || (opts.MirroredOrientation && orientation.Mirrored()) {
		p.logger.Debug("applied orientation", "orientation", orientation.String(),
			"width", original.X, "height", original.Y)
	}

	// Step 2: baseline size for the ratio.
	baseline := p.baselineSize(src)

	// Step 3: resize.
	resized := Resize(src, opts)
	if resized != src {
		p.logger.Debug("resized image",
			"from", original, "to", resized.Bounds().Size(), "kernel", opts.Kernel.String())
	}

	// Step 4: encode.
	enc, err := NewEncoder(opts.Format, p.codec).Encode(resized, opts.Quality)
	if err != nil {
		p.logger.Error("encode failed", "format", opts.Format.String(), "error", err)
		return nil, err
	}

	// Step 5: metrics.
	stats := ComputeStats(baseline, int64(len(enc.Data)))
	result := newResult(enc, stats, original, time.Since(start))

	p.logger.Debug("processing complete",
		"format", enc.Format.String(),
		"width", enc.Width, "height", enc.Height,
		"original", FormatSize(stats.OriginalSize),
		"optimized", FormatSize(stats.OptimizedSize),
		"ratio", stats.CompressionRatio,
		"elapsed", result.Elapsed())

	return result, nil
}

// baselineSize encodes img as JPEG at BaselineQuality and returns the byte
// count. Failure is not fatal: the baseline becomes 0 and so does the ratio.
func (p *Processor) baselineSize(img *image.NRGBA) int64 {
	data, err := encodeLossy(p.codec, img, BaselineQuality)
	if err != nil {
		p.logger.Warn("baseline encode failed, ratio will be 0", "error", err)
		return 0
	}
	return int64(len(data))
}
