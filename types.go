package pixelperfect

import (
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Version is the library version.
const Version = "1.0.0"

// Quality bounds. Out-of-range values are clamped, never rejected.
const (
	MinQuality     = 1
	MaxQuality     = 100
	DefaultQuality = 80

	// VectorQuality is the fixed JPEG quality used for the raster embedded in
	// VectorWrapper output. Caller-supplied quality is ignored for that format.
	VectorQuality = 85

	// BaselineQuality is the reference JPEG quality used to compute the
	// "original" size that compression ratios are measured against.
	BaselineQuality = 100
)

// Format represents an output image format.
type Format int

const (
	// RasterLossy is a JPEG encoding at the requested quality.
	// It is the zero value, so unset and unknown formats fall back to it.
	RasterLossy Format = iota
	// RasterLossless is a PNG encoding; quality is ignored.
	RasterLossless
	// VectorWrapper is an SVG document embedding a single JPEG raster.
	// It is not resolution independent.
	VectorWrapper
)

func (f Format) String() string {
	switch f {
	case RasterLossless:
		return "PNG"
	case VectorWrapper:
		return "SVG"
	default:
		return "JPEG"
	}
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case RasterLossless:
		return ".png"
	case VectorWrapper:
		return ".svg"
	default:
		return ".jpg"
	}
}

// MIMEType returns the media type of encoded output in this format.
func (f Format) MIMEType() string {
	switch f {
	case RasterLossless:
		return "image/png"
	case VectorWrapper:
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}

// normalized maps unknown Format values onto RasterLossy.
func (f Format) normalized() Format {
	switch f {
	case RasterLossy, RasterLossless, VectorWrapper:
		return f
	default:
		return RasterLossy
	}
}

// ParseFormat maps a format name to a Format. Matching is case-insensitive.
// Unknown names yield RasterLossy and ok=false; callers are free to ignore ok.
func ParseFormat(name string) (f Format, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpeg", "jpg":
		return RasterLossy, true
	case "png":
		return RasterLossless, true
	case "svg":
		return VectorWrapper, true
	default:
		return RasterLossy, false
	}
}

// ClampQuality clamps q into [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// Options configures a single processing call.
type Options struct {
	// Quality is the lossy encoding quality, 1-100. Values outside the range
	// are clamped. Ignored by RasterLossless and VectorWrapper.
	Quality int

	// Format selects the output strategy.
	Format Format

	// MaxWidth constrains the output width. 0 (or less) means no constraint.
	MaxWidth int

	// MaxHeight constrains the output height. 0 (or less) means no constraint.
	MaxHeight int

	// MaintainAspectRatio keeps the source aspect ratio when resizing.
	// When false, each bound is applied to its own axis independently.
	MaintainAspectRatio bool

	// Kernel selects the resample filter. The zero value is Lanczos.
	Kernel Kernel

	// MirroredOrientation applies the mirrored EXIF orientations
	// (2, 4, 5, 7). When false they are treated as Normal.
	MirroredOrientation bool
}

// DefaultOptions returns the defaults used by the mobile front-ends.
func DefaultOptions() Options {
	return Options{
		Quality:             DefaultQuality,
		Format:              RasterLossy,
		MaintainAspectRatio: true,
		Kernel:              KernelLanczos,
	}
}

// sanitized returns a copy with quality clamped and format normalized.
func (o Options) sanitized() Options {
	o.Quality = ClampQuality(o.Quality)
	o.Format = o.Format.normalized()
	if o.MaxWidth < 0 {
		o.MaxWidth = 0
	}
	if o.MaxHeight < 0 {
		o.MaxHeight = 0
	}
	return o
}

func (o Options) String() string {
	return fmt.Sprintf("format=%s quality=%d max=%dx%d keepAspect=%t kernel=%s",
		o.Format, o.Quality, o.MaxWidth, o.MaxHeight, o.MaintainAspectRatio, o.Kernel)
}

// Encoded is the raw output of an Encoder.
type Encoded struct {
	// Data holds the encoded bytes.
	Data []byte
	// Format is the strategy that produced Data.
	Format Format
	// Width and Height are the pixel dimensions of the encoded raster.
	Width, Height int
	// Quality is the lossy quality actually used (0 for RasterLossless).
	Quality int
}

// Result is the immutable outcome of a processing call. The caller owns the
// encoded bytes; the processor keeps no reference to them.
type Result struct {
	data     []byte
	format   Format
	quality  int
	stats    Stats
	original image.Point
	final    image.Point
	elapsed  time.Duration
}

func newResult(enc *Encoded, stats Stats, original image.Point, elapsed time.Duration) *Result {
	return &Result{
		data:     enc.Data,
		format:   enc.Format,
		quality:  enc.Quality,
		stats:    stats,
		original: original,
		final:    image.Pt(enc.Width, enc.Height),
		elapsed:  elapsed,
	}
}

// Bytes returns the encoded output.
func (r *Result) Bytes() []byte { return r.data }

// Format returns the output format.
func (r *Result) Format() Format { return r.format }

// Quality returns the lossy quality used, 0 for RasterLossless.
func (r *Result) Quality() int { return r.quality }

// Stats returns the size statistics.
func (r *Result) Stats() Stats { return r.stats }

// OriginalSize returns the baseline size in bytes.
func (r *Result) OriginalSize() int64 { return r.stats.OriginalSize }

// OptimizedSize returns the encoded size in bytes.
func (r *Result) OptimizedSize() int64 { return r.stats.OptimizedSize }

// CompressionRatio returns the fraction of bytes saved.
func (r *Result) CompressionRatio() float64 { return r.stats.CompressionRatio }

// Width returns the final pixel width.
func (r *Result) Width() int { return r.final.X }

// Height returns the final pixel height.
func (r *Result) Height() int { return r.final.Y }

// OriginalDimensions returns the orientation-corrected input dimensions.
func (r *Result) OriginalDimensions() image.Point { return r.original }

// Elapsed returns the wall time spent in the pipeline.
func (r *Result) Elapsed() time.Duration { return r.elapsed }

// WriteTo writes the encoded bytes to w.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	if len(r.data) == 0 {
		return 0, errors.New("pixelperfect: no encoded data available")
	}
	n, err := w.Write(r.data)
	return int64(n), err
}

// String returns a human-readable summary of the result.
func (r *Result) String() string {
	qStr := ""
	if r.format != RasterLossless && r.quality > 0 {
		qStr = fmt.Sprintf(" Q=%d |", r.quality)
	}
	return fmt.Sprintf(
		"PixelPerfect Result: %s |%s %dx%d → %dx%d | %s → %s | Saved: %.1f%%",
		r.format, qStr,
		r.original.X, r.original.Y,
		r.final.X, r.final.Y,
		FormatSize(r.stats.OriginalSize), FormatSize(r.stats.OptimizedSize),
		r.stats.ReductionPercent(),
	)
}
