package pixelperfect

import "fmt"

// Decimal size units, as shown by the desktop and iOS front-ends.
const (
	kilobyte = 1000
	megabyte = kilobyte * 1000
)

// Stats holds the size bookkeeping for one processing call.
type Stats struct {
	// OriginalSize is the baseline size in bytes (see BaselineQuality).
	OriginalSize int64
	// OptimizedSize is the size of the encoded output in bytes.
	OptimizedSize int64
	// CompressionRatio is the fraction of bytes saved:
	// 0.75 means the output is 75% smaller, not 4:1.
	CompressionRatio float64
}

// ComputeStats derives Stats from before/after byte counts.
func ComputeStats(original, optimized int64) Stats {
	return Stats{
		OriginalSize:     original,
		OptimizedSize:    optimized,
		CompressionRatio: CompressionRatio(original, optimized),
	}
}

// CompressionRatio returns (original-optimized)/original, or 0 when original
// is not positive. The result is negative when the output grew.
func CompressionRatio(original, optimized int64) float64 {
	if original <= 0 {
		return 0
	}
	return float64(original-optimized) / float64(original)
}

// SpaceSaved returns the number of bytes saved. Negative if the output grew.
func (s Stats) SpaceSaved() int64 {
	return s.OriginalSize - s.OptimizedSize
}

// ReductionPercent returns the size reduction as a percentage (ratio*100).
func (s Stats) ReductionPercent() float64 {
	return s.CompressionRatio * 100
}

func (s Stats) String() string {
	return fmt.Sprintf("%s → %s (%.1f%% smaller)",
		FormatSize(s.OriginalSize), FormatSize(s.OptimizedSize), s.ReductionPercent())
}

// FormatSize formats a byte count for display: "N B" below 1 KB, one decimal
// for KB and two for MB.
func FormatSize(b int64) string {
	switch {
	case b < kilobyte:
		return fmt.Sprintf("%d B", b)
	case b < megabyte:
		return fmt.Sprintf("%.1f KB", float64(b)/kilobyte)
	default:
		return fmt.Sprintf("%.2f MB", float64(b)/megabyte)
	}
}
