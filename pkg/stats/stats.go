// Package stats describes the size change produced by a compress or extract
// run.
package stats

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
)

// ArchiveInfo is an immutable record of the byte counts on either side of
// a transformation. Ratio is always output/input: compressing yields
// compressed/uncompressed and extracting yields uncompressed/compressed.
type ArchiveInfo struct {
	input  uint64
	output uint64
	ratio  float64
}

// Compute returns the stats for a step that read input bytes and produced
// output bytes. A zero input gives +Inf or NaN, which is not guarded.
func Compute(input, output uint64) ArchiveInfo {
	return ArchiveInfo{
		input:  input,
		output: output,
		ratio:  float64(output) / float64(input),
	}
}

// InputSize returns the number of bytes fed into the step.
func (a ArchiveInfo) InputSize() uint64 { return a.input }

// OutputSize returns the number of bytes produced by the step.
func (a ArchiveInfo) OutputSize() uint64 { return a.output }

// Ratio returns OutputSize / InputSize.
func (a ArchiveInfo) Ratio() float64 { return a.ratio }

// SpaceSaving returns 1 - Ratio, the fraction of the input saved.
func (a ArchiveInfo) SpaceSaving() float64 { return 1 - a.ratio }

// InputSizeFormatted renders InputSize on the decimal scale, e.g. "1.0 kB".
func (a ArchiveInfo) InputSizeFormatted() string { return FormatSize(a.input) }

// OutputSizeFormatted renders OutputSize on the decimal scale.
func (a ArchiveInfo) OutputSizeFormatted() string { return FormatSize(a.output) }

// RatioFormatted renders Ratio with exactly digits fractional digits.
func (a ArchiveInfo) RatioFormatted(digits int) string {
	return strconv.FormatFloat(a.ratio, 'f', digits, 64)
}

// LogValue implements slog.LogValuer.
func (a ArchiveInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("input_bytes", a.input),
		slog.Uint64("output_bytes", a.output),
		slog.Float64("ratio", a.ratio),
	)
}

// FormatSize renders a byte count with base-1000 units and one fractional
// digit, e.g. 1000 -> "1.0 kB". Counts below 1000 are plain bytes.
func FormatSize(n uint64) string {
	if n < 1000 {
		return strconv.FormatUint(n, 10) + " B"
	}
	value, prefix := humanize.ComputeSI(float64(n))
	return fmt.Sprintf("%.1f %sB", value, prefix)
}
