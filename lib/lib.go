// Package lib provides tar archive compression and extraction for callers
// that want a single import. It re-exports the functionality from the core,
// codec and stats packages.
package lib

import (
	"log/slog"

	"tarz/pkg/archive"
	"tarz/pkg/codec"
	"tarz/pkg/core"
	"tarz/pkg/errcode"
	"tarz/pkg/stats"
)

// Compression levels re-exported from codec
var (
	LevelNone    = codec.None
	LevelFast    = codec.Fast
	LevelDefault = codec.Default
	LevelMaximum = codec.Maximum
)

// Formats re-exported from codec
const (
	Gzip = codec.Gzip
	LZ4  = codec.LZ4
	Zstd = codec.Zstd
)

// Error codes re-exported from errcode
const (
	ErrIOFailure               = errcode.IOFailure
	ErrUnsupportedInputKind    = errcode.UnsupportedInputKind
	ErrInvalidCompressedStream = errcode.InvalidCompressedStream
	ErrExtractionFailed        = errcode.ExtractionFailed
	ErrStagingCleanupFailed    = errcode.StagingCleanupFailed
	ErrInvalidInput            = errcode.InvalidInput
)

// Level re-exported from codec
type Level = codec.Level

// Format re-exported from codec
type Format = codec.Format

// ArchiveInfo re-exported from stats
type ArchiveInfo = stats.ArchiveInfo

// Result re-exported from core
type Result = core.Result

// Entry re-exported from archive
type Entry = archive.Entry

// CustomLevel is a wrapper around codec.Custom
func CustomLevel(n int) (Level, error) {
	return codec.Custom(n)
}

// Compress packs input into a gzip-compressed tar archive at output using
// level. An empty output selects the default name.
func Compress(input, output string, level Level) (Result, error) {
	return core.NewCompressor(input, output, core.WithLevel(level), core.WithLogger(defaultLogger)).Compress()
}

// CompressFormat is Compress with an explicit framing format.
func CompressFormat(input, output string, level Level, format Format) (Result, error) {
	return core.NewCompressor(input, output,
		core.WithLevel(level), core.WithFormat(format), core.WithLogger(defaultLogger)).Compress()
}

// Extract unpacks the archive at input into the output directory.
func Extract(input, output string) (Result, error) {
	return core.NewExtractor(input, output, core.WithLogger(defaultLogger)).Extract()
}

// List is a wrapper around core.List
func List(input string) ([]Entry, error) {
	return core.List(input, core.WithLogger(defaultLogger))
}

var defaultLogger *slog.Logger

// SetLogger routes warning records of subsequent calls to logger. It is
// not safe to call concurrently with other functions of this package.
func SetLogger(logger *slog.Logger) {
	defaultLogger = logger
}
