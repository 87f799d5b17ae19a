// Package core runs the compress and extract pipelines. Each run stages the
// uncompressed tar container in a temporary file, which is removed on every
// exit path, and reports size statistics on success.
package core

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/codec"
	"tarz/pkg/errcode"
	"tarz/pkg/staging"
	"tarz/pkg/stats"
)

// Request is the immutable input of one pipeline run.
type Request struct {
	Input  string
	Output string
	Level  codec.Level  // compress only
	Format codec.Format // compress only
}

// Result is returned by a successful run.
type Result struct {
	stats.ArchiveInfo

	// Entries is the number of tar entries written or unpacked.
	Entries int

	// Warning is set when the staged file could not be removed after the
	// output was fully written. The output is valid.
	Warning error
}

// Option configures a Compressor or Extractor.
type Option func(*settings)

type settings struct {
	level    codec.Level
	format   codec.Format
	logger   *slog.Logger
	progress bool
}

// WithLevel sets the compression level. Ignored by Extractor.
func WithLevel(level codec.Level) Option {
	return func(s *settings) { s.level = level }
}

// WithFormat sets the compressed framing. Ignored by Extractor, which
// detects the format from the input.
func WithFormat(format codec.Format) Option {
	return func(s *settings) { s.format = format }
}

// WithLogger sets the logger used for progress and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress enables byte-count progress records (25, 50, 75 and 100
// percent of each step) on the configured logger at debug level.
func WithProgress(enabled bool) Option {
	return func(s *settings) { s.progress = enabled }
}

func newSettings(opts []Option) settings {
	s := settings{
		level:  codec.Default,
		format: codec.Gzip,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// progressLogger returns the logger trackers report to, or nil when
// progress is disabled.
func (s settings) progressLogger() *slog.Logger {
	if !s.progress {
		return nil
	}
	return s.logger
}

// DefaultOutput returns the archive path used when none is given: the
// input's base name plus the format extension.
func DefaultOutput(input string, format codec.Format) string {
	base := filepath.Base(filepath.Clean(input))
	if base == "." || base == string(filepath.Separator) {
		if abs, err := filepath.Abs(input); err == nil {
			base = filepath.Base(abs)
		}
	}
	return base + format.Extension()
}

// releaseStaged removes the staged file. When the run already failed, a
// staged file that was never created is not an error. A cleanup failure
// after success is logged and returned as a warning.
func releaseStaged(f *staging.File, failed bool, logger *slog.Logger) error {
	err := f.Release()
	if err == nil {
		return nil
	}
	if failed && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	logger.Warn("staged file cleanup failed", "path", f.Path(), "error", err)
	return err
}

func fileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, errcode.IOFailure, "stat %s", path)
	}
	return uint64(info.Size()), nil
}

func closeFile(f *os.File, what string) error {
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errcode.IOFailure, "close %s", what)
	}
	return nil
}
