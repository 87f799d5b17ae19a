package core

import (
	"log/slog"
	"os"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/archive"
	"tarz/pkg/codec"
	"tarz/pkg/errcode"
	"tarz/pkg/progress"
	"tarz/pkg/staging"
	"tarz/pkg/stats"
)

// Extractor unpacks a compressed tar archive into a directory.
type Extractor struct {
	req      Request
	logger   *slog.Logger
	progress *slog.Logger
}

// NewExtractor creates an extractor for input. An empty output extracts
// into the current directory.
func NewExtractor(input, output string, opts ...Option) *Extractor {
	s := newSettings(opts)
	if output == "" {
		output = "."
	}
	return &Extractor{
		req:      Request{Input: input, Output: output},
		logger:   s.logger,
		progress: s.progressLogger(),
	}
}

// Request returns the parameters of this extractor.
func (e *Extractor) Request() Request {
	return e.req
}

// Extract decompresses the input into a staged tar container, then
// unpacks it under the output directory. Stats are computed from
// (compressed size, tar size). The output directory is not touched when
// the input is not a valid compressed stream.
func (e *Extractor) Extract() (res Result, err error) {
	if e.req.Input == "" {
		return Result{}, errors.New(errcode.InvalidInput, "input path cannot be empty")
	}
	logger := e.logger.With("op", "extract", "input", e.req.Input, "output", e.req.Output)

	inSize, err := fileSize(e.req.Input)
	if err != nil {
		return Result{}, err
	}

	staged := staging.Allocate(e.req.Input)
	defer func() {
		if werr := releaseStaged(staged, err != nil, logger); werr != nil && err == nil {
			res.Warning = werr
		}
	}()

	logger.Debug("decompressing", "staged", staged.Path())
	tarSize, err := decompressTo(e.req.Input, staged.Path())
	if err != nil {
		return Result{}, err
	}

	logger.Debug("unpacking tar container", "size", stats.FormatSize(tarSize))
	entries, err := e.unpack(staged.Path(), tarSize)
	if err != nil {
		return Result{}, err
	}

	res = Result{ArchiveInfo: stats.Compute(inSize, tarSize), Entries: entries}
	logger.Info("extracted", "stats", res.ArchiveInfo, "entries", entries)
	return res, nil
}

func (e *Extractor) unpack(path string, tarSize uint64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, errcode.IOFailure, "open staged file")
	}
	defer f.Close()

	tracker := progress.New(e.progress, "unpack", tarSize)
	entries, err := archive.Unpack(tracker.Reader(f), e.req.Output)
	if err != nil {
		return entries, errcode.Ensure(err, errcode.ExtractionFailed, "unpack archive")
	}
	tracker.Done()
	return entries, nil
}

// decompressTo writes the decompressed form of src into dst and returns
// the number of bytes written.
func decompressTo(src, dst string) (uint64, error) {
	n, err := codec.DecompressFile(src, dst)
	if err != nil {
		return 0, errcode.Ensure(err, errcode.InvalidCompressedStream, "decompress input")
	}
	return uint64(n), nil
}

// List returns the entries of a compressed tar archive without extracting
// it.
func List(input string, opts ...Option) ([]archive.Entry, error) {
	if input == "" {
		return nil, errors.New(errcode.InvalidInput, "input path cannot be empty")
	}
	s := newSettings(opts)
	logger := s.logger.With("op", "list", "input", input)

	staged := staging.Allocate(input)
	var err error
	defer func() {
		_ = releaseStaged(staged, err != nil, logger)
	}()

	if _, err = decompressTo(input, staged.Path()); err != nil {
		return nil, err
	}

	f, err := os.Open(staged.Path())
	if err != nil {
		return nil, errors.Wrap(err, errcode.IOFailure, "open staged file")
	}
	defer f.Close()

	entries, err := archive.List(f)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
