package core

import (
	"io"
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

// Compressor packs a file, symlink or directory into a compressed tar
// archive.
type Compressor struct {
	req      Request
	logger   *slog.Logger
	progress *slog.Logger
}

// NewCompressor creates a compressor for input. An empty output selects
// DefaultOutput for the chosen format.
func NewCompressor(input, output string, opts ...Option) *Compressor {
	s := newSettings(opts)
	if output == "" {
		output = DefaultOutput(input, s.format)
	}
	return &Compressor{
		req: Request{
			Input:  input,
			Output: output,
			Level:  s.level,
			Format: s.format,
		},
		logger:   s.logger,
		progress: s.progressLogger(),
	}
}

// Request returns the parameters of this compressor.
func (c *Compressor) Request() Request {
	return c.req
}

// Compress builds the tar container in a staged file, compresses it into
// the output path and returns stats computed from (tar size, compressed
// size). On failure no stats are returned and a partially written output
// file is removed.
func (c *Compressor) Compress() (res Result, err error) {
	if c.req.Input == "" {
		return Result{}, errors.New(errcode.InvalidInput, "input path cannot be empty")
	}
	logger := c.logger.With("op", "compress", "input", c.req.Input, "output", c.req.Output)

	plan, err := archive.NewPlan(c.req.Input)
	if err != nil {
		return Result{}, err
	}

	staged := staging.Allocate(c.req.Input)
	defer func() {
		if werr := releaseStaged(staged, err != nil, logger); werr != nil && err == nil {
			res.Warning = werr
		}
	}()

	logger.Debug("building tar container", "entries", plan.Len(), "staged", staged.Path())
	entries, err := c.buildTar(plan, staged.Path())
	if err != nil {
		return Result{}, err
	}

	tarSize, err := fileSize(staged.Path())
	if err != nil {
		return Result{}, err
	}

	logger.Debug("tar container created, compressing",
		"level", c.req.Level.String(), "format", c.req.Format.String())
	if _, err := codec.CompressFile(staged.Path(), c.req.Output, c.req.Level, c.req.Format); err != nil {
		return Result{}, err
	}

	outSize, err := fileSize(c.req.Output)
	if err != nil {
		return Result{}, err
	}

	res = Result{ArchiveInfo: stats.Compute(tarSize, outSize), Entries: entries}
	logger.Info("compressed", "stats", res.ArchiveInfo)
	return res, nil
}

func (c *Compressor) buildTar(plan *archive.Plan, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, errcode.IOFailure, "create staged file")
	}

	tracker := progress.New(c.progress, "archive", plan.TotalSize())
	entries, err := plan.WriteTracked(f, func(r io.Reader) io.Reader { return tracker.Reader(r) })
	if err != nil {
		_ = f.Close()
		return entries, err
	}
	tracker.Done()
	return entries, closeFile(f, "staged file")
}
