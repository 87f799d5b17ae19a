// Package codec streams bytes through a compressing or decompressing
// filter. Gzip is the default framing; LZ4 and Zstd are also supported and
// detected from their magic bytes on decompression.
package codec

import (
	"bufio"
	"io"

	"github.com/jmgilman/go/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"tarz/pkg/errcode"
)

// BufferSize is the copy buffer used by Compress and Decompress.
const BufferSize = 32 * 1024

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// Compress copies r into w through a compressing writer at level and
// finalizes the stream. It returns the number of uncompressed bytes read.
func Compress(r io.Reader, w io.Writer, level Level, format Format) (int64, error) {
	zw, err := newWriter(w, level, format)
	if err != nil {
		return 0, err
	}

	// Only Write is exposed: lz4.Writer.ReadFrom rejects a writer that has
	// already emitted its frame header.
	n, err := io.CopyBuffer(struct{ io.Writer }{zw}, r, make([]byte, BufferSize))
	if err != nil {
		_ = zw.Close()
		return n, errors.Wrapf(err, errcode.IOFailure, "%s compress", format)
	}
	if err := zw.Close(); err != nil {
		return n, errors.Wrapf(err, errcode.IOFailure, "finalize %s stream", format)
	}
	return n, nil
}

func newWriter(w io.Writer, level Level, format Format) (io.WriteCloser, error) {
	switch format {
	case Gzip:
		zw, err := gzip.NewWriterLevel(w, level.Value())
		if err != nil {
			return nil, errors.Wrapf(err, errcode.InvalidInput, "gzip level %s", level)
		}
		return zw, nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level.Value()])); err != nil {
			return nil, errors.Wrapf(err, errcode.InvalidInput, "lz4 level %s", level)
		}
		// Emit the frame header now so empty input still yields a valid frame.
		if _, err := zw.Write(nil); err != nil {
			return nil, errors.Wrap(err, errcode.IOFailure, "write lz4 frame header")
		}
		return zw, nil
	case Zstd:
		zw, err := zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstdLevel(level)),
			zstd.WithEncoderConcurrency(1),
			zstd.WithLowerEncoderMem(true),
			zstd.WithZeroFrames(true))
		if err != nil {
			return nil, errors.Wrapf(err, errcode.InvalidInput, "zstd level %s", level)
		}
		return zw, nil
	}
	return nil, errors.Newf(errcode.InvalidInput, "unsupported format %d", format)
}

// zstdLevel maps 0-9 onto zstd's four speed presets. zstd has no store
// mode, so None compresses at the fastest preset.
func zstdLevel(level Level) zstd.EncoderLevel {
	switch v := level.Value(); {
	case v <= 2:
		return zstd.SpeedFastest
	case v <= 6:
		return zstd.SpeedDefault
	case v <= 8:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Decompress copies the decompressed content of r into w. The format is
// detected from the stream's magic bytes. Input that is not a complete,
// valid stream fails with errcode.InvalidCompressedStream; failures to read
// the source or write the destination fail with errcode.IOFailure.
func Decompress(r io.Reader, w io.Writer) (int64, error) {
	src := &trackedReader{r: r}
	dst := &trackedWriter{w: w}
	br := bufio.NewReaderSize(src, BufferSize)

	format, err := Sniff(br)
	if err != nil {
		return 0, err
	}

	zr, err := newReader(br, format)
	if err != nil {
		if src.err != nil {
			return 0, errors.Wrap(src.err, errcode.IOFailure, "read compressed input")
		}
		return 0, errors.Wrapf(err, errcode.InvalidCompressedStream, "open %s stream", format)
	}
	defer zr.Close()

	n, err := io.CopyBuffer(dst, zr, make([]byte, BufferSize))
	switch {
	case err == nil:
		return n, nil
	case dst.err != nil:
		return n, errors.Wrap(dst.err, errcode.IOFailure, "write decompressed output")
	case src.err != nil:
		return n, errors.Wrap(src.err, errcode.IOFailure, "read compressed input")
	default:
		return n, errors.Wrapf(err, errcode.InvalidCompressedStream, "decode %s stream", format)
	}
}

// Sniff peeks at the head of br and returns the detected format without
// consuming any bytes.
func Sniff(br *bufio.Reader) (Format, error) {
	head, err := br.Peek(len(lz4Magic))
	if len(head) == 0 {
		if err != nil && err != io.EOF {
			return Gzip, errors.Wrap(err, errcode.IOFailure, "read compressed input")
		}
		return Gzip, errors.New(errcode.InvalidCompressedStream, "empty compressed stream")
	}
	format, ok := Detect(head)
	if !ok {
		return Gzip, errors.Newf(errcode.InvalidCompressedStream, "unrecognized stream header % x", head)
	}
	return format, nil
}

func newReader(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return gzip.NewReader(r)
	}
}

// trackedReader remembers the first non-EOF error of the underlying reader
// so source failures can be told apart from malformed data.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

// trackedWriter remembers the first error of the underlying writer.
type trackedWriter struct {
	w   io.Writer
	err error
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
