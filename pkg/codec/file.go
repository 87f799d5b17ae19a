package codec

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// CompressFile compresses src into dst, creating or truncating dst and its
// parent directories. It returns the number of bytes read from src. A
// partially written dst is removed on failure.
func CompressFile(src, dst string, level Level, format Format) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, errcode.IOFailure, "open compress source")
	}
	defer in.Close()

	return writeFile(dst, func(w io.Writer) (int64, error) {
		return Compress(in, w, level, format)
	})
}

// DecompressFile decompresses src into dst, creating or truncating dst. It
// returns the number of bytes written to dst. A partially written dst is
// removed on failure.
func DecompressFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, errcode.IOFailure, "open decompress source")
	}
	defer in.Close()

	return writeFile(dst, func(w io.Writer) (int64, error) {
		return Decompress(in, w)
	})
}

func writeFile(dst string, fill func(io.Writer) (int64, error)) (int64, error) {
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, errors.Wrapf(err, errcode.IOFailure, "create directory %s", dir)
		}
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, errors.Wrapf(err, errcode.IOFailure, "create %s", dst)
	}

	n, err := fill(out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(cerr, errcode.IOFailure, "close %s", dst)
	}
	if err != nil {
		_ = os.Remove(dst)
		return n, err
	}
	return n, nil
}
