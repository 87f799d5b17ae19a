package codec

import (
	"bytes"
	"strings"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// Format identifies the compressed framing wrapped around the tar container.
type Format uint8

const (
	Gzip Format = iota // default, .tar.gz
	LZ4                // .tar.lz4
	Zstd               // .tar.zst
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return "gzip"
	}
}

// Extension returns the conventional archive file extension.
func (f Format) Extension() string {
	switch f {
	case LZ4:
		return ".tar.lz4"
	case Zstd:
		return ".tar.zst"
	default:
		return ".tar.gz"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gzip", "gz":
		return Gzip, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return Zstd, nil
	}
	return Gzip, errors.Newf(errcode.InvalidInput, "unknown format %q", s)
}

// Detect identifies the format from the leading bytes of a stream.
func Detect(head []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip, true
	case bytes.HasPrefix(head, lz4Magic):
		return LZ4, true
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd, true
	}
	return Gzip, false
}
