// Package archive builds and unpacks the tar container that sits between a
// filesystem path and the compressed archive. Directories are stored rooted
// at their own base name, symlinks are stored as links and never followed.
package archive

import (
	"archive/tar"
	"io"
	"io/fs"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// Kind is the type of a tar entry.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindHardlink
	KindOther
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindHardlink:
		return "hardlink"
	default:
		return "other"
	}
}

// Entry describes a single member of a tar container.
type Entry struct {
	Name     string
	Kind     Kind
	Size     int64
	Mode     fs.FileMode
	Linkname string
}

func entryFromHeader(hdr *tar.Header) Entry {
	e := Entry{
		Name:     hdr.Name,
		Size:     hdr.Size,
		Mode:     hdr.FileInfo().Mode(),
		Linkname: hdr.Linkname,
	}
	switch hdr.Typeflag {
	case tar.TypeReg:
		e.Kind = KindFile
	case tar.TypeDir:
		e.Kind = KindDir
	case tar.TypeSymlink:
		e.Kind = KindSymlink
	case tar.TypeLink:
		e.Kind = KindHardlink
	default:
		e.Kind = KindOther
	}
	return e
}

// List reads a tar container and returns its entries in stream order
// without writing anything to disk.
func List(r io.Reader) ([]Entry, error) {
	tr := tar.NewReader(r)
	var entries []Entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, errors.Wrap(err, errcode.ExtractionFailed, "read tar header")
		}
		entries = append(entries, entryFromHeader(hdr))
	}
}
