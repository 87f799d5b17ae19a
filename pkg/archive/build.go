package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// source is a filesystem object scheduled for the container.
type source struct {
	path string // on disk
	name string // inside the container
	info fs.FileInfo
}

// Plan is the ordered list of filesystem objects a container will hold.
type Plan struct {
	sources []source
}

// Build writes a tar container of src to w and returns the number of
// entries written.
//
// A directory is walked in lexical order and stored under its base name, so
// unpacking recreates the top-level folder. A regular file or symlink is
// stored as a single entry named by the path as given, made relative. Any
// other kind of file fails with errcode.UnsupportedInputKind before anything
// is written.
func Build(src string, w io.Writer) (int, error) {
	plan, err := NewPlan(src)
	if err != nil {
		return 0, err
	}
	return plan.Write(w)
}

// NewPlan resolves src into the objects Build would write. It fails with
// errcode.UnsupportedInputKind if any object is not a directory, regular
// file or symlink.
func NewPlan(src string) (*Plan, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return nil, errors.Wrap(err, errcode.IOFailure, "stat input")
	}

	if !info.IsDir() {
		if err := checkKind(src, info); err != nil {
			return nil, err
		}
		return &Plan{sources: []source{{path: src, name: entryName(src), info: info}}}, nil
	}

	root, err := rootName(src)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	walkErr := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errcode.IOFailure, "walk %s", p)
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return errors.Wrapf(err, errcode.IOFailure, "relative path for %s", p)
		}
		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, errcode.IOFailure, "stat %s", p)
		}
		if err := checkKind(p, info); err != nil {
			return err
		}
		plan.sources = append(plan.sources, source{
			path: p,
			name: path.Join(root, filepath.ToSlash(rel)),
			info: info,
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return plan, nil
}

// Len returns the number of entries in the plan.
func (p *Plan) Len() int {
	return len(p.sources)
}

// Names returns the member names in write order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.sources))
	for i, s := range p.sources {
		names[i] = s.name
	}
	return names
}

// TotalSize sums the sizes of the regular files in the plan.
func (p *Plan) TotalSize() uint64 {
	var total uint64
	for _, s := range p.sources {
		if s.info.Mode().IsRegular() {
			total += uint64(s.info.Size())
		}
	}
	return total
}

// Write streams the planned entries to w as a tar container and returns
// the number of entries written.
func (p *Plan) Write(w io.Writer) (int, error) {
	return p.WriteTracked(w, nil)
}

// WriteTracked is Write with file content read through track, so callers
// can count content bytes against TotalSize. A nil track reads directly.
func (p *Plan) WriteTracked(w io.Writer, track func(io.Reader) io.Reader) (int, error) {
	tw := tar.NewWriter(w)
	for i, s := range p.sources {
		if err := writeEntry(tw, s, track); err != nil {
			return i, err
		}
	}
	if err := tw.Close(); err != nil {
		return len(p.sources), errors.Wrap(err, errcode.IOFailure, "finalize tar container")
	}
	return len(p.sources), nil
}

func checkKind(p string, info fs.FileInfo) error {
	mode := info.Mode()
	if mode.IsDir() || mode.IsRegular() || mode&fs.ModeSymlink != 0 {
		return nil
	}
	err := errors.Newf(errcode.UnsupportedInputKind, "cannot archive %s: unsupported file type %s", p, mode.Type())
	return errors.WithContext(err, "path", p)
}

// rootName is the base name a directory is stored under. "." and similar
// inputs are resolved to the real directory name.
func rootName(dir string) (string, error) {
	base := filepath.Base(filepath.Clean(dir))
	if base != "." && base != ".." && base != string(filepath.Separator) {
		return base, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, errcode.IOFailure, "resolve input directory")
	}
	base = filepath.Base(abs)
	if base == string(filepath.Separator) {
		return "root", nil
	}
	return base, nil
}

// entryName turns a path as given into a relative, slash-separated member
// name: leading "/" and "../" elements are dropped.
func entryName(p string) string {
	name := filepath.ToSlash(filepath.Clean(p))
	name = strings.TrimLeft(name, "/")
	for strings.HasPrefix(name, "../") {
		name = strings.TrimPrefix(name, "../")
	}
	if name == "" || name == "." || name == ".." {
		return filepath.Base(p)
	}
	return name
}

func writeEntry(tw *tar.Writer, s source, track func(io.Reader) io.Reader) error {
	var link string
	if s.info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(s.path)
		if err != nil {
			return errors.Wrapf(err, errcode.IOFailure, "read link %s", s.path)
		}
		link = target
	}

	hdr, err := tar.FileInfoHeader(s.info, link)
	if err != nil {
		return errors.Wrapf(err, errcode.IOFailure, "tar header for %s", s.path)
	}
	normalizeHeader(hdr, s.name)

	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, errcode.IOFailure, "write tar header for %s", s.name)
	}
	if hdr.Typeflag != tar.TypeReg {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrapf(err, errcode.IOFailure, "open %s", s.path)
	}
	defer f.Close()

	var src io.Reader = f
	if track != nil {
		src = track(f)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return errors.Wrapf(err, errcode.IOFailure, "write content of %s", s.name)
	}
	return nil
}

// normalizeHeader strips host-specific metadata so identical trees produce
// the same entries.
func normalizeHeader(hdr *tar.Header, name string) {
	hdr.Name = name
	if hdr.Typeflag == tar.TypeDir && !strings.HasSuffix(name, "/") {
		hdr.Name += "/"
	}
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	hdr.ModTime = hdr.ModTime.Truncate(time.Second)
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}
	hdr.Format = tar.FormatUnknown
}
