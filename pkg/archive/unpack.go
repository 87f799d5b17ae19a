package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// Unpack recreates every entry of the tar container read from r under dest,
// creating dest and intermediate directories as needed. It returns the
// number of entries written. Members that would land outside dest, or that
// cannot be written, fail with errcode.ExtractionFailed.
func Unpack(r io.Reader, dest string) (int, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, errors.Wrap(err, errcode.ExtractionFailed, "create output directory")
	}
	rootAbs, err := filepath.Abs(dest)
	if err != nil {
		return 0, errors.Wrap(err, errcode.ExtractionFailed, "resolve output directory")
	}

	tr := tar.NewReader(r)
	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, errors.Wrap(err, errcode.ExtractionFailed, "read tar header")
		}

		if err := extractEntry(tr, hdr, rootAbs); err != nil {
			return count, errors.WithContext(err, "entry", hdr.Name)
		}
		count++
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, rootAbs string) error {
	target, err := safeJoin(rootAbs, hdr.Name)
	if err != nil {
		return err
	}
	if target == rootAbs {
		return nil
	}
	if err := checkParents(rootAbs, target); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "create parent of %s", hdr.Name)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return extractDir(hdr, target)
	case tar.TypeReg:
		return extractFile(tr, hdr, target)
	case tar.TypeSymlink:
		return extractSymlink(hdr, target)
	case tar.TypeLink:
		return extractHardlink(hdr, rootAbs, target)
	default:
		// Devices, fifos and vendor extensions are skipped.
		return nil
	}
}

// safeJoin resolves a member name under rootAbs and rejects names that
// would escape it.
func safeJoin(rootAbs, member string) (string, error) {
	if filepath.IsAbs(member) || strings.HasPrefix(member, "/") {
		return "", errors.Newf(errcode.ExtractionFailed, "absolute member path %q", member)
	}
	target := filepath.Join(rootAbs, filepath.FromSlash(member))
	rel, err := filepath.Rel(rootAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.Newf(errcode.ExtractionFailed, "member path escapes output directory: %q", member)
	}
	return target, nil
}

// checkParents refuses to write through a symlinked directory that an
// earlier member created inside the output directory.
func checkParents(rootAbs, target string) error {
	rel, err := filepath.Rel(rootAbs, filepath.Dir(target))
	if err != nil || rel == "." {
		return nil
	}
	cur := rootAbs
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, errcode.ExtractionFailed, "stat %s", cur)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.Newf(errcode.ExtractionFailed, "member path traverses symlink %s", cur)
		}
	}
	return nil
}

func extractDir(hdr *tar.Header, target string) error {
	mode := hdr.FileInfo().Mode().Perm() | 0o700
	if err := os.MkdirAll(target, mode); err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "create directory %s", hdr.Name)
	}
	return nil
}

func extractFile(tr *tar.Reader, hdr *tar.Header, target string) error {
	if err := removeExisting(target); err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "create file %s", hdr.Name)
	}
	if _, err := io.Copy(f, tr); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errcode.ExtractionFailed, "write file %s", hdr.Name)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "close file %s", hdr.Name)
	}

	if !hdr.ModTime.IsZero() {
		if err := os.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
			return errors.Wrapf(err, errcode.ExtractionFailed, "set times on %s", hdr.Name)
		}
	}
	return nil
}

func extractSymlink(hdr *tar.Header, target string) error {
	if err := removeExisting(target); err != nil {
		return err
	}
	if err := os.Symlink(hdr.Linkname, target); err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "create symlink %s -> %s", hdr.Name, hdr.Linkname)
	}
	return nil
}

func extractHardlink(hdr *tar.Header, rootAbs, target string) error {
	old, err := safeJoin(rootAbs, hdr.Linkname)
	if err != nil {
		return err
	}
	if err := removeExisting(target); err != nil {
		return err
	}
	if err := os.Link(old, target); err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "create hard link %s -> %s", hdr.Name, hdr.Linkname)
	}
	return nil
}

// removeExisting clears a non-directory at target so it can be replaced.
func removeExisting(target string) error {
	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "stat %s", target)
	}
	if info.IsDir() {
		return errors.Newf(errcode.ExtractionFailed, "%s exists and is a directory", target)
	}
	if err := os.Remove(target); err != nil {
		return errors.Wrapf(err, errcode.ExtractionFailed, "replace %s", target)
	}
	return nil
}
