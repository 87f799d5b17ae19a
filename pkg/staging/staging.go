// Package staging allocates the temporary on-disk tar container used between
// the archive and codec steps, and removes it afterwards.
package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// Suffix is appended to every staged file name.
const Suffix = "-tar-gen.tar"

// File is a staged tar container path. It is owned by the operation that
// allocated it.
type File struct {
	path     string
	released bool
}

// Allocate returns a fresh staged path in the system temp directory for the
// given input identifier. The file is not created.
func Allocate(input string) *File {
	return &File{path: filepath.Join(os.TempDir(), Name(input))}
}

// Name returns "<hash>-tar-gen.tar" where hash is the hex SHA-256 of the
// input joined with a random UUID, the current time and the process id.
func Name(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	h.Write([]byte(uuid.NewString()))
	h.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
	h.Write([]byte(strconv.Itoa(os.Getpid())))
	return hex.EncodeToString(h.Sum(nil)) + Suffix
}

// Path returns the staged path.
func (f *File) Path() string {
	return f.path
}

// Release deletes the staged file. Only the first call does any work.
func (f *File) Release() error {
	if f.released {
		return nil
	}
	f.released = true

	if err := os.Remove(f.path); err != nil {
		return errors.WrapWithContext(err, errcode.StagingCleanupFailed, "remove staged file",
			map[string]interface{}{"path": f.path})
	}
	return nil
}
