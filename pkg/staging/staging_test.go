package staging

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarz/pkg/errcode"
)

var namePattern = regexp.MustCompile(`^[0-9a-f]{64}-tar-gen\.tar$`)

func TestAllocate(t *testing.T) {
	f := Allocate("./some/input")

	assert.Equal(t, os.TempDir(), filepath.Dir(f.Path()))
	assert.Regexp(t, namePattern, filepath.Base(f.Path()))

	_, err := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err), "allocate must not create the file")
}

func TestNameIsFreshPerCall(t *testing.T) {
	assert.NotEqual(t, Name("same"), Name("same"))
}

func TestConcurrentAllocationsAreDistinct(t *testing.T) {
	const n = 512

	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := "input"
			if i%2 == 0 {
				input = "other"
			}
			names[i] = Allocate(input).Path()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, name := range names {
		seen[name] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestRelease(t *testing.T) {
	f := &File{path: filepath.Join(t.TempDir(), Name("x"))}
	require.NoError(t, os.WriteFile(f.Path(), []byte("tar"), 0o644))

	require.NoError(t, f.Release())
	_, err := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, f.Release(), "second release is a no-op")
}

func TestReleaseMissingFile(t *testing.T) {
	f := &File{path: filepath.Join(t.TempDir(), Name("missing"))}

	err := f.Release()
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.StagingCleanupFailed))
}
