//go:build unix

package core

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarz/pkg/errcode"
)

func TestCompressUnsupportedInput(t *testing.T) {
	tmp := isolateTemp(t)
	dir := t.TempDir()
	fifo := filepath.Join(dir, "pipe")
	require.NoError(t, syscall.Mkfifo(fifo, 0o644))

	out := filepath.Join(dir, "pipe.tar.gz")
	res, err := NewCompressor(fifo, out).Compress()
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.UnsupportedInputKind))
	assert.Zero(t, res)
	assert.NoFileExists(t, out)
	assertNoStagedFiles(t, tmp)
}

func TestExtractUnwritableDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmp := isolateTemp(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	writeFiles(t, src, map[string]string{"a.txt": "alpha"})

	archivePath := filepath.Join(dir, "tree.tar.gz")
	_, err := NewCompressor(src, archivePath).Compress()
	require.NoError(t, err)

	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o500))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o700) })

	_, err = NewExtractor(archivePath, locked).Extract()
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.ExtractionFailed))
	assertNoStagedFiles(t, tmp)
}

func TestCompressIntoReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmp := isolateTemp(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	writeFiles(t, src, map[string]string{"a.txt": "alpha"})

	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o500))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o700) })

	out := filepath.Join(locked, "tree.tar.gz")
	_, err := NewCompressor(src, out).Compress()
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.IOFailure))
	assert.NoFileExists(t, out)
	assertNoStagedFiles(t, tmp)
}
