package errcode

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs(t *testing.T) {
	base := errors.New(ExtractionFailed, "write entry")
	wrapped := fmt.Errorf("unpack: %w", base)

	assert.True(t, Is(base, ExtractionFailed))
	assert.True(t, Is(wrapped, ExtractionFailed))
	assert.False(t, Is(wrapped, IOFailure))
	assert.False(t, Is(nil, IOFailure))
	assert.False(t, Is(stderrors.New("plain"), IOFailure))
}

func TestIsFindsInnerCode(t *testing.T) {
	inner := errors.New(InvalidCompressedStream, "bad magic")
	outer := errors.Wrap(inner, IOFailure, "decompress")

	assert.True(t, Is(outer, IOFailure))
	assert.True(t, Is(outer, InvalidCompressedStream))
}

func TestEnsure(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Ensure(nil, IOFailure, "x"))
	})

	t.Run("plain error gets code", func(t *testing.T) {
		err := Ensure(stderrors.New("disk full"), IOFailure, "write output")
		require.Error(t, err)
		assert.Equal(t, IOFailure, errors.GetCode(err))
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("coded error keeps code", func(t *testing.T) {
		orig := errors.New(UnsupportedInputKind, "fifo")
		err := Ensure(orig, IOFailure, "build")
		assert.Equal(t, UnsupportedInputKind, errors.GetCode(err))
	})
}

func TestCodesArePermanent(t *testing.T) {
	for _, code := range []errors.ErrorCode{
		IOFailure, UnsupportedInputKind, InvalidCompressedStream, ExtractionFailed, StagingCleanupFailed,
	} {
		assert.False(t, errors.IsRetryable(errors.New(code, "x")), code)
	}
}
