package codec

import (
	"bytes"
	"crypto/rand"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarz/pkg/errcode"
)

func TestRoundTrip(t *testing.T) {
	random := make([]byte, 256*1024)
	_, err := rand.Read(random)
	require.NoError(t, err)

	inputs := map[string][]byte{
		"empty":     {},
		"text":      []byte("hello, archive"),
		"random":    random,
		"redundant": bytes.Repeat([]byte("abc"), 100_000),
	}

	for _, format := range []Format{Gzip, LZ4, Zstd} {
		for _, level := range []Level{None, Fast, Default, Maximum} {
			for name, data := range inputs {
				t.Run(format.String()+"/"+level.String()+"/"+name, func(t *testing.T) {
					var compressed bytes.Buffer
					n, err := Compress(bytes.NewReader(data), &compressed, level, format)
					require.NoError(t, err)
					assert.Equal(t, int64(len(data)), n)

					head := compressed.Bytes()
					got, ok := Detect(head)
					require.True(t, ok)
					assert.Equal(t, format, got)

					var out bytes.Buffer
					n, err = Decompress(&compressed, &out)
					require.NoError(t, err)
					assert.Equal(t, int64(len(data)), n)
					assert.True(t, bytes.Equal(data, out.Bytes()))
				})
			}
		}
	}
}

func TestCompressLevels(t *testing.T) {
	data := bytes.Repeat([]byte{'a'}, 1_000_000)

	t.Run("none stores", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Compress(bytes.NewReader(data), &out, None, Gzip)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.Len(), len(data))
	})

	t.Run("maximum shrinks redundant input below one percent", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Compress(bytes.NewReader(data), &out, Maximum, Gzip)
		require.NoError(t, err)
		assert.Less(t, out.Len(), len(data)/100)
	})

	t.Run("custom level", func(t *testing.T) {
		level, err := Custom(3)
		require.NoError(t, err)
		var out bytes.Buffer
		_, err = Compress(bytes.NewReader(data), &out, level, Gzip)
		require.NoError(t, err)
		assert.Less(t, out.Len(), len(data)/100)
	})
}

func TestDecompressInvalid(t *testing.T) {
	var valid bytes.Buffer
	_, err := Compress(bytes.NewReader(bytes.Repeat([]byte("payload "), 10_000)), &valid, Default, Gzip)
	require.NoError(t, err)

	corrupt := append([]byte{}, valid.Bytes()...)
	corrupt[len(corrupt)/2] ^= 0xff

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "plain text", input: []byte("this is not a compressed stream")},
		{name: "wrong magic", input: []byte{0x50, 0x4b, 0x03, 0x04, 0x00}},
		{name: "truncated", input: valid.Bytes()[:valid.Len()/2]},
		{name: "corrupt body", input: corrupt},
		{name: "bad gzip header", input: []byte{0x1f, 0x8b, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(bytes.NewReader(tt.input), io.Discard)
			require.Error(t, err)
			assert.True(t, errcode.Is(err, errcode.InvalidCompressedStream), err.Error())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, stderrors.New("disk full") }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, stderrors.New("device error") }

func TestDecompressIOFailures(t *testing.T) {
	var valid bytes.Buffer
	_, err := Compress(bytes.NewReader([]byte("some content")), &valid, Default, Gzip)
	require.NoError(t, err)

	_, err = Decompress(&valid, failingWriter{})
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.IOFailure))

	_, err = Decompress(failingReader{}, io.Discard)
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.IOFailure))
}

func TestCompressWriteFailure(t *testing.T) {
	_, err := Compress(bytes.NewReader(bytes.Repeat([]byte("x"), 1<<20)), failingWriter{}, Default, Gzip)
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.IOFailure))
}
