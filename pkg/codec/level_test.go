package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarz/pkg/errcode"
)

func TestLevelValue(t *testing.T) {
	assert.Equal(t, 0, None.Value())
	assert.Equal(t, 1, Fast.Value())
	assert.Equal(t, 6, Default.Value())
	assert.Equal(t, 9, Maximum.Value())
	assert.Equal(t, 6, Level{}.Value(), "zero value is Default")
	assert.Equal(t, "default", Level{}.String())
}

func TestCustom(t *testing.T) {
	for n := MinLevel; n <= MaxLevel; n++ {
		level, err := Custom(n)
		require.NoError(t, err)
		assert.Equal(t, n, level.Value())
	}

	for _, n := range []int{-1, 10, 100} {
		_, err := Custom(n)
		require.Error(t, err)
		assert.True(t, errcode.Is(err, errcode.InvalidInput))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "none", want: 0},
		{in: "fast", want: 1},
		{in: "", want: 6},
		{in: "Default", want: 6},
		{in: "max", want: 9},
		{in: "best", want: 9},
		{in: "4", want: 4},
		{in: " 9 ", want: 9},
		{in: "10", wantErr: true},
		{in: "-2", wantErr: true},
		{in: "turbo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errcode.Is(err, errcode.InvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level.Value())
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Gzip, "gz": Gzip, "LZ4": LZ4, "zst": Zstd, "zstd": Zstd} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("bzip2")
	assert.True(t, errcode.Is(err, errcode.InvalidInput))
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".tar.gz", Gzip.Extension())
	assert.Equal(t, ".tar.lz4", LZ4.Extension())
	assert.Equal(t, ".tar.zst", Zstd.Extension())
}
