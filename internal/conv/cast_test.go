//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    uint32
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"block size", 256 << 10, 256 << 10, false},
		{"max int32", math.MaxInt32, math.MaxInt32, false},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntToUint32(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOverflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntToUint32TooLarge(t *testing.T) {
	_, err := IntToUint32(math.MaxUint32 + 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, got)

	_, err = Uint64ToInt(math.MaxUint64)
	require.ErrorIs(t, err, ErrOverflow)
}
