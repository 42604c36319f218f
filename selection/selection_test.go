package selection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gernest/validity/bitset"
	"github.com/gernest/validity/buffer"
	"github.com/gernest/validity/compute"
)

func bitmap(s string) *buffer.Buffer {
	buf := make([]byte, bitset.BytesForBits(int64(len(s))))
	for i, c := range s {
		if c == '1' {
			bitset.SetBit(buf, int64(i))
		}
	}
	return buffer.New(buf)
}

func TestValidAndNull(t *testing.T) {
	arr := compute.NewSpan(bitmap("1101100100"), 0, 10)

	require.Equal(t, []uint64{0, 1, 3, 4, 7}, Valid(arr).Slice())
	require.Equal(t, []uint64{2, 5, 6, 8, 9}, Null(arr).Slice())
}

func TestOffset(t *testing.T) {
	arr := compute.NewSpan(bitmap("11101"), 3, 2)
	require.Equal(t, []uint64{1}, Valid(arr).Slice())
	require.Equal(t, []uint64{0}, Null(arr).Slice())
}

func TestNoBitmap(t *testing.T) {
	arr := &compute.ArraySpan{Length: 4, Nulls: 0}
	require.Equal(t, []uint64{0, 1, 2, 3}, Valid(arr).Slice())
	require.Equal(t, 0, len(Null(arr).Slice()))
}

func TestFromMask(t *testing.T) {
	m := compute.Mask{Buf: bitmap("0110"), Length: 4}
	require.Equal(t, []uint64{1, 2}, FromMask(m).Slice())
}
