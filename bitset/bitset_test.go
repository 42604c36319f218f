package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBitsTo(t *testing.T) {
	buf := []byte{0xff, 0x00, 0xff}
	SetBitsTo(buf, 4, 12, false)
	require.Equal(t, []byte{0x0f, 0x00, 0xff}, buf)

	SetBitsTo(buf, 4, 12, true)
	require.Equal(t, []byte{0xff, 0xff, 0xff}, buf)

	// Single partial byte, surrounding bits untouched.
	buf = []byte{0b10100101}
	SetBitsTo(buf, 2, 4, true)
	require.Equal(t, []byte{0b10111101}, buf)
	SetBitsTo(buf, 2, 4, false)
	require.Equal(t, []byte{0b10000001}, buf)

	// Zero length touches nothing.
	buf = []byte{0xaa}
	SetBitsTo(buf, 3, 0, true)
	require.Equal(t, []byte{0xaa}, buf)
}

func TestCopyBitmapOffsets(t *testing.T) {
	src := []byte{0b10011011, 0b01100101, 0b11110000}
	for srcOff := int64(0); srcOff < 8; srcOff++ {
		for dstOff := int64(0); dstOff < 8; dstOff++ {
			length := int64(13)
			dst := make([]byte, 4)
			CopyBitmap(src, srcOff, length, dst, dstOff)
			for i := int64(0); i < length; i++ {
				require.Equal(t, BitIsSet(src, srcOff+i), BitIsSet(dst, dstOff+i),
					"srcOff=%d dstOff=%d bit=%d", srcOff, dstOff, i)
			}
		}
	}
}

func TestCopyBitmapPreservesDestination(t *testing.T) {
	src := []byte{0x00, 0x00}
	dst := []byte{0xff, 0xff}
	CopyBitmap(src, 0, 5, dst, 6)
	require.Equal(t, []byte{0b00111111, 0b11111000}, dst)
}

func TestInvertBitmapRoundTrip(t *testing.T) {
	src := []byte{0b10011011, 0b00000010, 0b11001100}
	for srcOff := int64(0); srcOff < 8; srcOff++ {
		for dstOff := int64(0); dstOff < 8; dstOff++ {
			length := int64(15)
			once := make([]byte, 4)
			twice := make([]byte, 4)
			InvertBitmap(src, srcOff, length, once, dstOff)
			InvertBitmap(once, dstOff, length, twice, srcOff)
			for i := int64(0); i < length; i++ {
				require.Equal(t, BitIsSet(src, srcOff+i), BitIsSet(twice, srcOff+i),
					"srcOff=%d dstOff=%d bit=%d", srcOff, dstOff, i)
				require.Equal(t, BitIsSet(src, srcOff+i), !BitIsSet(once, dstOff+i),
					"srcOff=%d dstOff=%d bit=%d", srcOff, dstOff, i)
			}
		}
	}
}

func TestCountSetBits(t *testing.T) {
	buf := []byte{0b10011011, 0b01100101, 0xff}
	require.Equal(t, int64(5), CountSetBits(buf, 0, 8))
	require.Equal(t, int64(9), CountSetBits(buf, 0, 16))
	require.Equal(t, int64(17), CountSetBits(buf, 0, 24))
	require.Equal(t, int64(4), CountSetBits(buf, 1, 7))
	require.Equal(t, int64(8), CountSetBits(buf, 3, 14))
	require.Equal(t, int64(0), CountSetBits(buf, 5, 0))
}

func BenchmarkCopyBitmapAligned(b *testing.B) {
	src := make([]byte, 1<<16)
	for i := range src {
		src[i] = byte(i)
	}
	dst := make([]byte, 1<<16)
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		CopyBitmap(src, 0, int64(len(src))*8, dst, 0)
	}
}

func BenchmarkInvertBitmapUnaligned(b *testing.B) {
	src := make([]byte, 1<<12)
	for i := range src {
		src[i] = byte(i * 31)
	}
	dst := make([]byte, 1<<12+1)
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		InvertBitmap(src, 3, int64(len(src))*8-8, dst, 5)
	}
}
