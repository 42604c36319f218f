package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gernest/validity/buffer"
	"github.com/gernest/validity/compute"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "masks.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func span(raw []byte, offset, length int64) *compute.ArraySpan {
	return compute.NewSpan(buffer.New(raw), offset, length)
}

func TestPutGet(t *testing.T) {
	s := testStore(t)

	arr := span([]byte{0b10011011, 0b00000010}, 0, 10)
	mask := compute.Mask{Buf: buffer.New([]byte{0b01100100, 0b00000001}), Length: 10}
	require.NoError(t, s.Put(arr, mask))

	got, ok, err := s.Get(arr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, mask.Length, got.Length)
	for i := int64(0); i < mask.Length; i++ {
		require.Equal(t, mask.Bit(i), got.Bit(i), "bit %d", i)
	}
}

func TestGetMiss(t *testing.T) {
	s := testStore(t)
	_, ok, err := s.Get(span([]byte{0xff, 0xff}, 0, 10))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyDistinguishesOffsets(t *testing.T) {
	raw := []byte{0xaa, 0xaa}
	require.NotEqual(t,
		Key(span(raw, 0, 8)),
		Key(span(raw, 8, 8)))
	require.NotEqual(t,
		Key(span(raw, 0, 8)),
		Key(span(raw, 0, 9)))
}

func TestKeysSorted(t *testing.T) {
	s := testStore(t)

	inputs := []*compute.ArraySpan{
		span([]byte{0x01}, 0, 8),
		span([]byte{0x02}, 0, 8),
		span([]byte{0x03}, 0, 8),
	}
	for _, arr := range inputs {
		mask := compute.Mask{Buf: buffer.New([]byte{0xff}), Length: 8}
		require.NoError(t, s.Put(arr, mask))
	}
	keys := s.Keys()
	require.Len(t, keys, 3)
	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i])
	}
}

func TestReopenRestoresIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "masks.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	arr := span([]byte{0b10011011, 0b00000010}, 0, 10)
	require.NoError(t, s.Put(arr, compute.Mask{Buf: buffer.New([]byte{0, 0}), Length: 10}))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.Get(arr)
	require.NoError(t, err)
	require.True(t, ok)
}
