package checksum

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash returns uint64 xxhash checksum of data. This is the only hash function
// used to derive content keys for cached masks.
func Hash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Span returns the checksum of a bitmap span: the covered bytes followed by
// the bit offset and length, so equal bytes at different offsets key
// differently.
func Span(data []byte, offset, length int64) uint64 {
	d := xxhash.New()
	d.Write(data)
	var tail [16]byte
	binary.LittleEndian.PutUint64(tail[:8], uint64(offset))
	binary.LittleEndian.PutUint64(tail[8:], uint64(length))
	d.Write(tail[:])
	return d.Sum64()
}
