// Package bitset implements primitives over packed validity bitmaps. Bit i of
// a bitmap lives in byte i/8 at position i%8, least significant bit first.
package bitset

import "math/bits"

// BytesForBits returns the number of bytes needed to hold n bits.
func BytesForBits(n int64) int64 {
	return (n + 7) / 8
}

// BitIsSet reports whether bit i of buf is set.
func BitIsSet(buf []byte, i int64) bool {
	return buf[i/8]&(1<<(i%8)) != 0
}

// SetBit sets bit i of buf.
func SetBit(buf []byte, i int64) {
	buf[i/8] |= 1 << (i % 8)
}

// ClearBit clears bit i of buf.
func ClearBit(buf []byte, i int64) {
	buf[i/8] &^= 1 << (i % 8)
}

// SetBitTo sets bit i of buf to v.
func SetBitTo(buf []byte, i int64, v bool) {
	if v {
		SetBit(buf, i)
	} else {
		ClearBit(buf, i)
	}
}

// SetBitsTo sets length bits of buf starting at offset to value. Bits outside
// [offset, offset+length) keep their previous contents.
func SetBitsTo(buf []byte, offset, length int64, value bool) {
	if length == 0 {
		return
	}
	var fill byte
	if value {
		fill = 0xff
	}
	first, last := offset, offset+length
	firstByte, lastByte := first/8, (last-1)/8
	if firstByte == lastByte {
		mask := spanMask(first%8, (last-1)%8+1)
		buf[firstByte] = buf[firstByte]&^mask | fill&mask
		return
	}
	if rem := first % 8; rem != 0 {
		mask := spanMask(rem, 8)
		buf[firstByte] = buf[firstByte]&^mask | fill&mask
		firstByte++
	}
	if rem := last % 8; rem != 0 {
		mask := spanMask(0, rem)
		buf[lastByte] = buf[lastByte]&^mask | fill&mask
		lastByte--
	}
	for i := firstByte; i <= lastByte; i++ {
		buf[i] = fill
	}
}

// spanMask returns a byte with bits [lo, hi) set, 0 <= lo < hi <= 8.
func spanMask(lo, hi int64) byte {
	return byte(uint16(1)<<hi-1) &^ byte(uint16(1)<<lo-1)
}

// CopyBitmap copies length bits of src starting at srcOffset into dst starting
// at dstOffset. Offsets need not agree modulo 8. Destination bits outside the
// written range are preserved.
func CopyBitmap(src []byte, srcOffset, length int64, dst []byte, dstOffset int64) {
	transferBitmap(src, srcOffset, length, dst, dstOffset, false)
}

// InvertBitmap is CopyBitmap writing the complement of every source bit.
func InvertBitmap(src []byte, srcOffset, length int64, dst []byte, dstOffset int64) {
	transferBitmap(src, srcOffset, length, dst, dstOffset, true)
}

func transferBitmap(src []byte, srcOffset, length int64, dst []byte, dstOffset int64, invert bool) {
	if length == 0 {
		return
	}
	if srcOffset%8 == 0 && dstOffset%8 == 0 {
		// Byte aligned on both sides, move whole bytes then the tail bits.
		sb := src[srcOffset/8:]
		db := dst[dstOffset/8:]
		nbytes := length / 8
		if invert {
			for i := int64(0); i < nbytes; i++ {
				db[i] = ^sb[i]
			}
		} else {
			copy(db[:nbytes], sb[:nbytes])
		}
		for i := nbytes * 8; i < length; i++ {
			SetBitTo(db, i, BitIsSet(sb, i) != invert)
		}
		return
	}
	for i := int64(0); i < length; i++ {
		SetBitTo(dst, dstOffset+i, BitIsSet(src, srcOffset+i) != invert)
	}
}

// CountSetBits returns the number of set bits in buf within
// [offset, offset+length).
func CountSetBits(buf []byte, offset, length int64) int64 {
	var n int64
	i, end := offset, offset+length
	for ; i < end && i%8 != 0; i++ {
		if BitIsSet(buf, i) {
			n++
		}
	}
	for ; i+8 <= end; i += 8 {
		n += int64(bits.OnesCount8(buf[i/8]))
	}
	for ; i < end; i++ {
		if BitIsSet(buf, i) {
			n++
		}
	}
	return n
}
