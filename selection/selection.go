// Package selection converts validity masks into roaring sets of row ids so
// downstream filters can intersect them with other selections.
package selection

import (
	"github.com/gernest/roaring"

	"github.com/gernest/validity/bitset"
	"github.com/gernest/validity/compute"
)

// Valid returns the set of row ids whose validity bit is set. A span without
// a bitmap selects every row.
func Valid(arr *compute.ArraySpan) *roaring.Bitmap {
	ra := roaring.NewBitmap()
	if arr.Validity == nil {
		for i := int64(0); i < arr.Length; i++ {
			ra.DirectAdd(uint64(i))
		}
		return ra
	}
	data := arr.Validity.Bytes()
	for i := int64(0); i < arr.Length; i++ {
		if bitset.BitIsSet(data, arr.Offset+i) {
			ra.DirectAdd(uint64(i))
		}
	}
	return ra
}

// Null returns the set of row ids whose validity bit is clear.
func Null(arr *compute.ArraySpan) *roaring.Bitmap {
	ra := roaring.NewBitmap()
	if arr.Validity == nil || arr.Nulls == 0 {
		return ra
	}
	data := arr.Validity.Bytes()
	for i := int64(0); i < arr.Length; i++ {
		if !bitset.BitIsSet(data, arr.Offset+i) {
			ra.DirectAdd(uint64(i))
		}
	}
	return ra
}

// FromMask returns the set of row ids whose mask bit is set.
func FromMask(m compute.Mask) *roaring.Bitmap {
	ra := roaring.NewBitmap()
	for i := int64(0); i < m.Length; i++ {
		if m.Bit(i) {
			ra.DirectAdd(uint64(i))
		}
	}
	return ra
}
