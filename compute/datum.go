// Package compute implements the validity mask kernels and the function
// registry they are exposed through.
package compute

import (
	"github.com/gernest/validity/bitset"
	"github.com/gernest/validity/buffer"
)

// UnknownNullCount marks a span whose null count has not been computed. It is
// treated as "may contain nulls".
const UnknownNullCount = int64(-1)

// ArraySpan is a logical vector view over a packed validity bitmap. Validity
// may be nil, which means every element is valid. Offset is the bit position
// of element zero inside Validity, allowing several spans to share one
// physical buffer.
type ArraySpan struct {
	Validity *buffer.Buffer
	Offset   int64
	Length   int64
	Nulls    int64
}

// NewSpan builds a span over buf with an unknown null count.
func NewSpan(buf *buffer.Buffer, offset, length int64) *ArraySpan {
	return &ArraySpan{Validity: buf, Offset: offset, Length: length, Nulls: UnknownNullCount}
}

// NullCount returns the number of null elements, computing and caching it
// from the bitmap when unknown.
func (a *ArraySpan) NullCount() int64 {
	if a.Nulls != UnknownNullCount {
		return a.Nulls
	}
	if a.Validity == nil {
		a.Nulls = 0
		return 0
	}
	a.Nulls = a.Length - bitset.CountSetBits(a.Validity.Bytes(), a.Offset, a.Length)
	return a.Nulls
}

// Mask is a packed boolean result vector: Length bits starting at bit Offset
// in Buf. Buf is either freshly allocated, in which case Offset is in [0, 8),
// or a zero copy alias of an input bitmap.
type Mask struct {
	Buf    *buffer.Buffer
	Offset int64
	Length int64
}

// Bit returns result bit i.
func (m *Mask) Bit(i int64) bool {
	return bitset.BitIsSet(m.Buf.Bytes(), m.Offset+i)
}

// Datum is the tagged input/output variant: a single scalar carrying only its
// validity, or an array span.
type Datum interface {
	isDatum()
}

// ScalarDatum is a scalar value reduced to its validity flag.
type ScalarDatum struct {
	Valid bool
}

// ArrayDatum wraps an ArraySpan.
type ArrayDatum struct {
	Array *ArraySpan
}

// BoolDatum is a non-null boolean result for scalar inputs.
type BoolDatum struct {
	Value bool
}

// MaskDatum is the packed boolean result for array inputs.
type MaskDatum struct {
	Mask Mask
}

func (ScalarDatum) isDatum() {}
func (*ArrayDatum) isDatum() {}
func (BoolDatum) isDatum()   {}
func (MaskDatum) isDatum()   {}
