package compute

import "github.com/gernest/validity/bitset"

// The two validity operators. Both are pure bitmap algebra: they never read
// element values, only the validity buffer.
//
// is_valid may answer with a zero copy alias of the input bitmap, so it is
// registered with NoPreallocate. is_null is the complement and must never
// share storage with is_valid consumers, so its output is always preallocated
// and it may write into slices of a larger buffer.

type isValidOperator struct{}

func (isValidOperator) CallScalar(valid bool) bool { return valid }

func (isValidOperator) CallArray(ctx *KernelCtx, arr *ArraySpan, out *Mask) error {
	if out.Offset != 0 {
		panic("compute: is_valid output must start at offset 0")
	}
	if out.Length > arr.Length {
		panic("compute: is_valid output longer than input")
	}
	if arr.Validity != nil {
		// Zero copy: alias the input bitmap. A non zero bit offset is
		// rebased onto the sliced buffer; the slice start divides the
		// offset by 8 in bytes while the sub byte remainder is carried
		// in the mask offset. Keep this arithmetic exactly as is.
		if arr.Offset == 0 {
			arr.Validity.Retain()
			out.Buf = arr.Validity
		} else {
			out.Buf = arr.Validity.Slice(arr.Offset/8, arr.Length/8)
		}
		out.Offset = arr.Offset % 8
		return nil
	}

	buf, err := ctx.AllocateBitmap(out.Length)
	if err != nil {
		return err
	}
	out.Buf = buf

	if arr.Nulls == 0 || arr.Validity == nil {
		bitset.SetBitsTo(out.Buf.Bytes(), out.Offset, out.Length, true)
		return nil
	}

	bitset.CopyBitmap(arr.Validity.Bytes(), arr.Offset, arr.Length,
		out.Buf.Bytes(), out.Offset)
	return nil
}

type isNullOperator struct{}

func (isNullOperator) CallScalar(valid bool) bool { return !valid }

func (isNullOperator) CallArray(ctx *KernelCtx, arr *ArraySpan, out *Mask) error {
	if out.Buf == nil {
		panic("compute: is_null output not preallocated")
	}
	if arr.Nulls == 0 || arr.Validity == nil {
		bitset.SetBitsTo(out.Buf.Bytes(), out.Offset, out.Length, false)
		return nil
	}
	bitset.InvertBitmap(arr.Validity.Bytes(), arr.Offset, arr.Length,
		out.Buf.Bytes(), out.Offset)
	return nil
}

// RegisterValidity registers "is_valid" and "is_null" in reg. Any failure is
// a configuration error fatal to setup.
func RegisterValidity(reg *Registry) error {
	err := makeFunction(reg, "is_valid", []InputType{AnyValue}, Boolean,
		isValidOperator{}.CallArray, isValidOperator{}.CallScalar,
		NoPreallocate, false)
	if err != nil {
		return err
	}
	return makeFunction(reg, "is_null", []InputType{AnyValue}, Boolean,
		isNullOperator{}.CallArray, isNullOperator{}.CallScalar,
		Preallocate, true)
}

func makeFunction(reg *Registry, name string, in []InputType, out OutputType,
	exec ArrayKernelExec, scalar ScalarKernelExec, alloc MemAlloc, sliceWritable bool) error {
	fn, err := reg.AddFunction(name, len(in))
	if err != nil {
		return err
	}
	return fn.AddKernel(Kernel{
		InTypes:       in,
		OutType:       out,
		Exec:          exec,
		Scalar:        scalar,
		Alloc:         alloc,
		Nulls:         OutputNotNull,
		SliceWritable: sliceWritable,
	})
}
