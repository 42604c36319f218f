package compute

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// RunChunked executes a slice writable kernel over arr in chunks, each chunk
// writing into its own slice of one preallocated output mask. Chunk sizes are
// rounded down to a byte multiple so no two chunks touch the same output
// byte, which makes the chunk writes safe to run in parallel.
func RunChunked(ctx *KernelCtx, fn *Function, arr *ArraySpan, chunkSize int64) (Mask, error) {
	k := fn.Kernel()
	if !k.SliceWritable {
		return Mask{}, errors.Errorf("compute: %q cannot write into slices", fn.Name)
	}
	out := Mask{Length: arr.Length}
	if arr.Length == 0 {
		return out, nil
	}
	if chunkSize < 8 {
		chunkSize = 8
	}
	chunkSize &^= 7
	buf, err := ctx.AllocateBitmap(arr.Length)
	if err != nil {
		return Mask{}, err
	}
	out.Buf = buf

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for pos := int64(0); pos < arr.Length; pos += chunkSize {
		n := min(chunkSize, arr.Length-pos)
		sub := &ArraySpan{
			Validity: arr.Validity,
			Offset:   arr.Offset + pos,
			Length:   n,
			Nulls:    UnknownNullCount,
		}
		if arr.Nulls == 0 {
			sub.Nulls = 0
		}
		slice := &Mask{Buf: buf, Offset: pos, Length: n}
		g.Go(func() error {
			return k.Exec(ctx, sub, slice)
		})
	}
	if err := g.Wait(); err != nil {
		out.Buf.Release()
		return Mask{}, err
	}
	return out, nil
}
