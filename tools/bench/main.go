// Command bench times the validity kernels over synthetic spans and writes a
// wall clock profile next to the results.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/felixge/fgprof"

	"github.com/gernest/validity/buffer"
	"github.com/gernest/validity/compute"
)

func main() {
	var (
		iters   = flag.Int("iters", 1000, "iterations per size")
		profile = flag.String("profile", "bench.pprof", "fgprof output file")
	)
	flag.Parse()

	f, err := os.Create(*profile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	stop := fgprof.Start(f, fgprof.FormatPprof)

	reg := compute.NewRegistry()
	if err := compute.RegisterValidity(reg); err != nil {
		log.Fatal(err)
	}
	isValid, _ := reg.Get("is_valid")
	isNull, _ := reg.Get("is_null")
	ctx := &compute.KernelCtx{Alloc: buffer.GoAllocator{}}

	for _, size := range []int64{1 << 10, 1 << 14, 1 << 18, 1 << 22} {
		raw := make([]byte, size/8)
		for i := range raw {
			raw[i] = byte(i * 131)
		}
		run(ctx, isValid, "is_valid/bitmap", compute.NewSpan(buffer.New(raw), 0, size), *iters)
		run(ctx, isValid, "is_valid/no-bitmap", &compute.ArraySpan{Length: size, Nulls: 0}, *iters)
		run(ctx, isNull, "is_null/bitmap", compute.NewSpan(buffer.New(raw), 3, size-8), *iters)
		run(ctx, isNull, "is_null/no-nulls", &compute.ArraySpan{Length: size, Nulls: 0}, *iters)
	}

	if err := stop(); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *compute.KernelCtx, fn *compute.Function, name string, arr *compute.ArraySpan, iters int) {
	start := time.Now()
	for range iters {
		d, err := fn.Call(ctx, &compute.ArrayDatum{Array: arr}, nil)
		if err != nil {
			log.Fatal(err)
		}
		if m, ok := d.(compute.MaskDatum); ok && m.Mask.Buf != nil {
			m.Mask.Buf.Release()
		}
	}
	per := time.Since(start) / time.Duration(iters)
	fmt.Printf("%-20s length=%-8d %v/op\n", name, arr.Length, per)
}
