package compute

import (
	"sync"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"

	"github.com/gernest/validity/buffer"
)

// ErrRegistered is returned when a function name is added twice.
var ErrRegistered = errors.New("compute: function already registered")

// InputType constrains a kernel argument. Only AnyValue exists today; the
// validity kernels accept every type because they never look at values.
type InputType int8

const AnyValue InputType = iota

// OutputType describes the kernel result type.
type OutputType int8

const Boolean OutputType = iota

// MemAlloc tells the invoker who allocates the output bitmap.
type MemAlloc int8

const (
	// NoPreallocate leaves allocation to the kernel, which may alias an
	// input buffer instead.
	NoPreallocate MemAlloc = iota
	// Preallocate requires the invoker to allocate the output before the
	// kernel runs.
	Preallocate
)

// NullHandling describes the validity of the kernel result itself.
type NullHandling int8

// OutputNotNull means the result is a plain boolean vector, never nullable.
const OutputNotNull NullHandling = iota

// ArrayKernelExec runs a kernel over one array span, producing out.
type ArrayKernelExec func(ctx *KernelCtx, arr *ArraySpan, out *Mask) error

// ScalarKernelExec runs a kernel over one scalar validity flag.
type ScalarKernelExec func(valid bool) bool

// Kernel is one registered implementation of a function.
type Kernel struct {
	InTypes       []InputType
	OutType       OutputType
	Exec          ArrayKernelExec
	Scalar        ScalarKernelExec
	Alloc         MemAlloc
	Nulls         NullHandling
	SliceWritable bool
}

// Function is a named operation with a fixed arity.
type Function struct {
	Name    string
	Arity   int
	kernels []Kernel
}

// AddKernel registers k against f. Arity mismatch is a configuration error.
func (f *Function) AddKernel(k Kernel) error {
	if len(k.InTypes) != f.Arity {
		return errors.Errorf("compute: kernel for %q has %d input types, want %d",
			f.Name, len(k.InTypes), f.Arity)
	}
	if k.Exec == nil || k.Scalar == nil {
		return errors.Errorf("compute: kernel for %q is missing an exec", f.Name)
	}
	f.kernels = append(f.kernels, k)
	return nil
}

// Kernel returns the single registered kernel.
func (f *Function) Kernel() *Kernel {
	if len(f.kernels) != 1 {
		panic("compute: function has no kernel")
	}
	return &f.kernels[0]
}

// Registry maps operation names to functions. It is populated once at setup;
// afterwards the map is immutable and lookups take no lock.
type Registry struct {
	mu    sync.Mutex
	funcs *immutable.SortedMap[string, *Function]
}

func NewRegistry() *Registry {
	return &Registry{funcs: immutable.NewSortedMap[string, *Function](nil)}
}

// AddFunction registers name with the given arity and returns the handle
// kernels are added to. Duplicate names and arity < 1 are fatal configuration
// errors.
func (r *Registry) AddFunction(name string, arity int) (*Function, error) {
	if arity < 1 {
		return nil, errors.Errorf("compute: invalid arity %d for %q", arity, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs.Get(name); ok {
		return nil, errors.Wrap(ErrRegistered, name)
	}
	fn := &Function{Name: name, Arity: arity}
	r.funcs = r.funcs.Set(name, fn)
	return fn, nil
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (*Function, bool) {
	return r.funcs.Get(name)
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	o := make([]string, 0, r.funcs.Len())
	it := r.funcs.Iterator()
	for !it.Done() {
		k, _, _ := it.Next()
		o = append(o, k)
	}
	return o
}

// KernelCtx carries per-invocation collaborators, currently only the
// allocator.
type KernelCtx struct {
	Alloc buffer.Allocator
}

// AllocateBitmap allocates bits bits from the context allocator. Failures
// propagate unchanged.
func (c *KernelCtx) AllocateBitmap(bits int64) (*buffer.Buffer, error) {
	return c.Alloc.AllocateBitmap(bits)
}

// Call invokes the registered kernel of fn on in. Scalar datums produce a
// BoolDatum. Array datums produce a MaskDatum; out carries the caller's
// destination and may be nil, in which case a full-length destination at
// offset zero is implied. When the kernel declares Preallocate and out has no
// buffer, Call allocates it first. Zero length inputs produce an empty mask
// without allocating.
func (fn *Function) Call(ctx *KernelCtx, in Datum, out *Mask) (Datum, error) {
	k := fn.Kernel()
	switch d := in.(type) {
	case ScalarDatum:
		return BoolDatum{Value: k.Scalar(d.Valid)}, nil
	case *ArrayDatum:
		arr := d.Array
		if out == nil {
			out = &Mask{}
		}
		if out.Length == 0 {
			out.Length = arr.Length
		}
		if out.Length == 0 {
			return MaskDatum{Mask: *out}, nil
		}
		if k.Alloc == Preallocate && out.Buf == nil {
			buf, err := ctx.AllocateBitmap(out.Length)
			if err != nil {
				return nil, err
			}
			out.Buf = buf
		}
		if err := k.Exec(ctx, arr, out); err != nil {
			return nil, err
		}
		return MaskDatum{Mask: *out}, nil
	default:
		return nil, errors.Errorf("compute: %q cannot accept %T", fn.Name, in)
	}
}
