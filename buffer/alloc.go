package buffer

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gernest/validity/bitset"
)

// ErrOutOfMemory is returned when an allocator cannot satisfy a request. It is
// passed through to the compute caller unchanged.
var ErrOutOfMemory = errors.New("buffer: out of memory")

// Allocator hands out fresh bitmap buffers.
type Allocator interface {
	// AllocateBitmap returns a zeroed buffer large enough to hold bits bits,
	// rounded up to whole bytes.
	AllocateBitmap(bits int64) (*Buffer, error)
}

// GoAllocator allocates from the Go heap.
type GoAllocator struct{}

func (GoAllocator) AllocateBitmap(bits int64) (*Buffer, error) {
	if bits < 0 {
		panic("buffer: negative bitmap size")
	}
	return New(make([]byte, bitset.BytesForBits(bits))), nil
}

// Metered wraps an Allocator and counts every allocation. The counts are
// exported as prometheus counters and readable directly, which lets tests
// assert that the zero copy paths never allocate.
type Metered struct {
	next  Allocator
	calls atomic.Int64
	bits  atomic.Int64

	allocCalls prometheus.Counter
	allocBits  prometheus.Counter
}

// NewMetered wraps next. reg may be nil, in which case the counters are kept
// but not exported.
func NewMetered(next Allocator, reg prometheus.Registerer) *Metered {
	m := &Metered{
		next: next,
		allocCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validity_bitmap_allocations_total",
			Help: "Number of bitmap buffers allocated.",
		}),
		allocBits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validity_bitmap_allocated_bits_total",
			Help: "Total bits requested from the bitmap allocator.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.allocCalls, m.allocBits)
	}
	return m
}

func (m *Metered) AllocateBitmap(bits int64) (*Buffer, error) {
	b, err := m.next.AllocateBitmap(bits)
	if err != nil {
		return nil, err
	}
	m.calls.Add(1)
	m.bits.Add(bits)
	m.allocCalls.Inc()
	m.allocBits.Add(float64(bits))
	return b, nil
}

// Allocations returns the number of successful allocation calls.
func (m *Metered) Allocations() int64 {
	return m.calls.Load()
}

// AllocatedBits returns the total bits requested so far.
func (m *Metered) AllocatedBits() int64 {
	return m.bits.Load()
}
