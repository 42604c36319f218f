// Package buffer provides the shared byte buffers validity bitmaps live in.
package buffer

import "sync/atomic"

// Buffer is a reference counted byte region. The owner may write into a
// freshly allocated buffer; once a buffer is shared through Slice or handed
// out as part of a result it must be treated as immutable.
type Buffer struct {
	refs *atomic.Int64
	data []byte
}

// New wraps data in a Buffer with a reference count of one.
func New(data []byte) *Buffer {
	refs := new(atomic.Int64)
	refs.Store(1)
	return &Buffer{refs: refs, data: data}
}

// Retain increments the reference count.
func (b *Buffer) Retain() {
	b.refs.Add(1)
}

// Release decrements the reference count, dropping the bytes when it reaches
// zero.
func (b *Buffer) Release() {
	if b.refs.Add(-1) == 0 {
		b.data = nil
	}
}

// Refs returns the current reference count.
func (b *Buffer) Refs() int64 {
	return b.refs.Load()
}

// Bytes returns the underlying bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int64 {
	return int64(len(b.data))
}

// Slice returns a zero copy view of length bytes starting at byte off. The
// view shares b's reference count, so it keeps the parent bytes alive for as
// long as it is held.
func (b *Buffer) Slice(off, length int64) *Buffer {
	if off < 0 || off+length > int64(len(b.data)) {
		panic("buffer: slice out of range")
	}
	b.Retain()
	return &Buffer{refs: b.refs, data: b.data[off : off+length]}
}
