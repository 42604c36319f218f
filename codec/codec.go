// Package codec serializes validity masks into self describing frames: a
// fixed little endian header, the minlz compressed bitmap bytes, and an
// xxhash checksum of the uncompressed payload.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/gernest/validity/bitset"
	"github.com/gernest/validity/buffer"
	"github.com/gernest/validity/checksum"
	"github.com/gernest/validity/compute"
)

const (
	magic   = uint32(0x4b534d56) // "VMSK"
	version = byte(1)

	// magic, version, offset, reserved, length in bits, payload hash.
	headerSize = 4 + 1 + 1 + 2 + 8 + 8
)

var (
	ErrMagic    = errors.New("codec: bad magic")
	ErrVersion  = errors.New("codec: unsupported version")
	ErrChecksum = errors.New("codec: checksum mismatch")
	ErrShort    = errors.New("codec: frame truncated")
)

// Encode serializes m. Only the bytes covering [0, m.Offset+m.Length) of the
// mask buffer are stored; m.Offset must be in [0, 8), which holds for every
// freshly allocated mask.
func Encode(m compute.Mask) ([]byte, error) {
	if m.Offset < 0 || m.Offset >= 8 {
		return nil, errors.Errorf("codec: mask offset %d out of range", m.Offset)
	}
	var payload []byte
	if m.Length > 0 {
		payload = m.Buf.Bytes()[:bitset.BytesForBits(m.Offset+m.Length)]
	}

	var o bytes.Buffer
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:4], magic)
	hdr[4] = version
	hdr[5] = byte(m.Offset)
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(m.Length))
	binary.LittleEndian.PutUint64(hdr[16:24], checksum.Hash(payload))
	o.Write(hdr[:])

	w := pool.GetWriter()
	defer pool.PutWriter(w)
	w.Reset(&o)
	if _, err := w.Write(payload); err != nil {
		return nil, errors.Wrap(err, "compressing mask payload")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "flushing mask payload")
	}
	return o.Bytes(), nil
}

// Decode parses a frame produced by Encode. The returned mask owns a fresh
// buffer.
func Decode(frame []byte) (compute.Mask, error) {
	if len(frame) < headerSize {
		return compute.Mask{}, ErrShort
	}
	if binary.LittleEndian.Uint32(frame[:4]) != magic {
		return compute.Mask{}, ErrMagic
	}
	if frame[4] != version {
		return compute.Mask{}, errors.Wrapf(ErrVersion, "%d", frame[4])
	}
	offset := int64(frame[5])
	length := int64(binary.LittleEndian.Uint64(frame[8:16]))
	sum := binary.LittleEndian.Uint64(frame[16:24])

	r := pool.GetReader()
	defer pool.PutReader(r)
	r.Reset(bytes.NewReader(frame[headerSize:]))
	payload, err := io.ReadAll(r)
	if err != nil {
		return compute.Mask{}, errors.Wrap(err, "decompressing mask payload")
	}
	if int64(len(payload)) != bitset.BytesForBits(offset+length) {
		return compute.Mask{}, errors.Wrapf(ErrShort, "payload %d bytes for %d bits",
			len(payload), offset+length)
	}
	if checksum.Hash(payload) != sum {
		return compute.Mask{}, ErrChecksum
	}
	m := compute.Mask{Offset: offset, Length: length}
	if length > 0 {
		m.Buf = buffer.New(payload)
	}
	return m, nil
}
