// Package bytearray implements a growable, cursor addressed byte buffer
// with typed, endianness aware read and write operations.
//
// The buffer grows in pages: whenever the capacity is insufficient for a write
// the backing storage is reallocated to the next multiple of the page size.
// Slices returned by the buffer are always copies, so they remain valid
// after subsequent writes.
package bytearray

import (
	"fmt"
	"io"
)

// DefaultPageSize is the growth granularity used when none is provided.
const DefaultPageSize = 4096

// ByteArray is a growable byte buffer with a read/write cursor.
// The zero value is not usable, use New or From instead.
type ByteArray struct {
	pageSize int
	initCap  int

	// length is the number of committed bytes, offset the cursor position.
	length int
	offset int

	data []byte
}

// New creates a ByteArray with an initial capacity of length bytes rounded up
// to the page size. A non-positive pageSize falls back to DefaultPageSize.
func New(length, pageSize int) *ByteArray {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if length < 0 {
		length = 0
	}
	b := &ByteArray{
		pageSize: pageSize,
		initCap:  bestLength(length, pageSize),
	}
	b.data = make([]byte, b.initCap)

	return b
}

// From copies length bytes of src starting at offset into a new ByteArray.
// A negative length copies everything up to the end of src.
// The cursor of the returned buffer is placed after the copied bytes.
func From(src []byte, offset, length int) *ByteArray {
	b := New(0, DefaultPageSize)
	b.writeRange(src, offset, length)

	return b
}

// Copy duplicates length bytes of src, starting at offset, into b at the current cursor.
// A negative length copies everything up to the committed length of src.
func (b *ByteArray) Copy(src *ByteArray, offset, length int) {
	if src == nil {
		return
	}
	b.writeRange(src.data[:src.length], offset, length)
}

func (b *ByteArray) writeRange(src []byte, offset, length int) {
	if offset < 0 || offset > len(src) {
		return
	}
	if length < 0 || length > len(src)-offset {
		length = len(src) - offset
	}
	if length == 0 {
		return
	}
	b.grow(length)
	copy(b.data[b.offset:], src[offset:offset+length])
	b.offset += length
}

// bestLength rounds length up to a multiple of pageSize.
func bestLength(length, pageSize int) int {
	pages := (length + pageSize - 1) / pageSize

	return pages * pageSize
}

// grow makes room for n bytes past the cursor and extends the committed
// length to cover them. Storage is only reallocated when the capacity is short.
func (b *ByteArray) grow(n int) {
	required := b.offset + n
	if required > len(b.data) {
		data := make([]byte, bestLength(required, b.pageSize))
		copy(data, b.data[:b.length])
		b.data = data
	}
	if required > b.length {
		b.length = required
	}
}

// Clear resets the length and the cursor to zero and drops the grown storage.
func (b *ByteArray) Clear() {
	b.length = 0
	b.offset = 0
	b.data = make([]byte, b.initCap)
}

// Offset returns the cursor position.
func (b *ByteArray) Offset() int {
	return b.offset
}

// SetOffset moves the cursor. The value is clamped to [0, Len()].
func (b *ByteArray) SetOffset(offset int) {
	switch {
	case offset < 0:
		b.offset = 0
	case offset > b.length:
		b.offset = b.length
	default:
		b.offset = offset
	}
}

// Len returns the number of committed bytes.
func (b *ByteArray) Len() int {
	return b.length
}

// SetLen changes the committed length. Growing pads with zero bytes,
// shrinking truncates the content and pulls the cursor back if necessary.
func (b *ByteArray) SetLen(length int) {
	if length < 0 {
		length = 0
	}
	switch {
	case length > b.length:
		if length > len(b.data) {
			data := make([]byte, bestLength(length, b.pageSize))
			copy(data, b.data[:b.length])
			b.data = data
		} else {
			// Bytes past a previous truncation may still hold stale data.
			clear(b.data[b.length:length])
		}
		b.length = length
	case length < b.length:
		b.length = length
	}
	if b.offset > length {
		b.offset = length
	}
}

// Cap returns the size of the backing storage.
func (b *ByteArray) Cap() int {
	return len(b.data)
}

// PageSize returns the growth granularity.
func (b *ByteArray) PageSize() int {
	return b.pageSize
}

// Bytes returns a copy of the committed bytes.
func (b *ByteArray) Bytes() []byte {
	out := make([]byte, b.length)
	copy(out, b.data[:b.length])

	return out
}

// ReadAvailable returns the number of committed bytes after the cursor.
func (b *ByteArray) ReadAvailable() int {
	return b.length - b.offset
}

// BytesAvailable returns the capacity left after the cursor.
func (b *ByteArray) BytesAvailable() int {
	return len(b.data) - b.offset
}

// Write appends p at the cursor. It implements io.Writer and never fails.
func (b *ByteArray) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.grow(len(p))
	n := copy(b.data[b.offset:], p)
	b.offset += n

	return n, nil
}

// WriteByte writes a single byte at the cursor. It implements io.ByteWriter.
func (b *ByteArray) WriteByte(c byte) error {
	b.grow(1)
	b.data[b.offset] = c
	b.offset++

	return nil
}

// Read reads up to len(p) committed bytes from the cursor. It implements io.Reader.
func (b *ByteArray) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.offset >= b.length {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.offset:b.length])
	b.offset += n

	return n, nil
}

// ReadBytes reads exactly n bytes from the cursor.
func (b *ByteArray) ReadBytes(n int) ([]byte, error) {
	span, err := b.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, span)

	return out, nil
}

// WriteTo writes the committed bytes to w, regardless of the cursor position.
func (b *ByteArray) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data[:b.length])

	return int64(n), err
}

// next returns the next n committed bytes and advances the cursor.
// The returned slice aliases the storage and must not escape the package.
func (b *ByteArray) next(n int) ([]byte, error) {
	if n < 0 || b.offset+n > b.length {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d, length %d",
			ErrOutOfRange, n, b.offset, b.length)
	}
	span := b.data[b.offset : b.offset+n]
	b.offset += n

	return span, nil
}

// reserve grows the buffer for n bytes and returns the writable span at the cursor.
func (b *ByteArray) reserve(n int) []byte {
	b.grow(n)
	span := b.data[b.offset : b.offset+n]
	b.offset += n

	return span
}
