package bytearray

import (
	"encoding/binary"
	"math"
)

// Byte widths of the supported primitive types.
const (
	sizeInt8    = 1
	sizeInt16   = 2
	sizeInt32   = 4
	sizeInt64   = 8
	sizeFloat32 = 4
	sizeFloat64 = 8
)

// orderOf returns the byte order to use, defaulting to big-endian.
func orderOf(order binary.ByteOrder) binary.ByteOrder {
	if order == nil {
		return binary.BigEndian
	}
	return order
}

// WriteInt8 writes a signed byte.
func (b *ByteArray) WriteInt8(v int8) {
	b.reserve(sizeInt8)[0] = uint8(v)
}

// WriteUint8 writes an unsigned byte.
func (b *ByteArray) WriteUint8(v uint8) {
	b.reserve(sizeInt8)[0] = v
}

// WriteBoolean writes 1 for true and 0 for false.
func (b *ByteArray) WriteBoolean(v bool) {
	if v {
		b.WriteUint8(1)
		return
	}
	b.WriteUint8(0)
}

// WriteInt16 writes a 16 bit signed integer. A nil order means big-endian.
func (b *ByteArray) WriteInt16(v int16, order binary.ByteOrder) {
	b.WriteUint16(uint16(v), order)
}

// WriteUint16 writes a 16 bit unsigned integer. A nil order means big-endian.
func (b *ByteArray) WriteUint16(v uint16, order binary.ByteOrder) {
	orderOf(order).PutUint16(b.reserve(sizeInt16), v)
}

// WriteInt32 writes a 32 bit signed integer. A nil order means big-endian.
func (b *ByteArray) WriteInt32(v int32, order binary.ByteOrder) {
	b.WriteUint32(uint32(v), order)
}

// WriteUint32 writes a 32 bit unsigned integer. A nil order means big-endian.
func (b *ByteArray) WriteUint32(v uint32, order binary.ByteOrder) {
	orderOf(order).PutUint32(b.reserve(sizeInt32), v)
}

// WriteInt64 writes a 64 bit signed integer. A nil order means big-endian.
func (b *ByteArray) WriteInt64(v int64, order binary.ByteOrder) {
	b.WriteUint64(uint64(v), order)
}

// WriteUint64 writes a 64 bit unsigned integer. A nil order means big-endian.
func (b *ByteArray) WriteUint64(v uint64, order binary.ByteOrder) {
	orderOf(order).PutUint64(b.reserve(sizeInt64), v)
}

// WriteFloat32 writes an IEEE 754 single precision number. A nil order means big-endian.
func (b *ByteArray) WriteFloat32(v float32, order binary.ByteOrder) {
	orderOf(order).PutUint32(b.reserve(sizeFloat32), math.Float32bits(v))
}

// WriteFloat64 writes an IEEE 754 double precision number. A nil order means big-endian.
func (b *ByteArray) WriteFloat64(v float64, order binary.ByteOrder) {
	orderOf(order).PutUint64(b.reserve(sizeFloat64), math.Float64bits(v))
}

// ReadInt8 reads a signed byte.
func (b *ByteArray) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

// ReadUint8 reads an unsigned byte.
func (b *ByteArray) ReadUint8() (uint8, error) {
	span, err := b.next(sizeInt8)
	if err != nil {
		return 0, err
	}
	return span[0], nil
}

// ReadBoolean reads a single byte and reports whether it is non-zero.
func (b *ByteArray) ReadBoolean() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

// ReadInt16 reads a 16 bit signed integer. A nil order means big-endian.
func (b *ByteArray) ReadInt16(order binary.ByteOrder) (int16, error) {
	v, err := b.ReadUint16(order)
	return int16(v), err
}

// ReadUint16 reads a 16 bit unsigned integer. A nil order means big-endian.
func (b *ByteArray) ReadUint16(order binary.ByteOrder) (uint16, error) {
	span, err := b.next(sizeInt16)
	if err != nil {
		return 0, err
	}
	return orderOf(order).Uint16(span), nil
}

// ReadInt32 reads a 32 bit signed integer. A nil order means big-endian.
func (b *ByteArray) ReadInt32(order binary.ByteOrder) (int32, error) {
	v, err := b.ReadUint32(order)
	return int32(v), err
}

// ReadUint32 reads a 32 bit unsigned integer. A nil order means big-endian.
func (b *ByteArray) ReadUint32(order binary.ByteOrder) (uint32, error) {
	span, err := b.next(sizeInt32)
	if err != nil {
		return 0, err
	}
	return orderOf(order).Uint32(span), nil
}

// ReadInt64 reads a 64 bit signed integer. A nil order means big-endian.
func (b *ByteArray) ReadInt64(order binary.ByteOrder) (int64, error) {
	v, err := b.ReadUint64(order)
	return int64(v), err
}

// ReadUint64 reads a 64 bit unsigned integer. A nil order means big-endian.
func (b *ByteArray) ReadUint64(order binary.ByteOrder) (uint64, error) {
	span, err := b.next(sizeInt64)
	if err != nil {
		return 0, err
	}
	return orderOf(order).Uint64(span), nil
}

// ReadFloat32 reads an IEEE 754 single precision number. A nil order means big-endian.
func (b *ByteArray) ReadFloat32(order binary.ByteOrder) (float32, error) {
	span, err := b.next(sizeFloat32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(orderOf(order).Uint32(span)), nil
}

// ReadFloat64 reads an IEEE 754 double precision number. A nil order means big-endian.
func (b *ByteArray) ReadFloat64(order binary.ByteOrder) (float64, error) {
	span, err := b.next(sizeFloat64)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(orderOf(order).Uint64(span)), nil
}
