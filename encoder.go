package neugif

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/esimov/neugif/bytearray"
	"github.com/esimov/neugif/utils"
)

// Block identifiers.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	appLabel      = 0xFF
	appBlockSize  = 0x0B
	appIdentifier = "NETSCAPE2.0"
	loopBlockSize = 0x03
	loopBlockID   = 0x01
)

const signature = "GIF89a"

// Logical screen descriptor fields.
const (
	fColorTable         = 1 << 7
	fColorResolution    = 4 // bit offset
	fColorTableBitsMask = 7
)

// ErrClosed is returned when writing to an encoder after Close.
var ErrClosed = errors.New("gif: encoder is closed")

// ErrHeaderWritten is returned when changing a header field once the header is in the stream.
var ErrHeaderWritten = errors.New("gif: header already written")

var defaultPalette = []uint32{0x000000, 0xffffff}

// Encoder builds a GIF stream into an owned ByteArray.
// Parameters are validated when they are set; a failing setter leaves the
// encoder untouched.
type Encoder struct {
	width  int
	height int

	palette    []uint32
	background int
	repeat     int

	buf    *bytearray.ByteArray
	header bool
	closed bool
}

// NewEncoder creates an encoder for a canvas of the given size. The palette
// defaults to black and white, the background to 0 and the stream plays once.
func NewEncoder(width, height int) (*Encoder, error) {
	if err := validateDimension("width", width); err != nil {
		return nil, err
	}
	if err := validateDimension("height", height); err != nil {
		return nil, err
	}
	pal := make([]uint32, len(defaultPalette))
	copy(pal, defaultPalette)

	return &Encoder{
		width:   width,
		height:  height,
		palette: pal,
		repeat:  -1,
		buf:     bytearray.New(utils.Min(width*height, bytearray.DefaultPageSize), bytearray.DefaultPageSize),
	}, nil
}

// Width returns the canvas width.
func (e *Encoder) Width() int { return e.width }

// Height returns the canvas height.
func (e *Encoder) Height() int { return e.height }

// SetPalette replaces the global color table.
// The background index is not revalidated, callers should set it again.
// It fails with ErrHeaderWritten once the header is in the stream.
func (e *Encoder) SetPalette(palette []uint32) error {
	if e.header {
		return ErrHeaderWritten
	}
	if err := ValidatePalette(palette); err != nil {
		return err
	}
	e.palette = make([]uint32, len(palette))
	copy(e.palette, palette)

	return nil
}

// Palette returns a copy of the global color table.
func (e *Encoder) Palette() []uint32 {
	pal := make([]uint32, len(e.palette))
	copy(pal, e.palette)

	return pal
}

// SetBackground sets the background color index, checked against the current palette.
func (e *Encoder) SetBackground(index int) error {
	if e.header {
		return ErrHeaderWritten
	}
	if err := ValidateBackground(index, e.palette); err != nil {
		return err
	}
	e.background = index

	return nil
}

// Background returns the background color index.
func (e *Encoder) Background() int { return e.background }

// SetRepeat sets the loop count: -1 plays once, 0 loops forever.
func (e *Encoder) SetRepeat(count int) error {
	if e.header {
		return ErrHeaderWritten
	}
	if err := ValidateRepeat(count); err != nil {
		return err
	}
	e.repeat = count

	return nil
}

// Repeat returns the loop count.
func (e *Encoder) Repeat() int { return e.repeat }

// WriteHeader starts a new stream: it discards previous output and writes the
// signature, the logical screen descriptor, the global color table and, when
// the stream loops, the NETSCAPE2.0 application extension.
func (e *Encoder) WriteHeader() error {
	e.buf.Clear()
	e.closed = false

	e.writeSignature()
	e.writeScreenDescriptor()
	e.writeColorTable()
	if e.repeat >= 0 {
		e.writeLoopExtension()
	}
	e.header = true

	return nil
}

// Reset discards the encoded stream so the header fields can be changed again.
func (e *Encoder) Reset() {
	e.buf.Clear()
	e.header = false
	e.closed = false
}

// Close terminates the stream with the trailer byte.
func (e *Encoder) Close() error {
	if e.closed {
		return ErrClosed
	}
	if !e.header {
		if err := e.WriteHeader(); err != nil {
			return err
		}
	}
	e.buf.WriteUint8(sTrailer)
	e.closed = true

	return nil
}

// Bytes returns a copy of the encoded stream.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// WriteTo writes the encoded stream to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	return e.buf.WriteTo(w)
}

func (e *Encoder) writeSignature() {
	e.buf.Write([]byte(signature))
}

// writeScreenDescriptor writes width, height, the packed fields,
// the background index and the pixel aspect ratio.
func (e *Encoder) writeScreenDescriptor() {
	e.buf.WriteUint16(uint16(e.width), binary.LittleEndian)
	e.buf.WriteUint16(uint16(e.height), binary.LittleEndian)
	e.buf.WriteUint8(e.packedFields())
	e.buf.WriteUint8(uint8(e.background))
	e.buf.WriteUint8(0x00) // pixel aspect ratio
}

// packedFields combines the global color table flag (bit 7), the color
// resolution (bits 6-4), the sort flag (bit 3, always 0) and the global
// color table size (bits 2-0).
func (e *Encoder) packedFields() uint8 {
	if len(e.palette) == 0 {
		return 0
	}
	depth := ColorDepth(len(e.palette))
	resolution := depth - 1
	if resolution < 0 {
		resolution = 0
	}
	return fColorTable |
		uint8(resolution)<<fColorResolution |
		uint8(depth-1)&fColorTableBitsMask
}

func (e *Encoder) writeColorTable() {
	for _, c := range e.palette {
		e.buf.WriteUint8(uint8(c >> 16))
		e.buf.WriteUint8(uint8(c >> 8))
		e.buf.WriteUint8(uint8(c))
	}
}

func (e *Encoder) writeLoopExtension() {
	e.buf.WriteUint8(sExtension)
	e.buf.WriteUint8(appLabel)
	e.buf.WriteUint8(appBlockSize)
	e.buf.Write([]byte(appIdentifier))
	e.buf.WriteUint8(loopBlockSize)
	e.buf.WriteUint8(loopBlockID)
	e.buf.WriteUint16(uint16(e.repeat), binary.LittleEndian)
	e.buf.WriteUint8(0x00) // block terminator
}
