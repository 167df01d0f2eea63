package neugif

import (
	"compress/lzw"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"github.com/esimov/neugif/bytearray"
)

// Graphic control extension fields.
const (
	gcLabel     = 0xF9
	gcBlockSize = 0x04

	// DisposalNone leaves the frame in place when the next one is drawn.
	DisposalNone = 0x01

	MaxDelay = 0xffff
)

// AddFrame appends m as an image to the stream, writing the header first if
// needed. The pixels of m are indices into the encoder palette and the frame
// must fit inside the canvas. delay is expressed in hundredths of a second.
func (e *Encoder) AddFrame(m *image.Paletted, delay int) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.validateFrame(m, delay); err != nil {
		return err
	}
	if !e.header {
		if err := e.WriteHeader(); err != nil {
			return err
		}
	}

	e.writeGraphicControl(delay)
	e.writeImageDescriptor(m.Rect)

	return e.writeImageData(m)
}

func (e *Encoder) validateFrame(m *image.Paletted, delay int) error {
	if m == nil || m.Rect.Empty() {
		return errors.New("gif: empty frame")
	}
	canvas := image.Rect(0, 0, e.width, e.height)
	if !m.Rect.In(canvas) {
		return fmt.Errorf("gif: frame %v is outside of the %v canvas", m.Rect, canvas.Size())
	}
	if delay < 0 || delay > MaxDelay {
		return &RangeError{Field: "delay", Value: delay, Min: 0, Max: MaxDelay}
	}

	n := len(e.palette)
	dx, dy := m.Rect.Dx(), m.Rect.Dy()
	for y := 0; y < dy; y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+dx]
		for x, idx := range row {
			if int(idx) >= n {
				return &RangeError{
					Field:  "color index",
					Value:  int(idx),
					Min:    0,
					Max:    n - 1,
					Reason: fmt.Sprintf("at (%d, %d), must be [0 - %d]", m.Rect.Min.X+x, m.Rect.Min.Y+y, n-1),
				}
			}
		}
	}
	return nil
}

// writeGraphicControl writes the extension carrying the frame delay.
func (e *Encoder) writeGraphicControl(delay int) {
	e.buf.WriteUint8(sExtension)
	e.buf.WriteUint8(gcLabel)
	e.buf.WriteUint8(gcBlockSize)
	e.buf.WriteUint8(DisposalNone << 2) // no user input, no transparency
	e.buf.WriteUint16(uint16(delay), binary.LittleEndian)
	e.buf.WriteUint8(0x00) // transparent color index
	e.buf.WriteUint8(0x00) // block terminator
}

func (e *Encoder) writeImageDescriptor(r image.Rectangle) {
	e.buf.WriteUint8(sImageDescriptor)
	e.buf.WriteUint16(uint16(r.Min.X), binary.LittleEndian)
	e.buf.WriteUint16(uint16(r.Min.Y), binary.LittleEndian)
	e.buf.WriteUint16(uint16(r.Dx()), binary.LittleEndian)
	e.buf.WriteUint16(uint16(r.Dy()), binary.LittleEndian)
	e.buf.WriteUint8(0x00) // no local color table, not interlaced
}

// writeImageData writes the LZW minimum code size followed by the
// compressed pixel indices split into data sub-blocks.
func (e *Encoder) writeImageData(m *image.Paletted) error {
	litWidth := ColorDepth(len(e.palette))
	if litWidth < 2 {
		litWidth = 2
	}
	e.buf.WriteUint8(uint8(litWidth))

	bw := &blockWriter{dst: e.buf}
	lzww := lzw.NewWriter(bw, lzw.LSB, litWidth)

	dx, dy := m.Rect.Dx(), m.Rect.Dy()
	if m.Stride == dx {
		if _, err := lzww.Write(m.Pix[:dx*dy]); err != nil {
			return fmt.Errorf("gif: cannot compress image data: %w", err)
		}
	} else {
		for y := 0; y < dy; y++ {
			if _, err := lzww.Write(m.Pix[y*m.Stride : y*m.Stride+dx]); err != nil {
				return fmt.Errorf("gif: cannot compress image data: %w", err)
			}
		}
	}
	if err := lzww.Close(); err != nil {
		return fmt.Errorf("gif: cannot compress image data: %w", err)
	}
	bw.close()

	return nil
}

// blockWriter splits the LZW output into sub-blocks of at most 255 bytes,
// each prefixed by its length.
type blockWriter struct {
	dst *bytearray.ByteArray
	buf [256]byte
}

func (b *blockWriter) Write(data []byte) (int, error) {
	for _, c := range data {
		if err := b.WriteByte(c); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (b *blockWriter) WriteByte(c byte) error {
	b.buf[0]++
	b.buf[b.buf[0]] = c
	if b.buf[0] == 255 {
		b.dst.Write(b.buf[:256])
		b.buf[0] = 0
	}
	return nil
}

// close flushes the pending sub-block and writes the block terminator.
func (b *blockWriter) close() {
	if n := int(b.buf[0]); n > 0 {
		b.dst.Write(b.buf[:n+1])
		b.buf[0] = 0
	}
	b.dst.WriteUint8(0x00)
}
