package neugif

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/esimov/neugif/bytearray"
	"github.com/stretchr/testify/assert"
)

func TestEncoder_NewValidatesDimensions(t *testing.T) {
	for _, size := range [][2]int{{0, 1}, {1, 0}, {-1, 5}, {65536, 1}} {
		_, err := NewEncoder(size[0], size[1])
		assert.ErrorIs(t, err, ErrRange, "size %v", size)
	}

	e, err := NewEncoder(65535, 1)
	assert.NoError(t, err)
	assert.Equal(t, 65535, e.Width())
	assert.Equal(t, 1, e.Height())
}

func TestEncoder_Defaults(t *testing.T) {
	e, err := NewEncoder(2, 2)
	assert.NoError(t, err)

	assert.Equal(t, []uint32{0x000000, 0xffffff}, e.Palette())
	assert.Equal(t, 0, e.Background())
	assert.Equal(t, -1, e.Repeat())
}

func TestEncoder_FailedSettersKeepState(t *testing.T) {
	assert := assert.New(t)

	e, _ := NewEncoder(4, 4)
	assert.NoError(e.SetPalette(makePalette(4)))
	assert.NoError(e.SetBackground(3))
	assert.NoError(e.SetRepeat(5))

	assert.Error(e.SetPalette(makePalette(3)))
	assert.Error(e.SetPalette([]uint32{0, 0x1000000}))
	assert.Error(e.SetBackground(4))
	assert.Error(e.SetRepeat(-2))
	assert.Error(e.SetRepeat(65536))

	assert.Equal(makePalette(4), e.Palette())
	assert.Equal(3, e.Background())
	assert.Equal(5, e.Repeat())
}

func TestEncoder_PaletteIsCopied(t *testing.T) {
	e, _ := NewEncoder(1, 1)
	pal := []uint32{1, 2}
	assert.NoError(t, e.SetPalette(pal))

	pal[0] = 9
	got := e.Palette()
	got[1] = 9
	assert.Equal(t, []uint32{1, 2}, e.Palette())
}

func TestEncoder_BackgroundNotRevalidated(t *testing.T) {
	e, _ := NewEncoder(1, 1)
	assert.NoError(t, e.SetPalette(makePalette(8)))
	assert.NoError(t, e.SetBackground(7))
	assert.NoError(t, e.SetPalette(makePalette(2)))

	assert.Equal(t, 7, e.Background())
	assert.Error(t, e.SetBackground(7))
}

func TestEncoder_WriteHeader(t *testing.T) {
	e, _ := NewEncoder(2, 2)
	assert.NoError(t, e.SetPalette([]uint32{0x000000, 0xffffff}))
	assert.NoError(t, e.SetBackground(0))
	assert.NoError(t, e.WriteHeader())

	want := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, // GIF89a
		0x02, 0x00, 0x02, 0x00, // width, height
		0x80,       // color table present, resolution 0, size 0
		0x00, 0x00, // background, aspect
		0x00, 0x00, 0x00, 0xff, 0xff, 0xff, // global color table
	}
	assert.Equal(t, want, e.Bytes())
}

func TestEncoder_PackedFields(t *testing.T) {
	testCases := []struct {
		size   int
		packed byte
	}{
		{2, 0x80},
		{4, 0x91},
		{8, 0xa2},
		{16, 0xb3},
		{32, 0xc4},
		{64, 0xd5},
		{128, 0xe6},
		{256, 0xf7},
	}
	for _, tc := range testCases {
		e, _ := NewEncoder(300, 200)
		assert.NoError(t, e.SetPalette(makePalette(tc.size)))
		assert.NoError(t, e.SetBackground(tc.size-1))
		e.WriteHeader()

		out := e.Bytes()
		assert.Equal(t, []byte{0x2c, 0x01, 0xc8, 0x00}, out[6:10])
		assert.Equal(t, tc.packed, out[10], "palette size %d", tc.size)
		assert.Equal(t, byte(tc.size-1), out[11])
		assert.Len(t, out, 13+3*tc.size)
	}
}

func TestEncoder_ColorTableOrder(t *testing.T) {
	e, _ := NewEncoder(1, 1)
	assert.NoError(t, e.SetPalette([]uint32{0x123456, 0xabcdef, 0x000001, 0xff0000}))
	e.WriteHeader()

	assert.Equal(t, []byte{
		0x12, 0x34, 0x56,
		0xab, 0xcd, 0xef,
		0x00, 0x00, 0x01,
		0xff, 0x00, 0x00,
	}, e.Bytes()[13:])
}

func TestEncoder_LoopExtension(t *testing.T) {
	testCases := []struct {
		repeat int
		tail   []byte
	}{
		{0, []byte{0x00, 0x00}},
		{1, []byte{0x01, 0x00}},
		{65535, []byte{0xff, 0xff}},
		{0x0102, []byte{0x02, 0x01}},
	}
	for _, tc := range testCases {
		e, _ := NewEncoder(2, 2)
		assert.NoError(t, e.SetRepeat(tc.repeat))
		e.WriteHeader()

		want := append([]byte{0x21, 0xff, 0x0b}, []byte("NETSCAPE2.0")...)
		want = append(want, 0x03, 0x01)
		want = append(want, tc.tail...)
		want = append(want, 0x00)
		assert.Equal(t, want, e.Bytes()[19:])
	}

	e, _ := NewEncoder(2, 2)
	e.WriteHeader()
	assert.Len(t, e.Bytes(), 19)
}

func TestEncoder_WriteHeaderRestarts(t *testing.T) {
	e, _ := NewEncoder(2, 2)
	e.WriteHeader()
	first := e.Bytes()
	e.WriteHeader()

	assert.Equal(t, first, e.Bytes())
}

func TestEncoder_WriteTo(t *testing.T) {
	e, _ := NewEncoder(2, 2)
	e.WriteHeader()

	var buf bytes.Buffer
	n, err := e.WriteTo(&buf)
	assert.NoError(t, err)
	assert.Equal(t, int64(19), n)
	assert.Equal(t, e.Bytes(), buf.Bytes())
}

func TestEncoder_CloseWritesTrailer(t *testing.T) {
	e, _ := NewEncoder(2, 2)
	assert.NoError(t, e.Close())

	out := e.Bytes()
	assert.Len(t, out, 20)
	assert.Equal(t, byte(0x3b), out[len(out)-1])

	assert.ErrorIs(t, e.Close(), ErrClosed)
	assert.ErrorIs(t, e.AddFrame(image.NewPaletted(image.Rect(0, 0, 1, 1), nil), 0), ErrClosed)
}

func TestEncoder_DecodesWithImageGIF(t *testing.T) {
	assert := assert.New(t)

	pal := []uint32{0xff0000, 0x00ff00, 0x0000ff, 0xffffff}
	e, _ := NewEncoder(20, 10)
	assert.NoError(e.SetPalette(pal))
	assert.NoError(e.SetBackground(3))
	assert.NoError(e.SetRepeat(0))

	frames := []*image.Paletted{
		image.NewPaletted(image.Rect(0, 0, 20, 10), nil),
		image.NewPaletted(image.Rect(5, 2, 15, 8), nil),
	}
	for i, m := range frames {
		for j := range m.Pix {
			m.Pix[j] = uint8((j + i) % len(pal))
		}
		assert.NoError(e.AddFrame(m, 10*(i+1)))
	}
	assert.NoError(e.Close())

	g, err := gif.DecodeAll(bytes.NewReader(e.Bytes()))
	assert.NoError(err)
	assert.Equal(0, g.LoopCount)
	assert.Equal(20, g.Config.Width)
	assert.Equal(10, g.Config.Height)
	assert.Equal(byte(3), g.BackgroundIndex)
	assert.Equal([]int{10, 20}, g.Delay)
	assert.Len(g.Image, 2)

	for i, m := range frames {
		got := g.Image[i]
		assert.Equal(m.Rect, got.Rect)
		assert.Equal(m.Pix, got.Pix)
		for j, c := range pal {
			want := color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
			assert.Equal(want, got.Palette[j])
		}
	}
}

func TestEncoder_LargeFrameSubBlocks(t *testing.T) {
	assert := assert.New(t)

	e, _ := NewEncoder(256, 256)
	assert.NoError(e.SetPalette(makePalette(256)))
	assert.NoError(e.SetRepeat(-1))

	m := image.NewPaletted(image.Rect(0, 0, 256, 256), nil)
	for i := range m.Pix {
		m.Pix[i] = uint8(i*7 ^ i>>8)
	}
	assert.NoError(e.AddFrame(m, 0))
	assert.NoError(e.Close())

	g, err := gif.DecodeAll(bytes.NewReader(e.Bytes()))
	assert.NoError(err)
	assert.Equal(-1, g.LoopCount)
	assert.Equal(m.Pix, g.Image[0].Pix)
}

func TestEncoder_SubImageFrame(t *testing.T) {
	e, _ := NewEncoder(8, 8)
	m := image.NewPaletted(image.Rect(0, 0, 8, 8), nil)
	for i := range m.Pix {
		m.Pix[i] = uint8(i % 2)
	}
	sub := m.SubImage(image.Rect(2, 2, 6, 5)).(*image.Paletted)
	assert.NoError(t, e.AddFrame(sub, 0))
	assert.NoError(t, e.Close())

	g, err := gif.DecodeAll(bytes.NewReader(e.Bytes()))
	assert.NoError(t, err)
	for y := 2; y < 5; y++ {
		for x := 2; x < 6; x++ {
			assert.Equal(t, sub.ColorIndexAt(x, y), g.Image[0].ColorIndexAt(x, y))
		}
	}
}

func TestEncoder_AddFrameValidation(t *testing.T) {
	e, _ := NewEncoder(4, 4)

	assert.Error(t, e.AddFrame(nil, 0))
	assert.Error(t, e.AddFrame(image.NewPaletted(image.Rect(2, 2, 6, 6), nil), 0))
	assert.ErrorIs(t, e.AddFrame(image.NewPaletted(image.Rect(0, 0, 4, 4), nil), -1), ErrRange)
	assert.ErrorIs(t, e.AddFrame(image.NewPaletted(image.Rect(0, 0, 4, 4), nil), 65536), ErrRange)

	m := image.NewPaletted(image.Rect(0, 0, 4, 4), nil)
	m.Pix[5] = 2
	assert.ErrorIs(t, e.AddFrame(m, 0), ErrRange)

	// Nothing has been written by the rejected frames.
	assert.Empty(t, e.Bytes())
}

func TestEncoder_HeaderFieldsLockedOnceWritten(t *testing.T) {
	assert := assert.New(t)

	e, _ := NewEncoder(4, 4)
	m := image.NewPaletted(image.Rect(0, 0, 4, 4), nil)
	assert.NoError(e.AddFrame(m, 0))

	assert.ErrorIs(e.SetPalette(makePalette(256)), ErrHeaderWritten)
	assert.ErrorIs(e.SetBackground(1), ErrHeaderWritten)
	assert.ErrorIs(e.SetRepeat(0), ErrHeaderWritten)
	assert.Equal([]uint32{0x000000, 0xffffff}, e.Palette())

	// Frames are still checked against the palette in the color table.
	m.Pix[0] = 200
	assert.ErrorIs(e.AddFrame(m, 0), ErrRange)
	m.Pix[0] = 1
	assert.NoError(e.AddFrame(m, 0))
	assert.NoError(e.Close())

	g, err := gif.DecodeAll(bytes.NewReader(e.Bytes()))
	assert.NoError(err)
	assert.Len(g.Image, 2)

	// Reset starts a new stream with new header fields.
	e.Reset()
	assert.Empty(e.Bytes())
	assert.NoError(e.SetPalette(makePalette(256)))
	m.Pix[0] = 200
	assert.NoError(e.AddFrame(m, 0))
	assert.NoError(e.Close())

	g, err = gif.DecodeAll(bytes.NewReader(e.Bytes()))
	assert.NoError(err)
	assert.Equal(uint8(200), g.Image[0].Pix[0])
}

func TestEncoder_InitialBufferIsBounded(t *testing.T) {
	e, err := NewEncoder(65535, 65535)
	assert.NoError(t, err)
	assert.LessOrEqual(t, e.buf.Cap(), bytearray.DefaultPageSize)

	small, _ := NewEncoder(2, 2)
	assert.NoError(t, small.Close())
	assert.Len(t, small.Bytes(), 20)
}
