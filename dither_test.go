package neugif

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDither_HalfTone(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 128, 128, 128, 255
	}
	palette := []uint32{0x000000, 0xffffff}

	plain := toPaletted(src, paletteMapper(palette))
	var whites int
	for _, v := range plain.Pix {
		whites += int(v)
	}
	assert.Equal(t, 1600, whites)

	dithered := ditherPaletted(src, paletteMapper(palette), palette)
	whites = 0
	for _, v := range dithered.Pix {
		whites += int(v)
	}
	assert.InDelta(t, 800, whites, 80)
}

func TestDither_ExactColorsUnchanged(t *testing.T) {
	src := makeBlockImage(30, 20)
	palette := make([]uint32, 8)
	for i, c := range blockColors {
		palette[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	}

	m := ditherPaletted(src, paletteMapper(palette), palette)
	assert.Equal(t, src.Bounds(), m.Bounds())
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			assert.Equal(t, uint8((x/10+y/10)%len(blockColors)), m.ColorIndexAt(x, y))
		}
	}
}

func TestProcessor_Dither(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 64
	}

	p := &Processor{Palette: []uint32{0x000000, 0xffffff}, Dither: true}
	m, _, err := p.Quantize(img)
	assert.NoError(t, err)

	var whites int
	for _, v := range m.Pix {
		whites += int(v)
	}
	assert.InDelta(t, 64, whites, 16)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, m.Palette[1])
}
