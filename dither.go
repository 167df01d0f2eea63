package neugif

import "image"

// ditherPaletted maps src to palette indexes through m, diffusing the
// quantization error of every pixel to its unvisited neighbors with the
// Floyd-Steinberg weights.
func ditherPaletted(src *image.NRGBA, m ColorMapper, palette []uint32) *image.Paletted {
	bounds := src.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	dst := image.NewPaletted(bounds.Sub(bounds.Min), nil)

	// Error rows carry one padding cell on each side.
	cur := make([][3]int32, dx+2)
	next := make([][3]int32, dx+2)

	for y := 0; y < dy; y++ {
		si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < dx; x++ {
			var c [3]int32
			for ch := 0; ch < 3; ch++ {
				c[ch] = clamp8(int32(src.Pix[si+ch]) + cur[x+1][ch]/16)
			}
			idx := m.Lookup(uint8(c[0]), uint8(c[1]), uint8(c[2]))
			dst.Pix[di+x] = uint8(idx)

			p := palette[idx]
			chosen := [3]int32{int32(p >> 16 & 0xff), int32(p >> 8 & 0xff), int32(p & 0xff)}
			for ch := 0; ch < 3; ch++ {
				e := c[ch] - chosen[ch]
				cur[x+2][ch] += e * 7
				next[x][ch] += e * 3
				next[x+1][ch] += e * 5
				next[x+2][ch] += e
			}
			si += 4
		}
		cur, next = next, cur
		clear(next)
	}

	return dst
}

func clamp8(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 0xff {
		return 0xff
	}
	return v
}
