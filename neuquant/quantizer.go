package neuquant

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
)

var _ draw.Quantizer = (*Quantizer)(nil)

// Quantizer adapts the network to the image/draw Quantizer interface,
// so it can be plugged into image/gif.Options.
type Quantizer struct {
	// SampleFactor is passed to New. Zero means 1.
	SampleFactor int
}

// Quantize appends up to cap(p)-len(p) colors learned from m to p.
// A palette with no spare capacity is extended by the full 256 colors.
// When fewer than 256 colors fit, the neurons matching the most pixels of m are kept.
func (q *Quantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	pixels := Pixels(m)
	n := New(pixels, q.SampleFactor)
	cmap := n.BuildColorMap()

	room := cap(p) - len(p)
	if room <= 0 || room > netSize {
		room = netSize
	}
	for _, i := range n.mostUsed(pixels, room) {
		p = append(p, color.RGBA{R: cmap[i*3], G: cmap[i*3+1], B: cmap[i*3+2], A: 0xff})
	}

	return p
}

// mostUsed returns the k palette positions hit most often by pixels,
// in ascending palette order. Ties keep the lower position.
func (n *Network) mostUsed(pixels []byte, k int) []int {
	pos := make([]int, netSize)
	for i := range pos {
		pos[i] = i
	}
	if k >= netSize {
		return pos
	}

	var hits [netSize]int
	for i := 0; i+2 < len(pixels); i += 3 {
		hits[n.Lookup(pixels[i], pixels[i+1], pixels[i+2])]++
	}
	sort.SliceStable(pos, func(a, b int) bool {
		return hits[pos[a]] > hits[pos[b]]
	})
	pos = pos[:k]
	sort.Ints(pos)

	return pos
}

// Pixels flattens an image into interleaved RGB triplets, row by row.
// Alpha is dropped after un-premultiplying.
func Pixels(m image.Image) []byte {
	b := m.Bounds()
	pixels := make([]byte, 0, b.Dx()*b.Dy()*3)

	if src, ok := m.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				pixels = append(pixels, row[x*4], row[x*4+1], row[x*4+2])
			}
		}
		return pixels
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			pixels = append(pixels, c.R, c.G, c.B)
		}
	}

	return pixels
}
