package neugif

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/esimov/neugif/utils"

	// Register the supported source formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ColorMapper maps a color to an index of the palette it was built with.
type ColorMapper interface {
	Lookup(r, g, b uint8) int
}

// decodeFrames decodes the source image. Animated GIFs are coalesced into full
// canvas frames; every other format yields a single frame.
// The returned delays are nil for non animated sources.
func decodeFrames(r io.Reader) ([]*image.NRGBA, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read the source image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("could not decode the source image: %w", err)
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fmt.Errorf("could not decode the source gif: %w", err)
		}
		if len(g.Image) > 1 {
			return coalesce(g), g.Delay, nil
		}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("could not decode the source image: %w", err)
	}

	return []*image.NRGBA{imgToNRGBA(src)}, nil, nil
}

// coalesce draws every frame over the previous ones so that each
// resulting image covers the whole logical screen. The disposal method of a
// frame is applied to the canvas before the next frame is drawn:
// DisposalBackground clears the frame area to transparent and
// DisposalPrevious restores the canvas as it was before the frame.
func coalesce(g *gif.GIF) []*image.NRGBA {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	for _, m := range g.Image {
		bounds = bounds.Union(m.Bounds())
	}

	canvas := image.NewNRGBA(bounds)
	saved := make([]byte, len(canvas.Pix))
	frames := make([]*image.NRGBA, 0, len(g.Image))
	for i, m := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			copy(saved, canvas.Pix)
		}
		draw.Draw(canvas, m.Bounds(), m, m.Bounds().Min, draw.Over)

		frame := image.NewNRGBA(bounds.Sub(bounds.Min))
		copy(frame.Pix, canvas.Pix)
		frames = append(frames, frame)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, m.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, saved)
		}
	}

	return frames
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		draw.Draw(dst, dstBounds, img, srcBounds.Min, draw.Src)
	}

	return dst
}

// toPaletted maps every pixel of src to a palette index through m.
func toPaletted(src *image.NRGBA, m ColorMapper) *image.Paletted {
	bounds := src.Bounds()
	dst := image.NewPaletted(bounds.Sub(bounds.Min), nil)
	dx, dy := bounds.Dx(), bounds.Dy()

	// Neighboring pixels often share a color.
	var (
		last    [3]uint8
		lastIdx = -1
	)
	for y := 0; y < dy; y++ {
		si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < dx; x++ {
			c := [3]uint8{src.Pix[si], src.Pix[si+1], src.Pix[si+2]}
			if lastIdx < 0 || c != last {
				last = c
				lastIdx = m.Lookup(c[0], c[1], c[2])
			}
			dst.Pix[di+x] = uint8(lastIdx)
			si += 4
		}
	}

	return dst
}

// paletteMapper finds the nearest color of a fixed palette by Manhattan distance.
type paletteMapper []uint32

func (p paletteMapper) Lookup(r, g, b uint8) int {
	best, bestd := 0, 1<<31-1
	for i, c := range p {
		d := absDiff(uint8(c>>16), r) + absDiff(uint8(c>>8), g) + absDiff(uint8(c), b)
		if d < bestd {
			best, bestd = i, d
			if d == 0 {
				break
			}
		}
	}
	return best
}

func absDiff(a, b uint8) int {
	return utils.Abs(int(a) - int(b))
}
