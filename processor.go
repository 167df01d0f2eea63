package neugif

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/esimov/neugif/neuquant"
	"github.com/esimov/neugif/utils"
)

// DefaultSampleFactor balances quantization quality and speed.
const DefaultSampleFactor = 10

// Processor options
type Processor struct {
	// NewWidth and NewHeight resize the source before quantization.
	// When only one is set the aspect ratio is preserved.
	NewWidth  int
	NewHeight int
	// SampleFactor is the NeuQuant sampling factor in [1, 30]. Zero means DefaultSampleFactor.
	SampleFactor int
	// Repeat is the loop count of animated output: -1 plays once, 0 loops forever.
	Repeat int
	// Delay is the frame delay in hundredths of a second for sources without timing.
	Delay      int
	BlurRadius float64
	Grayscale  bool
	// Dither diffuses the quantization error over neighboring pixels.
	Dither bool
	// Palette, when set, is used instead of a trained color map.
	Palette []uint32
}

// Process decodes the source image from r, quantizes it and writes the GIF to w.
// Animated GIF sources keep their frames and delays.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	frames, delays, err := decodeFrames(r)
	if err != nil {
		return err
	}

	enc, err := p.Encode(frames, delays)
	if err != nil {
		return err
	}
	if _, err := enc.WriteTo(w); err != nil {
		return fmt.Errorf("could not write the gif: %w", err)
	}

	return nil
}

// Encode quantizes the frames against one shared palette and returns the
// closed encoder holding the GIF stream. delays may be nil.
func (p *Processor) Encode(frames []*image.NRGBA, delays []int) (*Encoder, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to encode")
	}
	prepared := make([]*image.NRGBA, len(frames))
	for i, f := range frames {
		prepared[i] = p.prepare(f)
	}
	frames = prepared
	bounds := frames[0].Bounds()
	for _, f := range frames[1:] {
		if f.Bounds() != bounds {
			return nil, fmt.Errorf("frame size %v differs from %v", f.Bounds().Size(), bounds.Size())
		}
	}

	palette, mapper, err := p.colorMap(frames)
	if err != nil {
		return nil, err
	}

	enc, err := NewEncoder(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if err := enc.SetPalette(palette); err != nil {
		return nil, err
	}
	if err := enc.SetBackground(0); err != nil {
		return nil, err
	}
	repeat := -1
	if len(frames) > 1 {
		repeat = p.Repeat
	}
	if err := enc.SetRepeat(repeat); err != nil {
		return nil, err
	}

	for i, f := range frames {
		delay := p.Delay
		if i < len(delays) {
			delay = delays[i]
		}
		if err := enc.AddFrame(p.paletted(f, palette, mapper), delay); err != nil {
			return nil, fmt.Errorf("could not encode frame %d: %w", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return enc, nil
}

// Quantize reduces img to the processor palette.
// It returns the paletted image together with the palette as 0xRRGGBB values.
func (p *Processor) Quantize(img image.Image) (*image.Paletted, []uint32, error) {
	src := p.prepare(imgToNRGBA(img))

	palette, mapper, err := p.colorMap([]*image.NRGBA{src})
	if err != nil {
		return nil, nil, err
	}
	dst := p.paletted(src, palette, mapper)
	dst.Palette = make([]color.Color, len(palette))
	for i, c := range palette {
		dst.Palette[i] = color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
	}

	return dst, palette, nil
}

// prepare applies the resize, blur and grayscale options.
func (p *Processor) prepare(img *image.NRGBA) *image.NRGBA {
	if p.NewWidth > 0 || p.NewHeight > 0 {
		img = imaging.Resize(img, p.NewWidth, p.NewHeight, imaging.Lanczos)
	}
	if p.BlurRadius > 0 {
		img = imaging.Blur(img, p.BlurRadius)
	}
	if p.Grayscale {
		img = imaging.Grayscale(img)
	}
	return img
}

func (p *Processor) paletted(src *image.NRGBA, palette []uint32, m ColorMapper) *image.Paletted {
	if p.Dither {
		return ditherPaletted(src, m, palette)
	}
	return toPaletted(src, m)
}

// colorMap returns the fixed palette when one is configured,
// otherwise trains a network over the pixels of every frame.
func (p *Processor) colorMap(frames []*image.NRGBA) ([]uint32, ColorMapper, error) {
	if p.Palette != nil {
		if err := ValidatePalette(p.Palette); err != nil {
			return nil, nil, err
		}
		return p.Palette, paletteMapper(p.Palette), nil
	}

	sampleFac := p.SampleFactor
	if sampleFac == 0 {
		sampleFac = DefaultSampleFactor
	}
	sampleFac = utils.Clamp(sampleFac, 1, neuquant.MaxSampleFactor)

	var pixels []byte
	for _, f := range frames {
		pixels = append(pixels, neuquant.Pixels(f)...)
	}
	net := neuquant.New(pixels, sampleFac)

	return net.Palette(), net, nil
}
