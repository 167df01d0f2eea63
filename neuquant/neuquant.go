// Package neuquant implements the NeuQuant neural-net color quantization algorithm.
//
// A Kohonen style self-organizing network of 256 neurons is trained on a sampled
// stream of RGB pixels. Every training step moves the winning neuron, and its
// neighbors within a shrinking radius, toward the sampled color. A frequency/bias
// conscience keeps a few neurons from winning every contest, so the final
// network spreads over the colors that actually occur in the image.
//
// The algorithm is deterministic: identical inputs produce identical palettes.
//
// Reference: Anthony Dekker, "Kohonen neural networks for optimal colour
// quantization", Network: Computation in Neural Systems, 1994.
package neuquant

const (
	netSize   = 256 // number of colors used
	maxNetPos = netSize - 1
	nCycles   = 100 // number of learning cycles

	// frequency and bias
	netBiasShift = 4  // bias for color values
	intBiasShift = 16 // bias for fractions
	intBias      = 1 << intBiasShift
	gammaShift   = 10
	betaShift    = 10
	beta         = intBias >> betaShift // 1/1024
	betaGamma    = intBias << (gammaShift - betaShift)

	// decreasing radius factor
	initRad         = netSize >> 3 // radius starts at 32.0
	radiusBiasShift = 6            // biased by 6 bits
	radiusBias      = 1 << radiusBiasShift
	initRadius      = initRad * radiusBias
	radiusDec       = 30 // factor of 1/30 each cycle

	// decreasing alpha factor
	alphaBiasShift = 10 // alpha starts at 1.0
	initAlpha      = 1 << alphaBiasShift

	// radBias and alphaRadBias are used for the radPower calculation
	radBiasShift   = 8
	radBias        = 1 << radBiasShift
	alphaRadBShift = alphaBiasShift + radBiasShift
	alphaRadBias   = 1 << alphaRadBShift

	// Four primes near 500. No image is assumed to have a length divisible by all four.
	prime1          = 499
	prime2          = 491
	prime3          = 487
	prime4          = 503
	minPictureBytes = 3 * prime4

	// MaxSampleFactor is the coarsest sampling accepted by New.
	MaxSampleFactor = 30
)

// neuron holds the color components of a single network node.
// During training the components are biased by netBiasShift bits.
type neuron struct {
	r, g, b float64
	index   int // position before sorting
}

// Network is a NeuQuant color quantizer built over a fixed pixel sample.
// It is trained once, on the first call to BuildColorMap, and frozen afterwards.
type Network struct {
	pixels    []byte
	sampleFac int

	network  [netSize]neuron
	netIndex [256]int
	bias     [netSize]int
	freq     [netSize]int
	radPower [initRad]int

	colorMap []byte
	index    []int
	trained  bool
}

// New creates a network over pixels, a flat sequence of interleaved RGB triplets.
// sampleFac selects every Nth pixel for training: 1 uses all of them, 30 is the fastest.
// Out of range values are clamped.
func New(pixels []byte, sampleFac int) *Network {
	if sampleFac < 1 {
		sampleFac = 1
	}
	if sampleFac > MaxSampleFactor {
		sampleFac = MaxSampleFactor
	}
	n := &Network{
		pixels:    pixels,
		sampleFac: sampleFac,
	}
	n.init()

	return n
}

// init lays the neurons out along the gray diagonal.
func (n *Network) init() {
	for i := range n.network {
		v := float64((i << (netBiasShift + 8)) / netSize)
		n.network[i] = neuron{r: v, g: v, b: v}
		n.freq[i] = intBias / netSize
		n.bias[i] = 0
	}
}

// BuildColorMap trains the network and returns the palette as 256 consecutive
// r, g, b byte triplets sorted by ascending green.
// The training runs only once; subsequent calls return a copy of the same palette.
func (n *Network) BuildColorMap() []byte {
	if !n.trained {
		n.learn()
		n.unbiasNet()
		n.inxBuild()
		n.buildMap()
		n.trained = true
	}
	out := make([]byte, len(n.colorMap))
	copy(out, n.colorMap)

	return out
}

// Index maps every neuron's original position to its position in the sorted palette.
// It returns nil before BuildColorMap.
func (n *Network) Index() []int {
	if !n.trained {
		return nil
	}
	out := make([]int, len(n.index))
	copy(out, n.index)

	return out
}

// Palette returns the trained color map as packed 0xRRGGBB values.
func (n *Network) Palette() []uint32 {
	cmap := n.BuildColorMap()
	pal := make([]uint32, netSize)
	for i := range pal {
		pal[i] = uint32(cmap[i*3])<<16 | uint32(cmap[i*3+1])<<8 | uint32(cmap[i*3+2])
	}

	return pal
}

// unbiasNet removes the training bias and records the original neuron positions.
func (n *Network) unbiasNet() {
	for i := range n.network {
		p := &n.network[i]
		p.r = float64(int(p.r) >> netBiasShift)
		p.g = float64(int(p.g) >> netBiasShift)
		p.b = float64(int(p.b) >> netBiasShift)
		p.index = i
	}
}

// buildMap snapshots the sorted network into the byte color map.
func (n *Network) buildMap() {
	n.colorMap = make([]byte, netSize*3)
	n.index = make([]int, netSize)
	for i, p := range n.network {
		n.colorMap[i*3] = clampByte(p.r)
		n.colorMap[i*3+1] = clampByte(p.g)
		n.colorMap[i*3+2] = clampByte(p.b)
		n.index[p.index] = i
	}
}

func clampByte(v float64) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}
