package neuquant

import (
	"math"

	"github.com/esimov/neugif/utils"
)

// learn runs the main training loop over the sampled pixels.
func (n *Network) learn() {
	lengthCount := len(n.pixels) / 3 * 3

	var step int
	switch {
	case lengthCount < minPictureBytes:
		n.sampleFac = 1
		step = 3
	case lengthCount%prime1 != 0:
		step = 3 * prime1
	case lengthCount%prime2 != 0:
		step = 3 * prime2
	case lengthCount%prime3 != 0:
		step = 3 * prime3
	default:
		step = 3 * prime4
	}

	alphaDec := 30 + (n.sampleFac-1)/3
	samplePixels := lengthCount / (3 * n.sampleFac)
	delta := samplePixels / nCycles
	if delta == 0 {
		delta = 1
	}

	alpha := initAlpha
	radius := initRadius
	rad := radius >> radiusBiasShift
	if rad <= 1 {
		rad = 0
	}
	n.updateRadPower(alpha, rad)

	pix := 0
	for i := 1; i <= samplePixels; i++ {
		r := float64(int(n.pixels[pix]) << netBiasShift)
		g := float64(int(n.pixels[pix+1]) << netBiasShift)
		b := float64(int(n.pixels[pix+2]) << netBiasShift)

		j := n.contest(r, g, b)
		n.alterSingle(alpha, j, r, g, b)
		if rad != 0 {
			n.alterNeigh(rad, j, r, g, b)
		}

		pix += step
		if pix >= lengthCount {
			pix -= lengthCount
		}

		if i%delta == 0 {
			alpha -= alpha / alphaDec
			radius -= radius / radiusDec
			rad = radius >> radiusBiasShift
			if rad <= 1 {
				rad = 0
			}
			n.updateRadPower(alpha, rad)
		}
	}
}

// updateRadPower recomputes the neighborhood falloff for the current radius.
func (n *Network) updateRadPower(alpha, rad int) {
	for i := 0; i < rad; i++ {
		n.radPower[i] = alpha * (((rad*rad - i*i) * radBias) / (rad * rad))
	}
}

// contest searches for the biased closest neuron and updates the frequency
// and bias of every neuron. It returns the index of the winner.
func (n *Network) contest(r, g, b float64) int {
	bestd := math.MaxFloat64
	bestBiasd := bestd
	bestPos := -1
	bestBiasPos := bestPos

	for i := range n.network {
		p := &n.network[i]
		dist := math.Abs(p.r-r) + math.Abs(p.g-g) + math.Abs(p.b-b)
		if dist < bestd {
			bestd = dist
			bestPos = i
		}
		biasDist := dist - float64(n.bias[i]>>(intBiasShift-netBiasShift))
		if biasDist < bestBiasd {
			bestBiasd = biasDist
			bestBiasPos = i
		}
		betaFreq := n.freq[i] >> betaShift
		n.freq[i] -= betaFreq
		n.bias[i] += betaFreq << gammaShift
	}
	n.freq[bestPos] += beta
	n.bias[bestPos] -= betaGamma

	return bestBiasPos
}

// alterSingle moves neuron i toward the color by alpha/initAlpha.
func (n *Network) alterSingle(alpha, i int, r, g, b float64) {
	p := &n.network[i]
	a := float64(alpha)
	p.r -= a * (p.r - r) / initAlpha
	p.g -= a * (p.g - g) / initAlpha
	p.b -= a * (p.b - b) / initAlpha
}

// alterNeigh moves the neighbors of neuron i within rad toward the color,
// weighted by the precomputed radial falloff.
func (n *Network) alterNeigh(rad, i int, r, g, b float64) {
	lo := i - rad
	if lo < -1 {
		lo = -1
	}
	hi := i + rad
	if hi > netSize {
		hi = netSize
	}

	j, k, m := i+1, i-1, 1
	for j < hi || k > lo {
		a := float64(n.radPower[m])
		m++
		if j < hi {
			p := &n.network[j]
			p.r -= a * (p.r - r) / alphaRadBias
			p.g -= a * (p.g - g) / alphaRadBias
			p.b -= a * (p.b - b) / alphaRadBias
			j++
		}
		if k > lo {
			p := &n.network[k]
			p.r -= a * (p.r - r) / alphaRadBias
			p.g -= a * (p.g - g) / alphaRadBias
			p.b -= a * (p.b - b) / alphaRadBias
			k--
		}
	}
}

// inxBuild sorts the network by green and fills netIndex so that a color
// search can start from the neurons with the closest green value.
func (n *Network) inxBuild() {
	previousCol := 0
	startPos := 0

	for i := 0; i < netSize; i++ {
		smallPos := i
		smallVal := int(n.network[i].g)
		for j := i + 1; j < netSize; j++ {
			if v := int(n.network[j].g); v < smallVal {
				smallPos = j
				smallVal = v
			}
		}
		if i != smallPos {
			n.network[i], n.network[smallPos] = n.network[smallPos], n.network[i]
		}
		if smallVal != previousCol {
			n.netIndex[previousCol] = (startPos + i) >> 1
			for j := previousCol + 1; j < smallVal; j++ {
				n.netIndex[j] = i
			}
			previousCol = smallVal
			startPos = i
		}
	}
	n.netIndex[previousCol] = (startPos + maxNetPos) >> 1
	for j := previousCol + 1; j < 256; j++ {
		n.netIndex[j] = maxNetPos
	}
}

// Lookup returns the position in the sorted palette closest to the given color.
// The network is trained first if BuildColorMap has not been called yet.
func (n *Network) Lookup(r, g, b uint8) int {
	if !n.trained {
		n.BuildColorMap()
	}
	return n.inxSearch(int(r), int(g), int(b))
}

// inxSearch walks outward from netIndex[g] in both directions and stops
// each direction once the green distance alone exceeds the best match.
func (n *Network) inxSearch(r, g, b int) int {
	bestd := 1000 // biggest possible distance is 256*3
	best := -1
	i := n.netIndex[g]
	j := i - 1

	for i < netSize || j >= 0 {
		if i < netSize {
			p := n.network[i]
			dist := int(p.g) - g
			if dist >= bestd {
				i = netSize
			} else {
				if dist < 0 {
					dist = -dist
				}
				if dist += utils.Abs(int(p.r) - r); dist < bestd {
					if dist += utils.Abs(int(p.b) - b); dist < bestd {
						bestd = dist
						best = i
					}
				}
				i++
			}
		}
		if j >= 0 {
			p := n.network[j]
			dist := g - int(p.g)
			if dist >= bestd {
				j = -1
			} else {
				if dist < 0 {
					dist = -dist
				}
				if dist += utils.Abs(int(p.r) - r); dist < bestd {
					if dist += utils.Abs(int(p.b) - b); dist < bestd {
						bestd = dist
						best = j
					}
				}
				j--
			}
		}
	}

	return best
}
