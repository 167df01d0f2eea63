/*
Package neugif is a GIF89a encoder backed by a NeuQuant neural network color quantizer,
which reduces true color images to an optimized palette of up to 256 colors.

The Encoder writes the logical screen, the global color table, the optional looping
extension and LZW compressed frames into a growable byte buffer. The Processor decodes
jpeg, png, bmp, tiff, webp and gif sources, trains the quantizer over every frame and
encodes the result.

The package provides a command line interface. To check the supported flags type:

	$ neugif --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/esimov/neugif"
	)

	func main() {
		p := &neugif.Processor{
			NewWidth:     320,
			SampleFactor: 10,
		}

		if err := p.Process(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding the gif: %s", err.Error())
		}
	}
*/
package neugif
