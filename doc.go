/*
Package geometrize is a grayscale image filter which recursively cuts the image in two
along the horizontal or vertical line separating best its intensities, then reduces
the contrast of each part toward its own mean. A few levels of recursion turn the
picture into a mosaic of flat rectangular blocks.

The package provides a command line interface, supporting various flags for the depth,
the contrast factor and the cut policy. To check the supported commands type:

	$ geometrize --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/geometrize"
	)

	func main() {
		p := geometrize.NewProcessor()
		p.Depth = 4

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error processing image: %s", err.Error())
		}
	}

Working on a buffer directly is also possible:

	buf := geometrize.ToBuffer(img)
	g := geometrize.NewGeometrizer(4, 0.5)
	if err := g.Geometrize(buf); err != nil {
		// handle error
	}
*/
package geometrize
