// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package mandelbrot implements the escape-time compute kernel shared by
// every worker: given view parameters and pixel bounds, it produces packed
// RGB bytes for a horizontal strip of the Mandelbrot set.
package mandelbrot

import (
	"math"

	"github.com/fractalgrid/mandelgrid/palette"
)

// escapeRadiusSq is 256^2, the squared escape radius used for smooth
// colouring.
const escapeRadiusSq = 65536.0

// PointResult is the outcome of iterating a single complex point.
type PointResult struct {
	// SmoothIter is the real-valued refinement of the escape-time count. It
	// equals MaxIterations when the point did not escape.
	SmoothIter float64
	// FinalX, FinalY hold the last orbit position, used for interior
	// colouring.
	FinalX, FinalY float64
	// InSet is true if the point never escaped within MaxIterations.
	InSet bool
}

// Point iterates z ← z² + c starting at z = 0 until |z|² exceeds the escape
// radius or maxIterations is reached, returning the smooth iteration count
// for continuous colouring.
func Point(cx, cy float64, maxIterations uint32) PointResult {
	var x, y, x2, y2 float64
	var iteration uint32

	for x2+y2 <= escapeRadiusSq && iteration < maxIterations {
		y = 2.0*x*y + cy
		x = x2 - y2 + cx
		x2 = x * x
		y2 = y * y
		iteration++
	}

	if iteration >= maxIterations {
		return PointResult{
			SmoothIter: float64(maxIterations),
			FinalX:     x,
			FinalY:     y,
			InSet:      true,
		}
	}

	logZn := math.Log(x2+y2) / 2.0
	nu := math.Log(logZn/math.Ln2) / math.Ln2

	return PointResult{
		SmoothIter: float64(iteration) + 1.0 - nu,
		FinalX:     x,
		FinalY:     y,
		InSet:      false,
	}
}

// RenderStrip computes a horizontal band [yStart, yEnd) of a totalHeight-tall
// frame of the given width, returning tightly packed R,G,B,... bytes in
// row-major order. colourInterior selects whether points that never escape
// are coloured from the palette (by final orbit position) or rendered as
// flat black, the spec-mandated default.
func RenderStrip(width, yStart, yEnd, totalHeight uint32, centerX, centerY, zoom float64, maxIterations uint32, table []palette.RGB, colourInterior bool) []byte {
	height := yEnd - yStart
	pixels := make([]byte, 0, int(width)*int(height)*3)

	aspect := float64(totalHeight) / float64(width)
	viewWidth := 4.0 / zoom
	viewHeight := viewWidth * aspect

	xMin := centerX - viewWidth/2.0
	yMin := centerY - viewHeight/2.0

	xScale := viewWidth / float64(width)
	yScale := viewHeight / float64(totalHeight)

	for py := yStart; py < yEnd; py++ {
		cy := yMin + float64(py)*yScale
		for px := uint32(0); px < width; px++ {
			cx := xMin + float64(px)*xScale

			result := Point(cx, cy, maxIterations)

			var c palette.RGB
			if result.InSet {
				if colourInterior {
					c = palette.ColourInterior(result.FinalX, result.FinalY, table)
				}
				// else c stays the zero value: flat black.
			} else {
				c = smoothColour(result.SmoothIter, table)
			}

			pixels = append(pixels, c.R, c.G, c.B)
		}
	}

	return pixels
}

// smoothColour maps a smooth iteration count onto a palette entry by linear
// interpolation between the two adjacent table entries.
func smoothColour(smoothIter float64, table []palette.RGB) palette.RGB {
	n := len(table)
	scaled := smoothIter * 0.1
	idx1 := int(math.Floor(scaled)) % n
	if idx1 < 0 {
		idx1 += n
	}
	idx2 := (idx1 + 1) % n
	frac := scaled - math.Floor(scaled)

	c1, c2 := table[idx1], table[idx2]
	return palette.RGB{
		R: lerp(c1.R, c2.R, frac),
		G: lerp(c1.G, c2.G, frac),
		B: lerp(c1.B, c2.B, frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	result := float64(a)*(1.0-t) + float64(b)*t
	if result < 0 {
		return 0
	}
	if result > 255 {
		return 255
	}
	return uint8(result)
}
