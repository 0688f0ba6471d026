// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

// Package palette generates indexed RGB colour tables used to map Mandelbrot
// escape-time results onto pixels.
package palette

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a single colour entry of a palette table.
type RGB struct {
	R, G, B uint8
}

// Variant identifies one of the predefined palette generators. It is a sum
// type over a fixed set of named variants rather than an open interface:
// adding a new look means adding a case here, not a new implementation of
// some exported interface.
type Variant string

const (
	Fire       Variant = "fire"
	Ocean      Variant = "ocean"
	Electric   Variant = "electric"
	Monochrome Variant = "monochrome"
	Rainbow    Variant = "rainbow"
	Twilight   Variant = "twilight"
	Forest     Variant = "forest"
	Lava       Variant = "lava"
)

// Default is used whenever a request omits a palette selector.
const Default = Fire

// All lists every defined variant.
func All() []Variant {
	return []Variant{Fire, Ocean, Electric, Monochrome, Rainbow, Twilight, Forest, Lava}
}

// Valid reports whether v is one of the predefined variants.
func (v Variant) Valid() bool {
	switch v {
	case Fire, Ocean, Electric, Monochrome, Rainbow, Twilight, Forest, Lava:
		return true
	default:
		return false
	}
}

// Generate produces a table of n RGB entries for the variant v. Unknown
// variants fall back to Default.
func (v Variant) Generate(n int) []RGB {
	switch v {
	case Ocean:
		return generateOcean(n)
	case Electric:
		return generateElectric(n)
	case Monochrome:
		return generateMonochrome(n)
	case Rainbow:
		return generateRainbow(n)
	case Twilight:
		return generateTwilight(n)
	case Forest:
		return generateForest(n)
	case Lava:
		return generateLava(n)
	case Fire:
		return generateFire(n)
	default:
		return generateFire(n)
	}
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// generateFire produces a classic fire palette - reds, oranges, yellows.
func generateFire(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		r := (0.5 + 0.5*math.Sin(3.0+t*6.28318)) * 255.0
		g := (0.5 + 0.5*math.Sin(3.0+t*6.28318+2.094)) * 255.0
		b := (0.5 + 0.5*math.Sin(3.0+t*6.28318+4.188)) * 255.0
		table[i] = RGB{clampByte(r), clampByte(g), clampByte(b)}
	}
	return table
}

// generateOcean produces a deep sea palette - blues and cyans.
func generateOcean(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		r := (0.1 + 0.2*math.Sin(t*6.28318+4.0)) * 255.0
		g := (0.3 + 0.4*math.Sin(t*6.28318+2.0)) * 255.0
		b := (0.5 + 0.5*math.Sin(t*6.28318)) * 255.0
		table[i] = RGB{clampByte(r), clampByte(g), clampByte(b)}
	}
	return table
}

// generateElectric produces a high contrast palette cycling through hard
// primary/secondary segments.
func generateElectric(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		phase := t * 6.0
		segment := int(math.Floor(phase)) % 6
		frac := phase - math.Floor(phase)

		var r, g, b float64
		switch segment {
		case 0:
			r, g, b = 255.0, frac*255.0, 0.0
		case 1:
			r, g, b = (1.0-frac)*255.0, 255.0, 0.0
		case 2:
			r, g, b = 0.0, 255.0, frac*255.0
		case 3:
			r, g, b = 0.0, (1.0-frac)*255.0, 255.0
		case 4:
			r, g, b = frac*255.0, 0.0, 255.0
		default:
			r, g, b = 255.0, 0.0, (1.0-frac)*255.0
		}
		table[i] = RGB{clampByte(r), clampByte(g), clampByte(b)}
	}
	return table
}

// generateMonochrome produces a grayscale palette cycling smoothly.
func generateMonochrome(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		v := clampByte((math.Sin(t*math.Pi*4.0)*0.5 + 0.5) * 255.0)
		table[i] = RGB{v, v, v}
	}
	return table
}

// generateRainbow produces a smooth rainbow palette using HSV.
func generateRainbow(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		hue := (float64(i) / float64(n)) * 360.0
		table[i] = hsvToRGB(hue, 1.0, 1.0)
	}
	return table
}

// generateTwilight produces purples, pinks and dark blues.
func generateTwilight(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		r := (0.4 + 0.4*math.Sin(t*6.28318*2.0)) * 255.0
		g := (0.1 + 0.15*math.Sin(t*6.28318*3.0+1.0)) * 255.0
		b := (0.5 + 0.5*math.Sin(t*6.28318+0.5)) * 255.0
		table[i] = RGB{clampByte(r), clampByte(g), clampByte(b)}
	}
	return table
}

// generateForest produces greens and browns.
func generateForest(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		r := (0.3 + 0.25*math.Sin(t*6.28318*2.0+2.0)) * 255.0
		g := (0.4 + 0.4*math.Sin(t*6.28318)) * 255.0
		b := (0.15 + 0.15*math.Sin(t*6.28318*1.5+1.0)) * 255.0
		table[i] = RGB{clampByte(r), clampByte(g), clampByte(b)}
	}
	return table
}

// generateLava produces deep reds, oranges and black bands.
func generateLava(n int) []RGB {
	table := make([]RGB, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		intensity := math.Pow(math.Sin(t*6.28318*3.0), 2)
		r := intensity * 255.0
		g := math.Pow(intensity*0.5, 1.5) * 255.0
		b := math.Pow(intensity*0.2, 2.0) * 255.0
		table[i] = RGB{clampByte(r), clampByte(g), clampByte(b)}
	}
	return table
}

// hsvToRGB converts a hue/saturation/value triple (h in degrees) to RGB using
// go-colorful, the same HSV conversion the pack's own Mandelbrot viewer uses
// for its iteration-count colour bar.
func hsvToRGB(h, s, v float64) RGB {
	r, g, b := colorful.Hsv(h, s, v).RGB255()
	return RGB{r, g, b}
}

// ColourInterior picks a colour for a point that did not escape, based on the
// angle and magnitude of its final orbit position. Used only when a caller
// opts into interior colouring; the default treatment of non-escaping points
// is flat black and does not consult the palette at all.
func ColourInterior(finalX, finalY float64, table []RGB) RGB {
	angle := math.Atan2(finalY, finalX)
	normalised := (angle + math.Pi) / (2.0 * math.Pi)

	mag := math.Min(math.Sqrt(finalX*finalX+finalY*finalY), 2.0) / 2.0
	combined := math.Mod(normalised+mag*0.5, 1.0)

	idx := int(combined*float64(len(table))) % len(table)
	if idx < 0 {
		idx += len(table)
	}
	return table[idx]
}
