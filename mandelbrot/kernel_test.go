// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

package mandelbrot

import (
	"testing"

	"github.com/fractalgrid/mandelgrid/palette"
)

func TestPointOriginStaysInSet(t *testing.T) {
	result := Point(0, 0, 100)
	if !result.InSet {
		t.Fatal("origin should never escape")
	}
	if result.SmoothIter != 100 {
		t.Errorf("SmoothIter = %v, want 100", result.SmoothIter)
	}
}

func TestPointFarPointEscapesQuickly(t *testing.T) {
	result := Point(2, 2, 100)
	if result.InSet {
		t.Fatal("(2, 2) should escape")
	}
	if result.SmoothIter >= 10 {
		t.Errorf("SmoothIter = %v, want < 10", result.SmoothIter)
	}
}

func TestRenderStripLength(t *testing.T) {
	table := palette.Default.Generate(256)
	pixels := RenderStrip(64, 0, 32, 32, -0.5, 0, 1, 64, table, false)
	want := 64 * 32 * 3
	if len(pixels) != want {
		t.Errorf("len(pixels) = %d, want %d", len(pixels), want)
	}
}

// interiorZoom is large enough that a single-pixel strip centered at the
// origin, which samples the top-left corner of its view, samples a point a
// hair off (0, 0), landing deep inside the main cardioid instead of escaping.
const interiorZoom = 1e10

func TestRenderStripInteriorDefaultsToBlack(t *testing.T) {
	// Sanity check: confirm the pixel RenderStrip actually samples for this
	// view is genuinely in the set before asserting on its colour.
	sampled := -2.0 / interiorZoom
	if !Point(sampled, sampled, 64).InSet {
		t.Fatalf("sampled point (%v, %v) unexpectedly escapes; test no longer covers the in-set branch", sampled, sampled)
	}

	table := palette.Default.Generate(256)
	pixels := RenderStrip(1, 0, 1, 1, 0, 0, interiorZoom, 64, table, false)
	for i, b := range pixels {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0 (flat black for non-escaping point)", i, b)
		}
	}
}

func TestRenderStripInteriorColouringOptIn(t *testing.T) {
	sampled := -2.0 / interiorZoom
	if !Point(sampled, sampled, 64).InSet {
		t.Fatalf("sampled point (%v, %v) unexpectedly escapes; test no longer covers the in-set branch", sampled, sampled)
	}

	table := palette.Fire.Generate(256)
	pixels := RenderStrip(1, 0, 1, 1, 0, 0, interiorZoom, 64, table, true)
	allZero := true
	for _, b := range pixels {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Fatal("expected non-black interior colour when colourInterior is true")
	}
}

func TestRenderStripPartialBandMatchesFullFrameRows(t *testing.T) {
	table := palette.Default.Generate(256)
	full := RenderStrip(16, 0, 8, 8, -0.5, 0, 1, 50, table, false)
	top := RenderStrip(16, 0, 4, 8, -0.5, 0, 1, 50, table, false)
	bottom := RenderStrip(16, 4, 8, 8, -0.5, 0, 1, 50, table, false)

	rowBytes := 16 * 3
	for row := 0; row < 4; row++ {
		off := row * rowBytes
		for i := 0; i < rowBytes; i++ {
			if full[off+i] != top[off+i] {
				t.Fatalf("row %d byte %d: full=%d top=%d", row, i, full[off+i], top[off+i])
			}
		}
	}
	for row := 4; row < 8; row++ {
		off := row * rowBytes
		boff := (row - 4) * rowBytes
		for i := 0; i < rowBytes; i++ {
			if full[off+i] != bottom[boff+i] {
				t.Fatalf("row %d byte %d: full=%d bottom=%d", row, i, full[off+i], bottom[boff+i])
			}
		}
	}
}
