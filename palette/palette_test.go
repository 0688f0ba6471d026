// SPDX-FileCopyrightText: © 2023 Siemens AG
// SPDX-License-Identifier: MIT

package palette

import "testing"

func TestValid(t *testing.T) {
	for _, v := range All() {
		if !v.Valid() {
			t.Errorf("%s: expected Valid() to be true", v)
		}
	}
	if Variant("not-a-variant").Valid() {
		t.Error("unknown variant reported as valid")
	}
}

func TestGenerateLength(t *testing.T) {
	for _, v := range All() {
		table := v.Generate(256)
		if len(table) != 256 {
			t.Errorf("%s: got %d entries, want 256", v, len(table))
		}
	}
}

func TestGenerateUnknownFallsBackToFire(t *testing.T) {
	got := Variant("bogus").Generate(16)
	want := Fire.Generate(16)
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v (fire fallback)", i, got[i], want[i])
		}
	}
}

func TestDefaultIsFire(t *testing.T) {
	if Default != Fire {
		t.Errorf("Default = %s, want %s", Default, Fire)
	}
}

func TestColourInteriorStaysInTable(t *testing.T) {
	table := Fire.Generate(64)
	for _, pt := range [][2]float64{{0, 0}, {1.5, -1.5}, {-2, 2}, {0.1, -0.1}} {
		c := ColourInterior(pt[0], pt[1], table)
		found := false
		for _, entry := range table {
			if entry == c {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ColourInterior(%v, %v) = %+v not found in table", pt[0], pt[1], c)
		}
	}
}
