/*
Copyright © 2017 the Fatiando authors.
This file is part of Fatiando.

Fatiando is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Fatiando is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Fatiando.  If not, see <http://www.gnu.org/licenses/>.
*/

package crust2

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

const tolerance = 1.e-8

// The testdata archive is a synthetic model with the real file
// layouts: cell (i, j) has type A0 when i+j is even and B0 otherwise,
// and elevation 100*((i+j)%5) - 200. A0 has five layers with nonzero
// thickness totaling 31.5 km; B0 has none.

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func testElevation(i, j int) float64 {
	return 100*float64((i+j)%5) - 200
}

func TestTopography(t *testing.T) {
	a, err := OpenArchive(testArchive)
	if err != nil {
		t.Fatal(err)
	}
	topo, err := a.Topography()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(topo.Shape, []int{90, 180}) {
		t.Fatalf("expected shape [90 180], got %v", topo.Shape)
	}
	for _, cell := range [][2]int{{0, 0}, {0, 4}, {45, 90}, {89, 179}} {
		i, j := cell[0], cell[1]
		if v, want := topo.Get(i, j), testElevation(i, j); v != want {
			t.Errorf("topography (%d, %d): expected %g, got %g", i, j, want, v)
		}
	}
	// Each row cycles through the same five elevations 36 times, so
	// everything sums to zero.
	if sum := floats.Sum(topo.Elements); sum != 0 {
		t.Errorf("expected the test elevations to sum to 0, got %g", sum)
	}
}

func TestReadTopographyErrors(t *testing.T) {
	goodRow := strings.TrimSpace(strings.Repeat("0 ", 181))
	shortRow := "89 100 200"
	badRow := "89 " + strings.TrimSpace(strings.Repeat("1 ", 179)) + " x"
	cases := []struct {
		name, input string
	}{
		{"empty", ""},
		{"short row", "header\n" + shortRow + "\n"},
		{"bad value", "header\n" + badRow + "\n"},
		{"too few rows", "header\n" + goodRow + "\n"},
	}
	for _, c := range cases {
		_, err := ReadTopography(strings.NewReader(c.input))
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		if _, ok := err.(*ParseError); !ok {
			t.Errorf("%s: expected *ParseError, got %T: %v", c.name, err, err)
		}
	}
}

func TestTypeCodes(t *testing.T) {
	a, err := OpenArchive(testArchive)
	if err != nil {
		t.Fatal(err)
	}
	types, err := a.TypeCodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 90 {
		t.Fatalf("expected 90 rows, got %d", len(types))
	}
	for i, row := range types {
		if len(row) != 180 {
			t.Fatalf("row %d: expected 180 codes, got %d", i, len(row))
		}
		for j, code := range row {
			want := "A0"
			if (i+j)%2 != 0 {
				want = "B0"
			}
			if code != want {
				t.Fatalf("type code (%d, %d): expected %s, got %s", i, j, want, code)
			}
		}
	}
}

func TestCodec(t *testing.T) {
	a, err := OpenArchive(testArchive)
	if err != nil {
		t.Fatal(err)
	}
	codec, err := a.Codec()
	if err != nil {
		t.Fatal(err)
	}
	if len(codec) != 2 {
		t.Fatalf("expected 2 codec entries, got %d", len(codec))
	}
	a0, ok := codec["A0"]
	if !ok {
		t.Fatal("expected a codec entry for A0")
	}
	// The legend stores km/s, g/cm³, and km; the codec must hold SI
	// units, with the eighth (mantle) column dropped.
	for _, c := range []struct {
		name      string
		got, want []float64
	}{
		{"Vp", a0.Vp, []float64{2500, 3600, 5000, 6000, 6600, 7100, 8000}},
		{"Vs", a0.Vs, []float64{1200, 1800, 2500, 3400, 3700, 3900, 4500}},
		{"density", a0.Density, []float64{920, 1020, 2300, 2600, 2700, 2900, 3050}},
		{"thickness", a0.Thickness, []float64{1000, 0, 500, 0, 15000, 10000, 5000}},
	} {
		if len(c.got) != NumLayers {
			t.Fatalf("A0 %s: expected %d values, got %d", c.name, NumLayers, len(c.got))
		}
		for layer := range c.got {
			if different(c.got[layer], c.want[layer], tolerance) {
				t.Errorf("A0 %s layer %d: expected %g, got %g", c.name, layer, c.want[layer], c.got[layer])
			}
		}
	}
	b0, ok := codec["B0"]
	if !ok {
		t.Fatal("expected a codec entry for B0")
	}
	for layer, thickness := range b0.Thickness {
		if thickness != 0 {
			t.Errorf("B0 layer %d: expected zero thickness, got %g", layer, thickness)
		}
	}
}

const keyHeader = "line one\nline two\nline three\nline four\nline five\n"

func TestReadCodecErrors(t *testing.T) {
	cases := []struct {
		name, input string
	}{
		{"truncated header", "line one\nline two\n"},
		{"mid-group end", keyHeader + "A0 some type\n2.5 3.6 5.0 6.0 6.6 7.1 8.0 8.2\n"},
		{"short code line", keyHeader + "A\n"},
		{"short velocity line", keyHeader + "A0 some type\n2.5 3.6 5.0 6.0 6.6 7.1 8.0\n"},
		{"bad value", keyHeader + "A0 some type\n2.5 3.6 x 6.0 6.6 7.1 8.0 8.2\n"},
	}
	for _, c := range cases {
		_, err := ReadCodec(strings.NewReader(c.input))
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		if _, ok := err.(*ParseError); !ok {
			t.Errorf("%s: expected *ParseError, got %T: %v", c.name, err, err)
		}
	}
}

func TestReadCodecSevenThicknessValues(t *testing.T) {
	// The thickness line only needs the seven crustal layers; the
	// mantle marker is optional and never parsed.
	input := keyHeader + `A0 some type
2.5 3.6 5.0 6.0 6.6 7.1 8.0 8.2
1.2 1.8 2.5 3.4 3.7 3.9 4.5 4.7
0.92 1.02 2.3 2.6 2.7 2.9 3.05 3.3
1.0 0. 0.5 0. 15. 10. 5.
`
	codec, err := ReadCodec(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if different(codec["A0"].Thickness[6], 5000, tolerance) {
		t.Errorf("expected thickness 5000, got %g", codec["A0"].Thickness[6])
	}
}

var testStack = LayerStack{
	Vp:        []float64{2500, 0, 0, 0, 0, 6600, 8000},
	Vs:        []float64{1200, 0, 0, 0, 0, 3800, 4500},
	Density:   []float64{920, 0, 0, 0, 0, 2900, 3050},
	Thickness: []float64{500, 0, 0, 0, 0, 2000, 10000},
}

func TestAssemble(t *testing.T) {
	topo := sparse.ZerosDense(2, 2)
	topo.Set(-100, 0, 0)
	topo.Set(50, 0, 1)
	topo.Set(0, 1, 0)
	topo.Set(200, 1, 1)
	types := [][]string{{"XX", "XX"}, {"XX", "XX"}}
	codec := Codec{"XX": testStack}
	model, err := Assemble(topo, types, codec)
	if err != nil {
		t.Fatal(err)
	}
	// Four cells with three nonzero layers each, in row-major order.
	if len(model) != 12 {
		t.Fatalf("expected 12 tesseroids, got %d", len(model))
	}
	first := model[0]
	if first.W != -180 || first.E != -178 || first.S != 88 || first.N != 90 {
		t.Errorf("first tesseroid bounds: got %v", first)
	}
	if first.Top != -100 || first.Bottom != -600 {
		t.Errorf("first tesseroid: expected top -100 and bottom -600, got %g and %g",
			first.Top, first.Bottom)
	}
	if first.Props["density"] != 920 || first.Props["vp"] != 2500 || first.Props["vs"] != 1200 {
		t.Errorf("first tesseroid properties: got %v", first.Props)
	}
	// Layers stack: each bottom is the next layer's top.
	if model[0].Bottom != model[1].Top || model[1].Bottom != model[2].Top {
		t.Error("layers of a cell should stack without gaps")
	}
	if model[2].Bottom != -100-12500 {
		t.Errorf("expected the deepest layer to bottom out at %g, got %g", -100-12500.0, model[2].Bottom)
	}
	// Second cell is one step east; third cell one step south.
	if model[3].W != -178 || model[3].N != 90 || model[3].Top != 50 {
		t.Errorf("second cell: got %v", model[3])
	}
	if model[6].W != -180 || model[6].N != 88 || model[6].Top != 0 {
		t.Errorf("third cell: got %v", model[6])
	}
}

func TestAssembleLookupError(t *testing.T) {
	topo := sparse.ZerosDense(1, 2)
	types := [][]string{{"XX", "YY"}}
	model, err := Assemble(topo, types, Codec{"XX": testStack})
	if err == nil {
		t.Fatal("expected an error for an unknown type code")
	}
	lerr, ok := err.(*LookupError)
	if !ok {
		t.Fatalf("expected *LookupError, got %T: %v", err, err)
	}
	if lerr.Code != "YY" || lerr.Row != 0 || lerr.Col != 1 {
		t.Errorf("expected code YY at (0, 1), got %q at (%d, %d)", lerr.Code, lerr.Row, lerr.Col)
	}
	if model != nil {
		t.Error("expected no partial model on error")
	}
}

func TestAssembleShapeMismatch(t *testing.T) {
	topo := sparse.ZerosDense(2, 2)
	types := [][]string{{"XX", "XX"}}
	if _, err := Assemble(topo, types, Codec{"XX": testStack}); err == nil {
		t.Fatal("expected an error for mismatched grid shapes")
	}
	vector := sparse.ZerosDense(4)
	if _, err := Assemble(vector, types, Codec{"XX": testStack}); err == nil {
		t.Fatal("expected an error for a non-matrix topography")
	}
	wide := sparse.ZerosDense(1, 181)
	if _, err := Assemble(wide, [][]string{make([]string, 181)}, Codec{}); err == nil {
		t.Fatal("expected an error for a grid wider than the model")
	}
}

func TestCellNegativeThickness(t *testing.T) {
	stack := testStack
	stack.Thickness = []float64{-500, 0, 0, 0, 0, 0, 300}
	cell, err := cellTesseroids(0, 0, -180, 90, 40, "NN", Codec{"NN": stack})
	if err != nil {
		t.Fatal(err)
	}
	// Layers without positive thickness are skipped and do not move
	// the running top down.
	if len(cell) != 1 {
		t.Fatalf("expected 1 tesseroid, got %d", len(cell))
	}
	if cell[0].Top != 40 || cell[0].Bottom != -260 {
		t.Errorf("expected top 40 and bottom -260, got %g and %g", cell[0].Top, cell[0].Bottom)
	}
}

func TestTesseroids(t *testing.T) {
	model, err := Tesseroids(testArchive)
	if err != nil {
		t.Fatal(err)
	}
	// Half of the 90×180 cells are A0 with five nonzero layers, the
	// other half are B0 with none.
	if len(model) != 8100*5 {
		t.Fatalf("expected %d tesseroids, got %d", 8100*5, len(model))
	}
	first := model[0]
	if first.W != -180 || first.E != -178 || first.S != 88 || first.N != 90 {
		t.Errorf("first tesseroid bounds: got %v", first)
	}
	if first.Top != -200 || different(first.Bottom, -1200, tolerance) {
		t.Errorf("first tesseroid: expected top -200 and bottom -1200, got %g and %g",
			first.Top, first.Bottom)
	}
	if different(first.Props["density"], 920, tolerance) ||
		different(first.Props["vp"], 2500, tolerance) ||
		different(first.Props["vs"], 1200, tolerance) {
		t.Errorf("first tesseroid properties: got %v", first.Props)
	}
	// The five layers of the first cell stack from the elevation down
	// through 31.5 km of crust.
	for k := 0; k < 4; k++ {
		if model[k].Bottom != model[k+1].Top {
			t.Fatalf("layer %d bottom %g does not match layer %d top %g",
				k, model[k].Bottom, k+1, model[k+1].Top)
		}
	}
	if different(model[4].Bottom, -200-31500, tolerance) {
		t.Errorf("expected the first cell to bottom out at %g, got %g", -200-31500.0, model[4].Bottom)
	}
	for k, ts := range model {
		if ts.Top <= ts.Bottom {
			t.Fatalf("tesseroid %d: top %g is not above bottom %g", k, ts.Top, ts.Bottom)
		}
		if ts.E-ts.W != CellSize || ts.N-ts.S != CellSize {
			t.Fatalf("tesseroid %d: expected a %d by %d degree cell, got %v", k, CellSize, CellSize, ts)
		}
	}
}
