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

// Package crust2 loads and converts the CRUST2.0 global crustal model
// (Bassin, Laske, and Masters, 2000; http://igppweb.ucsd.edu/~gabi/rem.html).
//
// The model is distributed as a .tar.gz archive holding a topography
// matrix, a matrix of two-character crustal type codes, and a legend
// translating each type code into the parameters of seven crustal
// layers: ice, water, soft sediments, hard sediments, and upper,
// middle, and lower crust. Tesseroids converts the whole model into
// mesher.Tesseroid volume elements with density, Vp, and Vs
// properties. The mantle below the Moho is not converted because
// there is no way to place a bottom on it.
package crust2

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/leouieda/fatiando/mesher"
	"gonum.org/v1/gonum/floats"
)

// CellSize is the angular size of the model cells in degrees.
const CellSize = 2

const (
	nLat = 180 / CellSize // data rows
	nLon = 360 / CellSize // data columns

	// NumLayers is the number of crustal layers in the model. The
	// legend carries an eighth set of parameters for the mantle
	// below the Moho, which is discarded.
	NumLayers = 7
)

// A LayerStack holds the layer parameters for one crustal type in SI
// units, ordered from the surface down. Each slice has NumLayers
// elements.
type LayerStack struct {
	Vp        []float64 // compressional wave velocity [m/s]
	Vs        []float64 // shear wave velocity [m/s]
	Density   []float64 // [kg/m³]
	Thickness []float64 // [m]
}

// A Codec translates two-character crustal type codes into layer
// parameters.
type Codec map[string]LayerStack

// The legend stores velocities in km/s, densities in g/cm³, and
// thicknesses in km.

func fromKmPerS(v float64) *unit.Unit { return unit.New(v*1000, unit.MeterPerSecond) }

func fromGPerCm3(v float64) *unit.Unit { return unit.New(v*1000, unit.KilogramPerMeter3) }

func fromKm(v float64) *unit.Unit { return unit.New(v*1000, unit.Meter) }

// ReadTopography reads the CNelevatio2.txt member: one header line,
// then 90 rows of a latitude label followed by 180 elevations in
// meters. The labels are dropped. The result has shape [90, 180].
func ReadTopography(r io.Reader) (*sparse.DenseArray, error) {
	topo := sparse.ZerosDense(nLat, nLon)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() { // header line
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, &ParseError{Member: TopoMember, Line: 1, Msg: "empty file"}
	}
	line := 1
	row := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if row >= nLat {
			return nil, &ParseError{Member: TopoMember, Line: line,
				Msg: fmt.Sprintf("more than %d data rows", nLat)}
		}
		if len(fields) != nLon+1 {
			return nil, &ParseError{Member: TopoMember, Line: line,
				Msg: fmt.Sprintf("expected a label and %d values, got %d fields", nLon, len(fields))}
		}
		for j, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ParseError{Member: TopoMember, Line: line,
					Msg: fmt.Sprintf("bad elevation %q", field)}
			}
			topo.Set(v, row, j)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if row != nLat {
		return nil, &ParseError{Member: TopoMember, Line: line,
			Msg: fmt.Sprintf("expected %d data rows, got %d", nLat, row)}
	}
	return topo, nil
}

// ReadTypeCodes reads the CNtype2.txt member: one header line, then
// 90 rows of a latitude label followed by 180 crustal type codes.
// The labels are dropped.
func ReadTypeCodes(r io.Reader) ([][]string, error) {
	types := make([][]string, 0, nLat)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() { // header line
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, &ParseError{Member: TypeMember, Line: 1, Msg: "empty file"}
	}
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(types) >= nLat {
			return nil, &ParseError{Member: TypeMember, Line: line,
				Msg: fmt.Sprintf("more than %d data rows", nLat)}
		}
		if len(fields) != nLon+1 {
			return nil, &ParseError{Member: TypeMember, Line: line,
				Msg: fmt.Sprintf("expected a label and %d codes, got %d fields", nLon, len(fields))}
		}
		types = append(types, fields[1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(types) != nLat {
		return nil, &ParseError{Member: TypeMember, Line: line,
			Msg: fmt.Sprintf("expected %d data rows, got %d", nLat, len(types))}
	}
	return types, nil
}

// States of the legend reader. Each crustal type takes five lines:
// the type code, then Vp, Vs, density, and thickness for all layers.
const (
	wantCode = iota
	wantVp
	wantVs
	wantDensity
	wantThickness
)

// ReadCodec reads the CNtype2_key.txt member. The first five lines
// are a header and blank lines are ignored throughout. Velocity,
// density, and thickness values are converted to SI units. The
// legend's eighth column describes the mantle below the Moho and is
// dropped; the thickness line marks it "inf", which is never parsed.
func ReadCodec(r io.Reader) (Codec, error) {
	scanner := bufio.NewScanner(r)
	line := 0
	for i := 0; i < 5; i++ { // header lines
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, &ParseError{Member: KeyMember, Line: line, Msg: "truncated header"}
		}
		line++
	}
	codec := make(Codec)
	state := wantCode
	var code string
	var stack LayerStack
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		switch state {
		case wantCode:
			if len(text) < 2 {
				return nil, &ParseError{Member: KeyMember, Line: line,
					Msg: fmt.Sprintf("type code line %q too short", text)}
			}
			code = text[:2]
			stack = LayerStack{}
			state = wantVp
		case wantVp:
			vals, err := layerValues(text, NumLayers+1, fromKmPerS, unit.MeterPerSecond)
			if err != nil {
				return nil, &ParseError{Member: KeyMember, Line: line,
					Msg: fmt.Sprintf("type %s Vp: %v", code, err)}
			}
			stack.Vp = vals
			state = wantVs
		case wantVs:
			vals, err := layerValues(text, NumLayers+1, fromKmPerS, unit.MeterPerSecond)
			if err != nil {
				return nil, &ParseError{Member: KeyMember, Line: line,
					Msg: fmt.Sprintf("type %s Vs: %v", code, err)}
			}
			stack.Vs = vals
			state = wantDensity
		case wantDensity:
			vals, err := layerValues(text, NumLayers+1, fromGPerCm3, unit.KilogramPerMeter3)
			if err != nil {
				return nil, &ParseError{Member: KeyMember, Line: line,
					Msg: fmt.Sprintf("type %s density: %v", code, err)}
			}
			stack.Density = vals
			state = wantThickness
		case wantThickness:
			vals, err := layerValues(text, NumLayers, fromKm, unit.Meter)
			if err != nil {
				return nil, &ParseError{Member: KeyMember, Line: line,
					Msg: fmt.Sprintf("type %s thickness: %v", code, err)}
			}
			stack.Thickness = vals
			codec[code] = stack
			state = wantCode
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != wantCode {
		return nil, &ParseError{Member: KeyMember, Line: line,
			Msg: fmt.Sprintf("legend ends in the middle of type %s", code)}
	}
	return codec, nil
}

// layerValues parses the first n fields of a legend line and converts
// them with conv, checking the result against dims. The first
// NumLayers values are returned.
func layerValues(text string, n int, conv func(float64) *unit.Unit, dims unit.Dimensions) ([]float64, error) {
	fields := strings.Fields(text)
	if len(fields) < n {
		return nil, fmt.Errorf("expected at least %d values, got %d", n, len(fields))
	}
	vals := make([]float64, NumLayers)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", fields[i])
		}
		u := conv(v)
		if err := u.Check(dims); err != nil {
			return nil, err
		}
		if i < NumLayers {
			vals[i] = u.Value()
		}
	}
	return vals, nil
}

// Topography extracts and reads the topography matrix.
func (a *Archive) Topography() (*sparse.DenseArray, error) {
	r, err := a.Extract(TopoMember)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadTopography(r)
}

// TypeCodes extracts and reads the crustal type code matrix.
func (a *Archive) TypeCodes() ([][]string, error) {
	r, err := a.Extract(TypeMember)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadTypeCodes(r)
}

// Codec extracts and reads the type code legend.
func (a *Archive) Codec() (Codec, error) {
	r, err := a.Extract(KeyMember)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadCodec(r)
}

// Tesseroids converts the model archive fname to tesseroids.
// Each tesseroid has its properties set to the density, Vp, and Vs
// of one crustal layer of one grid cell.
func Tesseroids(fname string) ([]*mesher.Tesseroid, error) {
	archive, err := OpenArchive(fname)
	if err != nil {
		return nil, err
	}
	topo, err := archive.Topography()
	if err != nil {
		return nil, err
	}
	codec, err := archive.Codec()
	if err != nil {
		return nil, err
	}
	types, err := archive.TypeCodes()
	if err != nil {
		return nil, err
	}
	return Assemble(topo, types, codec)
}

// Assemble converts a loaded model to tesseroids, walking the grid
// in row-major order. The topography and type grids must have the
// same shape. Grids smaller than the full model are accepted, which
// is useful for testing; cell (0, 0) is always the northwest corner
// (90N, 180W).
func Assemble(topo *sparse.DenseArray, types [][]string, codec Codec) ([]*mesher.Tesseroid, error) {
	if len(topo.Shape) != 2 {
		return nil, fmt.Errorf("crust2: topography must be a matrix, got %d dimensions", len(topo.Shape))
	}
	rows, cols := len(types), 0
	if rows > 0 {
		cols = len(types[0])
	}
	if topo.Shape[0] != rows || topo.Shape[1] != cols {
		return nil, fmt.Errorf("crust2: topography shape %v does not match type grid shape [%d %d]",
			topo.Shape, rows, cols)
	}
	if rows > nLat || cols > nLon {
		return nil, fmt.Errorf("crust2: grid shape [%d %d] is larger than the %d by %d model",
			rows, cols, nLat, nLon)
	}
	lons := make([]float64, nLon)
	floats.Span(lons, -180, 180-CellSize)
	lats := make([]float64, nLat)
	floats.Span(lats, 90, -90+CellSize) // latitude rows run north to south
	var model []*mesher.Tesseroid
	for i, row := range types {
		for j, code := range row {
			cell, err := cellTesseroids(i, j, lons[j], lats[i], topo.Get(i, j), code, codec)
			if err != nil {
				return nil, err
			}
			model = append(model, cell...)
		}
	}
	return model, nil
}

// cellTesseroids converts one grid cell to tesseroids, one per layer
// with nonzero thickness. The first layer tops out at the cell's
// elevation and each layer's bottom is the top of the next.
func cellTesseroids(i, j int, lon, lat, elev float64, code string, codec Codec) ([]*mesher.Tesseroid, error) {
	stack, ok := codec[code]
	if !ok {
		return nil, &LookupError{Code: code, Row: i, Col: j}
	}
	var cell []*mesher.Tesseroid
	top := elev
	for layer := 0; layer < NumLayers; layer++ {
		if stack.Thickness[layer] <= 0 {
			continue
		}
		bottom := top - stack.Thickness[layer]
		props := map[string]float64{
			"density": stack.Density[layer],
			"vp":      stack.Vp[layer],
			"vs":      stack.Vs[layer],
		}
		cell = append(cell, mesher.NewTesseroid(lon, lon+CellSize, lat-CellSize, lat, top, bottom, props))
		top = bottom
	}
	return cell, nil
}
