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

// Package gridder reads regular grid files.
//
// Surfer is a contouring, gridding and surface mapping software from
// Golden Software (http://www.goldensoftware.com/products/surfer).
// The names and logos for Surfer and Golden Software are registered
// trademarks of Golden Software, Inc.
package gridder

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Format is a grid file layout.
type Format string

const (
	// ASCII is the Surfer text grid layout ("DSAA").
	ASCII Format = "ascii"
	// Binary is the Surfer 6 binary grid layout ("DSBB").
	Binary Format = "binary"
)

// Grid cells holding at least this value are blank: the grid has no
// data there. Surfer writes blanks as 1.70141e38.
const blankValue = 1.70141e38

// A ParseError reports a grid file that does not follow its declared
// layout.
type ParseError struct {
	File string
	Line int // 1-based line number, or 0 for binary grids
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("gridder: parsing %s: line %d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("gridder: parsing %s: %s", e.File, e.Msg)
}

// ReadSurfer reads a Surfer grid file.
//
// It returns the x coordinates of the nx columns, the y coordinates
// of the ny rows, and the grid values with shape [ny, nx], in the
// row order they are stored in (south to north for geographic
// grids). Blanked cells (values at or above 1.70141e38) are NaN in
// the result.
func ReadSurfer(fname string, format Format) (x, y []float64, data *sparse.DenseArray, err error) {
	switch format {
	case ASCII:
		return readSurferASCII(fname)
	case Binary:
		return readSurferBinary(fname)
	}
	return nil, nil, nil, fmt.Errorf("gridder: unknown grid format %q; accepted formats are %q and %q",
		format, ASCII, Binary)
}

// The text layout is five header lines followed by the values:
//
//	DSAA            grid id
//	nx ny           columns and rows
//	xmin xmax       x limits
//	ymin ymax       y limits
//	zmin zmax       value limits
//	z11 z21 ...     ny rows of nx values
func readSurferASCII(fname string) (x, y []float64, data *sparse.DenseArray, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	line := 0
	header := func() ([]string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, &ParseError{File: fname, Line: line + 1, Msg: "truncated header"}
		}
		line++
		return strings.Fields(scanner.Text()), nil
	}
	// The grid id line is not validated; Surfer variants differ here.
	if _, err := header(); err != nil {
		return nil, nil, nil, err
	}
	fields, err := header()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(fields) != 2 {
		return nil, nil, nil, &ParseError{File: fname, Line: line,
			Msg: fmt.Sprintf("expected the number of columns and rows, got %d fields", len(fields))}
	}
	nx, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, nil, nil, &ParseError{File: fname, Line: line,
			Msg: fmt.Sprintf("bad number of columns %q", fields[0])}
	}
	ny, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, nil, nil, &ParseError{File: fname, Line: line,
			Msg: fmt.Sprintf("bad number of rows %q", fields[1])}
	}
	if nx < 2 || ny < 2 {
		return nil, nil, nil, &ParseError{File: fname, Line: line,
			Msg: fmt.Sprintf("grid must have at least 2 columns and rows, got %d by %d", nx, ny)}
	}
	var xmin, xmax, ymin, ymax, zmin, zmax float64
	for _, lim := range []struct {
		name   string
		lo, hi *float64
	}{
		{"x", &xmin, &xmax},
		{"y", &ymin, &ymax},
		{"z", &zmin, &zmax}, // read but not returned
	} {
		fields, err := header()
		if err != nil {
			return nil, nil, nil, err
		}
		if len(fields) != 2 {
			return nil, nil, nil, &ParseError{File: fname, Line: line,
				Msg: fmt.Sprintf("expected the %s limits, got %d fields", lim.name, len(fields))}
		}
		if *lim.lo, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, nil, nil, &ParseError{File: fname, Line: line,
				Msg: fmt.Sprintf("bad minimum %s %q", lim.name, fields[0])}
		}
		if *lim.hi, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, nil, nil, &ParseError{File: fname, Line: line,
				Msg: fmt.Sprintf("bad maximum %s %q", lim.name, fields[1])}
		}
	}
	data = sparse.ZerosDense(ny, nx)
	row := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if row >= ny {
			return nil, nil, nil, &ParseError{File: fname, Line: line,
				Msg: fmt.Sprintf("more than %d data rows", ny)}
		}
		if len(fields) != nx {
			return nil, nil, nil, &ParseError{File: fname, Line: line,
				Msg: fmt.Sprintf("expected %d values, got %d", nx, len(fields))}
		}
		for j, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, &ParseError{File: fname, Line: line,
					Msg: fmt.Sprintf("bad value %q", field)}
			}
			if v >= blankValue {
				v = math.NaN()
			}
			data.Set(v, row, j)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, err
	}
	if row != ny {
		return nil, nil, nil, &ParseError{File: fname, Line: line,
			Msg: fmt.Sprintf("expected %d data rows, got %d", ny, row)}
	}
	x = make([]float64, nx)
	floats.Span(x, xmin, xmax)
	y = make([]float64, ny)
	floats.Span(y, ymin, ymax)
	return x, y, data, nil
}

// surfer6Header is the fixed 56-byte header of a Surfer 6 binary
// grid, stored little-endian.
type surfer6Header struct {
	ID                 [4]byte // "DSBB"
	Nx, Ny             int16
	Xlo, Xhi, Ylo, Yhi float64
	Zlo, Zhi           float64
}

func readSurferBinary(fname string) (x, y []float64, data *sparse.DenseArray, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var h surfer6Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nil, nil, &ParseError{File: fname,
			Msg: fmt.Sprintf("reading header: %v", err)}
	}
	if id := string(h.ID[:]); id != "DSBB" {
		return nil, nil, nil, &ParseError{File: fname,
			Msg: fmt.Sprintf("bad grid id %q, expected %q", id, "DSBB")}
	}
	nx, ny := int(h.Nx), int(h.Ny)
	if nx < 2 || ny < 2 {
		return nil, nil, nil, &ParseError{File: fname,
			Msg: fmt.Sprintf("grid must have at least 2 columns and rows, got %d by %d", nx, ny)}
	}
	// Values are float32, row-major from the first row.
	vals := make([]float32, nx*ny)
	if err := binary.Read(r, binary.LittleEndian, vals); err != nil {
		return nil, nil, nil, &ParseError{File: fname,
			Msg: fmt.Sprintf("reading %d grid values: %v", nx*ny, err)}
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, nil, nil, &ParseError{File: fname, Msg: "trailing bytes after the grid values"}
	}
	data = sparse.ZerosDense(ny, nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			// Compare before widening: the float32 blank marker
			// rounds to just under the float64 one.
			val := vals[i*nx+j]
			v := float64(val)
			if val >= blankValue {
				v = math.NaN()
			}
			data.Set(v, i, j)
		}
	}
	x = make([]float64, nx)
	floats.Span(x, h.Xlo, h.Xhi)
	y = make([]float64, ny)
	floats.Span(y, h.Ylo, h.Yhi)
	return x, y, data, nil
}
