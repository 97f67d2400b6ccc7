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

// Package mesher holds the volumetric elements that discretized earth
// models are made of.
package mesher

import (
	"fmt"

	"github.com/ctessum/geom"
)

// A Tesseroid is a spherical prism: the volume between two meridians,
// two parallels, and two concentric surfaces. W, E, S, and N are the
// bounding meridians and parallels [degrees]; Top and Bottom are the
// bounding surfaces [m], oriented positive upward from the reference
// ellipsoid, so Top > Bottom.
//
// Props maps physical property names (e.g. "density", "vp", "vs")
// to values in SI units.
type Tesseroid struct {
	W, E, S, N  float64 // degrees
	Top, Bottom float64 // m
	Props       map[string]float64
}

// NewTesseroid creates a tesseroid bounded by the w and e meridians, the
// s and n parallels [degrees], and the top and bottom surfaces [m], with
// the given physical properties. props may be nil.
func NewTesseroid(w, e, s, n, top, bottom float64, props map[string]float64) *Tesseroid {
	return &Tesseroid{W: w, E: e, S: s, N: n, Top: top, Bottom: bottom, Props: props}
}

// Bounds returns the horizontal extent of the tesseroid
// in geographic coordinates (X = longitude, Y = latitude).
func (t *Tesseroid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: t.W, Y: t.S},
		Max: geom.Point{X: t.E, Y: t.N},
	}
}

// Polygon returns the horizontal footprint of the tesseroid as a
// closed ring in geographic coordinates.
func (t *Tesseroid) Polygon() geom.Polygon {
	return geom.Polygon{{
		geom.Point{X: t.W, Y: t.S}, // W, S
		geom.Point{X: t.E, Y: t.S}, // E, S
		geom.Point{X: t.E, Y: t.N}, // E, N
		geom.Point{X: t.W, Y: t.N}, // W, N
		geom.Point{X: t.W, Y: t.S}, // W, S
	}}
}

// GetProp returns the value of the named physical property and
// whether the tesseroid carries it.
func (t *Tesseroid) GetProp(name string) (float64, bool) {
	v, ok := t.Props[name]
	return v, ok
}

func (t *Tesseroid) String() string {
	return fmt.Sprintf("Tesseroid(W:%g, E:%g, S:%g, N:%g, Top:%g, Bottom:%g)",
		t.W, t.E, t.S, t.N, t.Top, t.Bottom)
}
