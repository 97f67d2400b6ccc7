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

// Package fatiando is a toolkit for geophysical modeling data preparation.
//
// The subpackages convert published earth models and gridded data products
// into forms that forward-modeling programs can consume:
//
//   - crust2 downloads the CRUST2.0 global crustal model and converts it
//     to a list of tesseroids tagged with seismic velocities and density.
//   - gridder reads Surfer grid files into coordinate axes and a data matrix.
//   - mesher holds the volumetric element types the converters produce.
//   - fatiandoutil and cmd/fatiando wrap the above in a command-line
//     interface.
package fatiando

// Version gives the version number of this version of Fatiando.
const Version = "0.3.0"
