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

import "fmt"

// An ArchiveError reports that the model archive could not be opened or
// that a member expected to be inside it could not be extracted.
type ArchiveError struct {
	Archive string // archive file name
	Member  string // member being extracted, or "" for the archive itself
	Err     error  // underlying cause
}

func (e *ArchiveError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("crust2: archive %s: extracting %s: %v", e.Archive, e.Member, e.Err)
	}
	return fmt.Sprintf("crust2: archive %s: %v", e.Archive, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// A ParseError reports that a model member does not follow the fixed
// layout this package expects.
type ParseError struct {
	Member string // member file name
	Line   int    // 1-based line number, or 0 when the problem is not line-specific
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("crust2: parsing %s: line %d: %s", e.Member, e.Line, e.Msg)
	}
	return fmt.Sprintf("crust2: parsing %s: %s", e.Member, e.Msg)
}

// A LookupError reports a model grid cell whose type code has no entry
// in the codec.
type LookupError struct {
	Code     string
	Row, Col int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("crust2: no codec entry for type code %q at cell (%d, %d)", e.Code, e.Row, e.Col)
}
