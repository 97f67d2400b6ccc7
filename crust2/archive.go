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
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ModelURL is the address the CRUST2.0 model archive is
// distributed from.
const ModelURL = "http://igpppublic.ucsd.edu/~gabi/ftp/crust2.tar.gz"

// Member names inside the model archive. The leading "./" is part of
// the stored names.
const (
	TopoMember = "./CNelevatio2.txt" // topography and bathymetry matrix
	TypeMember = "./CNtype2.txt"     // type code matrix
	KeyMember  = "./CNtype2_key.txt" // type code legend
)

// Fetch downloads the CRUST2.0 model archive from ModelURL and saves
// it as fname, returning fname.
func Fetch(fname string) (string, error) {
	return fetch(ModelURL, fname)
}

func fetch(url, fname string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("crust2: fetching %s: %s", url, resp.Status)
	}
	w, err := os.Create(fname)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}
	return fname, nil
}

// An Archive is a CRUST2.0 model distribution: a gzip-compressed tar
// file holding the topography matrix, the type code matrix, and the
// type code legend.
type Archive struct {
	name string
}

// OpenArchive checks that fname exists and is gzip-compressed, and
// returns an Archive for reading its members.
func OpenArchive(fname string) (*Archive, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, &ArchiveError{Archive: fname, Err: err}
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, &ArchiveError{Archive: fname, Err: err}
	}
	gz.Close()
	f.Close()
	return &Archive{name: fname}, nil
}

// Name returns the archive file name.
func (a *Archive) Name() string { return a.name }

// Extract returns a reader for the named member. The caller is
// responsible for closing it. Each call rescans the archive, so
// readers from separate calls are independent.
func (a *Archive) Extract(member string) (io.ReadCloser, error) {
	f, err := os.Open(a.name)
	if err != nil {
		return nil, &ArchiveError{Archive: a.name, Member: member, Err: err}
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, &ArchiveError{Archive: a.name, Member: member, Err: err}
	}
	r := tar.NewReader(gz)
	for {
		header, err := r.Next()
		if err != nil {
			if err == io.EOF {
				err = fmt.Errorf("no such member")
			}
			gz.Close()
			f.Close()
			return nil, &ArchiveError{Archive: a.name, Member: member, Err: err}
		}
		if header.Name == member {
			return &memberReader{r: r, gz: gz, f: f}, nil
		}
	}
}

// memberReader reads one tar member and closes the decompression and
// file handles behind it.
type memberReader struct {
	r  io.Reader
	gz *gzip.Reader
	f  *os.File
}

func (m *memberReader) Read(p []byte) (int, error) { return m.r.Read(p) }

func (m *memberReader) Close() error {
	err := m.gz.Close()
	if err2 := m.f.Close(); err == nil {
		err = err2
	}
	return err
}
