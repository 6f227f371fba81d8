// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// solution types of keyword 62
const (
	SolScalar = 1
	SolSymMat = 3
)

// solb stores the off-diagonals transposed with respect to the in-memory
// upper triangle: disk (m11,m12,m22,m13,m23,m33) maps to memory slots
// (0,1,3,2,4,5)
var solbToMem = [6]int{0, 1, 3, 2, 4, 5}

// openSolb positions processor zero at the start of the keyword-62
// payload and returns the vertex count and solution type
func openSolb(comm *msg.Comm, filename string) (file *os.File, nvert, soltype int, err error) {
	meta := []int{0, 0}
	if comm.Once() {
		file, err = os.Open(filename)
		if err != nil {
			err = sta.Err(sta.Null, "inp: cannot open %q: %v", filename, err)
			return
		}
		var magic, version int32
		if magic, err = readI32(file); err != nil || magic != 1 {
			err = sta.Err(sta.Invalid, "inp: %q is not a sectioned binary solution", filename)
			return
		}
		if version, err = readI32(file); err != nil || version < 2 {
			err = sta.Err(sta.Invalid, "inp: unsupported solution version %d", version)
			return
		}
		for {
			var h sectionHeader
			errH := binary.Read(file, meshbOrder, &h)
			if errH == io.EOF {
				err = sta.Err(sta.NotFound, "inp: no solution section in %q", filename)
				return
			}
			if errH != nil {
				err = sta.Err(sta.Invalid, "inp: short section header")
				return
			}
			if h.Keyword != KwSolution {
				if _, err = file.Seek(int64(h.Next), io.SeekStart); err != nil {
					err = sta.Err(sta.Invalid, "inp: cannot skip keyword %d", h.Keyword)
					return
				}
				continue
			}
			var n, ntypes, typ int32
			if n, err = readI32(file); err != nil {
				err = sta.Err(sta.Invalid, "inp: short solution count")
				return
			}
			if ntypes, err = readI32(file); err != nil || ntypes != 1 {
				err = sta.Err(sta.Invalid, "inp: expected a single solution type")
				return
			}
			if typ, err = readI32(file); err != nil {
				err = sta.Err(sta.Invalid, "inp: short solution type")
				return
			}
			meta[0] = int(n)
			meta[1] = int(typ)
			break
		}
	}
	comm.BcastInt(meta)
	nvert, soltype = meta[0], meta[1]
	err = nil
	return
}

// ReadMetricSolb streams a SymMat solution and applies it as the vertex
// metric: read in chunks on processor zero, broadcast, and matched by
// global id. The off-diagonal transposition is honored exactly.
func ReadMetricSolb(m *msh.Mesh, filename string) (err error) {
	file, nvert, soltype, err := openSolb(m.Comm, filename)
	if err != nil {
		return
	}
	if file != nil {
		defer file.Close()
	}
	if soltype != SolSymMat {
		return sta.Err(sta.Invalid, "inp: metric file type %d is not SymMat", soltype)
	}
	if nvert != m.NGlobal() {
		return sta.Err(sta.Invalid, "inp: metric for %d vertices on a %d-vertex mesh", nvert, m.NGlobal())
	}
	mm := make([]float64, 6)
	nread := 0
	for nread < nvert {
		section := nvert - nread
		if section > chunkSize {
			section = chunkSize
		}
		buf := make([]float64, 6*section)
		if m.Comm.Once() {
			if err = binary.Read(file, meshbOrder, buf); err != nil {
				return sta.Err(sta.Invalid, "inp: short metric payload")
			}
		}
		m.Comm.BcastDbl(buf)
		for i := 0; i < section; i++ {
			local, errLoc := m.Nodes.Local(nread + i)
			if errLoc != nil {
				continue // vertex lives elsewhere
			}
			for k := 0; k < 6; k++ {
				mm[solbToMem[k]] = buf[k+6*i]
			}
			if err = m.Nodes.MetricSet(local, mm); err != nil {
				return sta.Wrap(err, "inp: metric of global %d", nread+i)
			}
		}
		nread += section
	}
	return
}

// ReadScalarSolb streams a scalar solution into a per-local-vertex field
func ReadScalarSolb(m *msh.Mesh, filename string) (field []float64, err error) {
	file, nvert, soltype, err := openSolb(m.Comm, filename)
	if err != nil {
		return
	}
	if file != nil {
		defer file.Close()
	}
	if soltype != SolScalar {
		return nil, sta.Err(sta.Invalid, "inp: scalar file type %d", soltype)
	}
	if nvert != m.NGlobal() {
		return nil, sta.Err(sta.Invalid, "inp: scalar for %d vertices on a %d-vertex mesh", nvert, m.NGlobal())
	}
	field = make([]float64, m.Nodes.Max())
	nread := 0
	for nread < nvert {
		section := nvert - nread
		if section > chunkSize {
			section = chunkSize
		}
		buf := make([]float64, section)
		if m.Comm.Once() {
			if err = binary.Read(file, meshbOrder, buf); err != nil {
				return nil, sta.Err(sta.Invalid, "inp: short scalar payload")
			}
		}
		m.Comm.BcastDbl(buf)
		for i := 0; i < section; i++ {
			local, errLoc := m.Nodes.Local(nread + i)
			if errLoc != nil {
				continue
			}
			field[local] = buf[i]
		}
		nread += section
	}
	return
}
