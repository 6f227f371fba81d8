// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/cpmech/gomesh/geo"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// section writes one keyword section: the payload length must be known
// up front to record the next-section offset
func section(file *os.File, keyword int32, payload func() error, payloadBytes int) (err error) {
	pos, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	next := int32(pos) + 8 + int32(payloadBytes)
	if err = binary.Write(file, binary.LittleEndian, []int32{keyword, next}); err != nil {
		return
	}
	return payload()
}

// gatherGeom concatenates the geometry records of all parts, sorted by
// (vertex global, id), per type
func gatherGeom(m *msh.Mesh, typ geo.Type) (ints []int, params []float64, err error) {
	li := make([]int, 0)
	lp := make([]float64, 0)
	errEach := m.Geom.Each(func(node int, r geo.Record) error {
		if r.Type != typ || !m.Nodes.Owned(node) {
			return nil
		}
		li = append(li, m.Nodes.Global[node], r.ID)
		lp = append(lp, r.Param[0], r.Param[1])
		return nil
	})
	if errEach != nil {
		return nil, nil, errEach
	}
	n, _, ints := m.Comm.AllConcatInt(2, len(li)/2, li)
	_, _, params = m.Comm.AllConcatDbl(2, len(li)/2, lp)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		if ints[2*order[i]] != ints[2*order[j]] {
			return ints[2*order[i]] < ints[2*order[j]]
		}
		return ints[2*order[i]+1] < ints[2*order[j]+1]
	})
	si := make([]int, 2*n)
	sp := make([]float64, 2*n)
	for k, i := range order {
		si[2*k] = ints[2*i]
		si[2*k+1] = ints[2*i+1]
		sp[2*k] = params[2*i]
		sp[2*k+1] = params[2*i+1]
	}
	return si, sp, nil
}

// WriteMeshb gathers the mesh and writes the keyword-sectioned binary
// format with vertices, edges, triangles, tetrahedra, geometry records
// and the CAD byte flow. Indices are written 1-based.
func WriteMeshb(m *msh.Mesh, filename string) (err error) {
	globals, xyz, _ := gatherVertices(m)
	edg, err := gatherCells(m, msh.KindEdg)
	if err != nil {
		return
	}
	tri, err := gatherCells(m, msh.KindTri)
	if err != nil {
		return
	}
	tet, err := gatherCells(m, msh.KindTet)
	if err != nil {
		return
	}
	geomInts := make(map[geo.Type][]int)
	geomPars := make(map[geo.Type][]float64)
	for _, typ := range []geo.Type{geo.Node, geo.Edge, geo.Face} {
		geomInts[typ], geomPars[typ], err = gatherGeom(m, typ)
		if err != nil {
			return
		}
	}
	if !m.Comm.Once() {
		return
	}
	file, err := os.Create(filename)
	if err != nil {
		return sta.Err(sta.Null, "out: cannot create %q: %v", filename, err)
	}
	defer file.Close()

	if err = binary.Write(file, binary.LittleEndian, []int32{1, 2}); err != nil {
		return
	}

	// dimension
	err = section(file, 3, func() error {
		return binary.Write(file, binary.LittleEndian, int32(3))
	}, 4)
	if err != nil {
		return
	}

	// vertices: coordinates plus a reference id
	err = section(file, 4, func() error {
		if errW := binary.Write(file, binary.LittleEndian, int32(len(globals))); errW != nil {
			return errW
		}
		for i := range globals {
			if errW := binary.Write(file, binary.LittleEndian, xyz[3*i:3*i+3]); errW != nil {
				return errW
			}
			if errW := binary.Write(file, binary.LittleEndian, int32(0)); errW != nil {
				return errW
			}
		}
		return nil
	}, 4+len(globals)*(24+4))
	if err != nil {
		return
	}

	// cells: node tuple plus reference id
	writeCells := func(keyword int32, kind msh.Kind, recs []int) error {
		np := kind.NodePer()
		stride := np + 1
		n := len(recs) / stride
		return section(file, keyword, func() error {
			if errW := binary.Write(file, binary.LittleEndian, int32(n)); errW != nil {
				return errW
			}
			rec := make([]int32, stride)
			for c := 0; c < n; c++ {
				for i := 0; i < np; i++ {
					rec[i] = int32(recs[i+stride*c] + 1)
				}
				rec[np] = int32(recs[np+stride*c])
				if errW := binary.Write(file, binary.LittleEndian, rec); errW != nil {
					return errW
				}
			}
			return nil
		}, 4+n*4*stride)
	}
	if len(edg) > 0 {
		if err = writeCells(5, msh.KindEdg, edg); err != nil {
			return
		}
	}
	if len(tri) > 0 {
		if err = writeCells(6, msh.KindTri, tri); err != nil {
			return
		}
	}
	if len(tet) > 0 {
		if err = writeCells(8, msh.KindTet, tet); err != nil {
			return
		}
	}

	// geometry records: vertex, id, parameters and a filler double
	for _, typ := range []geo.Type{geo.Node, geo.Edge, geo.Face} {
		ints := geomInts[typ]
		pars := geomPars[typ]
		n := len(ints) / 2
		if n == 0 {
			continue
		}
		nparam := typ.NParam()
		width := nparam
		if nparam > 0 {
			width++ // filler
		}
		err = section(file, int32(41+int(typ)), func() error {
			if errW := binary.Write(file, binary.LittleEndian, int32(n)); errW != nil {
				return errW
			}
			for g := 0; g < n; g++ {
				if errW := binary.Write(file, binary.LittleEndian,
					[]int32{int32(ints[2*g] + 1), int32(ints[2*g+1])}); errW != nil {
					return errW
				}
				for k := 0; k < nparam; k++ {
					if errW := binary.Write(file, binary.LittleEndian, pars[2*g+k]); errW != nil {
						return errW
					}
				}
				if nparam > 0 {
					if errW := binary.Write(file, binary.LittleEndian, float64(0)); errW != nil {
						return errW
					}
				}
			}
			return nil
		}, 4+n*(8+8*width))
		if err != nil {
			return
		}
	}

	// opaque CAD byte flow
	if len(m.CadID) > 0 {
		err = section(file, 126, func() error {
			if errW := binary.Write(file, binary.LittleEndian, int32(len(m.CadID))); errW != nil {
				return errW
			}
			_, errW := file.Write(m.CadID)
			return errW
		}, 4+len(m.CadID))
		if err != nil {
			return
		}
	}
	return
}
