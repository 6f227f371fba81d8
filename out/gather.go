// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out gathers a partitioned mesh onto processor zero and writes
// the binary formats read by inp: the counted mesh format and the
// keyword-sectioned solution files
package out

import (
	"encoding/binary"
	"os"
	"sort"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
)

// gatherVertices concatenates the owned vertices of all parts, sorted by
// global id, onto every rank
func gatherVertices(m *msh.Mesh) (globals []int, xyz []float64, logm []float64) {
	lg := make([]int, 0)
	lx := make([]float64, 0)
	lm := make([]float64, 0)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Owned(local) {
			continue
		}
		lg = append(lg, m.Nodes.Global[local])
		lx = append(lx, m.Nodes.Xyz[3*local:3*local+3]...)
		lm = append(lm, m.Nodes.MetLog[6*local:6*local+6]...)
	}
	n, _, globals := m.Comm.AllConcatInt(1, len(lg), lg)
	_, _, xyz = m.Comm.AllConcatDbl(3, len(lg), lx)
	_, _, logm = m.Comm.AllConcatDbl(6, len(lg), lm)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return globals[order[i]] < globals[order[j]] })
	sg := make([]int, n)
	sx := make([]float64, 3*n)
	sm := make([]float64, 6*n)
	for k, i := range order {
		sg[k] = globals[i]
		copy(sx[3*k:3*k+3], xyz[3*i:3*i+3])
		copy(sm[6*k:6*k+6], logm[6*i:6*i+6])
	}
	return sg, sx, sm
}

// gatherCells concatenates the owned cells of one kind as global-id
// tuples plus the surface id, sorted lexicographically for a stable file
func gatherCells(m *msh.Mesh, kind msh.Kind) (recs []int, err error) {
	cells := m.CellsOf(kind)
	np := kind.NodePer()
	stride := np + 1
	local := make([]int, 0)
	err = cells.Each(func(cell int, nodes []int) error {
		part, errPart := cells.Part(m.Nodes, cell)
		if errPart != nil {
			return errPart
		}
		if part != m.Comm.Rank() {
			return nil
		}
		for _, n := range nodes {
			local = append(local, m.Nodes.Global[n])
		}
		local = append(local, cells.ID(cell))
		return nil
	})
	if err != nil {
		return
	}
	n, _, recs := m.Comm.AllConcatInt(stride, len(local)/stride, local)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a := recs[stride*order[i] : stride*(order[i]+1)]
		b := recs[stride*order[j] : stride*(order[j]+1)]
		for k := 0; k < stride; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	sorted := make([]int, stride*n)
	for k, i := range order {
		copy(sorted[stride*k:stride*(k+1)], recs[stride*i:stride*(i+1)])
	}
	return sorted, nil
}

// WriteUgrid gathers the mesh and writes the counted binary format:
// seven counts, coordinates, boundary faces with ids, volume cells.
// Indices are written 1-based.
func WriteUgrid(m *msh.Mesh, filename string, order binary.ByteOrder) (err error) {
	globals, xyz, _ := gatherVertices(m)
	kinds := []msh.Kind{msh.KindTri, msh.KindQua, msh.KindTet, msh.KindPyr, msh.KindPri, msh.KindHex}
	recs := make(map[msh.Kind][]int)
	for _, kind := range kinds {
		recs[kind], err = gatherCells(m, kind)
		if err != nil {
			return
		}
	}
	if !m.Comm.Once() {
		return
	}
	for i, g := range globals {
		if g != i {
			return sta.Err(sta.Invalid, "out: global ids not dense, %d at %d", g, i)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return sta.Err(sta.Null, "out: cannot create %q: %v", filename, err)
	}
	defer file.Close()

	header := make([]int32, 7)
	header[0] = int32(len(globals))
	for i, kind := range kinds {
		header[i+1] = int32(len(recs[kind]) / (kind.NodePer() + 1))
	}
	if err = binary.Write(file, order, header); err != nil {
		return sta.Err(sta.Invalid, "out: write header: %v", err)
	}
	if err = binary.Write(file, order, xyz); err != nil {
		return sta.Err(sta.Invalid, "out: write vertices: %v", err)
	}
	for _, kind := range kinds {
		np := kind.NodePer()
		stride := np + 1
		n := len(recs[kind]) / stride
		conn := make([]int32, np*n)
		ids := make([]int32, n)
		for c := 0; c < n; c++ {
			for i := 0; i < np; i++ {
				conn[i+np*c] = int32(recs[kind][i+stride*c] + 1)
			}
			ids[c] = int32(recs[kind][np+stride*c])
		}
		if n == 0 {
			continue
		}
		if err = binary.Write(file, order, conn); err != nil {
			return sta.Err(sta.Invalid, "out: write %s: %v", kind, err)
		}
		if kind.HasID() {
			if err = binary.Write(file, order, ids); err != nil {
				return sta.Err(sta.Invalid, "out: write %s ids: %v", kind, err)
			}
		}
	}
	return
}

// writeSolbHeader writes the preamble and the solution section header
func writeSolbHeader(file *os.File, nvert, soltype, width int) (err error) {
	if err = binary.Write(file, binary.LittleEndian, []int32{1, 2}); err != nil {
		return
	}
	// next-section offset: preamble + header + payload
	next := int32(8 + 8 + 12 + 8*width*nvert)
	if err = binary.Write(file, binary.LittleEndian, []int32{62, next}); err != nil {
		return
	}
	return binary.Write(file, binary.LittleEndian, []int32{int32(nvert), 1, int32(soltype)})
}

// WriteMetricSolb gathers the vertex metric and writes the SymMat
// solution file with the transposed off-diagonal ordering
func WriteMetricSolb(m *msh.Mesh, filename string) (err error) {
	globals, _, logm := gatherVertices(m)
	if !m.Comm.Once() {
		return
	}
	file, err := os.Create(filename)
	if err != nil {
		return sta.Err(sta.Null, "out: cannot create %q: %v", filename, err)
	}
	defer file.Close()
	if err = writeSolbHeader(file, len(globals), 3, 6); err != nil {
		return sta.Err(sta.Invalid, "out: write solb header: %v", err)
	}
	memToSolb := [6]int{0, 1, 3, 2, 4, 5} // disk slot k holds memory slot memToSolb[k]
	mm := make([]float64, 6)
	rec := make([]float64, 6)
	for i := range globals {
		if err = mtx.ExpSym(mm, logm[6*i:6*i+6]); err != nil {
			return
		}
		for k := 0; k < 6; k++ {
			rec[k] = mm[memToSolb[k]]
		}
		if err = binary.Write(file, binary.LittleEndian, rec); err != nil {
			return sta.Err(sta.Invalid, "out: write metric record: %v", err)
		}
	}
	return
}

// WriteScalarSolb gathers a per-vertex scalar and writes it as keyword 62
// type 1
func WriteScalarSolb(m *msh.Mesh, field []float64, filename string) (err error) {
	lg := make([]int, 0)
	lv := make([]float64, 0)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Owned(local) {
			continue
		}
		lg = append(lg, m.Nodes.Global[local])
		lv = append(lv, field[local])
	}
	n, _, globals := m.Comm.AllConcatInt(1, len(lg), lg)
	_, _, vals := m.Comm.AllConcatDbl(1, len(lg), lv)
	if !m.Comm.Once() {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return globals[order[i]] < globals[order[j]] })
	file, err := os.Create(filename)
	if err != nil {
		return sta.Err(sta.Null, "out: cannot create %q: %v", filename, err)
	}
	defer file.Close()
	if err = writeSolbHeader(file, n, 1, 1); err != nil {
		return sta.Err(sta.Invalid, "out: write solb header: %v", err)
	}
	for _, i := range order {
		if err = binary.Write(file, binary.LittleEndian, vals[i]); err != nil {
			return sta.Err(sta.Invalid, "out: write scalar record: %v", err)
		}
	}
	return
}
