// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp reads partitioned meshes, metric fields and settings.
// Mesh files are read on processor zero in chunks; each chunk is
// classified by destination partition and shipped with blind sends, so no
// processor ever holds the whole file.
package inp

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// chunkSize bounds the records held in memory while streaming
var chunkSize = 1000000

// ugrid section order and kinds
var ugridKinds = []msh.Kind{msh.KindTri, msh.KindQua, msh.KindTet, msh.KindPyr, msh.KindPri, msh.KindHex}

// readInts reads n 4-byte integers
func readInts(f io.Reader, order binary.ByteOrder, n int) (v []int32, err error) {
	v = make([]int32, n)
	err = binary.Read(f, order, v)
	return
}

// ReadUgrid streams the binary mesh format: a seven-count header
// (nvert, ntri, nqua, ntet, npyr, npri, nhex), vertex coordinates,
// boundary faces with trailing surface ids, then volume cells. Vertex
// indices are 1-based on disk. Vertices land on their implicit partition;
// cells are replicated onto every partition owning one of their vertices,
// which reinstates the one-layer ghost directly.
func ReadUgrid(comm *msg.Comm, filename string, order binary.ByteOrder) (m *msh.Mesh, err error) {
	m = msh.NewMesh(comm)

	var file *os.File
	counts := make([]int, 7)
	if comm.Once() {
		file, err = os.Open(filename)
		if err != nil {
			return nil, sta.Err(sta.Null, "inp: cannot open %q: %v", filename, err)
		}
		defer file.Close()
		header, errH := readInts(file, order, 7)
		if errH != nil {
			return nil, sta.Err(sta.Invalid, "inp: short header in %q", filename)
		}
		for i, c := range header {
			counts[i] = int(c)
		}
	}
	comm.BcastInt(counts)
	nvert := counts[0]
	ncell := map[msh.Kind]int{
		msh.KindTri: counts[1], msh.KindQua: counts[2],
		msh.KindTet: counts[3], msh.KindPyr: counts[4],
		msh.KindPri: counts[5], msh.KindHex: counts[6],
	}
	m.SetNGlobal(nvert)

	err = streamVertices(m, file, order, nvert)
	if err != nil {
		return
	}
	for _, kind := range ugridKinds {
		if ncell[kind] == 0 {
			continue
		}
		err = streamCells(m, file, order, kind, ncell[kind], nvert)
		if err != nil {
			return
		}
	}
	err = m.GhostSyncXyz()
	if err != nil {
		return
	}
	return m, m.ValidateCellNodes()
}

// streamVertices reads coordinate chunks on processor zero and ships each
// vertex to its implicit partition
func streamVertices(m *msh.Mesh, file *os.File, order binary.ByteOrder, nvert int) (err error) {
	comm := m.Comm
	nread := 0
	for nread < nvert || comm.Para() {
		section := 0
		if comm.Once() {
			section = nvert - nread
			if section > chunkSize {
				section = chunkSize
			}
		}
		sec := []int{section}
		comm.BcastInt(sec)
		section = sec[0]
		if section == 0 {
			break
		}
		dest := make([]int, section)
		gids := make([]int, section)
		xyz := make([]float64, 3*section)
		if comm.Once() {
			coords := make([]float64, 3*section)
			err = binary.Read(file, order, coords)
			if err != nil {
				return sta.Err(sta.Invalid, "inp: short vertex section")
			}
			for i := 0; i < section; i++ {
				gids[i] = nread + i
				dest[i] = msh.ImplicitPart(gids[i], nvert, comm.Size())
				copy(xyz[3*i:3*i+3], coords[3*i:3*i+3])
			}
		}
		rg, n, errSend := comm.BlindSendInt(dest, gids, 1, section)
		if errSend != nil {
			return errSend
		}
		rx, _, errSend := comm.BlindSendDbl(dest, xyz, 3, section)
		if errSend != nil {
			return errSend
		}
		for i := 0; i < n; i++ {
			local, errAdd := m.Nodes.Add(rg[i])
			if errAdd != nil {
				return errAdd
			}
			m.Nodes.SetXyz(local, rx[0+3*i], rx[1+3*i], rx[2+3*i])
		}
		nread += section
		if !comm.Para() && nread >= nvert {
			break
		}
	}
	return
}

// streamCells reads one connectivity section (with its trailing surface
// ids for boundary kinds) and ships each cell to every partition owning
// one of its vertices
func streamCells(m *msh.Mesh, file *os.File, order binary.ByteOrder, kind msh.Kind, ncell, nvert int) (err error) {
	comm := m.Comm
	np := kind.NodePer()
	stride := np + 1
	cells := m.CellsOf(kind)

	// the surface-id block trails the whole connectivity block; chunked
	// reads seek between the two regions
	var connStart, idStart int64
	if comm.Once() {
		connStart, err = file.Seek(0, io.SeekCurrent)
		if err != nil {
			return sta.Err(sta.Invalid, "inp: seek in %s section", kind)
		}
		idStart = connStart + int64(4*np*ncell)
	}

	nsent := 0
	for nsent < ncell || comm.Para() {
		section := 0
		if comm.Once() {
			section = ncell - nsent
			if section > chunkSize {
				section = chunkSize
			}
		}
		sec := []int{section}
		comm.BcastInt(sec)
		section = sec[0]
		if section == 0 {
			break
		}
		dest := make([]int, 0, section)
		buf := make([]int, 0, stride*section)
		if comm.Once() {
			if _, err = file.Seek(connStart+int64(4*np*nsent), io.SeekStart); err != nil {
				return sta.Err(sta.Invalid, "inp: seek %s connectivity", kind)
			}
			conn, errC := readInts(file, order, np*section)
			if errC != nil {
				return sta.Err(sta.Invalid, "inp: short %s section", kind)
			}
			ids := make([]int32, section)
			if kind.HasID() {
				if _, err = file.Seek(idStart+int64(4*nsent), io.SeekStart); err != nil {
					return sta.Err(sta.Invalid, "inp: seek %s ids", kind)
				}
				ids, errC = readInts(file, order, section)
				if errC != nil {
					return sta.Err(sta.Invalid, "inp: short %s id section", kind)
				}
			}
			rec := make([]int, stride)
			for c := 0; c < section; c++ {
				targets := make(map[int]bool)
				for i := 0; i < np; i++ {
					g := int(conn[i+np*c]) - 1 // 1-based on disk
					rec[i] = g
					targets[msh.ImplicitPart(g, nvert, comm.Size())] = true
				}
				rec[np] = int(ids[c])
				for t := range targets {
					dest = append(dest, t)
					buf = append(buf, rec...)
				}
			}
		}
		recv, n, errSend := comm.BlindSendInt(dest, buf, stride, len(dest))
		if errSend != nil {
			return errSend
		}
		locals := make([]int, np)
		for i := 0; i < n; i++ {
			rec := recv[stride*i : stride*(i+1)]
			for j := 0; j < np; j++ {
				local, errLoc := m.Nodes.Local(rec[j])
				if errLoc != nil {
					// ghost vertex of a partition-crossing cell
					local, errLoc = m.Nodes.Add(rec[j])
					if errLoc != nil {
						return errLoc
					}
					m.Nodes.Part[local] = msh.ImplicitPart(rec[j], nvert, comm.Size())
				}
				locals[j] = local
			}
			cell, errAdd := cells.Add(m.Nodes, locals)
			if errAdd != nil {
				return sta.Wrap(errAdd, "inp: %s cell from file", kind)
			}
			if kind.HasID() {
				cells.SetID(cell, rec[np])
			}
		}
		nsent += section
		if !comm.Para() && nsent >= ncell {
			break
		}
	}
	if comm.Once() {
		end := connStart + int64(4*np*ncell)
		if kind.HasID() {
			end = idStart + int64(4*ncell)
		}
		if _, err = file.Seek(end, io.SeekStart); err != nil {
			return sta.Err(sta.Invalid, "inp: seek past %s section", kind)
		}
	}
	return
}
