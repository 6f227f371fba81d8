// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cpmech/gomesh/geo"
	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// keyword codes of the sectioned binary format
const (
	KwDimension  = 3
	KwVertices   = 4
	KwEdges      = 5
	KwTriangles  = 6
	KwTetrahedra = 8
	KwGeomNode   = 40 + 1
	KwGeomEdge   = 40 + 2
	KwGeomFace   = 40 + 3
	KwEnd        = 54
	KwSolution   = 62
	KwCadFlow    = 126
)

// meshb files are little-endian with 32-bit ints and 64-bit reals
var meshbOrder = binary.LittleEndian

// header of every section: keyword code and the file offset of the next
// section, so unknown keywords can be skipped
type sectionHeader struct {
	Keyword int32
	Next    int32
}

func readI32(f io.Reader) (v int32, err error) {
	err = binary.Read(f, meshbOrder, &v)
	return
}

func readF64(f io.Reader) (v float64, err error) {
	err = binary.Read(f, meshbOrder, &v)
	return
}

// ReadMeshb streams the keyword-sectioned binary format: dimension,
// vertices, edges, triangles, tetrahedra, per-type geometry records and
// the opaque CAD byte flow. Unknown sections are skipped through the
// next-section offset.
func ReadMeshb(comm *msg.Comm, filename string) (m *msh.Mesh, err error) {
	m = msh.NewMesh(comm)

	var file *os.File
	if comm.Once() {
		file, err = os.Open(filename)
		if err != nil {
			return nil, sta.Err(sta.Null, "inp: cannot open %q: %v", filename, err)
		}
		defer file.Close()
		var magic, version int32
		if magic, err = readI32(file); err != nil || magic != 1 {
			return nil, sta.Err(sta.Invalid, "inp: %q is not a sectioned binary mesh", filename)
		}
		if version, err = readI32(file); err != nil || version < 2 {
			return nil, sta.Err(sta.Invalid, "inp: unsupported mesh version %d", version)
		}
	}

	nvert := 0
	for {
		// processor zero drives; workers follow the broadcast keyword
		header := []int{KwEnd, 0}
		if comm.Once() {
			var h sectionHeader
			errH := binary.Read(file, meshbOrder, &h)
			if errH == io.EOF {
				header[0] = KwEnd
			} else if errH != nil {
				return nil, sta.Err(sta.Invalid, "inp: short section header")
			} else {
				header[0] = int(h.Keyword)
				header[1] = int(h.Next)
			}
		}
		comm.BcastInt(header)
		keyword := header[0]
		if keyword == KwEnd {
			break
		}
		switch keyword {
		case KwDimension:
			dim := []int{3}
			if comm.Once() {
				d, errD := readI32(file)
				if errD != nil {
					return nil, sta.Err(sta.Invalid, "inp: short dimension")
				}
				dim[0] = int(d)
			}
			comm.BcastInt(dim)
			m.Twod = dim[0] == 2
		case KwVertices:
			nvert, err = meshbVertices(m, file)
			if err != nil {
				return
			}
			m.SetNGlobal(nvert)
		case KwEdges:
			err = meshbCells(m, file, msh.KindEdg, nvert)
			if err != nil {
				return
			}
		case KwTriangles:
			err = meshbCells(m, file, msh.KindTri, nvert)
			if err != nil {
				return
			}
		case KwTetrahedra:
			err = meshbCells(m, file, msh.KindTet, nvert)
			if err != nil {
				return
			}
		case KwGeomNode, KwGeomEdge, KwGeomFace:
			err = meshbGeom(m, file, geo.Type(keyword-41), nvert)
			if err != nil {
				return
			}
		case KwCadFlow:
			err = meshbCadFlow(m, file)
			if err != nil {
				return
			}
		default:
			// skip through the recorded offset of the next section
			if comm.Once() {
				if _, err = file.Seek(int64(header[1]), io.SeekStart); err != nil {
					return nil, sta.Err(sta.Invalid, "inp: cannot skip keyword %d", keyword)
				}
			}
		}
	}
	if comm.Para() {
		err = m.GhostSyncXyz()
		if err != nil {
			return
		}
	}
	return m, m.ValidateCellNodes()
}

// meshbVertices streams the vertex section: coordinates plus a reference
// id, shipped to implicit partitions
func meshbVertices(m *msh.Mesh, file *os.File) (nvert int, err error) {
	comm := m.Comm
	count := []int{0}
	if comm.Once() {
		n, errN := readI32(file)
		if errN != nil {
			return 0, sta.Err(sta.Invalid, "inp: short vertex count")
		}
		count[0] = int(n)
	}
	comm.BcastInt(count)
	nvert = count[0]

	nread := 0
	for {
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
			for i := 0; i < section; i++ {
				for d := 0; d < 3; d++ {
					if xyz[d+3*i], err = readF64(file); err != nil {
						return 0, sta.Err(sta.Invalid, "inp: short vertex record")
					}
				}
				if _, err = readI32(file); err != nil { // reference id, unused
					return 0, sta.Err(sta.Invalid, "inp: short vertex reference")
				}
				gids[i] = nread + i
				dest[i] = msh.ImplicitPart(gids[i], nvert, comm.Size())
			}
		}
		rg, n, errSend := comm.BlindSendInt(dest, gids, 1, section)
		if errSend != nil {
			return 0, errSend
		}
		rx, _, errSend := comm.BlindSendDbl(dest, xyz, 3, section)
		if errSend != nil {
			return 0, errSend
		}
		for i := 0; i < n; i++ {
			local, errAdd := m.Nodes.Add(rg[i])
			if errAdd != nil {
				return 0, errAdd
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

// meshbCells streams one cell section; every record carries the node
// tuple plus a trailing reference id
func meshbCells(m *msh.Mesh, file *os.File, kind msh.Kind, nvert int) (err error) {
	comm := m.Comm
	np := kind.NodePer()
	stride := np + 1
	cells := m.CellsOf(kind)

	count := []int{0}
	if comm.Once() {
		n, errN := readI32(file)
		if errN != nil {
			return sta.Err(sta.Invalid, "inp: short %s count", kind)
		}
		count[0] = int(n)
	}
	comm.BcastInt(count)
	ncell := count[0]

	nread := 0
	for {
		section := 0
		if comm.Once() {
			section = ncell - nread
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
			rec := make([]int, stride)
			for c := 0; c < section; c++ {
				targets := make(map[int]bool)
				for i := 0; i < np; i++ {
					v, errV := readI32(file)
					if errV != nil {
						return sta.Err(sta.Invalid, "inp: short %s record", kind)
					}
					rec[i] = int(v) - 1
					targets[msh.ImplicitPart(rec[i], nvert, comm.Size())] = true
				}
				id, errV := readI32(file)
				if errV != nil {
					return sta.Err(sta.Invalid, "inp: short %s reference", kind)
				}
				rec[np] = int(id)
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
		nread += section
		if !comm.Para() && nread >= ncell {
			break
		}
	}
	return
}

// meshbGeom streams one geometry-record section: vertex, entity id and
// the parametric coordinates of the type, each record landing on the
// vertex's implicit partition
func meshbGeom(m *msh.Mesh, file *os.File, typ geo.Type, nvert int) (err error) {
	comm := m.Comm
	nparam := typ.NParam()

	count := []int{0}
	if comm.Once() {
		n, errN := readI32(file)
		if errN != nil {
			return sta.Err(sta.Invalid, "inp: short geometry count")
		}
		count[0] = int(n)
	}
	comm.BcastInt(count)
	ngeom := count[0]

	nread := 0
	for {
		section := 0
		if comm.Once() {
			section = ngeom - nread
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
		ints := make([]int, 2*section)
		params := make([]float64, 2*section)
		if comm.Once() {
			for g := 0; g < section; g++ {
				node, errV := readI32(file)
				if errV != nil {
					return sta.Err(sta.Invalid, "inp: short geometry record")
				}
				id, errV := readI32(file)
				if errV != nil {
					return sta.Err(sta.Invalid, "inp: short geometry id")
				}
				ints[0+2*g] = int(node) - 1
				ints[1+2*g] = int(id)
				for k := 0; k < nparam; k++ {
					if params[k+2*g], err = readF64(file); err != nil {
						return sta.Err(sta.Invalid, "inp: short geometry parameter")
					}
				}
				if nparam > 0 {
					if _, err = readF64(file); err != nil { // gref filler
						return sta.Err(sta.Invalid, "inp: short geometry filler")
					}
				}
				dest[g] = msh.ImplicitPart(ints[0+2*g], nvert, comm.Size())
			}
		}
		rint, n, errSend := comm.BlindSendInt(dest, ints, 2, section)
		if errSend != nil {
			return errSend
		}
		rpar, _, errSend := comm.BlindSendDbl(dest, params, 2, section)
		if errSend != nil {
			return errSend
		}
		for i := 0; i < n; i++ {
			local, errLoc := m.Nodes.Local(rint[0+2*i])
			if errLoc != nil {
				return sta.Wrap(errLoc, "inp: geometry record for unknown vertex")
			}
			err = m.Geom.Add(local, typ, rint[1+2*i], rpar[2*i:2*i+2])
			if err != nil {
				return
			}
		}
		nread += section
		if !comm.Para() && nread >= ngeom {
			break
		}
	}
	return
}

// meshbCadFlow reads the opaque CAD byte blob and broadcasts it
func meshbCadFlow(m *msh.Mesh, file *os.File) (err error) {
	comm := m.Comm
	count := []int{0}
	if comm.Once() {
		n, errN := readI32(file)
		if errN != nil {
			return sta.Err(sta.Invalid, "inp: short CAD flow count")
		}
		count[0] = int(n)
	}
	comm.BcastInt(count)
	blob := make([]byte, count[0])
	if comm.Once() {
		if _, err = io.ReadFull(file, blob); err != nil {
			return sta.Err(sta.Invalid, "inp: short CAD flow")
		}
	}
	if comm.Para() {
		ints := make([]int, len(blob))
		if comm.Once() {
			for i, b := range blob {
				ints[i] = int(b)
			}
		}
		comm.BcastInt(ints)
		for i, v := range ints {
			blob[i] = byte(v)
		}
	}
	m.CadID = blob
	return
}
