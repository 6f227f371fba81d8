// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"github.com/cpmech/gomesh/geo"
	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
)

// Mesh is the partitioned mesh context threaded through all operations:
// the vertex table, one cell table per element kind, the geometry
// association and the communicator.
type Mesh struct {
	Comm  *msg.Comm
	Nodes *Nodes
	Tet   *Cells
	Pyr   *Cells
	Pri   *Cells
	Hex   *Cells
	Tri   *Cells
	Qua   *Cells
	Edg   *Cells
	Geom  *geo.Geom
	Twod  bool
	CadID []byte // opaque CAD byte-flow blob carried through I/O

	nGlobal int // vertices across all parts
}

// NewMesh returns an empty mesh bound to a communicator
func NewMesh(comm *msg.Comm) (o *Mesh) {
	o = new(Mesh)
	o.Comm = comm
	o.Nodes = NewNodes(comm.Rank())
	o.Tet = NewCells(KindTet, 0)
	o.Pyr = NewCells(KindPyr, 0)
	o.Pri = NewCells(KindPri, 0)
	o.Hex = NewCells(KindHex, 0)
	o.Tri = NewCells(KindTri, 0)
	o.Qua = NewCells(KindQua, 0)
	o.Edg = NewCells(KindEdg, 0)
	o.Geom = geo.New()
	return
}

// VolumeGroups returns the volume cell tables in canonical order
func (o *Mesh) VolumeGroups() []*Cells {
	return []*Cells{o.Tet, o.Pyr, o.Pri, o.Hex}
}

// AllGroups returns every cell table in canonical order
func (o *Mesh) AllGroups() []*Cells {
	return []*Cells{o.Tet, o.Pyr, o.Pri, o.Hex, o.Tri, o.Qua, o.Edg}
}

// CellsOf returns the table of a kind
func (o *Mesh) CellsOf(kind Kind) *Cells {
	return o.AllGroups()[kind]
}

// SetNGlobal records the total number of vertices across all parts
func (o *Mesh) SetNGlobal(n int) { o.nGlobal = n }

// NGlobal returns the total number of vertices across all parts, deriving
// it from the largest global id when not set by the reader
func (o *Mesh) NGlobal() int {
	if o.nGlobal > 0 {
		return o.nGlobal
	}
	maxg := []int{EMPTY}
	for local := 0; local < o.Nodes.Max(); local++ {
		if o.Nodes.Valid(local) && o.Nodes.Global[local] > maxg[0] {
			maxg[0] = o.Nodes.Global[local]
		}
	}
	o.Comm.AllMaxInt(maxg)
	o.nGlobal = maxg[0] + 1
	return o.nGlobal
}

// ImplicitPart returns the partition a global vertex id belongs to under
// the implicit balanced distribution used by the streaming reader
func ImplicitPart(global, nglobal, nparts int) int {
	chunk := (nglobal + nparts - 1) / nparts
	return global / chunk
}

// TetVolOf returns the signed volume of a tet given its local vertices
func (o *Mesh) TetVolOf(nodes []int) float64 {
	return mtx.TetVol(
		o.Nodes.XyzOf(nodes[0]), o.Nodes.XyzOf(nodes[1]),
		o.Nodes.XyzOf(nodes[2]), o.Nodes.XyzOf(nodes[3]))
}

// TriAreaOf returns the area of a triangle given its local vertices
func (o *Mesh) TriAreaOf(nodes []int) float64 {
	return mtx.TriArea(
		o.Nodes.XyzOf(nodes[0]), o.Nodes.XyzOf(nodes[1]), o.Nodes.XyzOf(nodes[2]))
}

// Bary4Of computes the barycentric coordinates of xyz in the tet with the
// given local vertices
func (o *Mesh) Bary4Of(bary []float64, nodes []int, xyz []float64) error {
	return mtx.Bary4(bary, xyz,
		o.Nodes.XyzOf(nodes[0]), o.Nodes.XyzOf(nodes[1]),
		o.Nodes.XyzOf(nodes[2]), o.Nodes.XyzOf(nodes[3]))
}

// Compact renumbers the vertex table to a dense range and rewrites every
// cell table and the geometry association. Returns both renumbering maps.
func (o *Mesh) Compact() (old2new, new2old []int, err error) {
	old2new, new2old = o.Nodes.Compact()
	for _, cells := range o.AllGroups() {
		err = cells.RenumberNodes(old2new, o.Nodes.Max())
		if err != nil {
			return
		}
	}
	err = o.Geom.Renumber(old2new)
	return
}

// DeepCopy clones the mesh into a new context on the same communicator
func (o *Mesh) DeepCopy() (clone *Mesh, err error) {
	clone = NewMesh(o.Comm)
	clone.Twod = o.Twod
	clone.nGlobal = o.nGlobal
	for local := 0; local < o.Nodes.Max(); local++ {
		if !o.Nodes.Valid(local) {
			continue
		}
		nn, errAdd := clone.Nodes.Add(o.Nodes.Global[local])
		if errAdd != nil {
			return nil, errAdd
		}
		if nn != local {
			// keep identical local numbering; pad copies are not expected
			return nil, sta.Err(sta.Invalid, "msh: deep copy requires a compact source, run Compact first")
		}
		clone.Nodes.Part[nn] = o.Nodes.Part[local]
		copy(clone.Nodes.Xyz[3*nn:3*nn+3], o.Nodes.Xyz[3*local:3*local+3])
		copy(clone.Nodes.MetLog[6*nn:6*nn+6], o.Nodes.MetLog[6*local:6*local+6])
	}
	for g, cells := range o.AllGroups() {
		target := clone.AllGroups()[g]
		err = cells.Each(func(cell int, nodes []int) error {
			nc, errAdd := target.Add(clone.Nodes, nodes)
			if errAdd != nil {
				return errAdd
			}
			if cells.Kind.HasID() {
				target.SetID(nc, cells.ID(cell))
			}
			return nil
		})
		if err != nil {
			return
		}
	}
	err = o.Geom.Each(func(node int, r geo.Record) error {
		param := []float64{r.Param[0], r.Param[1]}
		return clone.Geom.Add(node, r.Type, r.ID, param)
	})
	return
}
