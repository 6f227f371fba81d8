// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"github.com/cpmech/gomesh/geo"
	"github.com/cpmech/gomesh/sta"
)

// ToBalance redistributes the mesh: every owned vertex moves to the
// partition given by the implicit balanced rule on global ids, cells move
// to the lowest-part of their vertices, and a one-layer ghost is
// reinstated by replicating cells onto every partition owning one of their
// vertices. Synchronous across all parts.
func (o *Mesh) ToBalance() (err error) {
	nglobal := o.NGlobal()
	nparts := o.Comm.Size()

	// vertex records
	vdest := make([]int, 0)
	vint := make([]int, 0)
	vdbl := make([]float64, 0)
	gdest := make([]int, 0)
	gint := make([]int, 0)
	gdbl := make([]float64, 0)
	for local := 0; local < o.Nodes.Max(); local++ {
		if !o.Nodes.Owned(local) {
			continue
		}
		global := o.Nodes.Global[local]
		part := ImplicitPart(global, nglobal, nparts)
		vdest = append(vdest, part)
		vint = append(vint, global)
		vdbl = append(vdbl, o.Nodes.Xyz[3*local:3*local+3]...)
		vdbl = append(vdbl, o.Nodes.MetLog[6*local:6*local+6]...)
		for _, r := range o.Geom.Records(local) {
			gdest = append(gdest, part)
			gint = append(gint, global, int(r.Type), r.ID, r.Gref)
			gdbl = append(gdbl, r.Param[0], r.Param[1])
		}
	}

	// cell records, shipped by the current owner to every new home
	type shipment struct {
		dest []int
		buf  []int
	}
	ships := make([]shipment, len(o.AllGroups()))
	for g, cells := range o.AllGroups() {
		np := cells.Kind.NodePer()
		stride := np + 1
		errEach := cells.Each(func(cell int, nodes []int) error {
			part, errPart := cells.Part(o.Nodes, cell)
			if errPart != nil {
				return errPart
			}
			if part != o.Comm.Rank() {
				return nil
			}
			targets := make(map[int]bool)
			rec := make([]int, stride)
			for i, n := range nodes {
				rec[i] = o.Nodes.Global[n]
				targets[ImplicitPart(rec[i], nglobal, nparts)] = true
			}
			rec[np] = EMPTY
			if cells.Kind.HasID() {
				rec[np] = cells.ID(cell)
			}
			for t := range targets {
				ships[g].dest = append(ships[g].dest, t)
				ships[g].buf = append(ships[g].buf, rec...)
			}
			return nil
		})
		if errEach != nil {
			return errEach
		}
	}

	// exchange
	rvint, nvert, err := o.Comm.BlindSendInt(vdest, vint, 1, len(vdest))
	if err != nil {
		return
	}
	rvdbl, _, err := o.Comm.BlindSendDbl(vdest, vdbl, 9, len(vdest))
	if err != nil {
		return
	}
	rgint, ngeom, err := o.Comm.BlindSendInt(gdest, gint, 4, len(gdest))
	if err != nil {
		return
	}
	rgdbl, _, err := o.Comm.BlindSendDbl(gdest, gdbl, 2, len(gdest))
	if err != nil {
		return
	}
	rcell := make([][]int, len(ships))
	ncell := make([]int, len(ships))
	for g := range ships {
		stride := o.AllGroups()[g].Kind.NodePer() + 1
		rcell[g], ncell[g], err = o.Comm.BlindSendInt(ships[g].dest, ships[g].buf, stride, len(ships[g].dest))
		if err != nil {
			return
		}
	}

	// rebuild this part
	fresh := NewMesh(o.Comm)
	fresh.Twod = o.Twod
	fresh.nGlobal = nglobal
	for i := 0; i < nvert; i++ {
		local, errAdd := fresh.Nodes.Add(rvint[i])
		if errAdd != nil {
			return sta.Wrap(errAdd, "msh: migrated vertex")
		}
		fresh.Nodes.Part[local] = o.Comm.Rank()
		copy(fresh.Nodes.Xyz[3*local:3*local+3], rvdbl[9*i:9*i+3])
		copy(fresh.Nodes.MetLog[6*local:6*local+6], rvdbl[9*i+3:9*i+9])
	}
	for i := 0; i < ngeom; i++ {
		global := rgint[0+4*i]
		local, errLoc := fresh.Nodes.Local(global)
		if errLoc != nil {
			return sta.Wrap(errLoc, "msh: migrated geometry record")
		}
		errAdd := fresh.Geom.Add(local, geo.Type(rgint[1+4*i]), rgint[2+4*i],
			[]float64{rgdbl[0+2*i], rgdbl[1+2*i]})
		if errAdd != nil {
			return errAdd
		}
		if r, errFind := fresh.Geom.Find(local, geo.Type(rgint[1+4*i]), rgint[2+4*i]); errFind == nil {
			r.Gref = rgint[3+4*i]
		}
	}
	for g, cells := range fresh.AllGroups() {
		np := cells.Kind.NodePer()
		stride := np + 1
		seen := make(map[string]bool)
		locals := make([]int, np)
		for i := 0; i < ncell[g]; i++ {
			rec := rcell[g][stride*i : stride*(i+1)]
			key := sortedKey(rec[:np])
			if seen[key] {
				continue
			}
			seen[key] = true
			for j := 0; j < np; j++ {
				local, errLoc := fresh.Nodes.Local(rec[j])
				if errLoc != nil {
					// ghost vertex from a neighboring partition
					local, errLoc = fresh.Nodes.Add(rec[j])
					if errLoc != nil {
						return sta.Wrap(errLoc, "msh: ghost vertex")
					}
					fresh.Nodes.Part[local] = ImplicitPart(rec[j], nglobal, nparts)
				}
				locals[j] = local
			}
			cell, errAdd := cells.Add(fresh.Nodes, locals)
			if errAdd != nil {
				return sta.Wrap(errAdd, "msh: migrated cell")
			}
			if cells.Kind.HasID() {
				cells.SetID(cell, rec[np])
			}
		}
	}

	// install and refresh ghost copies from their owners
	o.Nodes = fresh.Nodes
	o.Tet, o.Pyr, o.Pri, o.Hex = fresh.Tet, fresh.Pyr, fresh.Pri, fresh.Hex
	o.Tri, o.Qua, o.Edg = fresh.Tri, fresh.Qua, fresh.Edg
	o.Geom = fresh.Geom
	err = o.GhostSyncXyz()
	if err != nil {
		return
	}
	return o.GhostSyncMetric()
}
