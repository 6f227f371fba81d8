// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/io"
)

// tet faces opposite each node, oriented outward
var tetFaces = [4][3]int{
	{1, 3, 2},
	{0, 2, 3},
	{0, 3, 1},
	{0, 1, 2},
}

// ValidateAll runs every mesh invariant check and returns the first failure
func (o *Mesh) ValidateAll() (err error) {
	err = o.ValidateCellNodes()
	if err != nil {
		return
	}
	err = o.ValidateCellOwnership()
	if err != nil {
		return
	}
	err = o.ValidateFaces()
	if err != nil {
		return
	}
	err = o.ValidateVolumes()
	if err != nil {
		return
	}
	return o.ValidateUnusedNodes()
}

// ValidateCellNodes verifies that every cell references valid vertices and
// appears in the adjacency of each of its vertices
func (o *Mesh) ValidateCellNodes() (err error) {
	for _, cells := range o.AllGroups() {
		errEach := cells.Each(func(cell int, nodes []int) error {
			for _, n := range nodes {
				if !o.Nodes.Valid(n) {
					return sta.Err(sta.Invalid, "msh: %s cell %d references invalid node %d", cells.Kind, cell, n)
				}
				if !cells.Adj().Exists(n, cell) {
					return sta.Err(sta.Invalid, "msh: %s cell %d missing from adjacency of node %d", cells.Kind, cell, n)
				}
			}
			return nil
		})
		if errEach != nil {
			return errEach
		}
	}
	return
}

// ValidateCellOwnership verifies that every cell has at least one owned
// vertex; a cell all of whose vertices are ghosts has leaked past the
// one-layer replication
func (o *Mesh) ValidateCellOwnership() (err error) {
	for _, cells := range o.AllGroups() {
		errEach := cells.Each(func(cell int, nodes []int) error {
			for _, n := range nodes {
				if o.Nodes.Owned(n) {
					return nil
				}
			}
			return sta.Err(sta.Invalid, "msh: %s cell %d has no owned node", cells.Kind, cell)
		})
		if errEach != nil {
			return errEach
		}
	}
	return
}

// ValidateFaces verifies the face-conformance of the tet table: every tet
// face is shared by exactly two tets, or by one tet and one boundary
// triangle. In a parallel run an unmatched face without a boundary
// triangle is not reported, since a neighboring part may complete it.
func (o *Mesh) ValidateFaces() (err error) {
	count := make(map[string]int)
	boundary := make(map[string]bool)
	face := make([]int, 3)
	errEach := o.Tet.Each(func(cell int, nodes []int) error {
		for f := 0; f < 4; f++ {
			for i := 0; i < 3; i++ {
				face[i] = nodes[tetFaces[f][i]]
			}
			count[sortedKey(face)]++
		}
		return nil
	})
	if errEach != nil {
		return errEach
	}
	errEach = o.Tri.Each(func(cell int, nodes []int) error {
		boundary[sortedKey(nodes)] = true
		return nil
	})
	if errEach != nil {
		return errEach
	}
	for key, n := range count {
		if n > 2 {
			return sta.Err(sta.Invalid, "msh: interior face shared by %d tets", n)
		}
		if n == 1 && !boundary[key] && !o.Comm.Para() {
			return sta.Err(sta.Invalid, "msh: unmatched tet face without boundary triangle")
		}
	}
	for key := range boundary {
		if count[key] > 1 {
			return sta.Err(sta.Invalid, "msh: boundary triangle matched by %d tets", count[key])
		}
	}
	return
}

// ValidateVolumes verifies that every tet volume is strictly positive
func (o *Mesh) ValidateVolumes() (err error) {
	return o.Tet.Each(func(cell int, nodes []int) error {
		vol := o.TetVolOf(nodes)
		if vol <= 0.0 {
			io.Pf("tet %d vol %g\n", cell, vol)
			for _, n := range nodes {
				io.Pf("  %s\n", o.Nodes.Location(n))
			}
			return sta.Err(sta.DivZero, "msh: tet %d has non-positive volume %g", cell, vol)
		}
		return nil
	})
}

// ValidateUnusedNodes verifies that no vertex is orphaned: each valid
// vertex has an incident cell on some partition. Locally unused owned
// vertices are reported; ghosts may legitimately be cell-less only if
// stale, which is also a failure.
func (o *Mesh) ValidateUnusedNodes() (err error) {
	unused := 0
	for local := 0; local < o.Nodes.Max(); local++ {
		if !o.Nodes.Valid(local) {
			continue
		}
		used := false
		for _, cells := range o.AllGroups() {
			if !cells.NodeEmpty(local) {
				used = true
				break
			}
		}
		if !used {
			io.Pf("unused %s\n", o.Nodes.Location(local))
			unused++
		}
	}
	total := []int{unused}
	o.Comm.AllSumInt(total)
	if total[0] > 0 {
		return sta.Err(sta.Invalid, "msh: %d unused vertices", total[0])
	}
	return
}
