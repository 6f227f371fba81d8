// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"math"

	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// fixtures for tests; serial meshes with boundary triangles closed

// UnitTetMesh returns the single unit tetrahedron with its four boundary
// triangles
func UnitTetMesh() (o *Mesh) {
	o = NewMesh(msg.NewComm())
	coords := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for g, c := range coords {
		local, err := o.Nodes.Add(g)
		if err != nil {
			chk.Panic("fixture: %v", err)
		}
		o.Nodes.SetXyz(local, c[0], c[1], c[2])
	}
	_, err := o.Tet.Add(o.Nodes, []int{0, 1, 2, 3})
	if err != nil {
		chk.Panic("fixture: %v", err)
	}
	closeBoundary(o)
	o.SetNGlobal(4)
	return
}

// SixTetCubeMesh returns the unit cube split into six tetrahedra around the
// main diagonal, with twelve boundary triangles
func SixTetCubeMesh() (o *Mesh) {
	o = NewMesh(msg.NewComm())
	coords := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	for g, c := range coords {
		local, err := o.Nodes.Add(g)
		if err != nil {
			chk.Panic("fixture: %v", err)
		}
		o.Nodes.SetXyz(local, c[0], c[1], c[2])
	}
	tets := [][]int{
		{0, 1, 2, 6}, {0, 2, 3, 6}, {0, 3, 7, 6},
		{0, 7, 4, 6}, {0, 4, 5, 6}, {0, 5, 1, 6},
	}
	for _, t := range tets {
		_, err := o.Tet.Add(o.Nodes, t)
		if err != nil {
			chk.Panic("fixture: %v", err)
		}
	}
	closeBoundary(o)
	o.SetNGlobal(8)
	return
}

// BrickMesh returns an n x n x n unit brick, each cube split into six
// tetrahedra, with the boundary closed by triangles
func BrickMesh(n int) (o *Mesh) {
	o = NewMesh(msg.NewComm())
	np := n + 1
	id := func(i, j, k int) int { return i + np*(j+np*k) }
	ticks := utl.LinSpace(0, 1, np)
	for k := 0; k < np; k++ {
		for j := 0; j < np; j++ {
			for i := 0; i < np; i++ {
				local, err := o.Nodes.Add(id(i, j, k))
				if err != nil {
					chk.Panic("fixture: %v", err)
				}
				o.Nodes.SetXyz(local, ticks[i], ticks[j], ticks[k])
			}
		}
	}
	pattern := [][]int{
		{0, 1, 2, 6}, {0, 2, 3, 6}, {0, 3, 7, 6},
		{0, 7, 4, 6}, {0, 4, 5, 6}, {0, 5, 1, 6},
	}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				corner := []int{
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1),
				}
				for _, t := range pattern {
					_, err := o.Tet.Add(o.Nodes, []int{corner[t[0]], corner[t[1]], corner[t[2]], corner[t[3]]})
					if err != nil {
						chk.Panic("fixture: %v", err)
					}
				}
			}
		}
	}
	closeBoundary(o)
	o.SetNGlobal(np * np * np)
	return
}

// closeBoundary adds a boundary triangle for every unmatched tet face,
// with a surface id derived from the face plane
func closeBoundary(o *Mesh) {
	count := make(map[string]int)
	faces := make(map[string][]int)
	face := make([]int, 3)
	err := o.Tet.Each(func(cell int, nodes []int) error {
		for f := 0; f < 4; f++ {
			for i := 0; i < 3; i++ {
				face[i] = nodes[tetFaces[f][i]]
			}
			key := sortedKey(face)
			count[key]++
			faces[key] = []int{face[0], face[1], face[2]}
		}
		return nil
	})
	if err != nil {
		chk.Panic("fixture: %v", err)
	}
	for key, n := range count {
		if n != 1 {
			continue
		}
		nodes := faces[key]
		tri, errAdd := o.Tri.Add(o.Nodes, nodes)
		if errAdd != nil {
			chk.Panic("fixture: %v", errAdd)
		}
		o.Tri.SetID(tri, facePlaneID(o, nodes))
	}
}

// facePlaneID classifies an axis-aligned boundary face of the unit cube
func facePlaneID(o *Mesh, nodes []int) int {
	for axis := 0; axis < 3; axis++ {
		lo, hi := true, true
		for _, n := range nodes {
			x := o.Nodes.Xyz[axis+3*n]
			if math.Abs(x) > 1e-12 {
				lo = false
			}
			if math.Abs(x-1.0) > 1e-12 {
				hi = false
			}
		}
		if lo {
			return 1 + 2*axis
		}
		if hi {
			return 2 + 2*axis
		}
	}
	return 1
}
