// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

func Test_node01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node01. add, remove, reuse and compaction")

	nd := NewNodes(0)
	l0, err := nd.Add(10)
	if err != nil {
		tst.Errorf("Add failed: %v\n", err)
		return
	}
	l1, _ := nd.Add(11)
	l2, _ := nd.Add(12)
	chk.Ints(tst, "locals", []int{l0, l1, l2}, utl.IntRange(3))
	chk.IntAssert(nd.N(), 3)

	_, err = nd.Add(11)
	if err == nil {
		tst.Errorf("Add accepted a duplicate global\n")
		return
	}

	err = nd.Remove(l1)
	if err != nil {
		tst.Errorf("Remove failed: %v\n", err)
		return
	}
	if nd.Valid(l1) {
		tst.Errorf("removed slot still valid\n")
		return
	}
	l3, _ := nd.Add(13)
	chk.IntAssert(l3, l1) // reused slot

	old2new, new2old := nd.Compact()
	chk.IntAssert(nd.N(), 3)
	chk.IntAssert(nd.Max(), 3)
	for n, old := range new2old {
		chk.IntAssert(old2new[old], n)
	}
	for local := 0; local < nd.Max(); local++ {
		g := nd.Global[local]
		back, errLoc := nd.Local(g)
		if errLoc != nil {
			tst.Errorf("Local failed after compaction: %v\n", errLoc)
			return
		}
		chk.IntAssert(back, local)
	}
}

func Test_node02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node02. metric storage round-trip through log form")

	nd := NewNodes(0)
	local, _ := nd.Add(0)
	m := []float64{100.0, 7.0, -3.0, 25.0, 2.0, 9.0}
	err := nd.MetricSet(local, m)
	if err != nil {
		tst.Errorf("MetricSet failed: %v\n", err)
		return
	}
	back := make([]float64, 6)
	err = nd.MetricGet(local, back)
	if err != nil {
		tst.Errorf("MetricGet failed: %v\n", err)
		return
	}
	chk.Vector(tst, "m", 1e-9, back, m)

	// default metric is the identity
	l2, _ := nd.Add(1)
	err = nd.MetricGet(l2, back)
	if err != nil {
		tst.Errorf("MetricGet failed: %v\n", err)
		return
	}
	chk.Vector(tst, "identity", 1e-14, back, []float64{1, 0, 0, 1, 0, 1})
}

func Test_adj01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("adj01. chained node-to-item map")

	a := NewAdj(3)
	a.Register(0, 100)
	a.Register(0, 200)
	a.Register(2, 300)
	chk.IntAssert(a.Degree(0), 2)
	chk.IntAssert(a.Degree(1), 0)
	if !a.Exists(0, 100) || !a.Exists(0, 200) || !a.Exists(2, 300) {
		tst.Errorf("registered items missing\n")
		return
	}
	err := a.Unregister(0, 100)
	if err != nil {
		tst.Errorf("Unregister failed: %v\n", err)
		return
	}
	if a.Exists(0, 100) {
		tst.Errorf("unregistered item still present\n")
		return
	}
	chk.IntAssert(a.Degree(0), 1)
	err = a.Unregister(1, 999)
	if err == nil {
		tst.Errorf("Unregister of missing item did not fail\n")
	}
}

func Test_cell01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cell01. cell table with adjacency and faces")

	m := SixTetCubeMesh()
	chk.IntAssert(m.Tet.N(), 6)
	chk.IntAssert(m.Tri.N(), 12)

	// every tet appears under each of its nodes
	nodes := make([]int, 4)
	err := m.Tet.Each(func(cell int, nn []int) error {
		for _, n := range nn {
			if !m.Tet.Adj().Exists(n, cell) {
				tst.Errorf("tet %d missing in adjacency of %d\n", cell, n)
			}
		}
		return nil
	})
	if err != nil {
		tst.Errorf("Each failed: %v\n", err)
		return
	}

	// nodes 0 and 6 touch all six tets
	chk.IntAssert(m.Tet.Adj().Degree(0), 6)
	chk.IntAssert(m.Tet.Adj().Degree(6), 6)

	// interior face 0-2-6 joins tets 0 and 1
	c0, c1, err := m.Tet.WithFace([]int{0, 2, 6, 0})
	if err != nil {
		tst.Errorf("WithFace failed: %v\n", err)
		return
	}
	if c0 == EMPTY || c1 == EMPTY {
		tst.Errorf("interior face should join two tets: %d %d\n", c0, c1)
		return
	}

	// boundary face 0-1-2 (z=0 plane) has one tet
	err = m.Tet.Nodes(0, nodes)
	if err != nil {
		tst.Errorf("Nodes failed: %v\n", err)
		return
	}
	c0, c1, err = m.Tet.WithFace([]int{0, 1, 2, 0})
	if err != nil {
		tst.Errorf("WithFace failed: %v\n", err)
		return
	}
	if c0 == EMPTY || c1 != EMPTY {
		tst.Errorf("boundary face should join one tet: %d %d\n", c0, c1)
		return
	}

	// invalid cells are rejected
	_, err = m.Tet.Add(m.Nodes, []int{0, 1, 2, 2})
	if err == nil {
		tst.Errorf("Add accepted a repeated node\n")
		return
	}
	_, err = m.Tet.Add(m.Nodes, []int{0, 1, 2, 99})
	if err == nil {
		tst.Errorf("Add accepted an invalid node\n")
	}
}

func Test_edge01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("edge01. unique edge enumeration")

	m := UnitTetMesh()
	edges, err := m.BuildEdges()
	if err != nil {
		tst.Errorf("BuildEdges failed: %v\n", err)
		return
	}
	chk.IntAssert(edges.N(), 6)
	for e := 0; e < edges.N(); e++ {
		n0, n1 := edges.Node(0, e), edges.Node(1, e)
		if n0 >= n1 {
			tst.Errorf("edge (%d,%d) not ordered\n", n0, n1)
			return
		}
		// endpoints share at least one cell
		shared := 0
		err = m.Tet.WithSide(n0, n1, func(cell int) error { shared++; return nil })
		if err != nil || shared == 0 {
			tst.Errorf("edge (%d,%d) with no common cell\n", n0, n1)
			return
		}
	}
}

func Test_validate01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("validate01. invariants of the cube fixture")

	m := SixTetCubeMesh()
	err := m.ValidateAll()
	if err != nil {
		tst.Errorf("ValidateAll failed: %v\n", err)
		return
	}

	// orphan vertex is detected
	l, _ := m.Nodes.Add(100)
	_ = l
	err = m.ValidateUnusedNodes()
	if err == nil {
		tst.Errorf("orphan vertex not detected\n")
	}
}

func Test_compact01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("compact01. mesh compaction rewrites cells")

	m := SixTetCubeMesh()

	// punch a hole in the node numbering
	extra, _ := m.Nodes.Add(50)
	m.Nodes.SetXyz(extra, 2, 2, 2)
	m.Nodes.Remove(extra)

	old2new, new2old, err := m.Compact()
	if err != nil {
		tst.Errorf("Compact failed: %v\n", err)
		return
	}
	for n, old := range new2old {
		chk.IntAssert(old2new[old], n)
	}
	chk.IntAssert(m.Nodes.Max(), 8)
	err = m.ValidateAll()
	if err != nil {
		tst.Errorf("ValidateAll after compaction failed: %v\n", err)
	}
}

func Test_migrate01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("migrate01. serial redistribution is the identity")

	m := SixTetCubeMesh()
	err := m.ToBalance()
	if err != nil {
		tst.Errorf("ToBalance failed: %v\n", err)
		return
	}
	chk.IntAssert(m.Nodes.N(), 8)
	chk.IntAssert(m.Tet.N(), 6)
	chk.IntAssert(m.Tri.N(), 12)
	err = m.ValidateAll()
	if err != nil {
		tst.Errorf("ValidateAll after migration failed: %v\n", err)
	}
}

func Test_deepcopy01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("deepcopy01. clone preserves tables")

	m := UnitTetMesh()
	clone, err := m.DeepCopy()
	if err != nil {
		tst.Errorf("DeepCopy failed: %v\n", err)
		return
	}
	chk.IntAssert(clone.Nodes.N(), 4)
	chk.IntAssert(clone.Tet.N(), 1)
	chk.IntAssert(clone.Tri.N(), 4)
	err = clone.ValidateAll()
	if err != nil {
		tst.Errorf("clone invalid: %v\n", err)
	}
}
