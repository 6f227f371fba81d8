// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"math"
	"testing"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gosl/chk"
)

func Test_tree01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("tree01. bounding-sphere tree touching query")

	// three unit spheres along x
	items := []int{10, 20, 30}
	centers := []float64{0, 0, 0, 5, 0, 0, 10, 0, 0}
	radii := []float64{1, 1, 1}
	tree := NewTree(items, centers, radii)

	cells := tree.Touching([]float64{0.5, 0, 0}, 1e-12)
	chk.Ints(tst, "near first", cells, []int{10})

	cells = tree.Touching([]float64{5.0, 0.5, 0}, 1e-12)
	chk.Ints(tst, "near second", cells, []int{20})

	cells = tree.Touching([]float64{100, 0, 0}, 1e-12)
	if len(cells) != 0 {
		tst.Errorf("far point touched %v\n", cells)
		return
	}

	// fuzz reaches a sphere missed without it
	cells = tree.Touching([]float64{2.5, 0, 0}, 2.0)
	chk.IntAssert(len(cells), 2)
}

func Test_identity01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("identity01. every vertex coincides with its donor")

	m := msh.SixTetCubeMesh()
	it, err := NewIdentity(m)
	if err != nil {
		tst.Errorf("NewIdentity failed: %v\n", err)
		return
	}
	maxError, err := it.MaxError()
	if err != nil {
		tst.Errorf("MaxError failed: %v\n", err)
		return
	}
	if maxError > 1e-12 {
		tst.Errorf("identity max error %g\n", maxError)
		return
	}
	for node := 0; node < m.Nodes.Max(); node++ {
		if it.Cell[node] == msh.EMPTY {
			tst.Errorf("vertex %d not located\n", node)
			return
		}
		// the vertex-coincident basis has one unit coordinate
		b := it.Bary[4*node : 4*node+4]
		maxb := math.Max(math.Max(b[0], b[1]), math.Max(b[2], b[3]))
		chk.Float64(tst, "unit bary", 1e-12, maxb, 1.0)
	}
}

func Test_locate01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("locate01. full three-stage locate between equal bricks")

	from := msh.BrickMesh(3)
	to := msh.BrickMesh(3)
	it, err := New(from, to)
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	err = it.Locate()
	if err != nil {
		tst.Errorf("Locate failed: %v\n", err)
		return
	}
	maxError, err := it.MaxError()
	if err != nil {
		tst.Errorf("MaxError failed: %v\n", err)
		return
	}
	if maxError > 1e-12 {
		tst.Errorf("locate max error %g\n", maxError)
		return
	}
	minBary, err := it.MinBary()
	if err != nil {
		tst.Errorf("MinBary failed: %v\n", err)
		return
	}
	if minBary < it.Opts.Inside {
		tst.Errorf("min bary %g below inside tolerance\n", minBary)
		return
	}
	err = it.Stats()
	if err != nil {
		tst.Errorf("Stats failed: %v\n", err)
	}
}

func Test_locate02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("locate02. point just outside lands through the tree")

	from := msh.SixTetCubeMesh()
	to := msh.NewMesh(from.Comm)
	local, _ := to.Nodes.Add(0)
	to.Nodes.SetXyz(local, 0.5, 0.5, -1e-10)
	to.SetNGlobal(1)

	it, err := New(from, to)
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	it.Opts.Fuzz = 1e-9
	err = it.Locate()
	if err != nil {
		tst.Errorf("Locate failed: %v\n", err)
		return
	}
	if it.Cell[local] == msh.EMPTY {
		tst.Errorf("receptor not located\n")
		return
	}
	// slight extrapolation below the z=0 surface
	minBary, err := it.MinBary()
	if err != nil {
		tst.Errorf("MinBary failed: %v\n", err)
		return
	}
	if minBary >= 0.0 || minBary < -1e-8 {
		tst.Errorf("expected tiny extrapolation, min bary %g\n", minBary)
		return
	}
	// the donor touches the z=0 boundary plane
	nodes := make([]int, 4)
	err = from.Tet.Nodes(it.Cell[local], nodes)
	if err != nil {
		tst.Errorf("Nodes failed: %v\n", err)
		return
	}
	onPlane := 0
	for _, n := range nodes {
		if math.Abs(from.Nodes.Xyz[2+3*n]) < 1e-12 {
			onPlane++
		}
	}
	if onPlane < 3 {
		tst.Errorf("donor tet is not surface adjacent\n")
	}
}

func Test_between01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("between01. warm locate of an edge midpoint")

	m := msh.SixTetCubeMesh()
	it, err := NewIdentity(m)
	if err != nil {
		tst.Errorf("NewIdentity failed: %v\n", err)
		return
	}
	newNode, err := m.Nodes.Add(8)
	if err != nil {
		tst.Errorf("Add failed: %v\n", err)
		return
	}
	m.Nodes.SetXyz(newNode, 0.5, 0.5, 0.5)
	err = it.LocateBetween(0, 6, newNode)
	if err != nil {
		tst.Errorf("LocateBetween failed: %v\n", err)
		return
	}
	if it.Cell[newNode] == msh.EMPTY {
		tst.Errorf("midpoint not located\n")
		return
	}
	b := it.Bary[4*newNode : 4*newNode+4]
	sum := b[0] + b[1] + b[2] + b[3]
	chk.Float64(tst, "bary sum", 1e-12, sum, 1.0)
}

func Test_scalar01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("scalar01. linear field transfers exactly")

	from := msh.BrickMesh(2)
	to := msh.BrickMesh(2)
	it, err := New(from, to)
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	err = it.Locate()
	if err != nil {
		tst.Errorf("Locate failed: %v\n", err)
		return
	}
	f := func(x, y, z float64) float64 { return 1.0 + x + 2.0*y + 3.0*z }
	fromField := make([]float64, from.Nodes.Max())
	for n := 0; n < from.Nodes.Max(); n++ {
		x := from.Nodes.XyzOf(n)
		fromField[n] = f(x[0], x[1], x[2])
	}
	toField := make([]float64, to.Nodes.Max())
	err = it.Scalar(1, fromField, toField)
	if err != nil {
		tst.Errorf("Scalar failed: %v\n", err)
		return
	}
	for n := 0; n < to.Nodes.Max(); n++ {
		x := to.Nodes.XyzOf(n)
		chk.Float64(tst, "f", 1e-11, toField[n], f(x[0], x[1], x[2]))
	}
}

func Test_integrate01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("integrate01. quadrature error of coincident fields")

	m := msh.SixTetCubeMesh()
	field := make([]float64, m.Nodes.Max())
	truth := make([]float64, m.Nodes.Max())
	for n := 0; n < m.Nodes.Max(); n++ {
		x := m.Nodes.XyzOf(n)
		field[n] = x[0]
		truth[n] = x[0]
	}
	result, err := Integrate(m, field, truth, 2)
	if err != nil {
		tst.Errorf("Integrate failed: %v\n", err)
		return
	}
	chk.Float64(tst, "zero error", 1e-14, result, 0.0)

	for n := 0; n < m.Nodes.Max(); n++ {
		field[n] = truth[n] + 1.0
	}
	result, err = Integrate(m, field, truth, 2)
	if err != nil {
		tst.Errorf("Integrate failed: %v\n", err)
		return
	}
	// constant offset of one over unit volume
	chk.Float64(tst, "unit offset", 1e-10, result, 1.0)
}
