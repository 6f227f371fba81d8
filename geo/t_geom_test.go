// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_geom01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom01. records, idempotent add, unique ids")

	g := New()
	err := g.Add(0, Face, 3, []float64{0.25, 0.5})
	if err != nil {
		tst.Errorf("Add failed: %v\n", err)
		return
	}
	err = g.Add(0, Face, 3, []float64{0.3, 0.6}) // idempotent: update in place
	if err != nil {
		tst.Errorf("Add failed: %v\n", err)
		return
	}
	chk.IntAssert(g.N(), 1)
	r, err := g.Find(0, Face, 3)
	if err != nil {
		tst.Errorf("Find failed: %v\n", err)
		return
	}
	chk.Float64(tst, "u", 1e-15, r.Param[0], 0.3)
	chk.Float64(tst, "v", 1e-15, r.Param[1], 0.6)

	id, err := g.UniqueID(0, Face)
	if err != nil {
		tst.Errorf("UniqueID failed: %v\n", err)
		return
	}
	chk.IntAssert(id, 3)

	g.Add(0, Face, 4, []float64{0, 0})
	_, err = g.UniqueID(0, Face)
	if err == nil {
		tst.Errorf("UniqueID did not flag ambiguity\n")
		return
	}
	_, err = g.UniqueID(0, Edge)
	if err == nil {
		tst.Errorf("UniqueID did not flag absence\n")
		return
	}

	g.RemoveAll(0)
	chk.IntAssert(g.N(), 0)
}

func Test_geom02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom02. parametric midpoint between vertices")

	g := New()
	g.Add(0, Edge, 7, []float64{1.0})
	g.Add(1, Edge, 7, []float64{3.0})
	g.Add(0, Face, 2, []float64{0.0, 0.0})
	g.Add(1, Face, 2, []float64{1.0, 0.5})
	g.Add(0, Face, 9, []float64{0.0, 0.0}) // not shared with node 1

	err := g.AddBetween(0, 1, 0.5, 5)
	if err != nil {
		tst.Errorf("AddBetween failed: %v\n", err)
		return
	}
	r, err := g.Find(5, Edge, 7)
	if err != nil {
		tst.Errorf("edge continuity lost: %v\n", err)
		return
	}
	chk.Float64(tst, "t", 1e-15, r.Param[0], 2.0)
	r, err = g.Find(5, Face, 2)
	if err != nil {
		tst.Errorf("face continuity lost: %v\n", err)
		return
	}
	chk.Float64(tst, "u", 1e-15, r.Param[0], 0.5)
	chk.Float64(tst, "v", 1e-15, r.Param[1], 0.25)
	_, err = g.Find(5, Face, 9)
	if err == nil {
		tst.Errorf("unshared face leaked to midpoint\n")
	}
}

func Test_geom03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("geom03. renumbering after compaction")

	g := New()
	g.Add(2, Edge, 1, []float64{0.5})
	g.Add(4, Face, 2, []float64{0.1, 0.2})
	old2new := []int{EMPTY, EMPTY, 0, EMPTY, 1}
	err := g.Renumber(old2new)
	if err != nil {
		tst.Errorf("Renumber failed: %v\n", err)
		return
	}
	if _, err = g.Find(0, Edge, 1); err != nil {
		tst.Errorf("record lost in renumbering: %v\n", err)
		return
	}
	if _, err = g.Find(1, Face, 2); err != nil {
		tst.Errorf("record lost in renumbering: %v\n", err)
	}
}
