// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gomesh/geo"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/out"
	"github.com/cpmech/gosl/chk"
)

func Test_ugrid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ugrid01. counted binary format round-trip")

	m := msh.SixTetCubeMesh()
	dir := tst.TempDir()
	fn := filepath.Join(dir, "cube.lb8.ugrid")
	err := out.WriteUgrid(m, fn, binary.LittleEndian)
	if err != nil {
		tst.Errorf("WriteUgrid failed: %v\n", err)
		return
	}

	back, err := ReadUgrid(m.Comm, fn, binary.LittleEndian)
	if err != nil {
		tst.Errorf("ReadUgrid failed: %v\n", err)
		return
	}
	chk.IntAssert(back.Nodes.N(), 8)
	chk.IntAssert(back.Tet.N(), 6)
	chk.IntAssert(back.Tri.N(), 12)
	for local := 0; local < back.Nodes.Max(); local++ {
		g := back.Nodes.Global[local]
		orig, errLoc := m.Nodes.Local(g)
		if errLoc != nil {
			tst.Errorf("global %d missing in source\n", g)
			return
		}
		chk.Vector(tst, "xyz", 1e-15, back.Nodes.XyzOf(local), m.Nodes.XyzOf(orig))
	}
	err = back.ValidateAll()
	if err != nil {
		tst.Errorf("ValidateAll failed: %v\n", err)
		return
	}

	// writing the re-read mesh reproduces the file byte for byte
	fn2 := filepath.Join(dir, "cube2.lb8.ugrid")
	err = out.WriteUgrid(back, fn2, binary.LittleEndian)
	if err != nil {
		tst.Errorf("WriteUgrid failed: %v\n", err)
		return
	}
	b1, _ := os.ReadFile(fn)
	b2, _ := os.ReadFile(fn2)
	if len(b1) == 0 || len(b1) != len(b2) {
		tst.Errorf("file sizes differ: %d %d\n", len(b1), len(b2))
		return
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			tst.Errorf("files differ at byte %d\n", i)
			return
		}
	}
}

func Test_meshb01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("meshb01. sectioned binary format round-trip")

	m := msh.UnitTetMesh()
	m.Geom.Add(0, geo.Face, 1, []float64{0.25, 0.75})
	m.Geom.Add(1, geo.Edge, 2, []float64{0.5})
	m.CadID = []byte{1, 2, 3, 4}

	dir := tst.TempDir()
	fn := filepath.Join(dir, "tet.meshb")
	err := out.WriteMeshb(m, fn)
	if err != nil {
		tst.Errorf("WriteMeshb failed: %v\n", err)
		return
	}
	back, err := ReadMeshb(m.Comm, fn)
	if err != nil {
		tst.Errorf("ReadMeshb failed: %v\n", err)
		return
	}
	chk.IntAssert(back.Nodes.N(), 4)
	chk.IntAssert(back.Tet.N(), 1)
	chk.IntAssert(back.Tri.N(), 4)
	r, err := back.Geom.Find(0, geo.Face, 1)
	if err != nil {
		tst.Errorf("face record lost: %v\n", err)
		return
	}
	chk.Float64(tst, "u", 1e-15, r.Param[0], 0.25)
	chk.Float64(tst, "v", 1e-15, r.Param[1], 0.75)
	r, err = back.Geom.Find(1, geo.Edge, 2)
	if err != nil {
		tst.Errorf("edge record lost: %v\n", err)
		return
	}
	chk.Float64(tst, "t", 1e-15, r.Param[0], 0.5)
	if len(back.CadID) != 4 || back.CadID[2] != 3 {
		tst.Errorf("CAD byte flow lost: %v\n", back.CadID)
	}
}

func Test_solb01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solb01. metric solution round-trip and ordering")

	m := msh.SixTetCubeMesh()
	// distinct components, diagonally dominant to stay SPD
	want := []float64{10.0, 1.0, 2.0, 20.0, 3.0, 30.0}
	for local := 0; local < m.Nodes.Max(); local++ {
		err := m.Nodes.MetricSet(local, want)
		if err != nil {
			tst.Errorf("MetricSet failed: %v\n", err)
			return
		}
	}
	dir := tst.TempDir()
	fn := filepath.Join(dir, "metric.solb")
	err := out.WriteMetricSolb(m, fn)
	if err != nil {
		tst.Errorf("WriteMetricSolb failed: %v\n", err)
		return
	}

	// the disk record is (m11, m12, m22, m13, m23, m33)
	raw, err := os.ReadFile(fn)
	if err != nil {
		tst.Errorf("read raw solb: %v\n", err)
		return
	}
	rec := make([]float64, 6)
	if err = binary.Read(bytes.NewReader(raw[28:]), binary.LittleEndian, rec); err != nil {
		tst.Errorf("decode raw solb: %v\n", err)
		return
	}
	chk.Float64(tst, "m11", 1e-9, rec[0], want[0])
	chk.Float64(tst, "m12", 1e-9, rec[1], want[1])
	chk.Float64(tst, "m22", 1e-9, rec[2], want[3])
	chk.Float64(tst, "m13", 1e-9, rec[3], want[2])
	chk.Float64(tst, "m23", 1e-9, rec[4], want[4])
	chk.Float64(tst, "m33", 1e-9, rec[5], want[5])

	fresh := msh.SixTetCubeMesh()
	err = ReadMetricSolb(fresh, fn)
	if err != nil {
		tst.Errorf("ReadMetricSolb failed: %v\n", err)
		return
	}
	got := make([]float64, 6)
	for local := 0; local < fresh.Nodes.Max(); local++ {
		err = fresh.Nodes.MetricGet(local, got)
		if err != nil {
			tst.Errorf("MetricGet failed: %v\n", err)
			return
		}
		chk.Vector(tst, "metric", 1e-8, got, want)
	}
}

func Test_solb02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solb02. scalar solution round-trip")

	m := msh.SixTetCubeMesh()
	field := make([]float64, m.Nodes.Max())
	for local := 0; local < m.Nodes.Max(); local++ {
		x := m.Nodes.XyzOf(local)
		field[local] = x[0] + 10.0*x[1] + 100.0*x[2]
	}
	dir := tst.TempDir()
	fn := filepath.Join(dir, "field.solb")
	err := out.WriteScalarSolb(m, field, fn)
	if err != nil {
		tst.Errorf("WriteScalarSolb failed: %v\n", err)
		return
	}
	back, err := ReadScalarSolb(m, fn)
	if err != nil {
		tst.Errorf("ReadScalarSolb failed: %v\n", err)
		return
	}
	chk.Vector(tst, "field", 1e-14, back, field)
}

func Test_settings01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("settings01. JSON settings over defaults")

	dir := tst.TempDir()
	fn := filepath.Join(dir, "adapt.json")
	os.WriteFile(fn, []byte(`{"complexity": 5000, "gradation": 1.5, "pnorm": 4}`), 0644)
	log := filepath.Join(dir, "log")
	os.Mkdir(log, 0755)
	err := InitLogFile(log, "t_settings")
	if err != nil {
		tst.Errorf("InitLogFile failed: %v\n", err)
		return
	}
	defer FlushLog()

	s, err := ReadSettings(fn)
	if err != nil {
		tst.Errorf("ReadSettings failed: %v\n", err)
		return
	}
	chk.Float64(tst, "complexity", 1e-15, s.Complexity, 5000.0)
	chk.Float64(tst, "gradation", 1e-15, s.Gradation, 1.5)
	chk.IntAssert(s.Pnorm, 4)
	chk.IntAssert(s.WalkLimit, 215) // default kept

	_, err = ReadSettings(filepath.Join(dir, "missing.json"))
	if err == nil {
		tst.Errorf("ReadSettings accepted a missing file\n")
	}
}
