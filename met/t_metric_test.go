// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"math"
	"testing"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gosl/chk"
)

func Test_imply01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("imply01. implied metric of the unit tet mesh")

	m := msh.UnitTetMesh()
	metric := make([]float64, 6*m.Nodes.Max())
	err := ImplyFrom(metric, m)
	if err != nil {
		tst.Errorf("ImplyFrom failed: %v\n", err)
		return
	}
	expected := []float64{1.0, 0.5, 0.5, 1.0, 0.5, 1.0}
	for local := 0; local < m.Nodes.Max(); local++ {
		chk.Vector(tst, "m", 1e-10, metric[6*local:6*local+6], expected)
	}
}

func Test_olympic01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("olympic01. olympic analytic field")

	m := msh.SixTetCubeMesh()
	err := OlympicNode(m, 0.05)
	if err != nil {
		tst.Errorf("OlympicNode failed: %v\n", err)
		return
	}
	mm := make([]float64, 6)
	for local := 0; local < m.Nodes.Max(); local++ {
		err = m.Nodes.MetricGet(local, mm)
		if err != nil {
			tst.Errorf("MetricGet failed: %v\n", err)
			return
		}
		chk.Float64(tst, "m11", 1e-8, mm[0], 100.0)
		z := m.Nodes.Xyz[2+3*local]
		hh := 0.05 + (0.1-0.05)*math.Abs(z-0.5)/0.5
		chk.Float64(tst, "m33", 1e-6, mm[5], 1.0/(hh*hh))
	}

	// spacing at the mid plane equals h
	mid := msh.NewMesh(m.Comm)
	local, _ := mid.Nodes.Add(0)
	mid.Nodes.SetXyz(local, 0, 0, 0.5)
	err = OlympicNode(mid, 0.05)
	if err != nil {
		tst.Errorf("OlympicNode failed: %v\n", err)
		return
	}
	mid.Nodes.MetricGet(local, mm)
	chk.Float64(tst, "h(0.5)", 1e-10, 1.0/math.Sqrt(mm[5]), 0.05)
}

func Test_complexity01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("complexity01. uniform metric over the unit cube")

	m := msh.SixTetCubeMesh()
	metric := make([]float64, 6*m.Nodes.Max())
	h := 0.1
	for local := 0; local < m.Nodes.Max(); local++ {
		metric[0+6*local] = 1.0 / (h * h)
		metric[3+6*local] = 1.0 / (h * h)
		metric[5+6*local] = 1.0 / (h * h)
	}
	c, err := Complexity(metric, m)
	if err != nil {
		tst.Errorf("Complexity failed: %v\n", err)
		return
	}
	// sqrt(det) = 1/h^3 over unit volume
	chk.Float64(tst, "complexity", 1e-8, c, 1.0/(h*h*h))

	err = SetComplexity(metric, m, 5000.0)
	if err != nil {
		tst.Errorf("SetComplexity failed: %v\n", err)
		return
	}
	c, err = Complexity(metric, m)
	if err != nil {
		tst.Errorf("Complexity failed: %v\n", err)
		return
	}
	chk.Float64(tst, "rescaled", 1e-6, c/5000.0, 1.0)
}

func Test_limith01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("limith01. spacing clamp is idempotent")

	m := msh.UnitTetMesh()
	metric := make([]float64, 6*m.Nodes.Max())
	for local := 0; local < m.Nodes.Max(); local++ {
		metric[0+6*local] = 1.0e6 // h = 0.001
		metric[3+6*local] = 1.0   // h = 1
		metric[5+6*local] = 1.0e4 // h = 0.01
	}
	err := LimitH(metric, m, 0.005, 0.5)
	if err != nil {
		tst.Errorf("LimitH failed: %v\n", err)
		return
	}
	once := make([]float64, len(metric))
	copy(once, metric)
	err = LimitH(metric, m, 0.005, 0.5)
	if err != nil {
		tst.Errorf("LimitH failed: %v\n", err)
		return
	}
	chk.Vector(tst, "idempotent", 1e-12, metric, once)

	// clamp values: 1e6 -> 1/hmin^2 = 4e4, 1.0 -> 1/hmax^2 = 4
	chk.Float64(tst, "hmin clamp", 1e-8, once[0], 4.0e4)
	chk.Float64(tst, "hmax clamp", 1e-8, once[3], 4.0)
	chk.Float64(tst, "untouched", 1e-8, once[5], 1.0e4)
}

func Test_aspect01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("aspect01. aspect-ratio floor on the smallest eigenvalue")

	m := msh.UnitTetMesh()
	metric := make([]float64, 6*m.Nodes.Max())
	for local := 0; local < m.Nodes.Max(); local++ {
		metric[0+6*local] = 100.0
		metric[3+6*local] = 1.0e-4
		metric[5+6*local] = 1.0
	}
	err := LimitAspectRatio(metric, m, 2.0)
	if err != nil {
		tst.Errorf("LimitAspectRatio failed: %v\n", err)
		return
	}
	chk.Float64(tst, "floor", 1e-10, metric[3], 25.0)
	chk.Float64(tst, "mid", 1e-10, metric[5], 25.0)
	chk.Float64(tst, "max", 1e-10, metric[0], 100.0)
}

func Test_smr01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("smr01. directional clamp against the implied metric")

	m := msh.UnitTetMesh()
	max := m.Nodes.Max()
	implied := make([]float64, 6*max)
	user := make([]float64, 6*max)
	combined := make([]float64, 6*max)
	for local := 0; local < max; local++ {
		// implied spacing 1 in every direction
		implied[0+6*local] = 1.0
		implied[3+6*local] = 1.0
		implied[5+6*local] = 1.0
		// user requests h=0.01 along x (clamped to 0.25), h=2 along y (kept),
		// h=100 along z (clamped to 4)
		user[0+6*local] = 1.0e4
		user[3+6*local] = 0.25
		user[5+6*local] = 1.0e-4
	}
	err := SMR(implied, user, combined, m)
	if err != nil {
		tst.Errorf("SMR failed: %v\n", err)
		return
	}
	for local := 0; local < max; local++ {
		chk.Float64(tst, "x clamp", 1e-8, combined[0+6*local], 16.0)     // h=0.25
		chk.Float64(tst, "y keep", 1e-8, combined[3+6*local], 0.25)      // h=2
		chk.Float64(tst, "z clamp", 1e-8, combined[5+6*local], 1.0/16.0) // h=4
	}
}

func Test_grad01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grad01. metric-space gradation limits a strong jump")

	m := msh.UnitTetMesh()
	max := m.Nodes.Max()
	metric := make([]float64, 6*max)
	for local := 0; local < max; local++ {
		metric[0+6*local] = 1.0
		metric[3+6*local] = 1.0
		metric[5+6*local] = 1.0
	}
	// h=0.01 at node 1; edge 0-1 has unit length
	metric[0+6*1] = 1.0e4
	metric[3+6*1] = 1.0e4
	metric[5+6*1] = 1.0e4

	r := 1.5
	err := MetricSpaceGradation(metric, m, r)
	if err != nil {
		tst.Errorf("MetricSpaceGradation failed: %v\n", err)
		return
	}
	// node 0 is limited by node 1 shrunk by (1 + rho log r)^-2, rho = 100
	enlarge := math.Pow(1.0+100.0*math.Log(r), -2.0)
	chk.Float64(tst, "limited eig", 1e-6, metric[0+6*0], 1.0e4*enlarge)

	// the strong end is untouched
	chk.Float64(tst, "source eig", 1e-8, metric[0+6*1], 1.0e4)

	// a second application changes nothing: the field converged
	once := make([]float64, len(metric))
	copy(once, metric)
	err = MetricSpaceGradation(metric, m, r)
	if err != nil {
		tst.Errorf("MetricSpaceGradation failed: %v\n", err)
		return
	}
	for i := range metric {
		if math.Abs(metric[i]-once[i]) > 1e-9*math.Abs(once[i])+1e-12 {
			tst.Errorf("gradation did not converge at %d: %g != %g\n", i, metric[i], once[i])
			return
		}
	}
}

func Test_gradcomplexity01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gradcomplexity01. complexity held under gradation")

	m := msh.BrickMesh(3)
	err := OlympicNode(m, 0.09)
	if err != nil {
		tst.Errorf("OlympicNode failed: %v\n", err)
		return
	}
	metric := make([]float64, 6*m.Nodes.Max())
	err = FromNodes(metric, m)
	if err != nil {
		tst.Errorf("FromNodes failed: %v\n", err)
		return
	}
	target := 2000.0
	r := 1.5
	err = GradationAtComplexity(metric, m, r, target)
	if err != nil {
		tst.Errorf("GradationAtComplexity failed: %v\n", err)
		return
	}
	c, err := Complexity(metric, m)
	if err != nil {
		tst.Errorf("Complexity failed: %v\n", err)
		return
	}
	chk.Float64(tst, "complexity", 1e-6, c/target, 1.0)

	// edge length ratios between end metrics stay within the gradation band
	edges, err := m.BuildEdges()
	if err != nil {
		tst.Errorf("BuildEdges failed: %v\n", err)
		return
	}
	d := make([]float64, 3)
	for e := 0; e < edges.N(); e++ {
		n0 := edges.Node(0, e)
		n1 := edges.Node(1, e)
		for i := 0; i < 3; i++ {
			d[i] = m.Nodes.Xyz[i+3*n1] - m.Nodes.Xyz[i+3*n0]
		}
		l0 := sqrtVtMv(metric[6*n0:6*n0+6], d)
		l1 := sqrtVtMv(metric[6*n1:6*n1+6], d)
		ratio := l0 / l1
		if ratio < 1.0/r/(1.0+1e-12) || ratio > r*(1.0+1e-12) {
			tst.Errorf("edge (%d,%d) ratio %g outside [%g,%g]\n", n0, n1, ratio, 1.0/r, r)
			return
		}
	}
}

func sqrtVtMv(m, v []float64) float64 {
	return math.Sqrt(
		v[0]*(m[0]*v[0]+m[1]*v[1]+m[2]*v[2]) +
			v[1]*(m[1]*v[0]+m[3]*v[1]+m[4]*v[2]) +
			v[2]*(m[2]*v[0]+m[4]*v[1]+m[5]*v[2]))
}
