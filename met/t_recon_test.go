// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"testing"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gosl/chk"
)

func Test_l2grad01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("l2grad01. linear field gradient is exact")

	m := msh.BrickMesh(2)
	scalar := make([]float64, m.Nodes.Max())
	for n := 0; n < m.Nodes.Max(); n++ {
		x := m.Nodes.XyzOf(n)
		scalar[n] = 2.0*x[0] + 3.0*x[1] - x[2]
	}
	grad := make([]float64, 3*m.Nodes.Max())
	err := L2ProjectionGrad(m, scalar, grad)
	if err != nil {
		tst.Errorf("L2ProjectionGrad failed: %v\n", err)
		return
	}
	for n := 0; n < m.Nodes.Max(); n++ {
		chk.Vector(tst, "grad", 1e-11, grad[3*n:3*n+3], []float64{2, 3, -1})
	}
}

func Test_kexact01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("kexact01. quadratic field Hessian is exact")

	m := msh.BrickMesh(3)
	scalar := make([]float64, m.Nodes.Max())
	for n := 0; n < m.Nodes.Max(); n++ {
		x := m.Nodes.XyzOf(n)
		scalar[n] = x[0]*x[0] + 0.5*x[0]*x[1] + 2.0*x[2]*x[2]
	}
	grad := make([]float64, 3*m.Nodes.Max())
	hess := make([]float64, 6*m.Nodes.Max())
	err := KexactGradientHessian(m, scalar, grad, hess)
	if err != nil {
		tst.Errorf("KexactGradientHessian failed: %v\n", err)
		return
	}
	// H = [[2, 0.5, 0], [0.5, 0, 0], [0, 0, 4]] with eigenvalues made
	// positive afterwards; compare against |H|
	want := make([]float64, 6)
	raw := []float64{2.0, 0.5, 0.0, 0.0, 0.0, 4.0}
	errAbs := absRef(want, raw)
	if errAbs != nil {
		tst.Errorf("reference |H| failed: %v\n", errAbs)
		return
	}
	for n := 0; n < m.Nodes.Max(); n++ {
		chk.Vector(tst, "hess", 1e-8, hess[6*n:6*n+6], want)
	}
}

// absRef builds the positive-eigenvalue reference matrix
func absRef(out, in []float64) error {
	m := msh.NewMesh(msh.UnitTetMesh().Comm)
	m.Nodes.Add(0)
	field := make([]float64, 6)
	copy(field, in)
	if err := AbsValueHessian(field, m); err != nil {
		return err
	}
	copy(out, field)
	return nil
}

func Test_roundoff01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("roundoff01. eigenvalue floor from edge length")

	m := msh.UnitTetMesh()
	recon := make([]float64, 6*m.Nodes.Max())
	// zero Hessian everywhere: the floor takes over completely
	err := RoundoffLimit(recon, m)
	if err != nil {
		tst.Errorf("RoundoffLimit failed: %v\n", err)
		return
	}
	// shortest incident edge of every unit-tet vertex is 1
	floor := 4.0e-12
	for n := 0; n < m.Nodes.Max(); n++ {
		chk.Float64(tst, "floor11", 1e-20, recon[0+6*n], floor)
		chk.Float64(tst, "floor22", 1e-20, recon[3+6*n], floor)
		chk.Float64(tst, "floor33", 1e-20, recon[5+6*n], floor)
	}
}

func Test_lp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("lp01. Lp multiscale metric hits the target complexity")

	m := msh.BrickMesh(3)
	scalar := make([]float64, m.Nodes.Max())
	for n := 0; n < m.Nodes.Max(); n++ {
		x := m.Nodes.XyzOf(n)
		scalar[n] = x[0]*x[0] + x[1]*x[1] + x[2]*x[2]
	}
	metric := make([]float64, 6*m.Nodes.Max())
	target := 1000.0
	err := Lp(metric, m, scalar, nil, Kexact, 2, 1.5, target)
	if err != nil {
		tst.Errorf("Lp failed: %v\n", err)
		return
	}
	c, err := Complexity(metric, m)
	if err != nil {
		tst.Errorf("Complexity failed: %v\n", err)
		return
	}
	chk.Float64(tst, "complexity", 1e-6, c/target, 1.0)

	// the p-norm gate
	err = Lp(metric, m, scalar, nil, Kexact, 0, 1.5, target)
	if err == nil {
		tst.Errorf("Lp accepted p=0\n")
	}
}
