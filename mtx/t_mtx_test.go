// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mtx

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func Test_eig01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("eig01. symmetric eigendecomposition round-trip")

	m := []float64{13.0, 4.0, 1.0, 10.0, 2.0, 8.0}
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	err := EigSym(lam, v, m)
	if err != nil {
		tst.Errorf("EigSym failed: %v\n", err)
		return
	}
	if lam[0] > lam[1] || lam[1] > lam[2] {
		tst.Errorf("eigenvalues not ascending: %v\n", lam)
		return
	}
	back := make([]float64, 6)
	Reform(back, lam, v)
	chk.Vector(tst, "reform(eig(m))", 1e-12, back, m)
}

func Test_eig02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("eig02. log/exp round-trip up to condition 1e6")

	m := []float64{1e6, 0, 0, 1.0, 0, 13.0}
	l := make([]float64, 6)
	back := make([]float64, 6)
	err := LogSym(l, m)
	if err != nil {
		tst.Errorf("LogSym failed: %v\n", err)
		return
	}
	err = ExpSym(back, l)
	if err != nil {
		tst.Errorf("ExpSym failed: %v\n", err)
		return
	}
	for i := 0; i < 6; i++ {
		if math.Abs(back[i]-m[i]) > 1e-12*math.Abs(m[i])+1e-12 {
			tst.Errorf("exp(log(m))[%d] = %g != %g\n", i, back[i], m[i])
			return
		}
	}

	// anisotropic with rotation
	m = []float64{400.0, 30.0, -10.0, 90.0, 5.0, 250.0}
	err = LogSym(l, m)
	if err != nil {
		tst.Errorf("LogSym failed: %v\n", err)
		return
	}
	err = ExpSym(back, l)
	if err != nil {
		tst.Errorf("ExpSym failed: %v\n", err)
		return
	}
	chk.Vector(tst, "exp(log(m))", 1e-9, back, m)
}

func Test_eig03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("eig03. log rejects indefinite input")

	m := []float64{1.0, 0, 0, -2.0, 0, 3.0}
	l := make([]float64, 6)
	err := LogSym(l, m)
	if err == nil {
		tst.Errorf("LogSym accepted an indefinite matrix\n")
	}
}

func Test_inv01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("inv01. symmetric inverse")

	m := []float64{4.0, 1.0, 0.5, 3.0, 0.25, 2.0}
	inv := make([]float64, 6)
	err := InvSym(inv, m)
	if err != nil {
		tst.Errorf("InvSym failed: %v\n", err)
		return
	}
	// m * inv = identity, checked through matrix-vector products
	e := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	w := make([]float64, 3)
	u := make([]float64, 3)
	for j := 0; j < 3; j++ {
		MulSymVec(w, inv, e[j])
		MulSymVec(u, m, w)
		chk.Vector(tst, "m*inv*e", 1e-13, u, e[j])
	}
}

func Test_intersect01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("intersect01. intersect(m,m)==m and commutativity")

	m := []float64{100.0, 7.0, -3.0, 25.0, 2.0, 9.0}
	out := make([]float64, 6)
	err := Intersect(out, m, m)
	if err != nil {
		tst.Errorf("Intersect failed: %v\n", err)
		return
	}
	chk.Vector(tst, "intersect(m,m)", 1e-9, out, m)

	m0 := []float64{1.0, 0, 0, 4.0, 0, 9.0}
	m1 := []float64{4.0, 0, 0, 1.0, 0, 1.0}
	a := make([]float64, 6)
	b := make([]float64, 6)
	err = Intersect(a, m0, m1)
	if err != nil {
		tst.Errorf("Intersect failed: %v\n", err)
		return
	}
	err = Intersect(b, m1, m0)
	if err != nil {
		tst.Errorf("Intersect failed: %v\n", err)
		return
	}
	chk.Vector(tst, "commutes", 1e-10, a, b)
	chk.Vector(tst, "diag max", 1e-10, a, []float64{4.0, 0, 0, 4.0, 0, 9.0})
}

func Test_bary01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bary01. barycentric coordinates in the unit tet")

	xyz0 := []float64{0, 0, 0}
	xyz1 := []float64{1, 0, 0}
	xyz2 := []float64{0, 1, 0}
	xyz3 := []float64{0, 0, 1}
	bary := make([]float64, 4)

	err := Bary4(bary, []float64{0.25, 0.25, 0.25}, xyz0, xyz1, xyz2, xyz3)
	if err != nil {
		tst.Errorf("Bary4 failed: %v\n", err)
		return
	}
	chk.Vector(tst, "centroid", 1e-14, bary, []float64{0.25, 0.25, 0.25, 0.25})

	err = Bary4(bary, xyz1, xyz0, xyz1, xyz2, xyz3)
	if err != nil {
		tst.Errorf("Bary4 failed: %v\n", err)
		return
	}
	chk.Vector(tst, "vertex", 1e-14, bary, []float64{0, 1, 0, 0})

	err = Bary4(bary, []float64{-0.5, 0.25, 0.25}, xyz0, xyz1, xyz2, xyz3)
	if err != nil {
		tst.Errorf("Bary4 failed: %v\n", err)
		return
	}
	clip := make([]float64, 4)
	err = ClipBary4(clip, bary)
	if err != nil {
		tst.Errorf("ClipBary4 failed: %v\n", err)
		return
	}
	sum := clip[0] + clip[1] + clip[2] + clip[3]
	chk.Float64(tst, "clip sum", 1e-14, sum, 1.0)
	for i := 0; i < 4; i++ {
		if clip[i] < 0 {
			tst.Errorf("negative clipped bary %v\n", clip)
			return
		}
	}

	// degenerate reference tet
	err = Bary4(bary, xyz0, xyz0, xyz1, xyz2, xyz2)
	if err == nil {
		tst.Errorf("Bary4 accepted a degenerate tet\n")
	}
}

func Test_imply01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("imply01. implied metric of the unit tet")

	m := make([]float64, 6)
	err := ImplySym(m,
		[]float64{0, 0, 0}, []float64{1, 0, 0},
		[]float64{0, 1, 0}, []float64{0, 0, 1})
	if err != nil {
		tst.Errorf("ImplySym failed: %v\n", err)
		return
	}
	chk.Vector(tst, "m", 1e-10, m, []float64{1.0, 0.5, 0.5, 1.0, 0.5, 1.0})
}

func Test_qr01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("qr01. least-squares solve of a quadratic surface")

	// sample f = 2x + y - z + x^2 with rows (x2/2, xy, xz, y2/2, yz, z2/2, x, y, z)
	pts := [][]float64{
		{0.1, 0, 0}, {0, 0.1, 0}, {0, 0, 0.1},
		{-0.1, 0, 0}, {0, -0.1, 0}, {0, 0, -0.1},
		{0.1, 0.1, 0}, {0.1, 0, 0.1}, {0, 0.1, 0.1}, {0.1, 0.1, 0.1},
	}
	f := func(x, y, z float64) float64 { return 2*x + y - z + x*x }
	a := la.MatAlloc(len(pts), 9)
	b := make([]float64, len(pts))
	for i, p := range pts {
		x, y, z := p[0], p[1], p[2]
		a[i][0] = 0.5 * x * x
		a[i][1] = x * y
		a[i][2] = x * z
		a[i][3] = 0.5 * y * y
		a[i][4] = y * z
		a[i][5] = 0.5 * z * z
		a[i][6] = x
		a[i][7] = y
		a[i][8] = z
		b[i] = f(x, y, z)
	}
	x := make([]float64, 9)
	err := SolveQR(x, a, b)
	if err != nil {
		tst.Errorf("SolveQR failed: %v\n", err)
		return
	}
	chk.Vector(tst, "hess+grad", 1e-10, x, []float64{2, 0, 0, 0, 0, 0, 2, 1, -1})

	// rank-deficient system fails ill-conditioned
	bad := la.MatAlloc(3, 2)
	for i := 0; i < 3; i++ {
		bad[i][0] = 1.0
		bad[i][1] = 1.0
	}
	q := la.MatAlloc(3, 2)
	r := la.MatAlloc(2, 2)
	err = QR(q, r, bad)
	if err == nil {
		tst.Errorf("QR accepted a rank-deficient matrix\n")
	}
}

func Test_vol01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("vol01. tet volume and tri area")

	vol := TetVol([]float64{0, 0, 0}, []float64{1, 0, 0}, []float64{0, 1, 0}, []float64{0, 0, 1})
	chk.Float64(tst, "unit tet vol", 1e-15, vol, 1.0/6.0)

	area := TriArea([]float64{0, 0, 0}, []float64{1, 0, 0}, []float64{0, 1, 0})
	chk.Float64(tst, "unit tri area", 1e-15, area, 0.5)
}
