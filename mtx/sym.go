// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mtx implements the 3x3 symmetric-matrix kernel used by the metric
// model: eigendecomposition, matrix log/exp/sqrt, intersection, barycentric
// coordinates and least-squares QR. A symmetric matrix is carried as its
// upper triangle in the order (m11, m12, m13, m22, m23, m33).
package mtx

import (
	"math"
	"sort"

	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/la"
)

// index of upper-triangle components
//  [ 0 1 2 ]
//  [ 1 3 4 ]
//  [ 2 4 5 ]

// DetSym returns the determinant of a symmetric matrix
func DetSym(m []float64) float64 {
	return m[0]*(m[3]*m[5]-m[4]*m[4]) -
		m[1]*(m[1]*m[5]-m[4]*m[2]) +
		m[2]*(m[1]*m[4]-m[3]*m[2])
}

// FullSym fills a dense 3x3 matrix from the upper triangle
func FullSym(a [][]float64, m []float64) {
	a[0][0], a[0][1], a[0][2] = m[0], m[1], m[2]
	a[1][0], a[1][1], a[1][2] = m[1], m[3], m[4]
	a[2][0], a[2][1], a[2][2] = m[2], m[4], m[5]
}

// UpperSym extracts the upper triangle of a dense symmetric 3x3 matrix
func UpperSym(m []float64, a [][]float64) {
	m[0], m[1], m[2] = a[0][0], a[0][1], a[0][2]
	m[3], m[4] = a[1][1], a[1][2]
	m[5] = a[2][2]
}

// EigSym computes the eigenvalues and right-eigenvectors of a symmetric
// matrix by Jacobi rotations. Eigenvalues are returned ascending; vectors
// are the columns of v, ordered with the eigenvalues.
func EigSym(lam []float64, v [][]float64, m []float64) (err error) {
	a := la.MatAlloc(3, 3)
	q := la.MatAlloc(3, 3)
	FullSym(a, m)
	err = la.Jacobi(q, lam, a)
	if err != nil {
		return sta.Wrap(err, "mtx: Jacobi iteration failed")
	}
	idx := []int{0, 1, 2}
	sort.Slice(idx, func(i, j int) bool { return lam[idx[i]] < lam[idx[j]] })
	w := []float64{lam[idx[0]], lam[idx[1]], lam[idx[2]]}
	for j := 0; j < 3; j++ {
		lam[j] = w[j]
		for i := 0; i < 3; i++ {
			v[i][j] = q[i][idx[j]]
		}
	}
	return
}

// Reform assembles the upper triangle from eigenvalues and eigenvector
// columns: M = V diag(lam) Vt
func Reform(m []float64, lam []float64, v [][]float64) {
	full := [3][3]float64{}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += v[i][k] * lam[k] * v[j][k]
			}
			full[i][j] = s
		}
	}
	m[0], m[1], m[2] = full[0][0], full[0][1], full[0][2]
	m[3], m[4] = full[1][1], full[1][2]
	m[5] = full[2][2]
}

// mapEig applies f to each eigenvalue of m and reassembles into out.
// checkPositive rejects non-positive eigenvalues with DivZero.
func mapEig(out, m []float64, checkPositive bool, f func(float64) float64) (err error) {
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	err = EigSym(lam, v, m)
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if checkPositive && lam[i] <= 0.0 {
			return sta.Err(sta.DivZero, "mtx: non-positive eigenvalue %g", lam[i])
		}
		lam[i] = f(lam[i])
		if math.IsNaN(lam[i]) || math.IsInf(lam[i], 0) {
			return sta.Err(sta.DivZero, "mtx: non-finite mapped eigenvalue")
		}
	}
	Reform(out, lam, v)
	return
}

// LogSym computes log(M) of a symmetric positive-definite matrix
func LogSym(out, m []float64) error {
	return mapEig(out, m, true, math.Log)
}

// ExpSym computes exp(L) of a symmetric matrix
func ExpSym(out, l []float64) error {
	return mapEig(out, l, false, math.Exp)
}

// SqrtSym computes sqrt(M) of a symmetric positive-definite matrix
func SqrtSym(out, m []float64) error {
	return mapEig(out, m, true, math.Sqrt)
}

// InvSym computes the inverse of a symmetric matrix via the adjugate
func InvSym(out, m []float64) error {
	det := DetSym(m)
	if math.Abs(det) < 1e-300 || math.IsNaN(det) {
		return sta.Err(sta.DivZero, "mtx: singular symmetric matrix, det=%g", det)
	}
	out[0] = (m[3]*m[5] - m[4]*m[4]) / det
	out[1] = (m[2]*m[4] - m[1]*m[5]) / det
	out[2] = (m[1]*m[4] - m[2]*m[3]) / det
	out[3] = (m[0]*m[5] - m[2]*m[2]) / det
	out[4] = (m[1]*m[2] - m[0]*m[4]) / det
	out[5] = (m[0]*m[3] - m[1]*m[1]) / det
	return nil
}

// SqrtVtMv returns sqrt(vt M v), the length of v measured in metric M
func SqrtVtMv(m, v []float64) float64 {
	return math.Sqrt(
		v[0]*(m[0]*v[0]+m[1]*v[1]+m[2]*v[2]) +
			v[1]*(m[1]*v[0]+m[3]*v[1]+m[4]*v[2]) +
			v[2]*(m[2]*v[0]+m[4]*v[1]+m[5]*v[2]))
}

// MulSymVec computes w = M v
func MulSymVec(w, m, v []float64) {
	w[0] = m[0]*v[0] + m[1]*v[1] + m[2]*v[2]
	w[1] = m[1]*v[0] + m[3]*v[1] + m[4]*v[2]
	w[2] = m[2]*v[0] + m[4]*v[1] + m[5]*v[2]
}

// AverageSym computes the log-Euclidean average of two metrics:
// exp( (log(m0)+log(m1))/2 )
func AverageSym(out, m0, m1 []float64) (err error) {
	l0 := make([]float64, 6)
	l1 := make([]float64, 6)
	if err = LogSym(l0, m0); err != nil {
		return
	}
	if err = LogSym(l1, m1); err != nil {
		return
	}
	for i := 0; i < 6; i++ {
		l0[i] = 0.5 * (l0[i] + l1[i])
	}
	return ExpSym(out, l0)
}

// TwodSym zeroes the out-of-plane coupling, enforcing a 2D metric
func TwodSym(m []float64) {
	m[2] = 0.0
	m[4] = 0.0
	m[5] = 1.0
}

// ImplySym computes the SPD matrix under which all six edges of the
// tetrahedron (xyz0..xyz3) have unit length; the "unit-tet" implied metric.
func ImplySym(m []float64, xyz0, xyz1, xyz2, xyz3 []float64) (err error) {
	corners := [][]float64{xyz0, xyz1, xyz2, xyz3}
	pairs := [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	a := la.MatAlloc(6, 6)
	rhs := make([]float64, 6)
	for e := 0; e < 6; e++ {
		dx := corners[pairs[e][1]][0] - corners[pairs[e][0]][0]
		dy := corners[pairs[e][1]][1] - corners[pairs[e][0]][1]
		dz := corners[pairs[e][1]][2] - corners[pairs[e][0]][2]
		a[e][0] = dx * dx
		a[e][1] = 2.0 * dx * dy
		a[e][2] = 2.0 * dx * dz
		a[e][3] = dy * dy
		a[e][4] = 2.0 * dy * dz
		a[e][5] = dz * dz
		rhs[e] = 1.0
	}
	err = SolveQR(m, a, rhs)
	if err != nil {
		return sta.Wrap(err, "mtx: implied metric system")
	}
	for i := 0; i < 6; i++ {
		if math.IsNaN(m[i]) || math.IsInf(m[i], 0) {
			return sta.Err(sta.DivZero, "mtx: implied metric not finite")
		}
	}
	return
}

// ImplyTriSym computes the implied metric of a surface triangle, closing the
// system with the unit normal so the third direction has unit spacing.
func ImplyTriSym(m []float64, xyz0, xyz1, xyz2 []float64) (err error) {
	e1 := []float64{xyz1[0] - xyz0[0], xyz1[1] - xyz0[1], xyz1[2] - xyz0[2]}
	e2 := []float64{xyz2[0] - xyz0[0], xyz2[1] - xyz0[1], xyz2[2] - xyz0[2]}
	n := []float64{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	norm := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if norm < 1e-300 {
		return sta.Err(sta.DivZero, "mtx: degenerate triangle for implied metric")
	}
	for i := 0; i < 3; i++ {
		n[i] /= norm
	}
	apex := []float64{xyz0[0] + n[0], xyz0[1] + n[1], xyz0[2] + n[2]}
	return ImplySym(m, xyz0, xyz1, xyz2, apex)
}
