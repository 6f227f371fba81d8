// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mtx

import (
	"math"

	"github.com/cpmech/gomesh/sta"
	"gonum.org/v1/gonum/mat"
)

// chol3 computes the lower Cholesky factor of a symmetric matrix given by
// its upper triangle; DivZero when the matrix is not positive definite
func chol3(l [][]float64, m []float64) error {
	full := [3][3]float64{
		{m[0], m[1], m[2]},
		{m[1], m[3], m[4]},
		{m[2], m[4], m[5]},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			s := full[i][j]
			for k := 0; k < j; k++ {
				s -= l[i][k] * l[j][k]
			}
			if i == j {
				if s <= 0.0 {
					return sta.Err(sta.DivZero, "mtx: Cholesky pivot %g", s)
				}
				l[i][i] = math.Sqrt(s)
			} else {
				l[i][j] = s / l[j][j]
			}
		}
		for j := i + 1; j < 3; j++ {
			l[i][j] = 0.0
		}
	}
	return nil
}

// JointBasis solves the generalized eigenproblem m1 p = lam m0 p through
// the Cholesky factor of m0 and returns the joint basis columns p with
// their inverse pinv. Both metrics are diagonal in this basis, also when
// the spectrum of m0^-1 m1 is degenerate.
func JointBasis(p, pinv [][]float64, m0, m1 []float64) (err error) {
	l := [][]float64{make([]float64, 3), make([]float64, 3), make([]float64, 3)}
	err = chol3(l, m0)
	if err != nil {
		return sta.Wrap(err, "mtx: joint basis needs an SPD first metric")
	}
	// linv, lower triangular
	linv := [3][3]float64{}
	for i := 0; i < 3; i++ {
		linv[i][i] = 1.0 / l[i][i]
		for j := 0; j < i; j++ {
			s := 0.0
			for k := j; k < i; k++ {
				s -= l[i][k] * linv[k][j]
			}
			linv[i][j] = s / l[i][i]
		}
	}
	// b = linv m1 linv^T, symmetric
	f1 := [3][3]float64{
		{m1[0], m1[1], m1[2]},
		{m1[1], m1[3], m1[4]},
		{m1[2], m1[4], m1[5]},
	}
	var lm, b [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				lm[i][j] += linv[i][k] * f1[k][j]
			}
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				b[i][j] += lm[i][k] * linv[j][k]
			}
		}
	}
	sym := mat.NewSymDense(3, []float64{
		b[0][0], b[0][1], b[0][2],
		b[0][1], b[1][1], b[1][2],
		b[0][2], b[1][2], b[2][2],
	})
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return sta.Err(sta.DivZero, "mtx: joint eigenbasis factorization failed")
	}
	var w mat.Dense
	eig.VectorsTo(&w)

	// p = linv^T w, columns normalized
	for j := 0; j < 3; j++ {
		norm := 0.0
		for i := 0; i < 3; i++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += linv[k][i] * w.At(k, j)
			}
			p[i][j] = s
			norm += s * s
		}
		norm = math.Sqrt(norm)
		if norm < 1e-300 {
			return sta.Err(sta.DivZero, "mtx: zero joint eigenvector")
		}
		for i := 0; i < 3; i++ {
			p[i][j] /= norm
		}
	}
	err = inv3(pinv, p)
	if err != nil {
		return sta.Wrap(err, "mtx: joint basis not invertible")
	}
	return
}

// AssembleJoint forms M = pinv^T diag(lam) pinv, the reassembly of a
// metric from eigenvalues in a (non-orthogonal) joint basis
func AssembleJoint(m []float64, lam []float64, pinv [][]float64) {
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += pinv[k][i] * lam[k] * pinv[k][j]
			}
			switch {
			case i == 0 && j == 0:
				m[0] = s
			case i == 0 && j == 1:
				m[1] = s
			case i == 0 && j == 2:
				m[2] = s
			case i == 1 && j == 1:
				m[3] = s
			case i == 1 && j == 2:
				m[4] = s
			default:
				m[5] = s
			}
		}
	}
}

// Intersect computes the metric intersection of Alauzet: in the joint
// eigenbasis of m0^-1 m1 take the larger eigenvalue of each direction.
// The result bounds both input unit-balls from inside.
func Intersect(out, m0, m1 []float64) (err error) {
	p := make([][]float64, 3)
	pinv := make([][]float64, 3)
	for i := 0; i < 3; i++ {
		p[i] = make([]float64, 3)
		pinv[i] = make([]float64, 3)
	}
	err = JointBasis(p, pinv, m0, m1)
	if err != nil {
		return
	}
	lam := make([]float64, 3)
	col := make([]float64, 3)
	for j := 0; j < 3; j++ {
		col[0], col[1], col[2] = p[0][j], p[1][j], p[2][j]
		r0 := SqrtVtMv(m0, col)
		r1 := SqrtVtMv(m1, col)
		lam[j] = math.Max(r0*r0, r1*r1)
	}
	AssembleJoint(out, lam, pinv)
	return
}

// Solve3 solves the dense 3x3 system a x = b through the adjugate inverse
func Solve3(x []float64, a [][]float64, b []float64) (err error) {
	inv := [][]float64{make([]float64, 3), make([]float64, 3), make([]float64, 3)}
	err = inv3(inv, a)
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		x[i] = inv[i][0]*b[0] + inv[i][1]*b[1] + inv[i][2]*b[2]
	}
	return
}

// inv3 inverts a dense 3x3 matrix
func inv3(out, a [][]float64) error {
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
	if math.Abs(det) < 1e-300 || math.IsNaN(det) {
		return sta.Err(sta.DivZero, "mtx: 3x3 det=%g", det)
	}
	out[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) / det
	out[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) / det
	out[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) / det
	out[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) / det
	out[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) / det
	out[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) / det
	out[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) / det
	out[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) / det
	out[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) / det
	return nil
}
