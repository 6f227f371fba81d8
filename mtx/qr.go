// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mtx

import (
	"math"

	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/la"
)

// QR factorizes the m x n matrix a (m >= n) into q (m x n, orthonormal
// columns) and r (n x n, upper triangular) by Modified Gram-Schmidt.
// A pivot below threshold relative to the largest absolute entry of a fails
// IllConditioned.
func QR(q, r [][]float64, a [][]float64) (err error) {
	m := len(a)
	if m == 0 {
		return sta.Err(sta.Null, "mtx: empty matrix for QR")
	}
	n := len(a[0])
	if m < n {
		return sta.Err(sta.Invalid, "mtx: QR needs rows >= cols, %d < %d", m, n)
	}
	v := la.MatAlloc(m, n)
	colnorm := 0.0
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			v[i][j] = a[i][j]
			colnorm = math.Max(colnorm, math.Abs(a[i][j]))
		}
	}
	for j := 0; j < n; j++ {
		for k := 0; k < n; k++ {
			r[j][k] = 0.0
		}
	}
	for j := 0; j < n; j++ {
		s := 0.0
		for i := 0; i < m; i++ {
			s += v[i][j] * v[i][j]
		}
		r[j][j] = math.Sqrt(s)
		if r[j][j] <= 1e-14*float64(m)*colnorm {
			return sta.Err(sta.IllConditioned, "mtx: QR pivot %g at column %d", r[j][j], j)
		}
		for i := 0; i < m; i++ {
			q[i][j] = v[i][j] / r[j][j]
		}
		for k := j + 1; k < n; k++ {
			s = 0.0
			for i := 0; i < m; i++ {
				s += q[i][j] * v[i][k]
			}
			r[j][k] = s
			for i := 0; i < m; i++ {
				v[i][k] -= s * q[i][j]
			}
		}
	}
	return
}

// SolveQR solves the least-squares problem a x = b through QR factorization
// and back-substitution
func SolveQR(x []float64, a [][]float64, b []float64) (err error) {
	m := len(a)
	if m == 0 {
		return sta.Err(sta.Null, "mtx: empty system")
	}
	n := len(a[0])
	q := la.MatAlloc(m, n)
	r := la.MatAlloc(n, n)
	err = QR(q, r, a)
	if err != nil {
		return
	}
	qtb := make([]float64, n)
	for j := 0; j < n; j++ {
		s := 0.0
		for i := 0; i < m; i++ {
			s += q[i][j] * b[i]
		}
		qtb[j] = s
	}
	for j := n - 1; j >= 0; j-- {
		s := qtb[j]
		for k := j + 1; k < n; k++ {
			s -= r[j][k] * x[k]
		}
		if !Divisible(s, r[j][j]) {
			return sta.Err(sta.IllConditioned, "mtx: back-substitution pivot %g", r[j][j])
		}
		x[j] = s / r[j][j]
	}
	return
}
