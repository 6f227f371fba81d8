// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mtx

import (
	"math"

	"github.com/cpmech/gomesh/sta"
)

// TetVol returns the signed volume of a tetrahedron
func TetVol(xyz0, xyz1, xyz2, xyz3 []float64) float64 {
	a1 := xyz1[0] - xyz0[0]
	a2 := xyz1[1] - xyz0[1]
	a3 := xyz1[2] - xyz0[2]
	b1 := xyz2[0] - xyz0[0]
	b2 := xyz2[1] - xyz0[1]
	b3 := xyz2[2] - xyz0[2]
	c1 := xyz3[0] - xyz0[0]
	c2 := xyz3[1] - xyz0[1]
	c3 := xyz3[2] - xyz0[2]
	return (a1*(b2*c3-b3*c2) - a2*(b1*c3-b3*c1) + a3*(b1*c2-b2*c1)) / 6.0
}

// TriNormal returns the area-weighted normal of a triangle
func TriNormal(n, xyz0, xyz1, xyz2 []float64) {
	a1 := xyz1[0] - xyz0[0]
	a2 := xyz1[1] - xyz0[1]
	a3 := xyz1[2] - xyz0[2]
	b1 := xyz2[0] - xyz0[0]
	b2 := xyz2[1] - xyz0[1]
	b3 := xyz2[2] - xyz0[2]
	n[0] = 0.5 * (a2*b3 - a3*b2)
	n[1] = 0.5 * (a3*b1 - a1*b3)
	n[2] = 0.5 * (a1*b2 - a2*b1)
}

// TriArea returns the area of a triangle
func TriArea(xyz0, xyz1, xyz2 []float64) float64 {
	n := make([]float64, 3)
	TriNormal(n, xyz0, xyz1, xyz2)
	return math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
}

// Divisible tells whether num/den is a representable division
func Divisible(num, den float64) bool {
	if den == 0.0 {
		return false
	}
	r := num / den
	return !math.IsNaN(r) && !math.IsInf(r, 0)
}

// Bary4 computes the signed barycentric coordinates of xyz with respect to
// the tetrahedron (xyz0..xyz3) via sub-tet volumes. When the reference
// volume vanishes the unnormalized sub-volumes are preserved in bary and
// DivZero is returned, so callers can still rank candidates.
func Bary4(bary []float64, xyz, xyz0, xyz1, xyz2, xyz3 []float64) error {
	total := TetVol(xyz0, xyz1, xyz2, xyz3)
	bary[0] = TetVol(xyz, xyz1, xyz2, xyz3)
	bary[1] = TetVol(xyz0, xyz, xyz2, xyz3)
	bary[2] = TetVol(xyz0, xyz1, xyz, xyz3)
	bary[3] = TetVol(xyz0, xyz1, xyz2, xyz)
	if !Divisible(bary[0], total) || !Divisible(bary[1], total) ||
		!Divisible(bary[2], total) || !Divisible(bary[3], total) {
		return sta.Err(sta.DivZero, "mtx: degenerate reference tet, vol=%g", total)
	}
	for i := 0; i < 4; i++ {
		bary[i] /= total
	}
	return nil
}

// ClipBary4 clips negative barycentric coordinates to zero and renormalizes
// the remainder to sum to one
func ClipBary4(clipped, bary []float64) error {
	total := 0.0
	for i := 0; i < 4; i++ {
		clipped[i] = math.Max(0.0, bary[i])
		total += clipped[i]
	}
	if !Divisible(1.0, total) {
		return sta.Err(sta.DivZero, "mtx: clipped bary sum to %g", total)
	}
	for i := 0; i < 4; i++ {
		clipped[i] /= total
	}
	return nil
}
