// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package met implements the metric model: construction of per-vertex
// Riemannian metrics, log-space interpolation, implied metrics, SMR
// combination, gradation, complexity control, curvature sources, Hessian
// recovery and Lp multiscale scaling. Metric fields are carried as
// []float64 arrays of leading dimension six (upper triangle, physical form)
// indexed by local vertex.
package met

import (
	"math"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/la"
)

// FromNodes pulls the physical metric of every valid vertex into a field
func FromNodes(metric []float64, m *msh.Mesh) (err error) {
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		err = m.Nodes.MetricGet(local, metric[6*local:6*local+6])
		if err != nil {
			return
		}
	}
	return
}

// ToNodes stores a physical metric field onto the vertices
func ToNodes(metric []float64, m *msh.Mesh) (err error) {
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		err = m.Nodes.MetricSet(local, metric[6*local:6*local+6])
		if err != nil {
			return
		}
	}
	return
}

// OlympicNode sets the olympic analytic field: isotropic 0.1 spacing in the
// plane and a z-graded spacing reaching h at z=0.5
func OlympicNode(m *msh.Mesh, h float64) (err error) {
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		z := m.Nodes.Xyz[2+3*local]
		hh := h + (0.1-h)*math.Abs(z-0.5)/0.5
		err = m.Nodes.MetricForm(local, 1.0/(0.1*0.1), 0, 0, 1.0/(0.1*0.1), 0, 1.0/(hh*hh))
		if err != nil {
			return
		}
	}
	return
}

// SideNode grades the z spacing from 0.01 at z=0 to 0.1 at |z|=1
func SideNode(m *msh.Mesh) (err error) {
	h0, h := 0.1, 0.01
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		z := m.Nodes.Xyz[2+3*local]
		hh := h + (h0-h)*math.Abs(z)
		err = m.Nodes.MetricForm(local, 1.0/(0.1*0.1), 0, 0, 1.0/(0.1*0.1), 0, 1.0/(hh*hh))
		if err != nil {
			return
		}
	}
	return
}

// RingNode refines the x spacing near the ring x=1
func RingNode(m *msh.Mesh) (err error) {
	h := 0.01
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		x := m.Nodes.Xyz[0+3*local]
		hh := h + (0.1-h)*math.Min(2.0*math.Abs(x-1.0), 1.0)
		err = m.Nodes.MetricForm(local, 1.0/(hh*hh), 0, 0, 1.0/(0.1*0.1), 0, 1.0/(0.1*0.1))
		if err != nil {
			return
		}
	}
	return
}

// MasablNode is the boundary-layer analytic field with exponential z growth
func MasablNode(m *msh.Mesh) (err error) {
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		x := m.Nodes.Xyz[0+3*local]
		z := m.Nodes.Xyz[2+3*local]
		hx := 0.01 + 0.2*math.Cos(math.Pi*(x-0.5))
		hz := 0.001 * math.Exp(6.0*z)
		err = m.Nodes.MetricForm(local, 1.0/(hx*hx), 0, 0, 1.0/(0.1*0.1), 0, 1.0/(hz*hz))
		if err != nil {
			return
		}
	}
	return
}

// CircleNode wraps an anisotropic field around the circle r=1 in the x-z
// plane
func CircleNode(m *msh.Mesh) (err error) {
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	mm := make([]float64, 6)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		x := m.Nodes.Xyz[0+3*local]
		z := m.Nodes.Xyz[2+3*local]
		r := math.Sqrt(x*x + z*z)
		t := math.Atan2(z, x)
		hy := 1.0
		h1 := 0.0005 + 1.5*math.Abs(1.0-r)
		h2 := 0.1*r + 1.5*math.Abs(1.0-r)
		lam[0] = 1.0 / (h1 * h1)
		lam[1] = 1.0 / (h2 * h2)
		lam[2] = 1.0 / (hy * hy)
		v[0][0], v[1][0], v[2][0] = math.Cos(t), 0.0, math.Sin(t)
		v[0][1], v[1][1], v[2][1] = -math.Sin(t), 0.0, math.Cos(t)
		v[0][2], v[1][2], v[2][2] = 0.0, 1.0, 0.0
		mtx.Reform(mm, lam, v)
		err = m.Nodes.MetricSet(local, mm)
		if err != nil {
			return
		}
	}
	return
}

// UgawgNode sets the UGAWG polar test fields; versions 1 (polar-1) and 2
// (polar-2) are implemented
func UgawgNode(m *msh.Mesh, version int) (err error) {
	if version != 1 && version != 2 {
		return sta.Err(sta.Implement, "met: ugawg version %d", version)
	}
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	mm := make([]float64, 6)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		x := m.Nodes.Xyz[0+3*local]
		y := m.Nodes.Xyz[1+3*local]
		r := math.Sqrt(x*x + y*y)
		t := math.Atan2(y, x)
		hz := 0.1
		ht := 0.1
		h0 := 0.001
		hr := h0 + 2.0*(0.1-h0)*math.Abs(r-0.5)
		if version == 2 {
			d0 := math.Min(10.0*math.Abs(r-0.5), 1.0)
			ht = 0.1*d0 + 0.025*(1.0-d0)
		}
		lam[0] = 1.0 / (hr * hr)
		lam[1] = 1.0 / (ht * ht)
		lam[2] = 1.0 / (hz * hz)
		v[0][0], v[1][0], v[2][0] = math.Cos(t), math.Sin(t), 0.0
		v[0][1], v[1][1], v[2][1] = -math.Sin(t), math.Cos(t), 0.0
		v[0][2], v[1][2], v[2][2] = 0.0, 0.0, 1.0
		mtx.Reform(mm, lam, v)
		err = m.Nodes.MetricSet(local, mm)
		if err != nil {
			return
		}
	}
	return
}

// Complexity approximates the continuous complexity integral of a metric
// field: per owning vertex, sqrt(det M) times the vertex share of each
// incident cell measure. Collective.
func Complexity(metric []float64, m *msh.Mesh) (complexity float64, err error) {
	cells := m.Tet
	area := false
	if m.Tet.N() == 0 {
		cells = m.Tri
		area = true
	}
	nper := float64(cells.Kind.NodePer())
	err = cells.Each(func(cell int, nodes []int) error {
		var measure float64
		if area {
			measure = m.TriAreaOf(nodes)
		} else {
			measure = m.TetVolOf(nodes)
		}
		for _, n := range nodes {
			if !m.Nodes.Owned(n) {
				continue
			}
			det := mtx.DetSym(metric[6*n : 6*n+6])
			if det > 0.0 {
				complexity += math.Sqrt(det) * measure / nper
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	total := []float64{complexity}
	m.Comm.AllSumDbl(total)
	complexity = total[0]
	return
}

// complexityScale returns the global rescale exponent: 2/3 in 3D, 1 in 2D
func complexityScale(m *msh.Mesh) float64 {
	if m.Twod {
		return 1.0
	}
	return 2.0 / 3.0
}

// SetComplexity rescales the field once so its complexity matches the
// target. DivZero when the current complexity vanishes.
func SetComplexity(metric []float64, m *msh.Mesh, target float64) (err error) {
	current, err := Complexity(metric, m)
	if err != nil {
		return
	}
	if !mtx.Divisible(target, current) {
		return sta.Err(sta.DivZero, "met: complexity target %g over current %g", target, current)
	}
	scale := math.Pow(target/current, complexityScale(m))
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		for i := 0; i < 6; i++ {
			metric[i+6*local] *= scale
		}
		if m.Twod {
			mtx.TwodSym(metric[6*local : 6*local+6])
		}
	}
	return
}

// LimitH clamps every eigenvalue of the field so spacings stay within
// [hmin, hmax]; non-positive bounds are ignored. Applying twice equals once.
func LimitH(metric []float64, m *msh.Mesh, hmin, hmax float64) (err error) {
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		mm := metric[6*local : 6*local+6]
		err = mtx.EigSym(lam, v, mm)
		if err != nil {
			return
		}
		if hmin > 0.0 {
			ceiling := 1.0 / (hmin * hmin)
			for i := 0; i < 3; i++ {
				lam[i] = math.Min(lam[i], ceiling)
			}
		}
		if hmax > 0.0 {
			floor := 1.0 / (hmax * hmax)
			for i := 0; i < 3; i++ {
				lam[i] = math.Max(lam[i], floor)
			}
		}
		mtx.Reform(mm, lam, v)
	}
	return
}

// LimitHAtComplexity applies LimitH under a complexity constraint,
// relaxing the global scale ten times
func LimitHAtComplexity(metric []float64, m *msh.Mesh, hmin, hmax, target float64) (err error) {
	for relaxation := 0; relaxation < 10; relaxation++ {
		err = SetComplexity(metric, m, target)
		if err != nil {
			return
		}
		err = LimitH(metric, m, hmin, hmax)
		if err != nil {
			return
		}
	}
	return
}

// LimitAspectRatio raises the smallest eigenvalue of each vertex metric to
// at least lambda_max/ar^2
func LimitAspectRatio(metric []float64, m *msh.Mesh, ar float64) (err error) {
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		mm := metric[6*local : 6*local+6]
		err = mtx.EigSym(lam, v, mm)
		if err != nil {
			return
		}
		maxEig := math.Max(lam[0], math.Max(lam[1], lam[2]))
		if !mtx.Divisible(maxEig, ar*ar) {
			return sta.Err(sta.DivZero, "met: aspect ratio limit with max eig %g", maxEig)
		}
		limit := maxEig / (ar * ar)
		for i := 0; i < 3; i++ {
			lam[i] = math.Max(lam[i], limit)
		}
		mtx.Reform(mm, lam, v)
	}
	return
}

// SMR combines an implied metric with a user metric in the manner of
// Speziale, Mohammadi and Roy: in the joint eigenbasis of imply^-1 user,
// each direction's spacing is the user spacing clamped to a factor of four
// of the implied spacing.
func SMR(implied, user, metric []float64, m *msh.Mesh) (err error) {
	p := la.MatAlloc(3, 3)
	pinv := la.MatAlloc(3, 3)
	lam := make([]float64, 3)
	col := make([]float64, 3)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		m0 := implied[6*local : 6*local+6]
		m1 := user[6*local : 6*local+6]
		err = mtx.JointBasis(p, pinv, m0, m1)
		if err != nil {
			return sta.Wrap(err, "met: SMR joint basis at local %d", local)
		}
		for j := 0; j < 3; j++ {
			col[0], col[1], col[2] = p[0][j], p[1][j], p[2][j]
			r0 := mtx.SqrtVtMv(m0, col)
			r1 := mtx.SqrtVtMv(m1, col)
			if !mtx.Divisible(1.0, r0) || !mtx.Divisible(1.0, r1) {
				return sta.Err(sta.DivZero, "met: SMR spacing at local %d", local)
			}
			h0 := 1.0 / r0
			h1 := 1.0 / r1
			h := math.Min(4.0*h0, math.Max(0.25*h0, h1))
			if !mtx.Divisible(1.0, h*h) {
				return sta.Err(sta.DivZero, "met: SMR clamped spacing at local %d", local)
			}
			lam[j] = 1.0 / (h * h)
		}
		mtx.AssembleJoint(metric[6*local:6*local+6], lam, pinv)
	}
	return
}

// LocalScale applies the pointwise Lp factor det(M)^(-1/(2p+dim)); a
// positive per-vertex weight field, when given, additionally divides by
// weight squared
func LocalScale(metric []float64, weight []float64, m *msh.Mesh, pnorm int) (err error) {
	dim := 3
	if m.Twod {
		dim = 2
	}
	exponent := -1.0 / float64(2*pnorm+dim)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		if m.Twod {
			mtx.TwodSym(metric[6*local : 6*local+6])
		}
		det := mtx.DetSym(metric[6*local : 6*local+6])
		if det > 0.0 {
			scale := math.Pow(det, exponent)
			for i := 0; i < 6; i++ {
				metric[i+6*local] *= scale
			}
		}
		if weight != nil && weight[local] > 0.0 {
			w2 := weight[local] * weight[local]
			for i := 0; i < 6; i++ {
				metric[i+6*local] /= w2
			}
		}
	}
	return
}
