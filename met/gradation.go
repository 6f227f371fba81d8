// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"math"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// MetricSpaceGradation bounds the spatial growth of the field in metric
// space, following Alauzet doi:10.1016/j.finel.2009.06.028 equation (9):
// along each edge the metric at one end limits the other through
// intersection with the end metric shrunk by (1 + rho log r)^-2.
// Ghost copies are refreshed afterwards.
func MetricSpaceGradation(metric []float64, m *msh.Mesh, r float64) (err error) {
	if r <= 1.0 {
		return sta.Err(sta.Invalid, "met: gradation ratio %g must exceed one", r)
	}
	logR := math.Log(r)
	edges, err := m.BuildEdges()
	if err != nil {
		return
	}
	orig := make([]float64, len(metric))
	copy(orig, metric)

	direction := make([]float64, 3)
	limitMetric := make([]float64, 6)
	limited := make([]float64, 6)

	limitAcross := func(n0, n1 int) {
		for i := 0; i < 3; i++ {
			direction[i] = m.Nodes.Xyz[i+3*n1] - m.Nodes.Xyz[i+3*n0]
		}
		ratio := mtx.SqrtVtMv(orig[6*n1:6*n1+6], direction)
		enlarge := math.Pow(1.0+ratio*logR, -2.0)
		for i := 0; i < 6; i++ {
			limitMetric[i] = orig[i+6*n1] * enlarge
		}
		if errInt := mtx.Intersect(limited, orig[6*n0:6*n0+6], limitMetric); errInt != nil {
			io.Pforan("recover gradation: %s\n", m.Nodes.Location(n0))
			return
		}
		if errInt := mtx.Intersect(metric[6*n0:6*n0+6], metric[6*n0:6*n0+6], limited); errInt != nil {
			io.Pforan("recover gradation: %s\n", m.Nodes.Location(n0))
			return
		}
	}

	for edge := 0; edge < edges.N(); edge++ {
		n0 := edges.Node(0, edge)
		n1 := edges.Node(1, edge)
		limitAcross(n0, n1)
		limitAcross(n1, n0)
	}
	return m.GhostSyncMetricField(metric)
}

// MixedSpaceGradation blends physical and metric space growth bounds with
// exponent t, per Alauzet section 6.2.1. Out-of-range arguments fall back
// to r=1.5 and t=1/8.
func MixedSpaceGradation(metric []float64, m *msh.Mesh, r, t float64) (err error) {
	if r < 1.0 {
		r = 1.5
	}
	if t < 0.0 || t > 1.0 {
		t = 1.0 / 8.0
	}
	logR := math.Log(r)
	edges, err := m.BuildEdges()
	if err != nil {
		return
	}
	orig := make([]float64, len(metric))
	copy(orig, metric)

	direction := make([]float64, 3)
	limitMetric := make([]float64, 6)
	limited := make([]float64, 6)
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)

	limitAcross := func(n0, n1 int) error {
		for i := 0; i < 3; i++ {
			direction[i] = m.Nodes.Xyz[i+3*n1] - m.Nodes.Xyz[i+3*n0]
		}
		dist := math.Sqrt(direction[0]*direction[0] + direction[1]*direction[1] + direction[2]*direction[2])
		ratio := mtx.SqrtVtMv(orig[6*n1:6*n1+6], direction)
		if errEig := mtx.EigSym(lam, v, orig[6*n1:6*n1+6]); errEig != nil {
			return errEig
		}
		for i := 0; i < 3; i++ {
			metricSpace := 1.0 + logR*ratio
			physSpace := 1.0 + math.Sqrt(math.Max(0.0, lam[i]))*dist*logR
			enlarge := math.Pow(math.Pow(physSpace, t)*math.Pow(metricSpace, 1.0-t), -2.0)
			lam[i] *= enlarge
		}
		mtx.Reform(limitMetric, lam, v)
		if errInt := mtx.Intersect(limited, orig[6*n0:6*n0+6], limitMetric); errInt != nil {
			io.Pforan("recover mixed gradation: %s\n", m.Nodes.Location(n0))
			return nil
		}
		if errInt := mtx.Intersect(metric[6*n0:6*n0+6], metric[6*n0:6*n0+6], limited); errInt != nil {
			io.Pforan("recover mixed gradation: %s\n", m.Nodes.Location(n0))
		}
		return nil
	}

	for edge := 0; edge < edges.N(); edge++ {
		n0 := edges.Node(0, edge)
		n1 := edges.Node(1, edge)
		if err = limitAcross(n0, n1); err != nil {
			return
		}
		if err = limitAcross(n1, n0); err != nil {
			return
		}
	}
	return m.GhostSyncMetricField(metric)
}

// GradationAtComplexity alternates global complexity rescaling and the
// gradation limiter for twenty relaxations, then rescales once more.
// A gradation below one selects the mixed-space limiter with defaults.
func GradationAtComplexity(metric []float64, m *msh.Mesh, gradation, complexity float64) (err error) {
	for relaxation := 0; relaxation < 20; relaxation++ {
		err = SetComplexity(metric, m, complexity)
		if err != nil {
			return
		}
		if gradation < 1.0 {
			err = MixedSpaceGradation(metric, m, -1.0, -1.0)
		} else {
			err = MetricSpaceGradation(metric, m, gradation)
		}
		if err != nil {
			return
		}
		if m.Twod {
			for local := 0; local < m.Nodes.Max(); local++ {
				if m.Nodes.Valid(local) {
					mtx.TwodSym(metric[6*local : 6*local+6])
				}
			}
		}
	}
	return SetComplexity(metric, m, complexity)
}
