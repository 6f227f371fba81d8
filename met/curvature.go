// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"math"

	"github.com/cpmech/gomesh/geo"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/la"
)

// CadModel is the contract of the external parametric surface evaluator.
// Face curvature returns the principal curvatures and directions at a
// face-associated vertex; edge curvature the 1D curvature along an edge.
type CadModel interface {
	Diagonal() (hmax float64, err error)
	FaceCurvature(node int, r *geo.Record) (kr float64, rdir []float64, ks float64, sdir []float64, err error)
	EdgeCurvature(node int, r *geo.Record) (k float64, tdir []float64, err error)
	FaceMinLength(faceID int) float64
}

// CurvatureOpts carries the tuning knobs of the curvature metric
type CurvatureOpts struct {
	SegmentsPerRadian float64 // segments per radian of turning; spacing h = 1/(SegmentsPerRadian |k|)
	SegmentsPerDiag   float64 // bounding-diagonal divisor for hmax
	AspectRatio       float64 // tangential aspect ceiling (default 20)
	NormRatio         float64 // normal spacing ceiling over tangential (2)
}

// DefaultCurvatureOpts returns the documented defaults
func DefaultCurvatureOpts() CurvatureOpts {
	return CurvatureOpts{
		SegmentsPerRadian: 1.0 / 0.5,
		SegmentsPerDiag:   10.0,
		AspectRatio:       20.0,
		NormRatio:         2.0,
	}
}

// FromCurvature builds a metric field from the principal curvatures of the
// attached CAD model: tangential spacings follow the segments-per-radian
// target, the normal spacing is capped at NormRatio times the tangential
// ones, and each contribution is intersected with the field accumulated so
// far. Geometry-edge vertices contribute a one-dimensional curvature.
func FromCurvature(metric []float64, m *msh.Mesh, cad CadModel, opts CurvatureOpts) (err error) {
	if cad == nil {
		return sta.Err(sta.Null, "met: no geometry model attached")
	}
	hmax, err := cad.Diagonal()
	if err != nil {
		return sta.Wrap(err, "met: CAD bounding diagonal")
	}
	hmax /= math.Max(1.0, opts.SegmentsPerDiag)
	deltaRadian := 1.0 / opts.SegmentsPerRadian
	curvatureRatio := 1.0 / opts.AspectRatio
	rlimit := hmax / deltaRadian

	// start isotropic at hmax
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		for i := 0; i < 6; i++ {
			metric[i+6*local] = 0.0
		}
		metric[0+6*local] = 1.0 / (hmax * hmax)
		metric[3+6*local] = 1.0 / (hmax * hmax)
		metric[5+6*local] = 1.0 / (hmax * hmax)
	}

	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	contribution := make([]float64, 6)
	previous := make([]float64, 6)

	errEach := m.Geom.Each(func(node int, r geo.Record) error {
		if !m.Nodes.Owned(node) {
			return nil
		}
		switch r.Type {
		case geo.Face:
			kr, rdir, ks, sdir, errCurv := cad.FaceCurvature(node, &r)
			if errCurv != nil {
				return nil // face without usable curvature
			}
			kr = math.Abs(kr)
			ks = math.Abs(ks)
			kr = math.Max(kr, curvatureRatio*ks)
			ks = math.Max(ks, curvatureRatio*kr)
			hr := hmax
			if 1.0/rlimit < kr {
				hr = deltaRadian / kr
			}
			hs := hmax
			if 1.0/rlimit < ks {
				hs = deltaRadian / ks
			}
			if minLen := cad.FaceMinLength(r.ID); minLen > 0.0 && (hr < minLen || hs < minLen) {
				return nil
			}
			hn := hmax
			hn = math.Min(hn, opts.NormRatio*hr)
			hn = math.Min(hn, opts.NormRatio*hs)
			n := []float64{
				rdir[1]*sdir[2] - rdir[2]*sdir[1],
				rdir[2]*sdir[0] - rdir[0]*sdir[2],
				rdir[0]*sdir[1] - rdir[1]*sdir[0],
			}
			lam[0] = 1.0 / (hr * hr)
			lam[1] = 1.0 / (hs * hs)
			lam[2] = 1.0 / (hn * hn)
			for i := 0; i < 3; i++ {
				v[i][0] = rdir[i]
				v[i][1] = sdir[i]
				v[i][2] = n[i]
			}
			mtx.Reform(contribution, lam, v)
		case geo.Edge:
			k, _, errCurv := cad.EdgeCurvature(node, &r)
			if errCurv != nil {
				return nil
			}
			k = math.Abs(k)
			hr := hmax
			if 1.0/rlimit < k {
				hr = deltaRadian / k
			}
			// isotropic cap along geometry edges
			for i := 0; i < 6; i++ {
				contribution[i] = 0.0
			}
			contribution[0] = 1.0 / (hr * hr)
			contribution[3] = 1.0 / (hr * hr)
			contribution[5] = 1.0 / (hr * hr)
		default:
			return nil
		}
		copy(previous, metric[6*node:6*node+6])
		return mtx.Intersect(metric[6*node:6*node+6], previous, contribution)
	})
	if errEach != nil {
		return errEach
	}
	return m.GhostSyncMetricField(metric)
}

// ConstrainCurvature intersects the vertex metrics with a heavily graded
// curvature metric, limiting surface spacing by what the CAD shape needs
func ConstrainCurvature(m *msh.Mesh, cad CadModel, opts CurvatureOpts) (err error) {
	metric := make([]float64, 6*m.Nodes.Max())
	err = FromCurvature(metric, m, cad, opts)
	if err != nil {
		return
	}
	for pass := 0; pass < 20; pass++ {
		err = MixedSpaceGradation(metric, m, -1.0, -1.0)
		if err != nil {
			return
		}
	}
	mm := make([]float64, 6)
	constrained := make([]float64, 6)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		err = m.Nodes.MetricGet(local, mm)
		if err != nil {
			return
		}
		err = mtx.Intersect(constrained, metric[6*local:6*local+6], mm)
		if err != nil {
			return
		}
		if m.Twod {
			mtx.TwodSym(constrained)
		}
		err = m.Nodes.MetricSet(local, constrained)
		if err != nil {
			return
		}
	}
	return
}
