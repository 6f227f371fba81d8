// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"math"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
)

// canonical sub-tet decompositions of the non-tet volume kinds
var priSubTets = [][4]int{{0, 4, 5, 3}, {0, 1, 5, 4}, {0, 1, 2, 5}}
var pyrSubTets = [][4]int{{0, 4, 1, 2}, {0, 3, 4, 2}}
var hexSubTets = [][4]int{
	{0, 5, 7, 4}, {0, 1, 7, 5}, {1, 6, 7, 5},
	{0, 7, 2, 3}, {0, 7, 1, 2}, {1, 7, 6, 2},
}

// addSubTet accumulates the volume-weighted log of the sub-tet implied
// metric onto the four vertices of the sub-tet. Zero-volume or singular
// sub-tets are silently skipped.
func addSubTet(t [4]int, nodes []int, metric, weight []float64, m *msh.Mesh) {
	tet := []int{nodes[t[0]], nodes[t[1]], nodes[t[2]], nodes[t[3]]}
	vol := m.TetVolOf(tet)
	if vol <= 0.0 {
		return
	}
	mm := make([]float64, 6)
	logm := make([]float64, 6)
	err := mtx.ImplySym(mm,
		m.Nodes.XyzOf(tet[0]), m.Nodes.XyzOf(tet[1]),
		m.Nodes.XyzOf(tet[2]), m.Nodes.XyzOf(tet[3]))
	if err != nil {
		return
	}
	if mtx.LogSym(logm, mm) != nil {
		return
	}
	for _, n := range tet {
		weight[n] += vol
		for i := 0; i < 6; i++ {
			metric[i+6*n] += vol * logm[i]
		}
	}
}

// addSubTri accumulates the area-weighted log of a surface triangle's
// implied metric, for two-dimensional meshes
func addSubTri(nodes []int, metric, weight []float64, m *msh.Mesh) {
	mm := make([]float64, 6)
	logm := make([]float64, 6)
	err := mtx.ImplyTriSym(mm,
		m.Nodes.XyzOf(nodes[0]), m.Nodes.XyzOf(nodes[1]), m.Nodes.XyzOf(nodes[2]))
	if err != nil {
		return
	}
	if mtx.LogSym(logm, mm) != nil {
		return
	}
	area := m.TriAreaOf(nodes)
	for _, n := range nodes {
		weight[n] += area
		for i := 0; i < 6; i++ {
			metric[i+6*n] += area * logm[i]
		}
	}
}

// ImplyFrom computes the metric implied by the current mesh: at each vertex
// the exp of the volume-weighted average of the log implied metrics of all
// incident sub-tets. A vertex with no positive-weight contribution is
// invalid. Ghost copies are refreshed.
func ImplyFrom(metric []float64, m *msh.Mesh) (err error) {
	max := m.Nodes.Max()
	weight := make([]float64, max)
	for i := range metric[:6*max] {
		metric[i] = 0.0
	}

	if m.Twod {
		err = m.Tri.Each(func(cell int, nodes []int) error {
			addSubTri(nodes, metric, weight, m)
			return nil
		})
		if err != nil {
			return
		}
	}
	err = m.Tet.Each(func(cell int, nodes []int) error {
		addSubTet([4]int{0, 1, 2, 3}, nodes, metric, weight, m)
		return nil
	})
	if err != nil {
		return
	}
	err = m.Pri.Each(func(cell int, nodes []int) error {
		for _, t := range priSubTets {
			addSubTet(t, nodes, metric, weight, m)
		}
		return nil
	})
	if err != nil {
		return
	}
	err = m.Pyr.Each(func(cell int, nodes []int) error {
		for _, t := range pyrSubTets {
			addSubTet(t, nodes, metric, weight, m)
		}
		return nil
	})
	if err != nil {
		return
	}
	err = m.Hex.Each(func(cell int, nodes []int) error {
		for _, t := range hexSubTets {
			addSubTet(t, nodes, metric, weight, m)
		}
		return nil
	})
	if err != nil {
		return
	}

	logm := make([]float64, 6)
	for local := 0; local < max; local++ {
		if !m.Nodes.Valid(local) || !m.Nodes.Owned(local) {
			continue
		}
		if weight[local] <= 0.0 {
			return sta.Err(sta.DivZero, "met: no implied metric contribution at %s", m.Nodes.Location(local))
		}
		for i := 0; i < 6; i++ {
			if !mtx.Divisible(metric[i+6*local], weight[local]) {
				return sta.Err(sta.DivZero, "met: implied metric weight %g", weight[local])
			}
			logm[i] = metric[i+6*local] / weight[local]
		}
		err = mtx.ExpSym(metric[6*local:6*local+6], logm)
		if err != nil {
			return
		}
		for i := 0; i < 6; i++ {
			if math.IsNaN(metric[i+6*local]) || math.IsInf(metric[i+6*local], 0) {
				return sta.Err(sta.DivZero, "met: implied metric not finite at local %d", local)
			}
		}
	}
	return m.GhostSyncMetricField(metric)
}

// ImplyNonTet re-implies the metric only at vertices touching pyramids,
// prisms or hexahedra, leaving the field elsewhere; vertices of mixed
// elements with no positive sub-tet weight fall back to their prior metric
func ImplyNonTet(metric []float64, m *msh.Mesh) (err error) {
	max := m.Nodes.Max()
	weight := make([]float64, max)
	backup := make([]float64, len(metric))
	copy(backup, metric)

	mixed := func(local int) bool {
		return !m.Pyr.NodeEmpty(local) || !m.Pri.NodeEmpty(local) || !m.Hex.NodeEmpty(local)
	}

	for local := 0; local < max; local++ {
		if m.Nodes.Valid(local) && mixed(local) {
			for i := 0; i < 6; i++ {
				metric[i+6*local] = 0.0
			}
		}
	}
	err = m.Pri.Each(func(cell int, nodes []int) error {
		for _, t := range priSubTets {
			addSubTet(t, nodes, metric, weight, m)
		}
		return nil
	})
	if err != nil {
		return
	}
	err = m.Pyr.Each(func(cell int, nodes []int) error {
		for _, t := range pyrSubTets {
			addSubTet(t, nodes, metric, weight, m)
		}
		return nil
	})
	if err != nil {
		return
	}
	err = m.Hex.Each(func(cell int, nodes []int) error {
		for _, t := range hexSubTets {
			addSubTet(t, nodes, metric, weight, m)
		}
		return nil
	})
	if err != nil {
		return
	}

	logm := make([]float64, 6)
	for local := 0; local < max; local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		if !mixed(local) {
			continue
		}
		if !m.Nodes.Owned(local) {
			continue
		}
		if weight[local] > 0.0 {
			for i := 0; i < 6; i++ {
				if !mtx.Divisible(metric[i+6*local], weight[local]) {
					return sta.Err(sta.DivZero, "met: non-tet imply weight %g", weight[local])
				}
				logm[i] = metric[i+6*local] / weight[local]
			}
			err = mtx.ExpSym(metric[6*local:6*local+6], logm)
			if err != nil {
				return
			}
		} else {
			copy(metric[6*local:6*local+6], backup[6*local:6*local+6])
		}
	}
	return m.GhostSyncMetricField(metric)
}
