// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// Lp builds the Lp multiscale metric from a scalar field: recovered
// Hessian, round-off eigenvalue floor, pointwise det scaling and global
// complexity control under gradation. The optional weight field carries a
// per-vertex length scale.
func Lp(metric []float64, m *msh.Mesh, scalar, weight []float64, recon Recon,
	pnorm int, gradation, targetComplexity float64) (err error) {
	if scalar == nil {
		return sta.Err(sta.Null, "met: Lp needs a scalar field")
	}
	if pnorm < 1 || pnorm > 10 {
		return sta.Err(sta.Invalid, "met: p-norm %d outside [1,10]", pnorm)
	}
	err = Hessian(m, scalar, metric, recon)
	if err != nil {
		return sta.Wrap(err, "met: Hessian recovery")
	}
	err = RoundoffLimit(metric, m)
	if err != nil {
		return sta.Wrap(err, "met: round-off eigenvalue floor")
	}
	err = LocalScale(metric, weight, m, pnorm)
	if err != nil {
		return sta.Wrap(err, "met: local Lp scaling")
	}
	return GradationAtComplexity(metric, m, gradation, targetComplexity)
}

// LpMixed is Lp with the non-tet imply refresh folded into the complexity
// relaxation, for meshes carrying pyramids, prisms or hexahedra
func LpMixed(metric []float64, m *msh.Mesh, scalar []float64, recon Recon,
	pnorm int, gradation, targetComplexity float64) (err error) {
	err = Hessian(m, scalar, metric, recon)
	if err != nil {
		return
	}
	err = RoundoffLimit(metric, m)
	if err != nil {
		return
	}
	err = LocalScale(metric, nil, m, pnorm)
	if err != nil {
		return
	}
	for relaxation := 0; relaxation < 20; relaxation++ {
		err = SetComplexity(metric, m, targetComplexity)
		if err != nil {
			return
		}
		err = ImplyNonTet(metric, m)
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
	}
	return SetComplexity(metric, m, targetComplexity)
}
