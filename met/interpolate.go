// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package met

import (
	"github.com/cpmech/gomesh/interp"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// Interpolate carries the donor metric onto the receptor vertices: the
// clipped-barycentric blend of the donor log metrics, which is exactly
// the log-Euclidean interpolation exp(sum bary_i L_i)
func Interpolate(it *interp.Interp) (err error) {
	if it == nil {
		return sta.Err(sta.Null, "met: no interpolator")
	}
	return it.Scalar(6, it.From.Nodes.MetLog, it.To.Nodes.MetLog)
}

// InterpolateNode refreshes the metric of one moved receptor from its
// relocated donor
func InterpolateNode(it *interp.Interp, node int) (err error) {
	err = it.LocateNode(node)
	if err != nil {
		return
	}
	return Interpolate(it)
}

// Synchronize refreshes the receptor metric after local operators moved
// vertices. Parallel runs relocate warm; sequential runs assert every
// interior vertex kept its donor.
func Synchronize(it *interp.Interp, to *msh.Mesh) (err error) {
	if it == nil {
		return
	}
	if to.Comm.Para() {
		err = it.LocateWarm()
		if err != nil {
			return
		}
		return Interpolate(it)
	}
	for node := 0; node < to.Nodes.Max(); node++ {
		if !to.Nodes.Valid(node) {
			continue
		}
		if !to.Tet.NodeEmpty(node) && it.Cell[node] == msh.EMPTY {
			return sta.Err(sta.NotFound, "met: vertex %d lost its donor", node)
		}
	}
	return
}
