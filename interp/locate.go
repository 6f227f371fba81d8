// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"math"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/io"
)

// LocateNode relocates a single moved receptor with one agent starting
// from its previously recorded donor, falling back to the tree. A
// receptor with no prior donor is skipped.
func (o *Interp) LocateNode(node int) (err error) {
	if node >= len(o.Cell) {
		return sta.Err(sta.Invalid, "interp: receptor %d beyond records, resize first", node)
	}
	if o.Cell[node] == msh.EMPTY {
		return
	}
	if o.agents.N() != 0 {
		return sta.Err(sta.Invalid, "interp: active agents during warm relocate")
	}
	nd := o.To.Nodes
	o.hired[node] = true
	id := o.agents.Push(node, o.Part[node], o.Cell[node], nd.XyzOf(node))
	err = o.walkAgent(id)
	if err != nil {
		return
	}
	a := o.agents.Get(id)
	if a.Mode == Enclosing {
		o.Cell[node] = a.Seed
		o.Part[node] = a.Part
		copy(o.Bary[4*node:4*node+4], a.Bary[:])
		o.walkSteps += a.Step + 1
		o.nWalk++
	} else {
		// boundary or partition hop; the tree below decides
		o.Cell[node] = msh.EMPTY
	}
	o.hired[node] = false
	err = o.agents.Remove(id)
	if err != nil {
		return
	}
	if o.Cell[node] == msh.EMPTY {
		err = o.treeLocateOne(node)
	}
	return
}

// LocateBetween locates a vertex created between two receptors, trying
// the first endpoint's donor, then the second's, then the tree
func (o *Interp) LocateBetween(node0, node1, newNode int) (err error) {
	o.Resize()
	o.Cell[newNode] = msh.EMPTY
	if o.Cell[node0] == msh.EMPTY {
		return sta.Err(sta.NotFound, "interp: endpoint %d has no donor", node0)
	}
	if o.Cell[node1] == msh.EMPTY {
		return sta.Err(sta.NotFound, "interp: endpoint %d has no donor", node1)
	}
	if o.agents.N() != 0 {
		return sta.Err(sta.Invalid, "interp: active agents during between locate")
	}
	nd := o.To.Nodes
	o.hired[newNode] = true
	id := o.agents.Push(newNode, o.Part[node0], o.Cell[node0], nd.XyzOf(newNode))
	err = o.walkAgent(id)
	if err != nil {
		return
	}
	if o.agents.Get(id).Mode != Enclosing {
		err = o.agents.Restart(o.Part[node1], o.Cell[node1], id)
		if err != nil {
			return
		}
		err = o.walkAgent(id)
		if err != nil {
			return
		}
	}
	a := o.agents.Get(id)
	if a.Mode == Enclosing {
		o.Cell[newNode] = a.Seed
		o.Part[newNode] = a.Part
		copy(o.Bary[4*newNode:4*newNode+4], a.Bary[:])
		o.walkSteps += a.Step + 1
		o.nWalk++
	} else {
		o.Cell[newNode] = msh.EMPTY
	}
	o.hired[newNode] = false
	err = o.agents.Remove(id)
	if err != nil {
		return
	}
	if o.Cell[newNode] == msh.EMPTY {
		err = o.treeLocateOne(newNode)
	}
	return
}

// treeLocateOne runs the tree fallback for a single receptor without a
// collective sweep; a miss leaves the receptor unlocated
func (o *Interp) treeLocateOne(node int) (err error) {
	list := o.tree.Touching(o.To.Nodes.XyzOf(node), o.Opts.Fuzz)
	if len(list) == 0 {
		return
	}
	cell, errList := o.enclosingTetInList(list, o.To.Nodes.XyzOf(node), o.Bary[4*node:4*node+4])
	if errList != nil {
		return nil // keep unlocated
	}
	o.Cell[node] = cell
	o.Part[node] = o.Comm.Rank()
	return
}

// LocateWarm refreshes every owned receptor from its previous donor and
// reruns the collective drain and tree stages for those that lost their
// donor; used after local operators moved vertices near partition lines
func (o *Interp) LocateWarm() (err error) {
	o.Resize()
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if !o.To.Nodes.Owned(node) || o.Cell[node] == msh.EMPTY {
			continue
		}
		err = o.LocateNode(node)
		if err != nil {
			return
		}
	}
	// seed the remaining receptors from located neighbors, then drain
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if o.To.Nodes.Owned(node) && o.Cell[node] != msh.EMPTY {
			err = o.pushOntoQueue(node)
			if err != nil {
				return
			}
		}
	}
	err = o.processAgents()
	if err != nil {
		return
	}
	increaseFuzz := false
	for tries := 0; tries < 12; tries++ {
		if increaseFuzz {
			o.Opts.Fuzz *= 10.0
		}
		increaseFuzz, err = o.treeStage()
		if err != nil {
			return
		}
		if !increaseFuzz {
			break
		}
	}
	if increaseFuzz {
		return sta.Err(sta.NotFound, "interp: warm relocate exhausted the tree fuzz")
	}
	return
}

// receptorRecords flattens the owned, located receptors for a donor-side
// exchange: donor part, cell, receptor local, return rank and bary
func (o *Interp) receptorRecords(clip bool) (proc, ints []int, bary []float64, err error) {
	clipped := make([]float64, 4)
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if !o.To.Nodes.Owned(node) {
			continue
		}
		if o.Cell[node] == msh.EMPTY {
			return nil, nil, nil, sta.Err(sta.NotFound, "interp: receptor %d not located", node)
		}
		b := o.Bary[4*node : 4*node+4]
		if clip {
			err = mtx.ClipBary4(clipped, b)
			if err != nil {
				return
			}
			b = clipped
		}
		proc = append(proc, o.Part[node])
		ints = append(ints, o.Cell[node], node, o.Comm.Rank())
		bary = append(bary, b[0], b[1], b[2], b[3])
	}
	return
}

// Scalar interpolates a per-donor-vertex field of leading dimension ldim
// onto the receptors: blind sends (integers and barycentrics) ship the
// receptor records to the donor parts, and blind sends ship the blended
// values with their receptor ids back. Ghosts are refreshed.
func (o *Interp) Scalar(ldim int, fromField, toField []float64) (err error) {
	proc, ints, bary, err := o.receptorRecords(true)
	if err != nil {
		return
	}
	n := len(proc)
	donorInts, nDonor, err := o.Comm.BlindSendInt(proc, ints, 3, n)
	if err != nil {
		return
	}
	donorBary, _, err := o.Comm.BlindSendDbl(proc, bary, 4, n)
	if err != nil {
		return
	}

	values := make([]float64, ldim*nDonor)
	retProc := make([]int, nDonor)
	retNode := make([]int, nDonor)
	nodes := make([]int, 4)
	for d := 0; d < nDonor; d++ {
		err = o.From.Tet.Nodes(donorInts[0+3*d], nodes)
		if err != nil {
			return sta.Wrap(err, "interp: donor cell of a shipped receptor")
		}
		retNode[d] = donorInts[1+3*d]
		retProc[d] = donorInts[2+3*d]
		for im := 0; im < ldim; im++ {
			v := 0.0
			for ib := 0; ib < 4; ib++ {
				v += donorBary[ib+4*d] * fromField[im+ldim*nodes[ib]]
			}
			values[im+ldim*d] = v
		}
	}

	backVal, nBack, err := o.Comm.BlindSendDbl(retProc, values, ldim, nDonor)
	if err != nil {
		return
	}
	backNode, _, err := o.Comm.BlindSendInt(retProc, retNode, 1, nDonor)
	if err != nil {
		return
	}
	for i := 0; i < nBack; i++ {
		node := backNode[i]
		copy(toField[ldim*node:ldim*(node+1)], backVal[ldim*i:ldim*(i+1)])
	}
	return o.To.GhostSyncDbl(toField, ldim)
}

// MaxError measures the worst distance between each receptor and its
// donor-side barycentric image. Collective; every rank returns the same
// value.
func (o *Interp) MaxError() (maxError float64, err error) {
	proc, ints, bary, err := o.receptorRecords(false)
	if err != nil {
		return
	}
	n := len(proc)
	donorInts, nDonor, err := o.Comm.BlindSendInt(proc, ints, 3, n)
	if err != nil {
		return
	}
	donorBary, _, err := o.Comm.BlindSendDbl(proc, bary, 4, n)
	if err != nil {
		return
	}
	xyz := make([]float64, 3*nDonor)
	retProc := make([]int, nDonor)
	retNode := make([]int, nDonor)
	nodes := make([]int, 4)
	for d := 0; d < nDonor; d++ {
		err = o.From.Tet.Nodes(donorInts[0+3*d], nodes)
		if err != nil {
			return
		}
		retNode[d] = donorInts[1+3*d]
		retProc[d] = donorInts[2+3*d]
		for i := 0; i < 3; i++ {
			v := 0.0
			for ib := 0; ib < 4; ib++ {
				v += donorBary[ib+4*d] * o.From.Nodes.Xyz[i+3*nodes[ib]]
			}
			xyz[i+3*d] = v
		}
	}
	backXyz, nBack, err := o.Comm.BlindSendDbl(retProc, xyz, 3, nDonor)
	if err != nil {
		return
	}
	backNode, _, err := o.Comm.BlindSendInt(retProc, retNode, 1, nDonor)
	if err != nil {
		return
	}
	for i := 0; i < nBack; i++ {
		node := backNode[i]
		x := o.To.Nodes.XyzOf(node)
		e := math.Sqrt(
			math.Pow(backXyz[0+3*i]-x[0], 2) +
				math.Pow(backXyz[1+3*i]-x[1], 2) +
				math.Pow(backXyz[2+3*i]-x[2], 2))
		maxError = math.Max(maxError, e)
	}
	worst := []float64{maxError}
	o.Comm.AllMaxDbl(worst)
	maxError = worst[0]
	return
}

// MinBary returns the global worst (smallest) barycentric coordinate over
// all located receptors; negative values measure extrapolation
func (o *Interp) MinBary() (minBary float64, err error) {
	minBary = 1.0
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if !o.To.Nodes.Owned(node) {
			continue
		}
		if o.Cell[node] == msh.EMPTY {
			return 0, sta.Err(sta.NotFound, "interp: receptor %d not located", node)
		}
		b := o.Bary[4*node : 4*node+4]
		minBary = math.Min(minBary, math.Min(math.Min(b[0], b[1]), math.Min(b[2], b[3])))
	}
	worst := []float64{minBary}
	o.Comm.AllMinDbl(worst)
	minBary = worst[0]
	return
}

// Stats prints the locator statistics on rank zero
func (o *Interp) Stats() (err error) {
	if o.Comm.Once() {
		if o.nTree > 0 {
			io.Pf("tree search: %d found, %.2f avg cells\n", o.nTree,
				float64(o.treeCells)/float64(o.nTree))
		}
		if o.nWalk > 0 || o.nTerminated > 0 {
			io.Pf("walks: %d successful, %.2f avg steps, %d terminated\n", o.nWalk,
				float64(o.walkSteps)/float64(o.nWalk), o.nTerminated)
		}
		io.Pf("geom nodes: %d failed, %d successful\n", o.nGeomFail, o.nGeom)
	}
	extrapolate := 0
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if !o.To.Nodes.Owned(node) || o.Cell[node] == msh.EMPTY {
			continue
		}
		b := o.Bary[4*node : 4*node+4]
		if math.Min(math.Min(b[0], b[1]), math.Min(b[2], b[3])) < o.Opts.Inside {
			extrapolate++
		}
	}
	total := []int{extrapolate}
	o.Comm.AllSumInt(total)
	maxError, err := o.MaxError()
	if err != nil {
		return
	}
	minBary, err := o.MinBary()
	if err != nil {
		return
	}
	if o.Comm.Once() {
		io.Pf("interp min bary %e max error %e extrap %d\n", minBary, maxError, total[0])
	}
	return
}
