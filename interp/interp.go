// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"math"

	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/rnd"
)

const maxNodeList = 200

// Opts carries the documented tuning knobs of the locator
type Opts struct {
	Inside     float64 // barycentric inside tolerance
	Bound      float64 // outside tolerance for diagnostics
	Fuzz       float64 // initial tree search fuzz
	DonorScale float64 // bounding-sphere enlargement of donor tets
	WalkLimit  int     // hard step cap of a walk
}

// DefaultOpts returns the documented defaults
func DefaultOpts() Opts {
	return Opts{
		Inside:     -1.0e-12,
		Bound:      -0.1,
		Fuzz:       1.0e-12,
		DonorScale: 2.0,
		WalkLimit:  215, // about the cube root of 1e7
	}
}

// Interp binds the receptors of a to-mesh to enclosing donor tets of a
// from-mesh. Per receptor it records the donor cell, the donor part and
// the barycentric coordinates.
type Interp struct {
	From *msh.Mesh
	To   *msh.Mesh
	Comm *msg.Comm
	Opts Opts

	Cell  []int     // [max] donor cell, EMPTY while unlocated
	Part  []int     // [max] donor part
	Bary  []float64 // [4*max] barycentric coordinates in the donor
	hired []bool    // at most one concurrent walk per receptor

	agents *Agents
	tree   *Tree

	// statistics
	nWalk       int
	nTerminated int
	walkSteps   int
	nGeom       int
	nGeomFail   int
	nTree       int
	treeCells   int
}

// New creates an interpolator between a donor and a receptor mesh and
// indexes the donor tets in the bounding-sphere tree
func New(from, to *msh.Mesh) (o *Interp, err error) {
	o = new(Interp)
	o.From = from
	o.To = to
	o.Comm = from.Comm
	o.Opts = DefaultOpts()
	max := to.Nodes.Max()
	o.Cell = make([]int, max)
	o.Part = make([]int, max)
	o.Bary = make([]float64, 4*max)
	o.hired = make([]bool, max)
	for i := 0; i < max; i++ {
		o.Cell[i] = msh.EMPTY
		o.Part[i] = msh.EMPTY
	}
	o.agents = NewAgents(o.Comm)
	rnd.Init(0)
	err = o.createSearch()
	return
}

// Resize grows the receptor records after nodes were added to the to-mesh
func (o *Interp) Resize() {
	max := o.To.Nodes.Max()
	for len(o.Cell) < max {
		o.Cell = append(o.Cell, msh.EMPTY)
		o.Part = append(o.Part, msh.EMPTY)
		o.Bary = append(o.Bary, 0, 0, 0, 0)
		o.hired = append(o.hired, false)
	}
}

// Remove clears the donor binding of a receptor about to move
func (o *Interp) Remove(node int) (err error) {
	if o.hired[node] {
		return sta.Err(sta.Invalid, "interp: receptor %d has a hired agent", node)
	}
	if o.Cell[node] == msh.EMPTY {
		return sta.Err(sta.NotFound, "interp: receptor %d not located", node)
	}
	o.Cell[node] = msh.EMPTY
	return
}

// Pack remaps the receptor records after a to-mesh compaction
func (o *Interp) Pack(old2new, new2old []int) (err error) {
	if o.agents.N() != 0 {
		return sta.Err(sta.Invalid, "interp: cannot pack with active agents")
	}
	n := len(new2old)
	cell := make([]int, n)
	part := make([]int, n)
	bary := make([]float64, 4*n)
	for nn, old := range new2old {
		cell[nn] = o.Cell[old]
		part[nn] = o.Part[old]
		copy(bary[4*nn:4*nn+4], o.Bary[4*old:4*old+4])
	}
	o.Cell = cell
	o.Part = part
	o.Bary = bary
	o.hired = make([]bool, n)
	return
}

// createSearch fills the bounding-sphere tree over the donor tets
func (o *Interp) createSearch() (err error) {
	items := make([]int, 0, o.From.Tet.N())
	centers := make([]float64, 0, 3*o.From.Tet.N())
	radii := make([]float64, 0, o.From.Tet.N())
	err = o.From.Tet.Each(func(cell int, nodes []int) error {
		var center [3]float64
		for i := 0; i < 3; i++ {
			center[i] = 0.25 * (o.From.Nodes.Xyz[i+3*nodes[0]] +
				o.From.Nodes.Xyz[i+3*nodes[1]] +
				o.From.Nodes.Xyz[i+3*nodes[2]] +
				o.From.Nodes.Xyz[i+3*nodes[3]])
		}
		radius := 0.0
		for _, n := range nodes {
			x := o.From.Nodes.XyzOf(n)
			radius = math.Max(radius, math.Sqrt(
				math.Pow(x[0]-center[0], 2)+math.Pow(x[1]-center[1], 2)+math.Pow(x[2]-center[2], 2)))
		}
		items = append(items, cell)
		centers = append(centers, center[0], center[1], center[2])
		radii = append(radii, o.Opts.DonorScale*radius)
		return nil
	})
	if err != nil {
		return
	}
	o.tree = NewTree(items, centers, radii)
	return
}

// insideBary tells whether all four coordinates clear the inside tolerance
func (o *Interp) insideBary(bary []float64) bool {
	return bary[0] >= o.Opts.Inside && bary[1] >= o.Opts.Inside &&
		bary[2] >= o.Opts.Inside && bary[3] >= o.Opts.Inside
}

// exhaustiveTetAroundNode picks, among the donor tets incident to a donor
// vertex, the one with the largest minimum barycentric coordinate of xyz
func (o *Interp) exhaustiveTetAroundNode(node int, xyz []float64, bary []float64) (cell int, err error) {
	cell = msh.EMPTY
	best := -999.0
	current := make([]float64, 4)
	nodes := make([]int, 4)
	err = o.From.Tet.HavingNode(node, func(candidate int) error {
		if errN := o.From.Tet.Nodes(candidate, nodes); errN != nil {
			return errN
		}
		status := o.From.Bary4Of(current, nodes, xyz)
		if status != nil {
			return nil // degenerate candidate skipped
		}
		minBary := math.Min(math.Min(current[0], current[1]), math.Min(current[2], current[3]))
		if cell == msh.EMPTY || minBary > best {
			cell = candidate
			best = minBary
		}
		return nil
	})
	if err != nil {
		return
	}
	if cell == msh.EMPTY {
		return cell, sta.Err(sta.NotFound, "interp: no usable tet around donor node %d", node)
	}
	err = o.From.Tet.Nodes(cell, nodes)
	if err != nil {
		return
	}
	err = o.From.Bary4Of(bary, nodes, xyz)
	return
}

// enclosingTetInList picks the best candidate from a tree query result
func (o *Interp) enclosingTetInList(list []int, xyz []float64, bary []float64) (cell int, err error) {
	cell = msh.EMPTY
	best := -999.0
	current := make([]float64, 4)
	nodes := make([]int, 4)
	for _, candidate := range list {
		if errN := o.From.Tet.Nodes(candidate, nodes); errN != nil {
			return msh.EMPTY, errN
		}
		if o.From.Bary4Of(current, nodes, xyz) != nil {
			continue
		}
		minBary := math.Min(math.Min(current[0], current[1]), math.Min(current[2], current[3]))
		if cell == msh.EMPTY || minBary > best {
			cell = candidate
			best = minBary
		}
	}
	if cell == msh.EMPTY {
		return cell, sta.Err(sta.NotFound, "interp: no candidate in tree list")
	}
	err = o.From.Tet.Nodes(cell, nodes)
	if err != nil {
		return
	}
	err = o.From.Bary4Of(bary, nodes, xyz)
	return
}

// updateAgentSeed advances the walk across the face (n0,n1,n2) of the
// current seed: to the neighboring tet, across the partition when the
// face is entirely off-part, or to AtBoundary at a boundary triangle
func (o *Interp) updateAgentSeed(id, n0, n1, n2 int) (err error) {
	a := o.agents.Get(id)
	face := []int{n0, n1, n2, n0}
	cell0, cell1, err := o.From.Tet.WithFace(face)
	if err != nil {
		return
	}
	if cell0 == msh.EMPTY {
		return sta.Err(sta.NotFound, "interp: walk face lost its first cell")
	}
	if cell1 == msh.EMPTY {
		nd := o.From.Nodes
		if !nd.Owned(n0) && !nd.Owned(n1) && !nd.Owned(n2) {
			// continue on the partition of a pseudo-random face vertex
			pick := face[rnd.Int(0, 2)]
			a.Part = nd.Part[pick]
			a.Seed = nd.Global[pick]
			a.Mode = HopPart
			return
		}
		if _, errTri := o.From.Tri.With([]int{n0, n1, n2}); errTri != nil {
			return sta.Wrap(errTri, "interp: walked off an interior face with no boundary triangle")
		}
		a.Mode = AtBoundary
		return
	}
	if a.Seed == cell0 {
		a.Seed = cell1
		return
	}
	if a.Seed == cell1 {
		a.Seed = cell0
		return
	}
	return sta.Err(sta.NotFound, "interp: walk seed not adjacent to its face")
}

// walkAgent steps one agent until it encloses, leaves the mesh, must hop
// partitions, or exceeds the step cap
func (o *Interp) walkAgent(id int) (err error) {
	nodes := make([]int, 4)
	bary := make([]float64, 4)
	for ; o.agents.Get(id).Step <= o.Opts.WalkLimit; o.agents.Get(id).Step++ {
		a := o.agents.Get(id)
		if a.Mode != Walking {
			return
		}
		err = o.From.Tet.Nodes(a.Seed, nodes)
		if err != nil {
			return sta.Wrap(err, "interp: walk seed cell")
		}
		// a degenerate tet preserves the unnormalized volumes in bary
		status := o.From.Bary4Of(bary, nodes, a.Xyz[:])
		if status != nil && !sta.Is(status, sta.DivZero) {
			return status
		}

		if o.insideBary(bary) {
			a.Mode = Enclosing
			copy(a.Bary[:], bary)
			return
		}

		// strictly smallest coordinate first, then ties
		if bary[0] < bary[1] && bary[0] < bary[2] && bary[0] < bary[3] {
			if err = o.updateAgentSeed(id, nodes[1], nodes[2], nodes[3]); err != nil {
				return
			}
			continue
		}
		if bary[1] < bary[0] && bary[1] < bary[3] && bary[1] < bary[2] {
			if err = o.updateAgentSeed(id, nodes[0], nodes[3], nodes[2]); err != nil {
				return
			}
			continue
		}
		if bary[2] < bary[0] && bary[2] < bary[1] && bary[2] < bary[3] {
			if err = o.updateAgentSeed(id, nodes[0], nodes[1], nodes[3]); err != nil {
				return
			}
			continue
		}
		if bary[3] < bary[0] && bary[3] < bary[2] && bary[3] < bary[1] {
			if err = o.updateAgentSeed(id, nodes[0], nodes[2], nodes[1]); err != nil {
				return
			}
			continue
		}
		if bary[0] <= bary[1] && bary[0] <= bary[2] && bary[0] <= bary[3] {
			if err = o.updateAgentSeed(id, nodes[1], nodes[2], nodes[3]); err != nil {
				return
			}
			continue
		}
		if bary[1] <= bary[0] && bary[1] <= bary[3] && bary[1] <= bary[2] {
			if err = o.updateAgentSeed(id, nodes[0], nodes[3], nodes[2]); err != nil {
				return
			}
			continue
		}
		if bary[2] <= bary[0] && bary[2] <= bary[1] && bary[2] <= bary[3] {
			if err = o.updateAgentSeed(id, nodes[0], nodes[1], nodes[3]); err != nil {
				return
			}
			continue
		}
		if bary[3] <= bary[0] && bary[3] <= bary[2] && bary[3] <= bary[1] {
			if err = o.updateAgentSeed(id, nodes[0], nodes[2], nodes[1]); err != nil {
				return
			}
			continue
		}
		return sta.Err(sta.NotFound, "interp: unable to choose the next walk step")
	}
	o.agents.Get(id).Mode = Terminated
	return
}

// pushOntoQueue hires agents for the unlocated neighbors of a freshly
// located receptor, seeding them with its donor. Ghost neighbors become
// suggestions for their home part.
func (o *Interp) pushOntoQueue(node int) (err error) {
	nd := o.To.Nodes
	if !nd.Valid(node) || !nd.Owned(node) {
		return sta.Err(sta.Invalid, "interp: queue push from a ghost receptor")
	}
	if o.Cell[node] == msh.EMPTY {
		return sta.Err(sta.NotFound, "interp: queue push without a located donor")
	}
	list := make([]int, maxNodeList)
	nneighbor, errList := o.To.Tet.NodeListAround(node, maxNodeList, list)
	if errList != nil && !sta.Is(errList, sta.IncreaseLimit) {
		return errList
	}
	for k := 0; k < nneighbor; k++ {
		other := list[k]
		if nd.Owned(other) {
			if o.Cell[other] == msh.EMPTY && !o.hired[other] {
				o.hired[other] = true
				o.agents.Push(other, o.Part[node], o.Cell[node], nd.XyzOf(other))
			}
		} else {
			id := o.agents.Push(other, o.Part[node], o.Cell[node], nd.XyzOf(other))
			a := o.agents.Get(id)
			a.Mode = Suggestion
			a.Home = nd.Part[other]
			a.Node = nd.Global[other]
		}
	}
	return
}

// processAgents drains the agent pool: sweeps of local walks separated by
// collective migrations, until no partition holds an active agent
func (o *Interp) processAgents() (err error) {
	count := []int{o.agents.N()}
	o.Comm.AllSumInt(count)

	for count[0] > 0 {
		err = o.agents.Each(func(id int, a *Agent) error {
			if a.Mode == Walking && a.Part == o.Comm.Rank() {
				return o.walkAgent(id)
			}
			return nil
		})
		if err != nil {
			return
		}

		err = o.agents.Migrate()
		if err != nil {
			return
		}

		// hoppers localize their seed vertex and resume walking
		err = o.agents.Each(func(id int, a *Agent) error {
			if a.Mode == HopPart && a.Part == o.Comm.Rank() {
				node, errLoc := o.From.Nodes.Local(a.Seed)
				if errLoc != nil {
					return sta.Wrap(errLoc, "interp: hop seed not local")
				}
				a.Mode = Walking
				a.Seed = o.From.Tet.FirstWith(node)
				if a.Seed == msh.EMPTY {
					return sta.Err(sta.NotFound, "interp: hop seed vertex has no tet")
				}
			}
			return nil
		})
		if err != nil {
			return
		}

		// suggestions are adopted or discarded by the receptor's home
		err = o.agents.Each(func(id int, a *Agent) error {
			if a.Mode == Suggestion && a.Home == o.Comm.Rank() {
				node, errLoc := o.To.Nodes.Local(a.Node)
				if errLoc != nil {
					return sta.Wrap(errLoc, "interp: suggested receptor not local")
				}
				if o.Cell[node] != msh.EMPTY || o.hired[node] {
					return o.agents.Remove(id)
				}
				a.Mode = Walking
				a.Node = node
				o.hired[node] = true
			}
			return nil
		})
		if err != nil {
			return
		}

		// boundary and terminated agents are dismissed; the receptor is
		// left for the tree fallback
		err = o.agents.Each(func(id int, a *Agent) error {
			if (a.Mode == AtBoundary || a.Mode == Terminated) && a.Home == o.Comm.Rank() {
				node := a.Node
				if !o.To.Nodes.Owned(node) || !o.hired[node] || o.Cell[node] != msh.EMPTY {
					return sta.Err(sta.Invalid, "interp: inconsistent dismissed agent")
				}
				if a.Mode == Terminated {
					o.walkSteps += a.Step + 1
					o.nTerminated++
				}
				o.hired[node] = false
				return o.agents.Remove(id)
			}
			return nil
		})
		if err != nil {
			return
		}

		// enclosing agents finalize the receptor and seed its neighbors
		err = o.agents.Each(func(id int, a *Agent) error {
			if a.Mode == Enclosing && a.Home == o.Comm.Rank() {
				node := a.Node
				if !o.To.Nodes.Owned(node) || !o.hired[node] || o.Cell[node] != msh.EMPTY {
					return sta.Err(sta.Invalid, "interp: inconsistent enclosing agent")
				}
				o.Cell[node] = a.Seed
				o.Part[node] = a.Part
				copy(o.Bary[4*node:4*node+4], a.Bary[:])
				o.walkSteps += a.Step + 1
				o.nWalk++
				o.hired[node] = false
				if errRm := o.agents.Remove(id); errRm != nil {
					return errRm
				}
				return o.pushOntoQueue(node)
			}
			return nil
		})
		if err != nil {
			return
		}

		count[0] = o.agents.N()
		o.Comm.AllSumInt(count)
	}

	for node := 0; node < o.To.Nodes.Max(); node++ {
		if o.To.Nodes.Owned(node) && o.hired[node] {
			return sta.Err(sta.Invalid, "interp: receptor %d still hired after drain", node)
		}
	}
	return
}

// geomNodeList collects the owned vertices pinned by the geometry: three
// or more distinct face ids, or two or more distinct edge ids
func geomNodeList(m *msh.Mesh) (list []int, err error) {
	faceids := make([]int, 3)
	edgeids := make([]int, 2)
	for node := 0; node < m.Nodes.Max(); node++ {
		if !m.Nodes.Owned(node) {
			continue
		}
		nface, errF := m.Tri.IDListAround(node, 3, faceids)
		if errF != nil && !sta.Is(errF, sta.IncreaseLimit) {
			return nil, errF
		}
		nedge, errE := m.Edg.IDListAround(node, 2, edgeids)
		if errE != nil && !sta.Is(errE, sta.IncreaseLimit) {
			return nil, errE
		}
		if nface >= 3 || nedge >= 2 || sta.Is(errF, sta.IncreaseLimit) || sta.Is(errE, sta.IncreaseLimit) {
			list = append(list, node)
		}
	}
	return
}

// geomNodes seeds the walking queue by matching geometry nodes of the
// receptor mesh against the nearest geometry nodes of the donor mesh
func (o *Interp) geomNodes() (err error) {
	toList, err := geomNodeList(o.To)
	if err != nil {
		return
	}
	fromList, err := geomNodeList(o.From)
	if err != nil {
		return
	}

	localNode := make([]int, len(toList))
	localXyz := make([]float64, 3*len(toList))
	for i, node := range toList {
		localNode[i] = node
		copy(localXyz[3*i:3*i+3], o.To.Nodes.XyzOf(node))
	}
	totalNode, _, globalXyz := o.Comm.AllConcatDbl(3, len(toList), localXyz)
	_, source, globalNode := o.Comm.AllConcatInt(1, len(toList), localNode)

	bestDist := make([]float64, totalNode)
	bestNode := make([]int, totalNode)
	fromProc := make([]int, totalNode)
	for i := 0; i < totalNode; i++ {
		xyz := globalXyz[3*i : 3*i+3]
		bestDist[i] = 1.0e20
		bestNode[i] = msh.EMPTY
		for _, fromNode := range fromList {
			x := o.From.Nodes.XyzOf(fromNode)
			dist := math.Sqrt(math.Pow(xyz[0]-x[0], 2) + math.Pow(xyz[1]-x[1], 2) + math.Pow(xyz[2]-x[2], 2))
			if dist < bestDist[i] || bestNode[i] == msh.EMPTY {
				bestDist[i] = dist
				bestNode[i] = fromNode
			}
		}
	}
	o.Comm.AllMinWho(bestDist, fromProc)

	nsend := 0
	for i := 0; i < totalNode; i++ {
		if fromProc[i] == o.Comm.Rank() {
			nsend++
		}
	}
	sendProc := make([]int, 0, nsend)
	sendInts := make([]int, 0, 3*nsend) // node, cell, donor part
	sendBary := make([]float64, 0, 4*nsend)
	bary := make([]float64, 4)
	for i := 0; i < totalNode; i++ {
		if fromProc[i] != o.Comm.Rank() {
			continue
		}
		if bestNode[i] == msh.EMPTY {
			return sta.Err(sta.NotFound, "interp: winning part without a geometry node")
		}
		cell, errEx := o.exhaustiveTetAroundNode(bestNode[i], globalXyz[3*i:3*i+3], bary)
		if errEx != nil {
			return errEx
		}
		sendProc = append(sendProc, source[i])
		sendInts = append(sendInts, globalNode[i], cell, o.Comm.Rank())
		sendBary = append(sendBary, bary...)
	}

	recvInts, nrecv, err := o.Comm.BlindSendInt(sendProc, sendInts, 3, len(sendProc))
	if err != nil {
		return
	}
	recvBary, _, err := o.Comm.BlindSendDbl(sendProc, sendBary, 4, len(sendProc))
	if err != nil {
		return
	}

	for i := 0; i < nrecv; i++ {
		b := recvBary[4*i : 4*i+4]
		if b[0] > o.Opts.Inside && b[1] > o.Opts.Inside && b[2] > o.Opts.Inside && b[3] > o.Opts.Inside {
			o.nGeom++
			node := recvInts[0+3*i]
			if o.Cell[node] != msh.EMPTY {
				return sta.Err(sta.Invalid, "interp: geometry receptor already located")
			}
			if o.hired[node] {
				if errDel := o.agents.DeleteNode(node); errDel != nil {
					return errDel
				}
				o.hired[node] = false
			}
			o.Cell[node] = recvInts[1+3*i]
			o.Part[node] = recvInts[2+3*i]
			copy(o.Bary[4*node:4*node+4], b)
			if errPush := o.pushOntoQueue(node); errPush != nil {
				return errPush
			}
		} else {
			o.nGeomFail++
		}
	}

	counts := []int{o.nGeom, o.nGeomFail}
	o.Comm.AllSumInt(counts)
	o.nGeom, o.nGeomFail = counts[0], counts[1]
	return
}

// treeStage locates the remaining receptors through the bounding-sphere
// tree. Returns whether some receptor found no candidate, asking for a
// larger fuzz.
func (o *Interp) treeStage() (increaseFuzz bool, err error) {
	localNode := make([]int, 0)
	localXyz := make([]float64, 0)
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if !o.To.Nodes.Owned(node) || o.Cell[node] != msh.EMPTY {
			continue
		}
		localNode = append(localNode, node)
		localXyz = append(localXyz, o.To.Nodes.XyzOf(node)...)
	}
	totalNode, _, globalXyz := o.Comm.AllConcatDbl(3, len(localNode), localXyz)
	_, source, globalNode := o.Comm.AllConcatInt(1, len(localNode), localNode)

	bestScore := make([]float64, totalNode)
	bestCell := make([]int, totalNode)
	fromProc := make([]int, totalNode)
	bary := make([]float64, 4)
	for i := 0; i < totalNode; i++ {
		bestScore[i] = 1.0e20 // negated min bary; lower is better
		bestCell[i] = msh.EMPTY
		list := o.tree.Touching(globalXyz[3*i:3*i+3], o.Opts.Fuzz)
		o.treeCells += len(list)
		if len(list) > 0 {
			cell, errList := o.enclosingTetInList(list, globalXyz[3*i:3*i+3], bary)
			if errList == nil && cell != msh.EMPTY {
				bestCell[i] = cell
				bestScore[i] = -math.Min(math.Min(bary[0], bary[1]), math.Min(bary[2], bary[3]))
			}
		}
	}
	o.Comm.AllMinWho(bestScore, fromProc)

	sendProc := make([]int, 0)
	sendInts := make([]int, 0)
	sendBary := make([]float64, 0)
	for i := 0; i < totalNode; i++ {
		if fromProc[i] != o.Comm.Rank() {
			continue
		}
		if bestCell[i] == msh.EMPTY {
			increaseFuzz = true
		} else {
			nodes := make([]int, 4)
			if errN := o.From.Tet.Nodes(bestCell[i], nodes); errN != nil {
				return false, errN
			}
			if errB := o.From.Bary4Of(bary, nodes, globalXyz[3*i:3*i+3]); errB != nil {
				return false, errB
			}
			sendProc = append(sendProc, source[i])
			sendInts = append(sendInts, globalNode[i], bestCell[i], o.Comm.Rank())
			sendBary = append(sendBary, bary...)
		}
	}

	recvInts, nrecv, err := o.Comm.BlindSendInt(sendProc, sendInts, 3, len(sendProc))
	if err != nil {
		return
	}
	recvBary, _, err := o.Comm.BlindSendDbl(sendProc, sendBary, 4, len(sendProc))
	if err != nil {
		return
	}
	for i := 0; i < nrecv; i++ {
		o.nTree++
		node := recvInts[0+3*i]
		if o.Cell[node] != msh.EMPTY {
			return false, sta.Err(sta.Invalid, "interp: tree receptor already located")
		}
		if o.hired[node] {
			if errDel := o.agents.DeleteNode(node); errDel != nil {
				return false, errDel
			}
			o.hired[node] = false
		}
		o.Cell[node] = recvInts[1+3*i]
		o.Part[node] = recvInts[2+3*i]
		copy(o.Bary[4*node:4*node+4], recvBary[4*i:4*i+4])
	}

	increaseFuzz = o.Comm.AllOr(increaseFuzz)
	return
}

// Locate runs the three stages: geometry-node exchange, walking drain and
// tree fallback with fuzz growth. A receptor still unlocated afterwards
// is fatal.
func (o *Interp) Locate() (err error) {
	err = o.geomNodes()
	if err != nil {
		return sta.Wrap(err, "interp: geometry-node stage")
	}
	err = o.processAgents()
	if err != nil {
		return sta.Wrap(err, "interp: walking drain")
	}
	increaseFuzz := false
	for tries := 0; tries < 12; tries++ {
		if increaseFuzz {
			o.Opts.Fuzz *= 10.0
			if o.Comm.Once() {
				io.Pf("retry tree search with %e fuzz\n", o.Opts.Fuzz)
			}
		}
		increaseFuzz, err = o.treeStage()
		if err != nil {
			return sta.Wrap(err, "interp: tree stage")
		}
		if !increaseFuzz {
			break
		}
	}
	if increaseFuzz {
		return sta.Err(sta.NotFound, "interp: fuzz growth exhausted without a tree candidate")
	}
	for node := 0; node < o.To.Nodes.Max(); node++ {
		if o.To.Nodes.Owned(node) && o.Cell[node] == msh.EMPTY {
			return sta.Err(sta.NotFound, "interp: receptor missed by the tree: %s", o.To.Nodes.Location(node))
		}
	}
	return
}

// NewIdentity binds a mesh onto a deep copy of itself, locating every
// owned vertex exhaustively around its own image
func NewIdentity(to *msh.Mesh) (o *Interp, err error) {
	from, err := to.DeepCopy()
	if err != nil {
		return
	}
	o, err = New(from, to)
	if err != nil {
		return
	}
	for node := 0; node < to.Nodes.Max(); node++ {
		if !to.Nodes.Owned(node) {
			continue
		}
		if o.Cell[node] != msh.EMPTY {
			return nil, sta.Err(sta.Invalid, "interp: identity receptor already located")
		}
		o.Cell[node], err = o.exhaustiveTetAroundNode(node, to.Nodes.XyzOf(node), o.Bary[4*node:4*node+4])
		if err != nil {
			return
		}
		o.Part[node] = o.Comm.Rank()
		if !o.insideBary(o.Bary[4*node : 4*node+4]) {
			io.Pforan("identity bary %v outside tolerance\n", o.Bary[4*node:4*node+4])
		}
	}
	maxError, err := o.MaxError()
	if err != nil {
		return
	}
	if o.Comm.Once() && maxError > 1.0e-12 {
		io.Pforan("warning: %e max error for identity background grid\n", maxError)
	}
	return
}
