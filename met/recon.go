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

// Recon selects the Hessian reconstruction method
type Recon int

const (
	L2Projection Recon = iota // double L2-projection with boundary extrapolation
	Kexact                    // k-exact least-squares on a growing cloud
)

const maxNodeList = 1000

// tetGrad computes the gradient of a piecewise-linear scalar on one tet
func tetGrad(grad []float64, m *msh.Mesh, nodes []int, scalar []float64) (err error) {
	x0 := m.Nodes.XyzOf(nodes[0])
	a := la.MatAlloc(3, 3)
	b := make([]float64, 3)
	for i := 1; i < 4; i++ {
		xi := m.Nodes.XyzOf(nodes[i])
		for j := 0; j < 3; j++ {
			a[i-1][j] = xi[j] - x0[j]
		}
		b[i-1] = scalar[nodes[i]] - scalar[nodes[0]]
	}
	return mtx.Solve3(grad, a, b)
}

// L2ProjectionGrad recovers a nodal gradient as the volume-weighted average
// of the piecewise-constant cell gradients over each vertex star
// (Alauzet and Loseille doi:10.1016/j.jcp.2009.09.020 section 2.2.4.1)
func L2ProjectionGrad(m *msh.Mesh, scalar, grad []float64) (err error) {
	if m.Pyr.N() > 0 || m.Pri.N() > 0 || m.Hex.N() > 0 {
		return sta.Err(sta.Implement, "met: L2 projection over mixed elements")
	}
	max := m.Nodes.Max()
	vol := make([]float64, max)
	for i := range grad[:3*max] {
		grad[i] = 0.0
	}
	cellGrad := make([]float64, 3)
	err = m.Tet.Each(func(cell int, nodes []int) error {
		cellVol := m.TetVolOf(nodes)
		errGrad := tetGrad(cellGrad, m, nodes, scalar)
		if errGrad != nil {
			return sta.Wrap(errGrad, "met: cell gradient of tet %d", cell)
		}
		for _, n := range nodes {
			vol[n] += cellVol
			for i := 0; i < 3; i++ {
				grad[i+3*n] += cellVol * cellGrad[i]
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	divZero := false
	for local := 0; local < max; local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		ok := true
		for i := 0; i < 3; i++ {
			ok = ok && mtx.Divisible(grad[i+3*local], vol[local])
		}
		if ok {
			for i := 0; i < 3; i++ {
				grad[i+3*local] /= vol[local]
			}
		} else {
			divZero = true
			for i := 0; i < 3; i++ {
				grad[i+3*local] = 0.0
			}
		}
	}
	divZero = m.Comm.AllOr(divZero)
	err = m.GhostSyncDbl(grad, 3)
	if err != nil {
		return
	}
	if divZero {
		return sta.Err(sta.DivZero, "met: vertex with zero star volume in L2 projection")
	}
	return
}

// l2ProjectionHessian applies the gradient projection twice and
// symmetrizes the off-diagonals
func l2ProjectionHessian(m *msh.Mesh, scalar, hessian []float64) (err error) {
	max := m.Nodes.Max()
	grad := make([]float64, 3*max)
	dsdx := make([]float64, max)
	gradx := make([]float64, 3*max)
	grady := make([]float64, 3*max)
	gradz := make([]float64, 3*max)

	err = L2ProjectionGrad(m, scalar, grad)
	if err != nil {
		return
	}
	for dir, out := range [][]float64{gradx, grady, gradz} {
		for local := 0; local < max; local++ {
			dsdx[local] = grad[dir+3*local]
		}
		err = L2ProjectionGrad(m, dsdx, out)
		if err != nil {
			return
		}
	}
	for local := 0; local < max; local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		hessian[0+6*local] = gradx[0+3*local]
		hessian[1+6*local] = 0.5 * (gradx[1+3*local] + grady[0+3*local])
		hessian[2+6*local] = 0.5 * (gradx[2+3*local] + gradz[0+3*local])
		hessian[3+6*local] = grady[1+3*local]
		hessian[4+6*local] = 0.5 * (grady[2+3*local] + gradz[1+3*local])
		hessian[5+6*local] = gradz[2+3*local]
	}
	return AbsValueHessian(hessian, m)
}

// AbsValueHessian replaces each vertex matrix by |H|: the absolute value
// of its eigenvalues in its own eigenbasis
func AbsValueHessian(hessian []float64, m *msh.Mesh) (err error) {
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		h := hessian[6*local : 6*local+6]
		err = mtx.EigSym(lam, v, h)
		if err != nil {
			return
		}
		for i := 0; i < 3; i++ {
			lam[i] = math.Abs(lam[i])
		}
		mtx.Reform(h, lam, v)
	}
	return
}

// ExtrapolateBoundaryMultipass fills boundary-vertex reconstructions by
// zeroth-order averages of interior neighbors, sweeping until every
// boundary vertex found a donor (at most ten passes)
func ExtrapolateBoundaryMultipass(recon []float64, m *msh.Mesh) (err error) {
	max := m.Nodes.Max()
	needsDonor := make([]int, max)
	for local := 0; local < max; local++ {
		if m.Nodes.Valid(local) && !m.Tri.NodeEmpty(local) {
			needsDonor[local] = 1
		}
	}
	err = m.GhostSyncInt(needsDonor, 1)
	if err != nil {
		return
	}

	list := make([]int, maxNodeList)
	remain := 0
	for pass := 0; pass < 10; pass++ {
		for local := 0; local < max; local++ {
			if !m.Nodes.Owned(local) || needsDonor[local] == 0 {
				continue
			}
			nnode, errList := m.Tet.NodeListAround(local, maxNodeList, list)
			if errList != nil && !sta.Is(errList, sta.IncreaseLimit) {
				return errList
			}
			nint := 0
			for k := 0; k < nnode; k++ {
				if needsDonor[list[k]] == 0 {
					nint++
				}
			}
			if nint == 0 {
				continue
			}
			for i := 0; i < 6; i++ {
				recon[i+6*local] = 0.0
			}
			for k := 0; k < nnode; k++ {
				if needsDonor[list[k]] == 0 {
					for i := 0; i < 6; i++ {
						recon[i+6*local] += recon[i+6*list[k]]
					}
				}
			}
			// Euclidean average; these are derivatives, not metrics
			for i := 0; i < 6; i++ {
				recon[i+6*local] /= float64(nint)
			}
			needsDonor[local] = 0
		}
		err = m.GhostSyncInt(needsDonor, 1)
		if err != nil {
			return
		}
		err = m.GhostSyncMetricField(recon)
		if err != nil {
			return
		}
		remain = 0
		for local := 0; local < max; local++ {
			if m.Nodes.Owned(local) && needsDonor[local] == 1 {
				remain++
			}
		}
		total := []int{remain}
		m.Comm.AllSumInt(total)
		remain = total[0]
		if remain == 0 {
			break
		}
	}
	if remain != 0 {
		return sta.Err(sta.Invalid, "met: %d boundary vertices without interior donor", remain)
	}
	return
}

// RoundoffLimit floors the eigenvalues of a reconstruction by the
// second-order finite-difference jitter bound 4e-12/rmin^2, with rmin the
// shortest incident edge length
func RoundoffLimit(recon []float64, m *msh.Mesh) (err error) {
	const jitter = 1.0e-12
	cells := m.Tet
	if m.Twod {
		cells = m.Tri
	}
	list := make([]int, maxNodeList)
	lam := make([]float64, 3)
	v := la.MatAlloc(3, 3)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Valid(local) {
			continue
		}
		nnode, errList := cells.NodeListAround(local, maxNodeList, list)
		if errList != nil && !sta.Is(errList, sta.IncreaseLimit) {
			return errList
		}
		if nnode == 0 {
			continue
		}
		radius := 0.0
		x := m.Nodes.XyzOf(local)
		for k := 0; k < nnode; k++ {
			y := m.Nodes.XyzOf(list[k])
			dist := math.Sqrt(math.Pow(y[0]-x[0], 2) + math.Pow(y[1]-x[1], 2) + math.Pow(y[2]-x[2], 2))
			if k == 0 || dist < radius {
				radius = dist
			}
		}
		floor := 4.0 * jitter / radius / radius
		h := recon[6*local : 6*local+6]
		err = mtx.EigSym(lam, v, h)
		if err != nil {
			return
		}
		for i := 0; i < 3; i++ {
			lam[i] = math.Max(lam[i], floor)
		}
		mtx.Reform(h, lam, v)
	}
	return m.GhostSyncMetricField(recon)
}

// cloud entry: position and sampled scalar keyed by global id
type cloudPoint struct {
	xyz [3]float64
	s   float64
}

// immediateCloud gathers, for every vertex, the 1-ring sample cloud from
// its incident tets
func immediateCloud(m *msh.Mesh, scalar []float64) (oneLayer []map[int]cloudPoint, err error) {
	max := m.Nodes.Max()
	oneLayer = make([]map[int]cloudPoint, max)
	for local := 0; local < max; local++ {
		if m.Nodes.Valid(local) {
			oneLayer[local] = make(map[int]cloudPoint)
		}
	}
	err = m.Tet.Each(func(cell int, nodes []int) error {
		for _, center := range nodes {
			for _, target := range nodes {
				x := m.Nodes.XyzOf(target)
				oneLayer[center][m.Nodes.Global[target]] = cloudPoint{
					xyz: [3]float64{x[0], x[1], x[2]},
					s:   scalar[target],
				}
			}
		}
		return nil
	})
	return
}

// ghostCloud completes the 1-ring clouds of ghost vertices with the
// owner's view, so cloud growth can cross partition boundaries
func ghostCloud(oneLayer []map[int]cloudPoint, m *msh.Mesh) (err error) {
	if !m.Comm.Para() {
		return
	}
	// request each ghost vertex's cloud from its owner
	dest := make([]int, 0)
	req := make([]int, 0)
	for local := 0; local < m.Nodes.Max(); local++ {
		if m.Nodes.Valid(local) && !m.Nodes.Owned(local) {
			dest = append(dest, m.Nodes.Part[local])
			req = append(req, m.Nodes.Global[local], m.Comm.Rank())
		}
	}
	ask, nAsk, err := m.Comm.BlindSendInt(dest, req, 2, len(dest))
	if err != nil {
		return
	}
	// flatten each requested cloud into fixed-stride records
	rdest := make([]int, 0)
	rint := make([]int, 0)
	rdbl := make([]float64, 0)
	for i := 0; i < nAsk; i++ {
		local, errLoc := m.Nodes.Local(ask[0+2*i])
		if errLoc != nil {
			return sta.Wrap(errLoc, "met: ghost cloud request")
		}
		for global, p := range oneLayer[local] {
			rdest = append(rdest, ask[1+2*i])
			rint = append(rint, ask[0+2*i], global)
			rdbl = append(rdbl, p.xyz[0], p.xyz[1], p.xyz[2], p.s)
		}
	}
	aint, nAns, err := m.Comm.BlindSendInt(rdest, rint, 2, len(rdest))
	if err != nil {
		return
	}
	adbl, _, err := m.Comm.BlindSendDbl(rdest, rdbl, 4, len(rdest))
	if err != nil {
		return
	}
	for i := 0; i < nAns; i++ {
		local, errLoc := m.Nodes.Local(aint[0+2*i])
		if errLoc != nil {
			return sta.Wrap(errLoc, "met: ghost cloud answer")
		}
		oneLayer[local][aint[1+2*i]] = cloudPoint{
			xyz: [3]float64{adbl[0+4*i], adbl[1+4*i], adbl[2+4*i]},
			s:   adbl[3+4*i],
		}
	}
	return
}

// growCloudOneLayer unions the 1-ring clouds of every locally-resolvable
// member into the cloud
func growCloudOneLayer(cloud map[int]cloudPoint, oneLayer []map[int]cloudPoint, m *msh.Mesh) {
	pivots := make([]int, 0, len(cloud))
	for global := range cloud {
		pivots = append(pivots, global)
	}
	for _, global := range pivots {
		local, err := m.Nodes.Local(global)
		if err != nil {
			continue
		}
		for g, p := range oneLayer[local] {
			cloud[g] = p
		}
	}
}

// kexactSolve fits the 9-unknown quadratic model around centerGlobal and
// extracts gradient and Hessian. DivZero signals an underdetermined cloud;
// IllConditioned a rank-deficient one. Both call for cloud growth.
func kexactSolve(centerGlobal int, cloud map[int]cloudPoint, gradient, hessian []float64) (err error) {
	center, ok := cloud[centerGlobal]
	if !ok {
		return sta.Err(sta.NotFound, "met: cloud missing its center %d", centerGlobal)
	}
	rows := len(cloud) - 1
	if rows < 9 {
		return sta.Err(sta.DivZero, "met: %d cloud points for 9 unknowns", rows)
	}
	a := la.MatAlloc(rows, 9)
	b := make([]float64, rows)
	i := 0
	for global, p := range cloud {
		if global == centerGlobal {
			continue
		}
		dx := p.xyz[0] - center.xyz[0]
		dy := p.xyz[1] - center.xyz[1]
		dz := p.xyz[2] - center.xyz[2]
		a[i][0] = 0.5 * dx * dx
		a[i][1] = dx * dy
		a[i][2] = dx * dz
		a[i][3] = 0.5 * dy * dy
		a[i][4] = dy * dz
		a[i][5] = 0.5 * dz * dz
		a[i][6] = dx
		a[i][7] = dy
		a[i][8] = dz
		b[i] = p.s - center.s
		i++
	}
	x := make([]float64, 9)
	err = mtx.SolveQR(x, a, b)
	if err != nil {
		return
	}
	copy(hessian, x[:6])
	copy(gradient, x[6:9])
	return
}

// KexactGradientHessian recovers gradient and Hessian by k-exact least
// squares: each owned vertex grows its sample cloud one ring at a time
// until the quadratic fit succeeds, up to eight rings
func KexactGradientHessian(m *msh.Mesh, scalar, gradient, hessian []float64) (err error) {
	oneLayer, err := immediateCloud(m, scalar)
	if err != nil {
		return
	}
	err = ghostCloud(oneLayer, m)
	if err != nil {
		return
	}
	nodeGrad := make([]float64, 3)
	nodeHess := make([]float64, 6)
	for local := 0; local < m.Nodes.Max(); local++ {
		if !m.Nodes.Owned(local) {
			continue
		}
		global := m.Nodes.Global[local]
		cloud := make(map[int]cloudPoint, len(oneLayer[local]))
		for g, p := range oneLayer[local] {
			cloud[g] = p
		}
		solved := false
		for layer := 2; layer <= 8; layer++ {
			growCloudOneLayer(cloud, oneLayer, m)
			errSolve := kexactSolve(global, cloud, nodeGrad, nodeHess)
			if errSolve == nil {
				solved = true
				break
			}
			if !sta.Is(errSolve, sta.DivZero) && !sta.Is(errSolve, sta.IllConditioned) {
				return errSolve
			}
			io.Pforan("grow k-exact cloud to %d layers at %s\n", layer+1, m.Nodes.Location(local))
		}
		if !solved {
			return sta.Err(sta.IllConditioned, "met: k-exact cloud exhausted at %s", m.Nodes.Location(local))
		}
		if gradient != nil {
			copy(gradient[3*local:3*local+3], nodeGrad)
		}
		if hessian != nil {
			copy(hessian[6*local:6*local+6], nodeHess)
		}
	}
	if gradient != nil {
		err = m.GhostSyncDbl(gradient, 3)
		if err != nil {
			return
		}
	}
	if hessian != nil {
		err = AbsValueHessian(hessian, m)
		if err != nil {
			return
		}
		err = m.GhostSyncMetricField(hessian)
	}
	return
}

// Gradient recovers a nodal gradient with the selected method
func Gradient(m *msh.Mesh, scalar, grad []float64, recon Recon) (err error) {
	switch recon {
	case L2Projection:
		return L2ProjectionGrad(m, scalar, grad)
	case Kexact:
		return KexactGradientHessian(m, scalar, grad, nil)
	}
	return sta.Err(sta.Implement, "met: reconstruction %d", recon)
}

// Hessian recovers a symmetrized positive nodal Hessian with the selected
// method; the L2 projection fills boundary vertices by extrapolation
func Hessian(m *msh.Mesh, scalar, hessian []float64, recon Recon) (err error) {
	switch recon {
	case L2Projection:
		err = l2ProjectionHessian(m, scalar, hessian)
		if err != nil {
			return
		}
		return ExtrapolateBoundaryMultipass(hessian, m)
	case Kexact:
		return KexactGradientHessian(m, scalar, nil, hessian)
	}
	return sta.Err(sta.Implement, "met: reconstruction %d", recon)
}
