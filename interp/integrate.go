// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"math"

	"github.com/cpmech/gomesh/msh"
)

// 24-point tetrahedral quadrature on [-1,1]^3 reference coordinates
var nq = 24
var xq = []float64{
	-0.570794257481696, -0.287617227554912, -0.570794257481696,
	-0.570794257481696, -0.918652082930777, 0.755956248792332,
	-0.918652082930777, -0.918652082930777, -0.355324219715449,
	-0.934027340853653, -0.355324219715449, -0.355324219715449,
	-0.872677996249965, -0.872677996249965, -0.872677996249965,
	-0.872677996249965, -0.872677996249965, -0.872677996249965,
	-0.460655337083368, -0.460655337083368, -0.460655337083368,
	0.206011329583298, 0.206011329583298, 0.206011329583298,
}
var yq = []float64{
	-0.570794257481696, -0.570794257481696, -0.287617227554912,
	-0.570794257481696, -0.918652082930777, -0.918652082930777,
	0.755956248792332, -0.918652082930777, -0.355324219715449,
	-0.355324219715449, -0.934027340853653, -0.355324219715449,
	-0.872677996249965, -0.460655337083368, -0.872677996249965,
	0.206011329583298, -0.460655337083368, 0.206011329583298,
	-0.872677996249965, -0.872677996249965, 0.206011329583298,
	-0.872677996249965, -0.872677996249965, -0.460655337083368,
}
var zq = []float64{
	-0.570794257481696, -0.570794257481696, -0.570794257481696,
	-0.287617227554912, -0.918652082930777, -0.918652082930777,
	-0.918652082930777, 0.755956248792332, -0.355324219715449,
	-0.355324219715449, -0.355324219715449, -0.934027340853653,
	-0.460655337083368, -0.872677996249965, 0.206011329583298,
	-0.872677996249965, 0.206011329583298, -0.460655337083368,
	-0.872677996249965, 0.206011329583298, -0.872677996249965,
	-0.460655337083368, -0.872677996249965, -0.872677996249965,
}
var wq = []float64{
	0.053230333677557, 0.053230333677557, 0.053230333677557, 0.053230333677557,
	0.013436281407094, 0.013436281407094, 0.013436281407094, 0.013436281407094,
	0.073809575391540, 0.073809575391540, 0.073809575391540, 0.073809575391540,
	0.064285714285714, 0.064285714285714, 0.064285714285714, 0.064285714285714,
	0.064285714285714, 0.064285714285714, 0.064285714285714, 0.064285714285714,
	0.064285714285714, 0.064285714285714, 0.064285714285714, 0.064285714285714,
}

// Integrate measures the volume-normalized Lp distance between two nodal
// fields over the owned tets of a mesh by Gaussian quadrature. Collective.
func Integrate(m *msh.Mesh, candidate, truth []float64, normPower int) (result float64, err error) {
	totalVolume := 0.0
	bary := make([]float64, 4)
	err = m.Tet.Each(func(cell int, nodes []int) error {
		part, errPart := m.Tet.Part(m.Nodes, cell)
		if errPart != nil {
			return errPart
		}
		if part != m.Comm.Rank() {
			return nil
		}
		volume := m.TetVolOf(nodes)
		totalVolume += volume
		for q := 0; q < nq; q++ {
			bary[1] = 0.5 * (1.0 + xq[q])
			bary[2] = 0.5 * (1.0 + yq[q])
			bary[3] = 0.5 * (1.0 + zq[q])
			bary[0] = 1.0 - bary[1] - bary[2] - bary[3]
			c, t := 0.0, 0.0
			for i, n := range nodes {
				c += bary[i] * candidate[n]
				t += bary[i] * truth[n]
			}
			diff := math.Abs(c - t)
			result += (6.0 / 8.0) * wq[q] * volume * math.Pow(diff, float64(normPower))
		}
		return nil
	})
	if err != nil {
		return
	}
	sums := []float64{result, totalVolume}
	m.Comm.AllSumDbl(sums)
	result = math.Pow(sums[0], 1.0/float64(normPower)) / sums[1]
	return
}
