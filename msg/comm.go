// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msg implements the collective operations of the partitioned mesh:
// reductions, broadcast, all-concatenation, min-who reductions and blind
// sends. All primitives are composed over gosl/mpi and degenerate to local
// copies when MPI is off, so serial runs and tests need no mpirun.
package msg

import (
	"github.com/cpmech/gosl/mpi"
)

// Comm holds the communicator state threaded through the mesh context
type Comm struct {
	rank int // this processor
	size int // number of processors
	on   bool
}

// NewComm returns a communicator reflecting the MPI runtime state
func NewComm() (o *Comm) {
	o = new(Comm)
	o.rank = 0
	o.size = 1
	o.on = mpi.IsOn()
	if o.on {
		o.rank = mpi.Rank()
		o.size = mpi.Size()
	}
	return
}

// Rank returns this processor number
func (o *Comm) Rank() int { return o.rank }

// Size returns the number of processors
func (o *Comm) Size() int { return o.size }

// Para tells whether more than one processor is active
func (o *Comm) Para() bool { return o.on && o.size > 1 }

// Once tells whether this is processor 0
func (o *Comm) Once() bool { return o.rank == 0 }

// Barrier synchronizes all processors
func (o *Comm) Barrier() {
	if o.Para() {
		mpi.Barrier()
	}
}

// AllSumDbl replaces each entry of x by its sum over all processors
func (o *Comm) AllSumDbl(x []float64) {
	if !o.Para() {
		return
	}
	w := make([]float64, len(x))
	mpi.AllReduceSum(x, w)
}

// AllSumInt replaces each entry of x by its sum over all processors
func (o *Comm) AllSumInt(x []int) {
	if !o.Para() {
		return
	}
	d := make([]float64, len(x))
	for i, v := range x {
		d[i] = float64(v)
	}
	o.AllSumDbl(d)
	for i := range x {
		x[i] = int(d[i] + 0.5*sign(d[i]))
	}
}

// AllMinDbl replaces each entry of x by its minimum over all processors
func (o *Comm) AllMinDbl(x []float64) {
	if !o.Para() {
		return
	}
	w := make([]float64, len(x))
	mpi.AllReduceMin(x, w)
}

// AllMaxDbl replaces each entry of x by its maximum over all processors
func (o *Comm) AllMaxDbl(x []float64) {
	if !o.Para() {
		return
	}
	w := make([]float64, len(x))
	mpi.AllReduceMax(x, w)
}

// AllMaxInt replaces each entry of x by its maximum over all processors
func (o *Comm) AllMaxInt(x []int) {
	if !o.Para() {
		return
	}
	w := make([]int, len(x))
	mpi.IntAllReduceMax(x, w)
}

// AllOr combines a boolean over all processors with logical or
func (o *Comm) AllOr(b bool) bool {
	if !o.Para() {
		return b
	}
	x := []int{0}
	if b {
		x[0] = 1
	}
	o.AllMaxInt(x)
	return x[0] > 0
}

// BcastDbl broadcasts x from processor 0 to all others
func (o *Comm) BcastDbl(x []float64) {
	if !o.Para() {
		return
	}
	mpi.BcastFromRoot(x)
}

// BcastInt broadcasts x from processor 0 to all others
func (o *Comm) BcastInt(x []int) {
	if !o.Para() {
		return
	}
	d := make([]float64, len(x))
	if o.Once() {
		for i, v := range x {
			d[i] = float64(v)
		}
	}
	o.BcastDbl(d)
	for i := range x {
		x[i] = int(d[i] + 0.5*sign(d[i]))
	}
}

// AllMinWho finds, for each index, the minimum value over all processors and
// the lowest processor rank attaining it. vals is replaced by the global
// minima and who receives the argmin ranks.
func (o *Comm) AllMinWho(vals []float64, who []int) {
	if !o.Para() {
		for i := range who {
			who[i] = 0
		}
		return
	}
	gmin := make([]float64, len(vals))
	copy(gmin, vals)
	o.AllMinDbl(gmin)
	cand := make([]float64, len(vals))
	for i := range vals {
		if vals[i] <= gmin[i] {
			cand[i] = float64(o.rank)
		} else {
			cand[i] = float64(o.size)
		}
	}
	o.AllMinDbl(cand)
	for i := range vals {
		vals[i] = gmin[i]
		who[i] = int(cand[i] + 0.5)
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1.0
	}
	return 1.0
}
