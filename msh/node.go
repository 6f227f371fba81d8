// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msh holds the partitioned mesh context: the vertex table, the
// per-kind cell tables with node-to-cell adjacency, the derived edge table,
// compaction, ghost synchronization, migration and validation.
package msh

import (
	"github.com/cpmech/gomesh/mtx"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/io"
)

// EMPTY marks an unset index
const EMPTY = -1

// Nodes is the vertex table. Coordinates, ownership and the metric (stored
// in log form) live in parallel arrays indexed by local slot; removed slots
// go to a free list and are reused by Add.
type Nodes struct {
	Global []int     // [max] global id, EMPTY on free slots
	Part   []int     // [max] owning part (0-based)
	Xyz    []float64 // [3*max] coordinates
	MetLog []float64 // [6*max] upper triangle of log(M); zero means M=I
	g2l    map[int]int
	free   []int
	n      int // number of valid slots
	rank   int // this processor, for ownership tests
}

// NewNodes returns an empty vertex table bound to processor rank
func NewNodes(rank int) (o *Nodes) {
	o = new(Nodes)
	o.Global = make([]int, 0)
	o.Part = make([]int, 0)
	o.Xyz = make([]float64, 0)
	o.MetLog = make([]float64, 0)
	o.g2l = make(map[int]int)
	o.rank = rank
	return
}

// N returns the number of valid vertices
func (o *Nodes) N() int { return o.n }

// Max returns the extent of the local index range (valid and free slots)
func (o *Nodes) Max() int { return len(o.Global) }

// Valid tells whether a local slot holds a vertex
func (o *Nodes) Valid(local int) bool {
	return local >= 0 && local < len(o.Global) && o.Global[local] != EMPTY
}

// Owned tells whether this processor owns the vertex
func (o *Nodes) Owned(local int) bool {
	return o.Valid(local) && o.Part[local] == o.rank
}

// Rank returns the processor this table is bound to
func (o *Nodes) Rank() int { return o.rank }

// Add creates a vertex with the given global id and returns its local slot.
// The new vertex is owned by this processor until Part is changed.
func (o *Nodes) Add(global int) (local int, err error) {
	if global < 0 {
		return EMPTY, sta.Err(sta.Invalid, "msh: negative global id %d", global)
	}
	if _, ok := o.g2l[global]; ok {
		return EMPTY, sta.Err(sta.Invalid, "msh: global id %d already local", global)
	}
	if len(o.free) > 0 {
		local = o.free[len(o.free)-1]
		o.free = o.free[:len(o.free)-1]
	} else {
		local = len(o.Global)
		o.Global = append(o.Global, EMPTY)
		o.Part = append(o.Part, EMPTY)
		o.Xyz = append(o.Xyz, 0, 0, 0)
		o.MetLog = append(o.MetLog, 0, 0, 0, 0, 0, 0)
	}
	o.Global[local] = global
	o.Part[local] = o.rank
	for i := 0; i < 3; i++ {
		o.Xyz[i+3*local] = 0.0
	}
	for i := 0; i < 6; i++ {
		o.MetLog[i+6*local] = 0.0
	}
	o.g2l[global] = local
	o.n++
	return
}

// Remove frees a local slot
func (o *Nodes) Remove(local int) (err error) {
	if !o.Valid(local) {
		return sta.Err(sta.NotFound, "msh: remove of invalid local %d", local)
	}
	delete(o.g2l, o.Global[local])
	o.Global[local] = EMPTY
	o.Part[local] = EMPTY
	o.free = append(o.free, local)
	o.n--
	return
}

// Local maps a global id to its local slot
func (o *Nodes) Local(global int) (local int, err error) {
	local, ok := o.g2l[global]
	if !ok {
		return EMPTY, sta.Err(sta.NotFound, "msh: global %d not local", global)
	}
	return
}

// HasGlobal tells whether the global id is present on this part
func (o *Nodes) HasGlobal(global int) bool {
	_, ok := o.g2l[global]
	return ok
}

// XyzOf returns a view of the coordinates of a vertex
func (o *Nodes) XyzOf(local int) []float64 {
	return o.Xyz[3*local : 3*local+3]
}

// SetXyz sets the coordinates of a vertex
func (o *Nodes) SetXyz(local int, x, y, z float64) {
	o.Xyz[0+3*local] = x
	o.Xyz[1+3*local] = y
	o.Xyz[2+3*local] = z
}

// MetricGetLog copies the stored log-metric of a vertex into l
func (o *Nodes) MetricGetLog(local int, l []float64) {
	copy(l, o.MetLog[6*local:6*local+6])
}

// MetricSetLog stores the log-metric of a vertex
func (o *Nodes) MetricSetLog(local int, l []float64) {
	copy(o.MetLog[6*local:6*local+6], l)
}

// MetricGet recovers the physical metric M = exp(L) of a vertex
func (o *Nodes) MetricGet(local int, m []float64) (err error) {
	return mtx.ExpSym(m, o.MetLog[6*local:6*local+6])
}

// MetricSet stores a physical metric, converting to log form
func (o *Nodes) MetricSet(local int, m []float64) (err error) {
	l := make([]float64, 6)
	err = mtx.LogSym(l, m)
	if err != nil {
		return sta.Wrap(err, "msh: metric at local %d is not SPD", local)
	}
	copy(o.MetLog[6*local:6*local+6], l)
	return
}

// MetricForm sets the metric from its six physical components
func (o *Nodes) MetricForm(local int, m11, m12, m13, m22, m23, m33 float64) (err error) {
	return o.MetricSet(local, []float64{m11, m12, m13, m22, m23, m33})
}

// Location prints a one-line description of a vertex for diagnostics
func (o *Nodes) Location(local int) string {
	if !o.Valid(local) {
		return io.Sf("node local=%d (invalid)", local)
	}
	return io.Sf("node local=%d global=%d part=%d xyz=(%g,%g,%g)",
		local, o.Global[local], o.Part[local],
		o.Xyz[0+3*local], o.Xyz[1+3*local], o.Xyz[2+3*local])
}

// Compact renumbers the valid slots to the dense range [0,n), preserving
// slot order, and returns both renumbering maps. The free list is cleared.
func (o *Nodes) Compact() (old2new, new2old []int) {
	max := len(o.Global)
	old2new = make([]int, max)
	new2old = make([]int, 0, o.n)
	for old := 0; old < max; old++ {
		if o.Global[old] != EMPTY {
			old2new[old] = len(new2old)
			new2old = append(new2old, old)
		} else {
			old2new[old] = EMPTY
		}
	}
	for n, old := range new2old {
		o.Global[n] = o.Global[old]
		o.Part[n] = o.Part[old]
		copy(o.Xyz[3*n:3*n+3], o.Xyz[3*old:3*old+3])
		copy(o.MetLog[6*n:6*n+6], o.MetLog[6*old:6*old+6])
	}
	o.Global = o.Global[:len(new2old)]
	o.Part = o.Part[:len(new2old)]
	o.Xyz = o.Xyz[:3*len(new2old)]
	o.MetLog = o.MetLog[:6*len(new2old)]
	o.free = o.free[:0]
	o.g2l = make(map[int]int)
	for local, global := range o.Global {
		o.g2l[global] = local
	}
	return
}
