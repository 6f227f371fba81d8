// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"github.com/cpmech/gomesh/sta"
)

// ghostRequests collects, per ghost vertex, the owner rank and global id.
// The two parallel sends below reuse dest so record order lines up.
func (o *Mesh) ghostRequests() (dest, globals []int) {
	for local := 0; local < o.Nodes.Max(); local++ {
		if o.Nodes.Valid(local) && !o.Nodes.Owned(local) {
			dest = append(dest, o.Nodes.Part[local])
			globals = append(globals, o.Nodes.Global[local])
		}
	}
	return
}

// GhostSyncDbl refreshes a per-vertex double field of leading dimension
// ldim: ghost copies receive the owner's values. Owned values are left
// untouched. Synchronous across all parts.
func (o *Mesh) GhostSyncDbl(field []float64, ldim int) (err error) {
	if !o.Comm.Para() {
		return
	}
	dest, globals := o.ghostRequests()
	retrank := make([]int, len(dest))
	for i := range retrank {
		retrank[i] = o.Comm.Rank()
	}
	askGlobal, nAsk, err := o.Comm.BlindSendInt(dest, globals, 1, len(dest))
	if err != nil {
		return
	}
	askRet, _, err := o.Comm.BlindSendInt(dest, retrank, 1, len(dest))
	if err != nil {
		return
	}
	vals := make([]float64, ldim*nAsk)
	for i := 0; i < nAsk; i++ {
		local, errLoc := o.Nodes.Local(askGlobal[i])
		if errLoc != nil {
			return sta.Wrap(errLoc, "msh: ghost request for unknown global")
		}
		if !o.Nodes.Owned(local) {
			return sta.Err(sta.Invalid, "msh: ghost request routed to non-owner of global %d", askGlobal[i])
		}
		copy(vals[ldim*i:ldim*(i+1)], field[ldim*local:ldim*(local+1)])
	}
	ansVal, nAns, err := o.Comm.BlindSendDbl(askRet, vals, ldim, nAsk)
	if err != nil {
		return
	}
	ansGlobal, _, err := o.Comm.BlindSendInt(askRet, askGlobal, 1, nAsk)
	if err != nil {
		return
	}
	for i := 0; i < nAns; i++ {
		local, errLoc := o.Nodes.Local(ansGlobal[i])
		if errLoc != nil {
			return sta.Wrap(errLoc, "msh: ghost answer for unknown global")
		}
		copy(field[ldim*local:ldim*(local+1)], ansVal[ldim*i:ldim*(i+1)])
	}
	return
}

// GhostSyncInt refreshes a per-vertex integer field of leading dimension
// ldim from each vertex's owner
func (o *Mesh) GhostSyncInt(field []int, ldim int) (err error) {
	if !o.Comm.Para() {
		return
	}
	dest, globals := o.ghostRequests()
	retrank := make([]int, len(dest))
	for i := range retrank {
		retrank[i] = o.Comm.Rank()
	}
	askGlobal, nAsk, err := o.Comm.BlindSendInt(dest, globals, 1, len(dest))
	if err != nil {
		return
	}
	askRet, _, err := o.Comm.BlindSendInt(dest, retrank, 1, len(dest))
	if err != nil {
		return
	}
	vals := make([]int, ldim*nAsk)
	for i := 0; i < nAsk; i++ {
		local, errLoc := o.Nodes.Local(askGlobal[i])
		if errLoc != nil {
			return sta.Wrap(errLoc, "msh: ghost request for unknown global")
		}
		copy(vals[ldim*i:ldim*(i+1)], field[ldim*local:ldim*(local+1)])
	}
	ansVal, nAns, err := o.Comm.BlindSendInt(askRet, vals, ldim, nAsk)
	if err != nil {
		return
	}
	ansGlobal, _, err := o.Comm.BlindSendInt(askRet, askGlobal, 1, nAsk)
	if err != nil {
		return
	}
	for i := 0; i < nAns; i++ {
		local, errLoc := o.Nodes.Local(ansGlobal[i])
		if errLoc != nil {
			return sta.Wrap(errLoc, "msh: ghost answer for unknown global")
		}
		copy(field[ldim*local:ldim*(local+1)], ansVal[ldim*i:ldim*(i+1)])
	}
	return
}

// GhostSyncMetric refreshes the ghost copies of the log-metric
func (o *Mesh) GhostSyncMetric() error {
	return o.GhostSyncDbl(o.Nodes.MetLog, 6)
}

// GhostSyncMetricField refreshes the ghost entries of a detached six-wide
// metric field
func (o *Mesh) GhostSyncMetricField(field []float64) error {
	return o.GhostSyncDbl(field, 6)
}

// GhostSyncXyz refreshes the ghost copies of the coordinates
func (o *Mesh) GhostSyncXyz() error {
	return o.GhostSyncDbl(o.Nodes.Xyz, 3)
}
