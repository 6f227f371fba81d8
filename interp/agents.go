// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/sta"
)

// Mode is the lifecycle state of a point-location agent
type Mode int

const (
	Walking    Mode = iota // stepping through donor tets toward the target
	Enclosing              // found the enclosing tet
	AtBoundary             // walked off a physical boundary
	Terminated             // exceeded the step cap
	HopPart                // must continue on another partition
	Suggestion             // seed offered to the home part of a ghost receptor
)

// Agent is one active point-location task
type Agent struct {
	Mode Mode
	Home int        // part owning the receptor
	Node int        // receptor: local on home part, global while suggested
	Part int        // part holding the seed
	Seed int        // seed cell; a global vertex id while hopping
	Step int        // walk step counter
	Xyz  [3]float64 // target point
	Bary [4]float64 // enclosing barycentric coordinates
}

// Agents is the agent pool: an arena with a free list, migrated between
// partitions after every sweep
type Agents struct {
	pool  []Agent
	valid []bool
	free  []int
	n     int
	comm  *msg.Comm
}

// NewAgents returns an empty pool on the communicator
func NewAgents(comm *msg.Comm) *Agents {
	return &Agents{comm: comm}
}

// N returns the number of active agents on this part
func (o *Agents) N() int { return o.n }

// Push hires an agent walking toward xyz for the local receptor node,
// starting at (part, seed). The home part is this rank.
func (o *Agents) Push(node, part, seed int, xyz []float64) (id int) {
	if len(o.free) > 0 {
		id = o.free[len(o.free)-1]
		o.free = o.free[:len(o.free)-1]
	} else {
		id = len(o.pool)
		o.pool = append(o.pool, Agent{})
		o.valid = append(o.valid, false)
	}
	o.pool[id] = Agent{
		Mode: Walking,
		Home: o.comm.Rank(),
		Node: node,
		Part: part,
		Seed: seed,
	}
	copy(o.pool[id].Xyz[:], xyz)
	o.valid[id] = true
	o.n++
	return
}

// Remove dismisses an agent
func (o *Agents) Remove(id int) (err error) {
	if id < 0 || id >= len(o.pool) || !o.valid[id] {
		return sta.Err(sta.NotFound, "interp: remove of invalid agent %d", id)
	}
	o.valid[id] = false
	o.free = append(o.free, id)
	o.n--
	return
}

// DeleteNode dismisses the agent hired for a receptor, if any
func (o *Agents) DeleteNode(node int) (err error) {
	for id := range o.pool {
		if o.valid[id] && o.pool[id].Node == node && o.pool[id].Home == o.comm.Rank() {
			return o.Remove(id)
		}
	}
	return sta.Err(sta.NotFound, "interp: no agent for receptor %d", node)
}

// Restart rewinds an agent onto a new seed, keeping its target
func (o *Agents) Restart(part, seed, id int) (err error) {
	if !o.valid[id] {
		return sta.Err(sta.NotFound, "interp: restart of invalid agent %d", id)
	}
	o.pool[id].Mode = Walking
	o.pool[id].Part = part
	o.pool[id].Seed = seed
	o.pool[id].Step = 0
	return
}

// Get returns a pointer to an active agent
func (o *Agents) Get(id int) *Agent { return &o.pool[id] }

// Each calls f for every active agent; f may remove the visited agent
func (o *Agents) Each(f func(id int, a *Agent) error) (err error) {
	for id := range o.pool {
		if !o.valid[id] {
			continue
		}
		err = f(id, &o.pool[id])
		if err != nil {
			return
		}
	}
	return
}

// residence returns the rank an agent must live on: walkers and hoppers
// follow the seed part, all other modes return home
func residence(a *Agent) int {
	switch a.Mode {
	case Walking, HopPart:
		return a.Part
	}
	return a.Home
}

// Migrate ships every agent to its residence rank. Collective; receptor
// locals survive because only home parts interpret Node as local.
func (o *Agents) Migrate() (err error) {
	if !o.comm.Para() {
		return
	}
	dest := make([]int, 0)
	ints := make([]int, 0)
	dbls := make([]float64, 0)
	moving := make([]int, 0)
	for id := range o.pool {
		if !o.valid[id] {
			continue
		}
		a := &o.pool[id]
		home := residence(a)
		if home == o.comm.Rank() {
			continue
		}
		dest = append(dest, home)
		ints = append(ints, int(a.Mode), a.Home, a.Node, a.Part, a.Seed, a.Step)
		dbls = append(dbls, a.Xyz[0], a.Xyz[1], a.Xyz[2], a.Bary[0], a.Bary[1], a.Bary[2], a.Bary[3])
		moving = append(moving, id)
	}
	for _, id := range moving {
		err = o.Remove(id)
		if err != nil {
			return
		}
	}
	rint, nmoved, err := o.comm.BlindSendInt(dest, ints, 6, len(dest))
	if err != nil {
		return
	}
	rdbl, _, err := o.comm.BlindSendDbl(dest, dbls, 7, len(dest))
	if err != nil {
		return
	}
	for i := 0; i < nmoved; i++ {
		var id int
		if len(o.free) > 0 {
			id = o.free[len(o.free)-1]
			o.free = o.free[:len(o.free)-1]
		} else {
			id = len(o.pool)
			o.pool = append(o.pool, Agent{})
			o.valid = append(o.valid, false)
		}
		o.pool[id] = Agent{
			Mode: Mode(rint[0+6*i]),
			Home: rint[1+6*i],
			Node: rint[2+6*i],
			Part: rint[3+6*i],
			Seed: rint[4+6*i],
			Step: rint[5+6*i],
		}
		copy(o.pool[id].Xyz[:], rdbl[7*i:7*i+3])
		copy(o.pool[id].Bary[:], rdbl[7*i+3:7*i+7])
		o.valid[id] = true
		o.n++
	}
	return
}
