// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"sort"

	"github.com/cpmech/gomesh/sta"
)

// Kind enumerates the element kinds
type Kind int

const (
	KindTet Kind = iota
	KindPyr
	KindPri
	KindHex
	KindTri
	KindQua
	KindEdg
)

// String returns the short name of a kind
func (o Kind) String() string {
	return [...]string{"tet", "pyr", "pri", "hex", "tri", "qua", "edg"}[o]
}

// NodePer returns the node arity of a kind
func (o Kind) NodePer() int {
	return [...]int{4, 5, 6, 8, 3, 4, 2}[o]
}

// HasID tells whether cells of this kind carry a trailing surface id
func (o Kind) HasID() bool {
	return o == KindTri || o == KindQua || o == KindEdg
}

// Cells is one element table. Connectivity is stored per slot with the
// node arity of the kind; boundary kinds carry a trailing surface id.
// A node-to-cell adjacency index is maintained on add and remove.
type Cells struct {
	Kind Kind
	c2n  []int // [nodePer*max] connectivity, c2n[nodePer*cell]==EMPTY on free slots
	id   []int // [max] surface id for kinds with HasID
	adj  *Adj
	free []int
	n    int
}

// NewCells returns an empty table of the given kind, with the adjacency
// index sized for nnode vertices
func NewCells(kind Kind, nnode int) (o *Cells) {
	o = new(Cells)
	o.Kind = kind
	o.adj = NewAdj(nnode)
	return
}

// N returns the number of valid cells
func (o *Cells) N() int { return o.n }

// Max returns the extent of the cell index range
func (o *Cells) Max() int {
	if o.Kind.NodePer() == 0 {
		return 0
	}
	return len(o.c2n) / o.Kind.NodePer()
}

// Adj exposes the node-to-cell index
func (o *Cells) Adj() *Adj { return o.adj }

// Valid tells whether a cell slot is in use
func (o *Cells) Valid(cell int) bool {
	np := o.Kind.NodePer()
	return cell >= 0 && (cell+1)*np <= len(o.c2n) && o.c2n[np*cell] != EMPTY
}

// Nodes copies the connectivity of a cell into nodes
func (o *Cells) Nodes(cell int, nodes []int) (err error) {
	if !o.Valid(cell) {
		return sta.Err(sta.Invalid, "msh: invalid %s cell %d", o.Kind, cell)
	}
	np := o.Kind.NodePer()
	copy(nodes, o.c2n[np*cell:np*(cell+1)])
	return
}

// ID returns the surface id of a boundary cell
func (o *Cells) ID(cell int) int {
	if !o.Kind.HasID() || !o.Valid(cell) {
		return EMPTY
	}
	return o.id[cell]
}

// SetID sets the surface id of a boundary cell
func (o *Cells) SetID(cell, id int) {
	if o.Kind.HasID() && o.Valid(cell) {
		o.id[cell] = id
	}
}

// Add creates a cell from valid local vertices and registers the adjacency.
// Duplicate vertices within the connectivity are invalid.
func (o *Cells) Add(nd *Nodes, nodes []int) (cell int, err error) {
	np := o.Kind.NodePer()
	if len(nodes) != np {
		return EMPTY, sta.Err(sta.Invalid, "msh: %s needs %d nodes, got %d", o.Kind, np, len(nodes))
	}
	for i, n := range nodes {
		if !nd.Valid(n) {
			return EMPTY, sta.Err(sta.Invalid, "msh: %s node %d invalid", o.Kind, n)
		}
		for j := 0; j < i; j++ {
			if nodes[j] == n {
				return EMPTY, sta.Err(sta.Invalid, "msh: %s with repeated node %d", o.Kind, n)
			}
		}
	}
	if len(o.free) > 0 {
		cell = o.free[len(o.free)-1]
		o.free = o.free[:len(o.free)-1]
	} else {
		cell = o.Max()
		for i := 0; i < np; i++ {
			o.c2n = append(o.c2n, EMPTY)
		}
		if o.Kind.HasID() {
			o.id = append(o.id, EMPTY)
		}
	}
	copy(o.c2n[np*cell:np*(cell+1)], nodes)
	if nd.Max() > 0 {
		o.adj.Resize(nd.Max())
	}
	for _, n := range nodes {
		err = o.adj.Register(n, cell)
		if err != nil {
			return EMPTY, err
		}
	}
	o.n++
	return
}

// Remove frees a cell slot and unregisters the adjacency
func (o *Cells) Remove(cell int) (err error) {
	if !o.Valid(cell) {
		return sta.Err(sta.NotFound, "msh: remove of invalid %s cell %d", o.Kind, cell)
	}
	np := o.Kind.NodePer()
	for i := 0; i < np; i++ {
		err = o.adj.Unregister(o.c2n[i+np*cell], cell)
		if err != nil {
			return
		}
	}
	o.c2n[np*cell] = EMPTY
	if o.Kind.HasID() {
		o.id[cell] = EMPTY
	}
	o.free = append(o.free, cell)
	o.n--
	return
}

// Each calls f for every valid cell with its connectivity
func (o *Cells) Each(f func(cell int, nodes []int) error) (err error) {
	np := o.Kind.NodePer()
	nodes := make([]int, np)
	for cell := 0; cell < o.Max(); cell++ {
		if o.c2n[np*cell] == EMPTY {
			continue
		}
		copy(nodes, o.c2n[np*cell:np*(cell+1)])
		err = f(cell, nodes)
		if err != nil {
			return
		}
	}
	return
}

// HavingNode calls f for each cell incident to node
func (o *Cells) HavingNode(node int, f func(cell int) error) (err error) {
	for it := o.adj.First(node); o.adj.ValidIter(it); it = o.adj.Next(it) {
		err = f(o.adj.Item(it))
		if err != nil {
			return
		}
	}
	return
}

// FirstWith returns some cell incident to node, EMPTY when none
func (o *Cells) FirstWith(node int) int {
	it := o.adj.First(node)
	if !o.adj.ValidIter(it) {
		return EMPTY
	}
	return o.adj.Item(it)
}

// NodeEmpty tells whether no cell of this table touches node
func (o *Cells) NodeEmpty(node int) bool { return o.adj.Empty(node) }

// hasNode tells whether cell contains node
func (o *Cells) hasNode(cell, node int) bool {
	np := o.Kind.NodePer()
	for i := 0; i < np; i++ {
		if o.c2n[i+np*cell] == node {
			return true
		}
	}
	return false
}

// WithFace finds the (up to two) cells sharing a face. A triangular face is
// given by repeating one node (face[3]==face[0]).
func (o *Cells) WithFace(face []int) (cell0, cell1 int, err error) {
	cell0, cell1 = EMPTY, EMPTY
	uniq := face[:3]
	if face[3] != face[0] && face[3] != face[1] && face[3] != face[2] {
		uniq = face[:4]
	}
	err = o.HavingNode(uniq[0], func(cell int) error {
		for _, n := range uniq[1:] {
			if !o.hasNode(cell, n) {
				return nil
			}
		}
		if cell0 == EMPTY {
			cell0 = cell
		} else if cell1 == EMPTY && cell != cell0 {
			cell1 = cell
		} else if cell != cell0 && cell != cell1 {
			return sta.Err(sta.Invalid, "msh: face shared by more than two %s cells", o.Kind)
		}
		return nil
	})
	return
}

// With finds the single cell whose node set matches nodes exactly
func (o *Cells) With(nodes []int) (found int, err error) {
	found = EMPTY
	np := o.Kind.NodePer()
	err = o.HavingNode(nodes[0], func(cell int) error {
		for i := 0; i < np; i++ {
			if !o.hasNode(cell, nodes[i]) {
				return nil
			}
		}
		found = cell
		return nil
	})
	if err != nil {
		return
	}
	if found == EMPTY {
		err = sta.Err(sta.NotFound, "msh: no %s cell with given nodes", o.Kind)
	}
	return
}

// WithSide calls f for each cell containing both end nodes of a side
func (o *Cells) WithSide(n0, n1 int, f func(cell int) error) (err error) {
	return o.HavingNode(n0, func(cell int) error {
		if o.hasNode(cell, n1) {
			return f(cell)
		}
		return nil
	})
}

// NodeListAround collects the distinct vertices sharing a cell with node,
// excluding node itself. Exceeding maxNode fails IncreaseLimit with the
// partial list intact.
func (o *Cells) NodeListAround(node, maxNode int, list []int) (n int, err error) {
	np := o.Kind.NodePer()
	seen := make(map[int]bool)
	errStop := o.HavingNode(node, func(cell int) error {
		for i := 0; i < np; i++ {
			other := o.c2n[i+np*cell]
			if other == node || seen[other] {
				continue
			}
			if n >= maxNode {
				return sta.Err(sta.IncreaseLimit, "msh: node list around %d exceeds %d", node, maxNode)
			}
			seen[other] = true
			list[n] = other
			n++
		}
		return nil
	})
	return n, errStop
}

// IDListAround collects the distinct surface ids of boundary cells around
// node. Exceeding maxID fails IncreaseLimit.
func (o *Cells) IDListAround(node, maxID int, ids []int) (n int, err error) {
	err = o.HavingNode(node, func(cell int) error {
		id := o.id[cell]
		for i := 0; i < n; i++ {
			if ids[i] == id {
				return nil
			}
		}
		if n >= maxID {
			return sta.Err(sta.IncreaseLimit, "msh: id list around %d exceeds %d", node, maxID)
		}
		ids[n] = id
		n++
		return nil
	})
	return
}

// Part returns the owning part of a cell: the lowest part id among its
// vertices
func (o *Cells) Part(nd *Nodes, cell int) (part int, err error) {
	if !o.Valid(cell) {
		return EMPTY, sta.Err(sta.Invalid, "msh: part of invalid %s cell %d", o.Kind, cell)
	}
	np := o.Kind.NodePer()
	part = nd.Part[o.c2n[np*cell]]
	for i := 1; i < np; i++ {
		if p := nd.Part[o.c2n[i+np*cell]]; p < part {
			part = p
		}
	}
	return
}

// RenumberNodes rewrites the connectivity after a node compaction and
// rebuilds the adjacency index
func (o *Cells) RenumberNodes(old2new []int, nnode int) (err error) {
	np := o.Kind.NodePer()
	for cell := 0; cell < o.Max(); cell++ {
		if o.c2n[np*cell] == EMPTY {
			continue
		}
		for i := 0; i < np; i++ {
			nn := old2new[o.c2n[i+np*cell]]
			if nn == EMPTY {
				return sta.Err(sta.Invalid, "msh: %s cell %d references removed node", o.Kind, cell)
			}
			o.c2n[i+np*cell] = nn
		}
	}
	o.adj = NewAdj(nnode)
	for cell := 0; cell < o.Max(); cell++ {
		if o.c2n[np*cell] == EMPTY {
			continue
		}
		for i := 0; i < np; i++ {
			err = o.adj.Register(o.c2n[i+np*cell], cell)
			if err != nil {
				return
			}
		}
	}
	return
}

// sortedKey returns the sorted node tuple of a cell, for dedup hashing
func sortedKey(nodes []int) string {
	s := make([]int, len(nodes))
	copy(s, nodes)
	sort.Ints(s)
	b := make([]byte, 0, 4*len(s))
	for _, v := range s {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(b)
}
