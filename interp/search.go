// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package interp locates the vertices of one partitioned mesh inside the
// tetrahedra of another and transfers vertex fields between them. The
// locator combines a geometry-node exchange, walking agents that hop
// partitions, and a bounding-sphere tree fallback with growing fuzz.
package interp

import (
	"math"
	"sort"
)

// Tree is a binary tree over donor-cell bounding spheres. Every node
// stores its own sphere and a covering ball enclosing the whole subtree,
// allowing branch pruning in Touching.
type Tree struct {
	item   []int     // donor cell ids
	pos    []float64 // [3*n] sphere centers
	radius []float64 // [n] sphere radii (donor scale applied by the caller)
	left   []int
	right  []int
	cover  []float64 // [n] covering-ball radius about pos
	root   int
}

// NewTree builds the tree by recursive median split on the widest axis of
// the current subtree's centers
func NewTree(items []int, centers []float64, radii []float64) (o *Tree) {
	n := len(items)
	o = new(Tree)
	o.item = make([]int, n)
	copy(o.item, items)
	o.pos = make([]float64, 3*n)
	copy(o.pos, centers)
	o.radius = make([]float64, n)
	copy(o.radius, radii)
	o.left = make([]int, n)
	o.right = make([]int, n)
	o.cover = make([]float64, n)
	for i := 0; i < n; i++ {
		o.left[i] = -1
		o.right[i] = -1
	}
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	o.root = o.build(index)
	if o.root >= 0 {
		o.fillCover(o.root)
	}
	return
}

// build returns the subtree root over the given element indices
func (o *Tree) build(index []int) int {
	if len(index) == 0 {
		return -1
	}
	if len(index) == 1 {
		return index[0]
	}
	// widest axis of the centers
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, e := range index {
		for d := 0; d < 3; d++ {
			x := o.pos[d+3*e]
			lo[d] = math.Min(lo[d], x)
			hi[d] = math.Max(hi[d], x)
		}
	}
	axis := 0
	if hi[1]-lo[1] > hi[axis]-lo[axis] {
		axis = 1
	}
	if hi[2]-lo[2] > hi[axis]-lo[axis] {
		axis = 2
	}
	sort.Slice(index, func(i, j int) bool {
		return o.pos[axis+3*index[i]] < o.pos[axis+3*index[j]]
	})
	mid := len(index) / 2
	node := index[mid]
	o.left[node] = o.build(index[:mid])
	o.right[node] = o.build(index[mid+1:])
	return node
}

// fillCover computes the covering-ball radius of each subtree bottom-up
func (o *Tree) fillCover(node int) float64 {
	r := o.radius[node]
	for _, child := range []int{o.left[node], o.right[node]} {
		if child < 0 {
			continue
		}
		cr := o.fillCover(child)
		dist := math.Sqrt(
			math.Pow(o.pos[0+3*child]-o.pos[0+3*node], 2) +
				math.Pow(o.pos[1+3*child]-o.pos[1+3*node], 2) +
				math.Pow(o.pos[2+3*child]-o.pos[2+3*node], 2))
		r = math.Max(r, dist+cr)
	}
	o.cover[node] = r
	return r
}

// Touching collects the donor cells whose spheres touch the point expanded
// by fuzz, pruning subtrees whose covering balls miss it
func (o *Tree) Touching(point []float64, fuzz float64) (cells []int) {
	if o.root < 0 {
		return
	}
	stack := []int{o.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dist := math.Sqrt(
			math.Pow(point[0]-o.pos[0+3*node], 2) +
				math.Pow(point[1]-o.pos[1+3*node], 2) +
				math.Pow(point[2]-o.pos[2+3*node], 2))
		if dist > o.cover[node]+fuzz {
			continue
		}
		if dist <= o.radius[node]+fuzz {
			cells = append(cells, o.item[node])
		}
		if o.left[node] >= 0 {
			stack = append(stack, o.left[node])
		}
		if o.right[node] >= 0 {
			stack = append(stack, o.right[node])
		}
	}
	return
}
