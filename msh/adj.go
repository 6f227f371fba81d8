// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import "github.com/cpmech/gomesh/sta"

// Adj is a chained node-to-item map held in an arena: each entry carries a
// payload and the index of the next entry, EMPTY terminating the chain.
// Entry indices are stable across Register calls, so iteration survives
// concurrent additions elsewhere.
type Adj struct {
	item  []int // [nadj] payload, EMPTY on free entries
	next  []int // [nadj] following entry in the chain or free list
	first []int // [nnode] head of each node's chain
	blank int   // head of the free list
}

// NewAdj returns an adjacency map for nnode nodes
func NewAdj(nnode int) (o *Adj) {
	o = new(Adj)
	o.first = make([]int, nnode)
	for i := range o.first {
		o.first[i] = EMPTY
	}
	o.blank = EMPTY
	return
}

// Resize grows (or shrinks) the node range. Chains of removed nodes are
// returned to the free list.
func (o *Adj) Resize(nnode int) {
	if nnode < len(o.first) {
		for node := nnode; node < len(o.first); node++ {
			for o.first[node] != EMPTY {
				entry := o.first[node]
				o.first[node] = o.next[entry]
				o.item[entry] = EMPTY
				o.next[entry] = o.blank
				o.blank = entry
			}
		}
		o.first = o.first[:nnode]
		return
	}
	for len(o.first) < nnode {
		o.first = append(o.first, EMPTY)
	}
}

// Register prepends an item onto node's chain
func (o *Adj) Register(node, item int) (err error) {
	if node < 0 || node >= len(o.first) {
		return sta.Err(sta.Invalid, "msh: adj node %d out of [0,%d)", node, len(o.first))
	}
	entry := o.blank
	if entry == EMPTY {
		entry = len(o.item)
		o.item = append(o.item, EMPTY)
		o.next = append(o.next, EMPTY)
	} else {
		o.blank = o.next[entry]
	}
	o.item[entry] = item
	o.next[entry] = o.first[node]
	o.first[node] = entry
	return
}

// Unregister removes the first occurrence of item from node's chain
func (o *Adj) Unregister(node, item int) (err error) {
	if node < 0 || node >= len(o.first) {
		return sta.Err(sta.Invalid, "msh: adj node %d out of [0,%d)", node, len(o.first))
	}
	prev := EMPTY
	for it := o.first[node]; it != EMPTY; it = o.next[it] {
		if o.item[it] == item {
			if prev == EMPTY {
				o.first[node] = o.next[it]
			} else {
				o.next[prev] = o.next[it]
			}
			o.item[it] = EMPTY
			o.next[it] = o.blank
			o.blank = it
			return
		}
		prev = it
	}
	return sta.Err(sta.NotFound, "msh: adj item %d not under node %d", item, node)
}

// First returns the head iterator of node's chain, EMPTY when none
func (o *Adj) First(node int) int {
	if node < 0 || node >= len(o.first) {
		return EMPTY
	}
	return o.first[node]
}

// ValidIter tells whether an iterator points at an entry
func (o *Adj) ValidIter(it int) bool { return it != EMPTY }

// Next advances an iterator
func (o *Adj) Next(it int) int { return o.next[it] }

// Item returns the payload under an iterator
func (o *Adj) Item(it int) int { return o.item[it] }

// Empty tells whether node has no items
func (o *Adj) Empty(node int) bool { return o.First(node) == EMPTY }

// Exists tells whether item is registered under node
func (o *Adj) Exists(node, item int) bool {
	for it := o.First(node); o.ValidIter(it); it = o.Next(it) {
		if o.Item(it) == item {
			return true
		}
	}
	return false
}

// Degree counts the items registered under node
func (o *Adj) Degree(node int) (degree int) {
	for it := o.First(node); o.ValidIter(it); it = o.Next(it) {
		degree++
	}
	return
}
