// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import "sort"

// edge topology per kind, pairs of local cell-node positions
var kindEdges = map[Kind][][2]int{
	KindTet: {{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}},
	KindPyr: {{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 4}, {1, 4}, {2, 4}, {3, 4}},
	KindPri: {{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}, {0, 3}, {1, 4}, {2, 5}},
	KindHex: {{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}},
	KindTri: {{0, 1}, {1, 2}, {2, 0}},
	KindQua: {{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	KindEdg: {{0, 1}},
}

// Edges is the derived table of unique undirected mesh edges, stored with
// node0 < node1 and sorted lexicographically. Rebuilt on demand.
type Edges struct {
	E2N []int // [2*n] end nodes
}

// N returns the number of edges
func (o *Edges) N() int { return len(o.E2N) / 2 }

// Node returns end i (0 or 1) of an edge
func (o *Edges) Node(i, edge int) int { return o.E2N[i+2*edge] }

// BuildEdges enumerates the unique edges of every cell table
func (o *Mesh) BuildEdges() (edges *Edges, err error) {
	seen := make(map[[2]int]bool)
	pairs := make([][2]int, 0)
	for _, cells := range o.AllGroups() {
		topo := kindEdges[cells.Kind]
		err = cells.Each(func(cell int, nodes []int) error {
			for _, t := range topo {
				n0, n1 := nodes[t[0]], nodes[t[1]]
				if n0 > n1 {
					n0, n1 = n1, n0
				}
				key := [2]int{n0, n1}
				if !seen[key] {
					seen[key] = true
					pairs = append(pairs, key)
				}
			}
			return nil
		})
		if err != nil {
			return
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	edges = new(Edges)
	edges.E2N = make([]int, 0, 2*len(pairs))
	for _, p := range pairs {
		edges.E2N = append(edges.E2N, p[0], p[1])
	}
	return
}
