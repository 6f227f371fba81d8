// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package geo associates mesh vertices with the CAD boundary representation:
// per-vertex (type, id, parameter) records for geometry nodes, edges and
// faces. The CAD kernel itself is an external collaborator; this package
// only stores the association and derives parametric midpoints.
package geo

import (
	"github.com/cpmech/gomesh/sta"
)

// EMPTY marks an unset index or id
const EMPTY = -1

// Type enumerates the geometry entity types
type Type int

const (
	Node Type = iota // point on a geometry node, no parameter
	Edge             // point on a geometry edge, parameter t
	Face             // point on a geometry face, parameters (u,v)
)

// String returns the name of a type
func (o Type) String() string {
	return [...]string{"node", "edge", "face"}[o]
}

// NParam returns the number of parametric coordinates of a type
func (o Type) NParam() int {
	return [...]int{0, 1, 2}[o]
}

// Record ties one vertex to one CAD entity
type Record struct {
	Type  Type       // entity type
	ID    int        // entity id (1-based, from the geometry file)
	Param [2]float64 // parametric coordinates (t) or (u,v)
	Gref  int        // CAD-group reference, EMPTY when absent
}

// Geom is the per-vertex geometry association table, keyed by local vertex
type Geom struct {
	recs map[int][]Record
}

// New returns an empty association table
func New() *Geom {
	return &Geom{recs: make(map[int][]Record)}
}

// N returns the total number of records
func (o *Geom) N() (n int) {
	for _, rs := range o.recs {
		n += len(rs)
	}
	return
}

// Add stores a record. Adding is idempotent per (node, type, id): an
// existing record has its parameters updated in place.
func (o *Geom) Add(node int, typ Type, id int, param []float64) (err error) {
	if node < 0 {
		return sta.Err(sta.Invalid, "geo: negative node %d", node)
	}
	if id <= 0 {
		return sta.Err(sta.Invalid, "geo: non-positive %s id %d", typ, id)
	}
	rs := o.recs[node]
	for i := range rs {
		if rs[i].Type == typ && rs[i].ID == id {
			for k := 0; k < typ.NParam(); k++ {
				rs[i].Param[k] = param[k]
			}
			return
		}
	}
	r := Record{Type: typ, ID: id, Gref: EMPTY}
	for k := 0; k < typ.NParam() && k < len(param); k++ {
		r.Param[k] = param[k]
	}
	o.recs[node] = append(rs, r)
	return
}

// RemoveAll drops every record of a vertex
func (o *Geom) RemoveAll(node int) {
	delete(o.recs, node)
}

// Find returns the record of (node, type, id)
func (o *Geom) Find(node int, typ Type, id int) (r *Record, err error) {
	rs := o.recs[node]
	for i := range rs {
		if rs[i].Type == typ && rs[i].ID == id {
			return &rs[i], nil
		}
	}
	return nil, sta.Err(sta.NotFound, "geo: no %s record id=%d at node %d", typ, id, node)
}

// UniqueID returns the single id of the given type at node. NotFound when
// there is none; Invalid when the id is ambiguous.
func (o *Geom) UniqueID(node int, typ Type) (id int, err error) {
	id = EMPTY
	for _, r := range o.recs[node] {
		if r.Type != typ {
			continue
		}
		if id != EMPTY && id != r.ID {
			return EMPTY, sta.Err(sta.Invalid, "geo: ambiguous %s id at node %d", typ, node)
		}
		id = r.ID
	}
	if id == EMPTY {
		return EMPTY, sta.Err(sta.NotFound, "geo: no %s record at node %d", typ, node)
	}
	return
}

// Records returns the records of a vertex (read-only view)
func (o *Geom) Records(node int) []Record {
	return o.recs[node]
}

// Each calls f for every record
func (o *Geom) Each(f func(node int, r Record) error) (err error) {
	for node, rs := range o.recs {
		for _, r := range rs {
			err = f(node, r)
			if err != nil {
				return
			}
		}
	}
	return
}

// AddBetween derives the records of a vertex created between node0 and
// node1 at parameter t: every edge or face entity shared by both endpoints
// continues through the new vertex with linearly interpolated parameters.
// The CAD collaborator may re-snap the parameters afterwards.
func (o *Geom) AddBetween(node0, node1 int, t float64, newNode int) (err error) {
	for _, r0 := range o.recs[node0] {
		if r0.Type == Node {
			continue
		}
		r1, errFind := o.Find(node1, r0.Type, r0.ID)
		if errFind != nil {
			continue
		}
		param := []float64{
			(1.0-t)*r0.Param[0] + t*r1.Param[0],
			(1.0-t)*r0.Param[1] + t*r1.Param[1],
		}
		err = o.Add(newNode, r0.Type, r0.ID, param)
		if err != nil {
			return
		}
	}
	return
}

// Renumber rewrites the vertex keys after a node compaction
func (o *Geom) Renumber(old2new []int) (err error) {
	updated := make(map[int][]Record)
	for node, rs := range o.recs {
		if node >= len(old2new) || old2new[node] == EMPTY {
			return sta.Err(sta.Invalid, "geo: record at removed node %d", node)
		}
		updated[old2new[node]] = rs
	}
	o.recs = updated
	return
}
