// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msg

import (
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/mpi"
)

// AllConcatDbl all-gathers variable-length strided arrays: every processor
// contributes n records of the given stride and every processor receives the
// full concatenation ordered by rank, together with a per-record source rank.
func (o *Comm) AllConcatDbl(stride, n int, buf []float64) (ntotal int, source []int, concat []float64) {
	if !o.Para() {
		ntotal = n
		source = make([]int, n)
		concat = make([]float64, stride*n)
		copy(concat, buf[:stride*n])
		return
	}
	counts := make([]int, o.size)
	counts[o.rank] = n
	o.AllSumInt(counts)
	offset := make([]int, o.size+1)
	for p := 0; p < o.size; p++ {
		offset[p+1] = offset[p] + counts[p]
	}
	ntotal = offset[o.size]
	source = make([]int, ntotal)
	for p := 0; p < o.size; p++ {
		for i := offset[p]; i < offset[p+1]; i++ {
			source[i] = p
		}
	}
	concat = make([]float64, stride*ntotal)
	copy(concat[stride*offset[o.rank]:], buf[:stride*n])
	o.AllSumDbl(concat)
	return
}

// AllConcatInt is AllConcatDbl for integer records
func (o *Comm) AllConcatInt(stride, n int, buf []int) (ntotal int, source []int, concat []int) {
	d := make([]float64, stride*n)
	for i := range d {
		d[i] = float64(buf[i])
	}
	var dcat []float64
	ntotal, source, dcat = o.AllConcatDbl(stride, n, d)
	concat = make([]int, len(dcat))
	for i, v := range dcat {
		concat[i] = int(v + 0.5*sign(v))
	}
	return
}

// blindCounts exchanges per-destination record counts. Returns how many
// records this processor receives from each rank.
func (o *Comm) blindCounts(dest []int, n int) (fromEach []int, err error) {
	table := make([]int, o.size*o.size)
	for i := 0; i < n; i++ {
		if dest[i] < 0 || dest[i] >= o.size {
			return nil, sta.Err(sta.Invalid, "msg: destination %d out of [0,%d)", dest[i], o.size)
		}
		table[dest[i]+o.size*o.rank]++
	}
	o.AllSumInt(table)
	fromEach = make([]int, o.size)
	for p := 0; p < o.size; p++ {
		fromEach[p] = table[o.rank+o.size*p]
	}
	return
}

// regroup orders record indices by destination rank, stable within a rank
func regroup(dest []int, n, size int) (order []int, toEach []int) {
	toEach = make([]int, size)
	for i := 0; i < n; i++ {
		toEach[dest[i]]++
	}
	start := make([]int, size)
	for p := 1; p < size; p++ {
		start[p] = start[p-1] + toEach[p-1]
	}
	order = make([]int, n)
	fill := make([]int, size)
	for i := 0; i < n; i++ {
		order[start[dest[i]]+fill[dest[i]]] = i
		fill[dest[i]]++
	}
	return
}

// BlindSendDbl posts n records of the given stride, each tagged with a
// destination rank, and receives whatever was posted to this rank,
// concatenated by source rank. The count exchange and the pairwise moves
// make this a synchronous barrier.
func (o *Comm) BlindSendDbl(dest []int, buf []float64, stride, n int) (recv []float64, nrecv int, err error) {
	if !o.Para() {
		for i := 0; i < n; i++ {
			if dest[i] != 0 {
				return nil, 0, sta.Err(sta.Invalid, "msg: destination %d in serial run", dest[i])
			}
		}
		nrecv = n
		recv = make([]float64, stride*n)
		copy(recv, buf[:stride*n])
		return
	}
	fromEach, err := o.blindCounts(dest, n)
	if err != nil {
		return
	}
	order, toEach := regroup(dest, n, o.size)
	sorted := make([]float64, stride*n)
	for k, i := range order {
		copy(sorted[stride*k:stride*(k+1)], buf[stride*i:stride*(i+1)])
	}
	sendStart := make([]int, o.size)
	recvStart := make([]int, o.size)
	for p := 1; p < o.size; p++ {
		sendStart[p] = sendStart[p-1] + toEach[p-1]
		recvStart[p] = recvStart[p-1] + fromEach[p-1]
	}
	nrecv = recvStart[o.size-1] + fromEach[o.size-1]
	recv = make([]float64, stride*nrecv)

	// local copy
	copy(recv[stride*recvStart[o.rank]:], sorted[stride*sendStart[o.rank]:stride*(sendStart[o.rank]+toEach[o.rank])])

	// pairwise exchange, lower rank sends first
	for p := 0; p < o.size; p++ {
		if p == o.rank {
			continue
		}
		if o.rank < p {
			if toEach[p] > 0 {
				mpi.DblSend(sorted[stride*sendStart[p]:stride*(sendStart[p]+toEach[p])], p)
			}
			if fromEach[p] > 0 {
				mpi.DblRecv(recv[stride*recvStart[p]:stride*(recvStart[p]+fromEach[p])], p)
			}
		} else {
			if fromEach[p] > 0 {
				mpi.DblRecv(recv[stride*recvStart[p]:stride*(recvStart[p]+fromEach[p])], p)
			}
			if toEach[p] > 0 {
				mpi.DblSend(sorted[stride*sendStart[p]:stride*(sendStart[p]+toEach[p])], p)
			}
		}
	}
	return
}

// BlindSendInt is BlindSendDbl for integer records
func (o *Comm) BlindSendInt(dest []int, buf []int, stride, n int) (recv []int, nrecv int, err error) {
	if !o.Para() {
		for i := 0; i < n; i++ {
			if dest[i] != 0 {
				return nil, 0, sta.Err(sta.Invalid, "msg: destination %d in serial run", dest[i])
			}
		}
		nrecv = n
		recv = make([]int, stride*n)
		copy(recv, buf[:stride*n])
		return
	}
	fromEach, err := o.blindCounts(dest, n)
	if err != nil {
		return
	}
	order, toEach := regroup(dest, n, o.size)
	sorted := make([]int, stride*n)
	for k, i := range order {
		copy(sorted[stride*k:stride*(k+1)], buf[stride*i:stride*(i+1)])
	}
	sendStart := make([]int, o.size)
	recvStart := make([]int, o.size)
	for p := 1; p < o.size; p++ {
		sendStart[p] = sendStart[p-1] + toEach[p-1]
		recvStart[p] = recvStart[p-1] + fromEach[p-1]
	}
	nrecv = recvStart[o.size-1] + fromEach[o.size-1]
	recv = make([]int, stride*nrecv)

	copy(recv[stride*recvStart[o.rank]:], sorted[stride*sendStart[o.rank]:stride*(sendStart[o.rank]+toEach[o.rank])])

	for p := 0; p < o.size; p++ {
		if p == o.rank {
			continue
		}
		if o.rank < p {
			if toEach[p] > 0 {
				mpi.IntSend(sorted[stride*sendStart[p]:stride*(sendStart[p]+toEach[p])], p)
			}
			if fromEach[p] > 0 {
				mpi.IntRecv(recv[stride*recvStart[p]:stride*(recvStart[p]+fromEach[p])], p)
			}
		} else {
			if fromEach[p] > 0 {
				mpi.IntRecv(recv[stride*recvStart[p]:stride*(recvStart[p]+fromEach[p])], p)
			}
			if toEach[p] > 0 {
				mpi.IntSend(sorted[stride*sendStart[p]:stride*(sendStart[p]+toEach[p])], p)
			}
		}
	}
	return
}
