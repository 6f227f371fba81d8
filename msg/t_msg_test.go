// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msg

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_comm01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("comm01. serial communicator")

	c := NewComm()
	if c.Para() {
		tst.Errorf("serial test run reports parallel\n")
		return
	}
	chk.IntAssert(c.Rank(), 0)
	chk.IntAssert(c.Size(), 1)
	if !c.Once() {
		tst.Errorf("rank 0 must be once\n")
	}

	x := []float64{1, 2, 3}
	c.AllSumDbl(x)
	chk.Vector(tst, "allsum", 1e-15, x, []float64{1, 2, 3})

	vals := []float64{0.5, -1.0}
	who := []int{-1, -1}
	c.AllMinWho(vals, who)
	chk.Ints(tst, "who", who, []int{0, 0})
	chk.Vector(tst, "vals", 1e-15, vals, []float64{0.5, -1.0})

	if c.AllOr(false) {
		tst.Errorf("AllOr(false) returned true\n")
	}
	if !c.AllOr(true) {
		tst.Errorf("AllOr(true) returned false\n")
	}
}

func Test_concat01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("concat01. serial all-concatenation")

	c := NewComm()
	buf := []float64{1, 2, 3, 4, 5, 6}
	ntot, source, cat := c.AllConcatDbl(3, 2, buf)
	chk.IntAssert(ntot, 2)
	chk.Ints(tst, "source", source, []int{0, 0})
	chk.Vector(tst, "concat", 1e-15, cat, buf)

	ibuf := []int{7, 8, 9}
	ntot, source, icat := c.AllConcatInt(1, 3, ibuf)
	chk.IntAssert(ntot, 3)
	chk.Ints(tst, "iconcat", icat, ibuf)
	chk.Ints(tst, "isource", source, []int{0, 0, 0})
}

func Test_blind01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("blind01. serial blind send is identity")

	c := NewComm()
	dest := []int{0, 0, 0}
	buf := []float64{1, 2, 3, 4, 5, 6}
	recv, nrecv, err := c.BlindSendDbl(dest, buf, 2, 3)
	if err != nil {
		tst.Errorf("BlindSendDbl failed: %v\n", err)
		return
	}
	chk.IntAssert(nrecv, 3)
	chk.Vector(tst, "recv", 1e-15, recv, buf)

	ibuf := []int{10, 20, 30}
	irecv, nrecv, err := c.BlindSendInt(dest, ibuf, 1, 3)
	if err != nil {
		tst.Errorf("BlindSendInt failed: %v\n", err)
		return
	}
	chk.IntAssert(nrecv, 3)
	chk.Ints(tst, "irecv", irecv, ibuf)

	// destinations other than 0 are invalid in a serial run
	_, _, err = c.BlindSendInt([]int{1}, []int{1}, 1, 1)
	if err == nil {
		tst.Errorf("BlindSendInt accepted an out-of-range destination\n")
	}
}

func Test_regroup01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("regroup01. stable regrouping by destination")

	dest := []int{2, 0, 1, 0, 2}
	order, toEach := regroup(dest, 5, 3)
	chk.Ints(tst, "toEach", toEach, []int{2, 1, 2})
	chk.Ints(tst, "order", order, []int{1, 3, 2, 0, 4})
}
