// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sta

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_status01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("status01. kinds, wrapping and matching")

	err := Err(DivZero, "volume %g", 0.0)
	if !Is(err, DivZero) {
		tst.Errorf("kind lost: %v\n", err)
		return
	}
	chk.String(tst, Kind(err).String(), "div-zero")

	wrapped := Wrap(err, "while implying the metric")
	if !Is(wrapped, DivZero) {
		tst.Errorf("kind lost through wrapping: %v\n", wrapped)
		return
	}

	if Wrap(nil, "no-op") != nil {
		tst.Errorf("wrapping nil must stay nil\n")
		return
	}
	if Kind(nil) != Success {
		tst.Errorf("nil error must be success\n")
		return
	}
	if Kind(errors.New("plain")) != Failure {
		tst.Errorf("plain errors must map to failure\n")
	}
}
