// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build ignore

// run with: mpirun -np 2 go run t_part_main.go
package main

import (
	"encoding/binary"
	"testing"

	"github.com/cpmech/gomesh/inp"
	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/out"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
)

func main() {

	// catch errors
	var tst testing.T
	defer func() {
		if mpi.Rank() == 0 {
			if err := recover(); err != nil {
				io.PfRed("ERROR: %v\n", err)
			}
			if tst.Failed() {
				io.PfRed("test failed\n")
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	comm := msg.NewComm()
	if comm.Size() != 2 {
		chk.Panic("this scenario needs 2 processors")
	}

	// processor zero writes the single-tet mesh
	fn := "/tmp/gomesh_t_part.lb8.ugrid"
	if comm.Once() {
		m := msh.UnitTetMesh()
		if err := out.WriteUgrid(m, fn, binary.LittleEndian); err != nil {
			chk.Panic("write: %v", err)
		}
	}
	comm.Barrier()

	// streaming read: two owned vertices per processor, the tet visible
	// on both as owner plus ghost copy
	m, err := inp.ReadUgrid(comm, fn, binary.LittleEndian)
	if err != nil {
		chk.Panic("read: %v", err)
	}
	owned := 0
	for local := 0; local < m.Nodes.Max(); local++ {
		if m.Nodes.Owned(local) {
			owned++
		}
	}
	if owned != 2 {
		tst.Errorf("p%d owns %d vertices, expected 2\n", comm.Rank(), owned)
		return
	}
	if m.Tet.N() != 1 {
		tst.Errorf("p%d sees %d tets, expected 1\n", comm.Rank(), m.Tet.N())
		return
	}

	// redistribution keeps the picture
	if err = m.ToBalance(); err != nil {
		chk.Panic("migrate: %v", err)
	}
	if m.Tet.N() != 1 {
		tst.Errorf("p%d sees %d tets after migration\n", comm.Rank(), m.Tet.N())
		return
	}
	if err = m.ValidateCellNodes(); err != nil {
		tst.Errorf("p%d validation: %v\n", comm.Rank(), err)
		return
	}
	if comm.Once() {
		io.PfGreen("ok\n")
	}
}
