// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"os"
	"strings"

	"github.com/cpmech/gomesh/inp"
	"github.com/cpmech/gomesh/met"
	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/out"
	"github.com/cpmech/gomesh/sta"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
)

func usage() {
	io.Pf("usage: gomesh <subcommand> ...\n")
	io.Pf("  bootstrap <project.egads>            create the initial grid from CAD\n")
	io.Pf("  fill <in.meshb> <out.meshb> [adapt.json]  normalize a mesh and imply its metric\n")
	io.Pf("  location <in.meshb> <global_id>...   report vertex locations\n")
}

func main() {

	// catch errors
	status := 0
	defer func() {
		if err := recover(); err != nil {
			if !mpi.IsOn() || mpi.Rank() == 0 {
				io.PfRed("ERROR: %v\n", err)
			}
			status = 1
		}
		mpi.Stop(false)
		os.Exit(status)
	}()
	mpi.Start(false)

	comm := msg.NewComm()
	if comm.Once() {
		io.PfWhite("\nGomesh -- metric-based mesh adaptation\n\n")
	}

	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
		status = 1
		return
	}

	var err error
	switch args[0] {
	case "bootstrap":
		err = bootstrap(comm, args[1:])
	case "fill":
		err = fill(comm, args[1:])
	case "location":
		err = location(comm, args[1:])
	default:
		usage()
		err = sta.Err(sta.Invalid, "unknown subcommand %q", args[0])
	}
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		status = 1
	}
}

// bootstrap creates the initial tessellation of a CAD project. The EGADS
// evaluator is an external collaborator; without it linked in, the
// subcommand reports the configuration as unimplemented.
func bootstrap(comm *msg.Comm, args []string) (err error) {
	if comm.Para() {
		return sta.Err(sta.Implement, "bootstrap is not parallel")
	}
	if len(args) < 1 {
		usage()
		return sta.Err(sta.Null, "bootstrap needs a project file")
	}
	if !strings.HasSuffix(args[0], ".egads") {
		return sta.Err(sta.Invalid, "bootstrap expects a .egads project, got %q", args[0])
	}
	return sta.Err(sta.Implement, "the EGADS evaluator is not linked into this build")
}

// fill normalizes a mesh: read, validate, imply the vertex metric from
// the current cells (conditioned by the optional settings file), and
// export the mesh with its metric alongside
func fill(comm *msg.Comm, args []string) (err error) {
	if len(args) < 2 {
		usage()
		return sta.Err(sta.Null, "fill needs input and output meshes")
	}
	m, err := inp.ReadByExtension(comm, args[0])
	if err != nil {
		return
	}
	if m.Tet.N() == 0 {
		return sta.Err(sta.Implement, "filling a shell with a volume requires the tetrahedralization collaborator")
	}
	err = m.ValidateAll()
	if err != nil {
		return
	}
	metric := make([]float64, 6*m.Nodes.Max())
	err = met.ImplyFrom(metric, m)
	if err != nil {
		return
	}
	if len(args) > 2 {
		settings, errSet := inp.ReadSettings(args[2])
		if errSet != nil {
			return errSet
		}
		if settings.Hmin > 0.0 || settings.Hmax > 0.0 {
			err = met.LimitH(metric, m, settings.Hmin, settings.Hmax)
			if err != nil {
				return
			}
		}
		if settings.AspectMax > 0.0 {
			err = met.LimitAspectRatio(metric, m, settings.AspectMax)
			if err != nil {
				return
			}
		}
		err = met.GradationAtComplexity(metric, m, settings.Gradation, settings.Complexity)
		if err != nil {
			return
		}
	}
	err = met.ToNodes(metric, m)
	if err != nil {
		return
	}
	err = out.WriteByExtension(m, args[1])
	if err != nil {
		return
	}
	base := strings.TrimSuffix(args[1], ".meshb")
	base = strings.TrimSuffix(base, ".lb8.ugrid")
	base = strings.TrimSuffix(base, ".b8.ugrid")
	return out.WriteMetricSolb(m, base+"-metric.solb")
}

// location prints the recorded position of the given global vertex ids
func location(comm *msg.Comm, args []string) (err error) {
	if len(args) < 2 {
		usage()
		return sta.Err(sta.Null, "location needs a mesh and at least one global id")
	}
	m, err := inp.ReadByExtension(comm, args[0])
	if err != nil {
		return
	}
	for _, a := range args[1:] {
		global := io.Atoi(a)
		local, errLoc := m.Nodes.Local(global)
		if errLoc != nil {
			if comm.Para() {
				continue // lives on another partition
			}
			return sta.Wrap(errLoc, "global index %d", global)
		}
		io.Pf("%s\n", m.Nodes.Location(local))
	}
	return
}
