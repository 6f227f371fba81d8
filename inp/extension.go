// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/binary"
	"strings"

	"github.com/cpmech/gomesh/msg"
	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// ReadByExtension dispatches on the filename suffix: .meshb for the
// keyword-sectioned format, .lb8.ugrid and .b8.ugrid for the counted
// format in little and big endian
func ReadByExtension(comm *msg.Comm, filename string) (m *msh.Mesh, err error) {
	switch {
	case strings.HasSuffix(filename, ".meshb"):
		return ReadMeshb(comm, filename)
	case strings.HasSuffix(filename, ".lb8.ugrid"):
		return ReadUgrid(comm, filename, binary.LittleEndian)
	case strings.HasSuffix(filename, ".b8.ugrid"):
		return ReadUgrid(comm, filename, binary.BigEndian)
	}
	return nil, sta.Err(sta.Implement, "inp: unknown mesh extension on %q", filename)
}
