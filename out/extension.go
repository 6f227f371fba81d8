// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"encoding/binary"
	"strings"

	"github.com/cpmech/gomesh/msh"
	"github.com/cpmech/gomesh/sta"
)

// WriteByExtension dispatches on the filename suffix, the counterpart of
// the reader dispatch
func WriteByExtension(m *msh.Mesh, filename string) (err error) {
	switch {
	case strings.HasSuffix(filename, ".meshb"):
		return WriteMeshb(m, filename)
	case strings.HasSuffix(filename, ".lb8.ugrid"):
		return WriteUgrid(m, filename, binary.LittleEndian)
	case strings.HasSuffix(filename, ".b8.ugrid"):
		return WriteUgrid(m, filename, binary.BigEndian)
	}
	return sta.Err(sta.Implement, "out: unknown mesh extension on %q", filename)
}
