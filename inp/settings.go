// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gomesh/sta"
)

// Settings holds the adaptation parameters read from a JSON file
type Settings struct {
	Complexity float64 `json:"complexity"` // target metric complexity
	Gradation  float64 `json:"gradation"`  // growth ratio; below one selects mixed-space
	Pnorm      int     `json:"pnorm"`      // Lp norm power
	Hmin       float64 `json:"hmin"`       // smallest allowed spacing, zero disables
	Hmax       float64 `json:"hmax"`       // largest allowed spacing, zero disables
	AspectMax  float64 `json:"aspectmax"`  // aspect-ratio ceiling, zero disables
	Kexact     bool    `json:"kexact"`     // k-exact Hessian recovery instead of L2
	WalkLimit  int     `json:"walklimit"`  // locator step cap
	DonorScale float64 `json:"donorscale"` // bounding-sphere enlargement
	Fuzz       float64 `json:"fuzz"`       // initial tree fuzz
}

// DefaultSettings returns the documented defaults
func DefaultSettings() (o *Settings) {
	o = new(Settings)
	o.Complexity = 1000.0
	o.Gradation = -1.0
	o.Pnorm = 2
	o.WalkLimit = 215
	o.DonorScale = 2.0
	o.Fuzz = 1.0e-12
	return
}

// ReadSettings loads settings from a JSON file over the defaults
func ReadSettings(filename string) (o *Settings, err error) {
	o = DefaultSettings()
	b, errRead := os.ReadFile(filename)
	if LogErr(errRead, "settings: cannot read "+filename) {
		return nil, sta.Err(sta.Null, "inp: cannot read settings %q", filename)
	}
	if LogErr(json.Unmarshal(b, o), "settings: cannot unmarshal "+filename) {
		return nil, sta.Err(sta.Invalid, "inp: cannot parse settings %q", filename)
	}
	return
}
