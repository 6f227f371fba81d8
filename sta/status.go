// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sta defines the status kinds carried by gomesh errors
package sta

import "github.com/cpmech/gosl/io"

// Status enumerates the failure kinds
type Status int

const (
	Success Status = iota
	Failure
	Null           // missing required input
	Invalid        // precondition violated
	DivZero        // zero volume, zero denominator, non-finite metric
	NotFound       // lookup miss
	Implement      // code path deliberately unimplemented
	IncreaseLimit  // fixed-size scratch buffer overflowed
	IllConditioned // QR pivot below threshold
)

// String returns the name of a status kind
func (o Status) String() string {
	switch o {
	case Success:
		return "success"
	case Null:
		return "null"
	case Invalid:
		return "invalid"
	case DivZero:
		return "div-zero"
	case NotFound:
		return "not-found"
	case Implement:
		return "implement"
	case IncreaseLimit:
		return "increase-limit"
	case IllConditioned:
		return "ill-conditioned"
	}
	return "failure"
}

// Error is an error value tagged with a status kind
type Error struct {
	Status Status // failure kind
	Msg    string // context message
}

// Error implements the error interface
func (o *Error) Error() string {
	return io.Sf("%s: %s", o.Status.String(), o.Msg)
}

// Err builds a tagged error
func Err(status Status, msg string, prm ...interface{}) error {
	return &Error{Status: status, Msg: io.Sf(msg, prm...)}
}

// Wrap prefixes the message of an error, keeping its kind if tagged
func Wrap(err error, msg string, prm ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Status: Kind(err), Msg: io.Sf(msg, prm...) + ": " + err.Error()}
}

// Kind extracts the status kind of an error; plain errors map to Failure
func Kind(err error) Status {
	if err == nil {
		return Success
	}
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	return Failure
}

// Is tells whether an error carries the given kind
func Is(err error, status Status) bool {
	return Kind(err) == status
}
