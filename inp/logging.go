// Copyright 2016 The Gomesh Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"log"
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
)

// logFile holds a handle to the per-processor log file
var logFile *os.File

// InitLogFile connects the standard logger to <key>_p<rank>.log
func InitLogFile(dirout, fnamekey string) (err error) {
	var rank int
	if mpi.IsOn() {
		rank = mpi.Rank()
	}
	logFile, err = os.Create(io.Sf("%s/%s_p%d.log", dirout, fnamekey, rank))
	if err != nil {
		return
	}
	log.SetOutput(logFile)
	return
}

// FlushLog saves the log to disk
func FlushLog() {
	if logFile != nil {
		logFile.Close()
	}
}

// LogErr logs an error and returns a stop flag
func LogErr(err error, msg string) (stop bool) {
	if err != nil {
		log.Printf("ERROR: %s : %v", msg, err)
		return true
	}
	return false
}

// LogErrCond logs a condition-based error and returns a stop flag
func LogErrCond(condition bool, msg string, prm ...interface{}) (stop bool) {
	if condition {
		log.Printf("ERROR: %s", io.Sf(msg, prm...))
		return true
	}
	return false
}
