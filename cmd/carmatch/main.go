// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailed  = 1 // the command ran but the lookup or enrichment failed
	ExitError   = 2 // configuration, usage or input error
)

// lookupError marks a command that ran to completion but whose external
// lookup failed. Its payload has already been printed.
type lookupError struct {
	msg string
}

func (e *lookupError) Error() string { return e.msg }

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var le *lookupError
		if errors.As(err, &le) {
			os.Exit(ExitFailed)
		}
		os.Exit(ExitError)
	}
}
