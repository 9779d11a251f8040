package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/census-cli/pkg/census"
)

// Process exit codes by failure kind.
const (
	exitOK            = 0
	exitFailure       = 1
	exitConfiguration = 2
	exitValidation    = 3
	exitNetwork       = 4
	exitAPI           = 5
	exitParse         = 6
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if _, ok := census.AsAPIError(err); ok {
		return exitAPI
	}
	switch {
	case eris.Is(err, census.ErrConfiguration):
		return exitConfiguration
	case eris.Is(err, census.ErrValidation), eris.Is(err, census.ErrOutsideCoverage):
		return exitValidation
	case eris.Is(err, census.ErrNetwork):
		return exitNetwork
	case eris.Is(err, census.ErrParse):
		return exitParse
	default:
		return exitFailure
	}
}
