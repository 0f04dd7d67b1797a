package core

import "errors"

// Procedure consistency errors. These indicate malformed block data or
// programmer error, not steady-state conditions, and are never retried.
var (
	ErrDuplicateProcedure   = errors.New("procedure is already defined")
	ErrProcedureNotDefined  = errors.New("procedure is not defined")
	ErrMissingProcedureInfo = errors.New("block carries no procedure info")
)
