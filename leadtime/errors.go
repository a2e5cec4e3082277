/*
errors.go - Error types for the lead-time engine

ERROR POLICY:
  The engine itself never surfaces an error to its caller: a failed class
  is dropped, a total failure degrades to the fixed fallback response.
  These sentinels exist for the boundary (input validation) and for the
  storage layer, where errors DO propagate to operator tooling.

USAGE:
  if errors.Is(err, leadtime.ErrMissingOrgID) { ... 400 ... }
*/
package leadtime

import "errors"

var (
	// ErrMissingOrgID is returned when a request omits the organization.
	ErrMissingOrgID = errors.New("missing org id")

	// ErrMissingProcess is returned when a request omits the process.
	ErrMissingProcess = errors.New("missing process")

	// ErrMissingMachineGroup is returned when a request omits the machine group.
	ErrMissingMachineGroup = errors.New("missing machine group")

	// ErrNegativeBasePrice is returned for a negative base price.
	ErrNegativeBasePrice = errors.New("base price must not be negative")

	// ErrUnknownClass is returned for a class outside econ/standard/express.
	ErrUnknownClass = errors.New("unknown lead-time class")

	// ErrInvalidDay is returned for a day that is not a YYYY-MM-DD date.
	ErrInvalidDay = errors.New("invalid day: expected YYYY-MM-DD")

	// ErrProfileNotFound is returned by storage writes targeting a profile
	// that does not exist. Reads treat absence as nil, not as an error.
	ErrProfileNotFound = errors.New("lead-time profile not found")
)
