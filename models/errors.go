package models

import "errors"

// Core failure kinds. Stages wrap these with context so a failed run
// names the stage and the offending input.
var (
	// ErrInsufficientData: fewer than 2 observations, or fewer than 1
	// usable log-return after skipping non-positive pairs.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrInvalidParameter: non-positive starting value, path count or
	// horizon, or a negative capacity limit.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericInstability: a simulated value left the finite float64
	// range, typically extreme drift or volatility over a long horizon.
	ErrNumericInstability = errors.New("numeric instability")
)
