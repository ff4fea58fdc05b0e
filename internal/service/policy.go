package service

// Policy names the error-handling contract of a service.
//
// Write paths are Strict: persistence failures propagate to the caller so a
// recorded change can never silently vanish. Read paths are BestEffort: a
// history outage degrades to an empty result instead of blocking the user's
// primary budgeting action.
type Policy string

const (
	// Strict propagates persistence errors to the caller.
	Strict Policy = "strict"
	// BestEffort logs persistence errors and returns an empty result.
	BestEffort Policy = "best-effort"
)
