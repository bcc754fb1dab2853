package service

import "fmt"

// AssetNotFoundError is returned during position sizing when an allocated
// symbol has no matching reserve entry.
type AssetNotFoundError struct {
	Symbol string
}

func (e AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %s not found in reserves", e.Symbol)
}

// StepError aborts a simulation mid-run when a sample is missing or invalid at
// a given series index. It is a distinct outcome from liquidation, which is a
// first-class result, not an error.
type StepError struct {
	Index  int
	Symbol string
	Reason string
}

func (e StepError) Error() string {
	return fmt.Sprintf("simulation step %d failed for %s: %s", e.Index, e.Symbol, e.Reason)
}

// ExecutionError is a worker-side fault unrelated to simulation logic. The
// worker that produced it is discarded, never recycled.
type ExecutionError struct {
	Cause string
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("simulation execution failed: %s", e.Cause)
}
