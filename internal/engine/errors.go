package engine

import (
	"fmt"
	"time"
)

// DataError reports invalid input series data: non-monotonic dates, gaps,
// non-positive prices, or misaligned series. Index and Date identify the
// first offending period.
type DataError struct {
	Index  int
	Date   time.Time
	Reason string
}

func (e *DataError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("data error at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("data error at index %d (%s): %s", e.Index, e.Date.Format("2006-01-02"), e.Reason)
}

// ParameterError reports a rejected simulation or grid parameter. Nothing is
// simulated when one is returned.
type ParameterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%s: %s", e.Param, e.Value, e.Reason)
}

// CellError reports the grid cell whose failure stopped a fail-fast grid run.
// It wraps the cell's underlying error, so errors.As still recovers the
// DataError or ParameterError inside.
type CellError struct {
	Fast int
	Slow int
	Err  error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("grid cell %d/%d: %v", e.Fast, e.Slow, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
