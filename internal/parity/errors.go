package parity

import (
	"fmt"
	"strings"
)

// DimensionMismatchError reports input columns of unequal length.
type DimensionMismatchError struct {
	Outcome     int
	Predictions int
	Groups      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: outcome has %d rows, predictions %d, groups %d", e.Outcome, e.Predictions, e.Groups)
}

// MissingArgumentError reports a required input that was not supplied.
type MissingArgumentError struct {
	Argument string
	Reason   string
}

func (e *MissingArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing argument %s", e.Argument)
	}
	return fmt.Sprintf("missing argument %s: %s", e.Argument, e.Reason)
}

// InvalidBaseGroupError reports a base group that does not occur in the data.
type InvalidBaseGroupError struct {
	Base   string
	Levels []string
}

func (e *InvalidBaseGroupError) Error() string {
	return fmt.Sprintf("base group %q not among observed groups [%s]", e.Base, strings.Join(e.Levels, ", "))
}

// ArgumentError reports a supplied input with an unusable value.
type ArgumentError struct {
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

// UnknownMetricError reports a metric tag outside the catalog.
type UnknownMetricError struct {
	Name string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Name)
}
