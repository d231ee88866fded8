package telemetry

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange    = errors.New("invalid range")
	ErrDataUnavailable = errors.New("data unavailable")
	ErrUnknownVariable = errors.New("unknown variable")
)

type InvalidRangeError struct {
	BeginAt time.Time
	EndAt   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: begin %s is after end %s", e.BeginAt.Format(time.RFC3339), e.EndAt.Format(time.RFC3339))
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// DataUnavailableError reports that the reading-query collaborator failed or
// timed out. Callers may retry; nothing is retried here.
type DataUnavailableError struct {
	Source string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("data unavailable: %v", e.Err)
	}
	return fmt.Sprintf("data unavailable from %s: %v", e.Source, e.Err)
}

func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

func (e *DataUnavailableError) Unwrap() error { return e.Err }

type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}

func (e *UnknownVariableError) Is(target error) bool { return target == ErrUnknownVariable }

// Unavailable wraps err as a DataUnavailableError unless it already is one.
func Unavailable(source string, err error) error {
	if err == nil {
		return nil
	}
	var existing *DataUnavailableError
	if errors.As(err, &existing) {
		return err
	}
	return &DataUnavailableError{Source: source, Err: err}
}
