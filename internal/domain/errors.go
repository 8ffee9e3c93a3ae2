package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a required file or mapping entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports malformed caller input such as a bad
	// identifier, region code or chart kind.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict reports a registration that collides with an existing entry.
	ErrConflict = errors.New("conflict")

	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// Rule names a single series invariant.
type Rule string

const (
	RuleDuplicatedDates Rule = "duplicated dates"
	RuleNotSorted       Rule = "not sorted"
	RuleNotHourly       Rule = "not hourly"
	RuleNotUTC          Rule = "missing timezone/UTC"
)

// ValidationError describes the first series invariant a frame violated.
type ValidationError struct {
	GaugeID NutsID
	Rule    Rule
	Detail  string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.GaugeID, e.Rule)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
