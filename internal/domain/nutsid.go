package domain

import (
	"fmt"
	"strconv"
)

const (
	nutsIDLen = 8

	// FirstSequence is the sequence number of the first station in a region.
	FirstSequence = 1000
	// SequenceStep is the distance between consecutive registrations.
	SequenceStep = 10
	// MaxSequence is the largest sequence that fits five digits.
	MaxSequence = 99999
)

// NutsID is the dataset-wide eight-character gauge identifier.
type NutsID string

// ParseNutsID validates s as a NUTS ID: a known region code followed by five
// digits.
func ParseNutsID(s string) (NutsID, error) {
	if len(s) != nutsIDLen {
		return "", fmt.Errorf("nuts id %q: want %d characters: %w", s, nutsIDLen, ErrInvalidArgument)
	}
	if !Region(s[:3]).Valid() {
		return "", fmt.Errorf("nuts id %q: unknown region %q: %w", s, s[:3], ErrInvalidArgument)
	}
	for _, c := range s[3:] {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("nuts id %q: sequence must be numeric: %w", s, ErrInvalidArgument)
		}
	}
	return NutsID(s), nil
}

// NewNutsID formats a region and sequence number as a NUTS ID.
func NewNutsID(r Region, seq int) (NutsID, error) {
	if !r.Valid() {
		return "", fmt.Errorf("region %q is not a known NUTS code: %w", r, ErrInvalidArgument)
	}
	if seq < 0 || seq > MaxSequence {
		return "", fmt.Errorf("sequence %d out of range for region %s: %w", seq, r, ErrInvalidArgument)
	}
	return NutsID(fmt.Sprintf("%s%05d", r, seq)), nil
}

// NextNutsID returns the ID a new registration in region r receives, given
// the IDs already allocated anywhere in the dataset.
func NextNutsID(r Region, existing []NutsID) (NutsID, error) {
	if !r.Valid() {
		return "", fmt.Errorf("region %q is not a known NUTS code: %w", r, ErrInvalidArgument)
	}

	last := -1
	for _, id := range existing {
		if id.Region() != r {
			continue
		}
		if seq := id.Sequence(); seq > last {
			last = seq
		}
	}

	next := FirstSequence
	if last >= 0 {
		next = last + SequenceStep
	}
	if next > MaxSequence {
		return "", fmt.Errorf("region %s has no sequence numbers left: %w", r, ErrConflict)
	}
	return NewNutsID(r, next)
}

// Region returns the region prefix, or "" if the ID is too short.
func (id NutsID) Region() Region {
	if len(id) < 3 {
		return ""
	}
	return Region(id[:3])
}

// Sequence returns the numeric suffix, or -1 if it cannot be parsed.
func (id NutsID) Sequence() int {
	if len(id) != nutsIDLen {
		return -1
	}
	n, err := strconv.Atoi(string(id[3:]))
	if err != nil {
		return -1
	}
	return n
}

func (id NutsID) String() string { return string(id) }
