package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Observation is one hourly row of a station series.
type Observation struct {
	Date            time.Time
	DischargeVolObs *float64
	WaterLevelObs   *float64
}

// Series is a validated hourly station record.
type Series struct {
	GaugeID      NutsID
	Observations []Observation
}

// Len returns the number of hourly rows.
func (s Series) Len() int { return len(s.Observations) }

// Span returns the first and last timestamp. ok is false for an empty series.
func (s Series) Span() (first, last time.Time, ok bool) {
	if len(s.Observations) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Observations[0].Date, s.Observations[len(s.Observations)-1].Date, true
}

// Frame converts the series back to tabular form.
func (s Series) Frame(dateIndex bool) *Frame {
	n := len(s.Observations)
	f := &Frame{
		Dates:       make([]time.Time, n),
		DateIndexed: dateIndex,
		Columns: []Column{
			{Name: ColumnDischargeVolObs, Values: make([]*float64, n)},
			{Name: ColumnWaterLevelObs, Values: make([]*float64, n)},
		},
	}
	for i, o := range s.Observations {
		f.Dates[i] = o.Date
		f.Columns[0].Values[i] = o.DischargeVolObs
		f.Columns[1].Values[i] = o.WaterLevelObs
	}
	return f
}

// NormalizeSeries checks f against the series invariants and returns the
// validated series together with the names of any columns that were
// ignored. Missing value columns are filled with nulls. The first violated
// rule is returned as a *ValidationError.
func NormalizeSeries(gaugeID NutsID, f *Frame) (Series, []string, error) {
	if f == nil {
		return Series{}, nil, fmt.Errorf("%s: series is not tabular: %w", gaugeID, ErrInvalidArgument)
	}

	n := len(f.Dates)
	seen := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		if len(c.Values) != n {
			return Series{}, nil, fmt.Errorf("%s: column %q has %d values, index has %d: %w",
				gaugeID, c.Name, len(c.Values), n, ErrInvalidArgument)
		}
		if seen[c.Name] {
			return Series{}, nil, fmt.Errorf("%s: column %q appears twice: %w", gaugeID, c.Name, ErrInvalidArgument)
		}
		seen[c.Name] = true
	}

	discharge := columnOrNull(f, ColumnDischargeVolObs, n)
	level := columnOrNull(f, ColumnWaterLevelObs, n)

	if err := checkIndex(gaugeID, f.Dates); err != nil {
		return Series{}, nil, err
	}

	var extra []string
	for _, c := range f.Columns {
		if c.Name != ColumnDischargeVolObs && c.Name != ColumnWaterLevelObs {
			extra = append(extra, c.Name)
		}
	}
	slices.Sort(extra)

	s := Series{GaugeID: gaugeID, Observations: make([]Observation, n)}
	for i, d := range f.Dates {
		s.Observations[i] = Observation{
			Date:            d,
			DischargeVolObs: discharge[i],
			WaterLevelObs:   level[i],
		}
	}
	return s, extra, nil
}

func columnOrNull(f *Frame, name string, n int) []*float64 {
	if c, ok := f.Column(name); ok {
		return c.Values
	}
	return make([]*float64, n)
}

// checkIndex applies the index rules in order: duplicates, ordering,
// hourly spacing, then timezone.
func checkIndex(gaugeID NutsID, dates []time.Time) error {
	seen := make(map[int64]struct{}, len(dates))
	var dups []string
	for _, d := range dates {
		key := d.UnixNano()
		if _, ok := seen[key]; ok {
			dups = append(dups, d.UTC().Format(time.RFC3339))
			continue
		}
		seen[key] = struct{}{}
	}
	if len(dups) > 0 {
		return &ValidationError{GaugeID: gaugeID, Rule: RuleDuplicatedDates, Detail: summarize(dups)}
	}

	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return &ValidationError{GaugeID: gaugeID, Rule: RuleNotSorted,
				Detail: fmt.Sprintf("row %d (%s) precedes row %d", i, dates[i].Format(time.RFC3339), i-1)}
		}
	}

	for i := 1; i < len(dates); i++ {
		if step := dates[i].Sub(dates[i-1]); step != time.Hour {
			return &ValidationError{GaugeID: gaugeID, Rule: RuleNotHourly,
				Detail: fmt.Sprintf("step of %s after %s", step, dates[i-1].Format(time.RFC3339))}
		}
	}

	if len(dates) == 0 {
		return &ValidationError{GaugeID: gaugeID, Rule: RuleNotUTC, Detail: "empty index carries no timezone"}
	}
	for i, d := range dates {
		if d.Location() != time.UTC {
			return &ValidationError{GaugeID: gaugeID, Rule: RuleNotUTC,
				Detail: fmt.Sprintf("row %d is in %q", i, d.Location())}
		}
	}
	return nil
}

func summarize(items []string) string {
	const limit = 3
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:limit], ", "), len(items)-limit)
}
